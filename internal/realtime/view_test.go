package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"crediario-backend/internal/domain"
)

type fakeSource struct {
	mu        sync.Mutex
	listens   int
	snapshots chan []domain.Crediario
	failures  chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{snapshots: make(chan []domain.Crediario), failures: make(chan error)}
}

func (f *fakeSource) Listen(ctx context.Context, emit func([]domain.Crediario)) error {
	f.mu.Lock()
	f.listens++
	f.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-f.snapshots:
			emit(s)
		case err := <-f.failures:
			return err
		}
	}
}

func (f *fakeSource) listenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listens
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNonOwnerNeverSubscribes(t *testing.T) {
	src := newFakeSource()
	v := NewView(src, discardLogger())
	v.Run(context.Background(), domain.RoleWaiter)

	st := v.State()
	if !errors.Is(st.Err, ErrPermissionDenied) || st.Loading || len(st.Crediarios) != 0 {
		t.Fatalf("state = %+v", st)
	}
	if src.listenCount() != 0 {
		t.Fatalf("listens = %d, want 0", src.listenCount())
	}
	if st := v.ForRole(domain.RoleWaiter); !errors.Is(st.Err, ErrPermissionDenied) {
		t.Fatalf("ForRole(waiter) = %+v", st)
	}
}

func TestSnapshotsReplaceList(t *testing.T) {
	src := newFakeSource()
	v := NewView(src, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		v.Run(ctx, domain.RoleOwner)
		close(finished)
	}()

	if !v.State().Loading {
		t.Fatal("view should start loading")
	}
	src.snapshots <- []domain.Crediario{{ID: "a"}, {ID: "b"}}
	waitFor(t, "first snapshot", func() bool { return len(v.State().Crediarios) == 2 })

	src.snapshots <- []domain.Crediario{{ID: "c"}}
	waitFor(t, "second snapshot", func() bool {
		st := v.State()
		return len(st.Crediarios) == 1 && st.Crediarios[0].ID == "c"
	})
	if _, ok := v.Find("a"); ok {
		t.Fatal("stale entry survived a snapshot")
	}
	if c, ok := v.Find("c"); !ok || c.ID != "c" {
		t.Fatal("Find(c) failed")
	}
	if st := v.ForRole(domain.RoleOwner); st.Err != nil || st.Loading {
		t.Fatalf("owner state = %+v", st)
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestListenerErrorStopsLoadingUntilRefetch(t *testing.T) {
	src := newFakeSource()
	v := NewView(src, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go v.Run(ctx, domain.RoleOwner)

	waitFor(t, "subscription", func() bool { return src.listenCount() == 1 })
	src.failures <- errors.New("missing index")
	waitFor(t, "error state", func() bool { return v.State().Err != nil })

	st := v.State()
	if st.Loading {
		t.Fatal("loading should stop on error")
	}
	if msg := st.Err.Error(); !strings.Contains(msg, "erro ao carregar crediários") || !strings.Contains(msg, "missing index") {
		t.Fatalf("err = %q", msg)
	}
	time.Sleep(20 * time.Millisecond)
	if src.listenCount() != 1 {
		t.Fatal("view must not resubscribe on its own")
	}

	v.Refetch()
	waitFor(t, "resubscription", func() bool { return src.listenCount() == 2 })
	src.snapshots <- []domain.Crediario{{ID: "z"}}
	waitFor(t, "recovered state", func() bool {
		st := v.State()
		return st.Err == nil && len(st.Crediarios) == 1
	})
}

func TestRefetchRemountsLiveSubscription(t *testing.T) {
	src := newFakeSource()
	v := NewView(src, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go v.Run(ctx, domain.RoleOwner)

	src.snapshots <- []domain.Crediario{{ID: "a"}}
	waitFor(t, "snapshot", func() bool { return len(v.State().Crediarios) == 1 })

	v.Refetch()
	waitFor(t, "remount", func() bool { return src.listenCount() == 2 })
	if st := v.State(); !st.Loading || len(st.Crediarios) != 0 {
		t.Fatalf("remounted state = %+v", st)
	}
}

func TestFromDocumentCoerces(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c := FromDocument("id1", map[string]any{
		"customerName": "Maria Silva",
		"totalBalance": "abc",
		"isActive":     "yes",
		"createdAt":    created,
		"history": []any{
			map[string]any{"id": "t1", "type": "payment", "amount": int64(30), "description": "pix", "date": created},
			"garbage",
		},
	}, now)

	if c.ID != "id1" || c.CustomerName != "Maria Silva" {
		t.Fatalf("identity fields = %+v", c)
	}
	if c.TotalBalance != 0 {
		t.Fatalf("balance = %v, want 0", c.TotalBalance)
	}
	if !c.IsActive {
		t.Fatal("non-empty string should coerce to active")
	}
	if !c.CreatedAt.Equal(created) {
		t.Fatalf("createdAt = %v", c.CreatedAt)
	}
	if len(c.History) != 1 || c.History[0].Amount != 30 || c.History[0].Type != domain.TransactionPayment {
		t.Fatalf("history = %+v", c.History)
	}

	empty := FromDocument("id2", map[string]any{}, now)
	if empty.History == nil || len(empty.History) != 0 {
		t.Fatal("missing history should be an empty list")
	}
	if !empty.CreatedAt.Equal(now) || empty.IsActive {
		t.Fatalf("defaults = %+v", empty)
	}
}
