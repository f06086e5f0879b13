package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"crediario-backend/internal/domain"
)

var ErrPermissionDenied = errors.New("você não tem permissão para gerenciar crediários")

// Source delivers full snapshots until ctx is done or the stream fails.
type Source interface {
	Listen(ctx context.Context, emit func([]domain.Crediario)) error
}

type State struct {
	Crediarios []domain.Crediario
	Loading    bool
	Err        error
}

// View keeps the latest snapshot of the active crediários. Every snapshot
// replaces the previous list.
type View struct {
	source  Source
	logger  *slog.Logger
	refetch chan struct{}

	mu    sync.RWMutex
	state State
}

func NewView(source Source, logger *slog.Logger) *View {
	return &View{
		source:  source,
		logger:  logger,
		refetch: make(chan struct{}, 1),
		state:   State{Crediarios: []domain.Crediario{}, Loading: true},
	}
}

// Run subscribes on behalf of role and blocks until ctx is done. A role other
// than owner never subscribes.
func (v *View) Run(ctx context.Context, role domain.Role) {
	if role != domain.RoleOwner {
		v.set(State{Crediarios: []domain.Crediario{}, Err: ErrPermissionDenied})
		return
	}

	for {
		v.set(State{Crediarios: []domain.Crediario{}, Loading: true})

		subCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- v.source.Listen(subCtx, v.replace) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return
		case <-v.refetch:
			cancel()
			<-done
			v.logger.Info("crediario view remounting")
			continue
		case err := <-done:
			cancel()
			if err != nil {
				v.logger.Error("crediario listener failed", "err", err)
				v.fail(err)
			} else {
				v.finishLoading()
			}
		}

		// No automatic resubscription; wait for an explicit refetch.
		select {
		case <-ctx.Done():
			return
		case <-v.refetch:
		}
	}
}

// Refetch forces the subscription to be torn down and reopened.
func (v *View) Refetch() {
	select {
	case v.refetch <- struct{}{}:
	default:
	}
}

// State returns a copy of the current state.
func (v *View) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := v.state
	out.Crediarios = append([]domain.Crediario(nil), v.state.Crediarios...)
	return out
}

// ForRole is State gated on role: only the owner may read the ledger.
func (v *View) ForRole(role domain.Role) State {
	if role != domain.RoleOwner {
		return State{Crediarios: []domain.Crediario{}, Err: ErrPermissionDenied}
	}
	return v.State()
}

func (v *View) Find(id string) (domain.Crediario, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, c := range v.state.Crediarios {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Crediario{}, false
}

func (v *View) replace(list []domain.Crediario) {
	if list == nil {
		list = []domain.Crediario{}
	}
	v.set(State{Crediarios: list})
}

func (v *View) fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = false
	v.state.Err = fmt.Errorf("erro ao carregar crediários: %w", err)
}

func (v *View) finishLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Loading = false
}

func (v *View) set(s State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = s
}
