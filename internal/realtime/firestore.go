package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"crediario-backend/internal/domain"
	"google.golang.org/api/iterator"
)

const DefaultCollection = "crediarios"

// FirestoreSource streams the active crediários, newest first.
type FirestoreSource struct {
	Client     *firestore.Client
	Collection string
}

func (s FirestoreSource) Listen(ctx context.Context, emit func([]domain.Crediario)) error {
	collection := s.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	q := s.Client.Collection(collection).
		Where("isActive", "==", true).
		OrderBy("createdAt", firestore.Desc)

	it := q.Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		now := time.Now()
		list := make([]domain.Crediario, 0, len(docs))
		for _, d := range docs {
			list = append(list, FromDocument(d.Ref.ID, d.Data(), now))
		}
		emit(list)
	}
}
