package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/logger"
)

// FirestoreChangeFeed maps query snapshot changes on a collection to change
// events. The first snapshot (the current contents) is skipped.
type FirestoreChangeFeed struct {
	client *firestore.Client
}

func NewFirestoreChangeFeed(client *firestore.Client) *FirestoreChangeFeed {
	return &FirestoreChangeFeed{client: client}
}

func (f *FirestoreChangeFeed) Subscribe(ctx context.Context, table string) (repository.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		events: make(chan entity.ChangeEvent, subscriptionBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	iter := f.client.Collection(table).Snapshots(subCtx)
	go f.run(subCtx, table, iter, sub)

	return sub, nil
}

func (f *FirestoreChangeFeed) run(ctx context.Context, table string, iter *firestore.QuerySnapshotIterator, sub *firestoreSubscription) {
	defer close(sub.done)
	defer close(sub.events)
	defer iter.Stop()

	first := true
	for {
		snap, err := iter.Next()
		if err != nil {
			if ctx.Err() == nil && status.Code(err) != codes.Canceled {
				logger.Error("Change feed: snapshot listener on %s stopped: %v", table, err)
			}
			return
		}
		if first {
			first = false
			continue
		}

		for _, change := range snap.Changes {
			sub.deliver(entity.ChangeEvent{
				Table:    table,
				Type:     changeType(change.Kind),
				RecordID: change.Doc.Ref.ID,
				At:       snap.ReadTime,
			})
		}
	}
}

func changeType(kind firestore.DocumentChangeKind) entity.ChangeType {
	switch kind {
	case firestore.DocumentAdded:
		return entity.ChangeInsert
	case firestore.DocumentRemoved:
		return entity.ChangeDelete
	default:
		return entity.ChangeUpdate
	}
}

type firestoreSubscription struct {
	events chan entity.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *firestoreSubscription) Events() <-chan entity.ChangeEvent {
	return s.events
}

func (s *firestoreSubscription) deliver(event entity.ChangeEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	select {
	case s.events <- event:
	default:
		logger.Warn("Change feed: dropping %s event for slow subscriber", event.Type)
	}
}

func (s *firestoreSubscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}
