package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"thriftmart/internal/domain/entity"
	"thriftmart/internal/domain/repository"
	"thriftmart/pkg/logger"
)

const defaultReconnectDelay = 2 * time.Second

// PostgresChangeFeed turns NOTIFY payloads from the listings trigger into
// change events. Each subscription holds one pooled connection for LISTEN.
type PostgresChangeFeed struct {
	pool           *pgxpool.Pool
	channel        string
	reconnectDelay time.Duration
}

func NewPostgresChangeFeed(pool *pgxpool.Pool) *PostgresChangeFeed {
	return &PostgresChangeFeed{
		pool:           pool,
		channel:        ListingsChannel,
		reconnectDelay: defaultReconnectDelay,
	}
}

func (f *PostgresChangeFeed) Subscribe(ctx context.Context, table string) (repository.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &postgresSubscription{
		events: make(chan entity.ChangeEvent, subscriptionBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go f.run(subCtx, table, sub)
	return sub, nil
}

func (f *PostgresChangeFeed) run(ctx context.Context, table string, sub *postgresSubscription) {
	defer close(sub.done)
	defer close(sub.events)

	reconnect := false
	for {
		err := f.listen(ctx, table, sub, reconnect)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("Change feed: LISTEN %s interrupted: %v (retrying in %v)", f.channel, err, f.reconnectDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.reconnectDelay):
		}
		reconnect = true
	}
}

// listen holds a connection until the wait fails. After a reconnect it emits
// one synthetic event so subscribers refetch whatever they missed.
func (f *PostgresChangeFeed) listen(ctx context.Context, table string, sub *postgresSubscription, reconnect bool) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if !conn.Conn().IsClosed() {
			if _, err := conn.Exec(context.Background(), "UNLISTEN *"); err != nil {
				logger.Warn("Change feed: UNLISTEN failed: %v", err)
			}
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{f.channel}.Sanitize()); err != nil {
		return err
	}
	logger.Info("Change feed: listening on %s", f.channel)

	if reconnect {
		sub.deliver(entity.ChangeEvent{
			Table: table,
			Type:  entity.ChangeUpdate,
			At:    time.Now().UTC(),
		})
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		event, ok := parseNotification(n.Payload)
		if !ok {
			logger.Warn("Change feed: ignoring malformed payload on %s", n.Channel)
			continue
		}
		if event.Table != table {
			continue
		}
		sub.deliver(event)
	}
}

func parseNotification(payload string) (entity.ChangeEvent, bool) {
	var event entity.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return entity.ChangeEvent{}, false
	}
	switch event.Type {
	case entity.ChangeInsert, entity.ChangeUpdate, entity.ChangeDelete:
	default:
		return entity.ChangeEvent{}, false
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	return event, true
}

type postgresSubscription struct {
	events chan entity.ChangeEvent
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *postgresSubscription) Events() <-chan entity.ChangeEvent {
	return s.events
}

func (s *postgresSubscription) deliver(event entity.ChangeEvent) {
	select {
	case s.events <- event:
	default:
		logger.Warn("Change feed: dropping %s event for slow subscriber", event.Type)
	}
}

func (s *postgresSubscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}
