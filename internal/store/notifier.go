package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-builder/internal/logging"
)

// Notifier fans change notifications out to every process serving the store.
type Notifier interface {
	Publish(ctx context.Context, paths []string) error
	Start(ctx context.Context, onChange func(paths []string)) error
	Close() error
}

// LocalNotifier delivers changes within the current process only.
type LocalNotifier struct {
	mu       sync.RWMutex
	onChange func(paths []string)
}

func NewLocalNotifier() *LocalNotifier { return &LocalNotifier{} }

func (n *LocalNotifier) Publish(_ context.Context, paths []string) error {
	n.mu.RLock()
	fn := n.onChange
	n.mu.RUnlock()
	if fn != nil {
		fn(paths)
	}
	return nil
}

func (n *LocalNotifier) Start(_ context.Context, onChange func(paths []string)) error {
	if onChange == nil {
		return fmt.Errorf("onChange callback required")
	}
	n.mu.Lock()
	n.onChange = onChange
	n.mu.Unlock()
	return nil
}

func (n *LocalNotifier) Close() error { return nil }

type changeMessage struct {
	Paths []string `json:"paths"`
}

// RedisNotifier publishes changes on a Redis pub/sub channel so several API
// instances sharing one database see each other's writes.
type RedisNotifier struct {
	log     *logging.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisNotifier connects to addr and verifies the connection with a ping.
func NewRedisNotifier(log *logging.Logger, addr, channel string) (*RedisNotifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = "store:changes"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisNotifier{
		log:     log.With("service", "RedisStoreNotifier"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (n *RedisNotifier) Publish(ctx context.Context, paths []string) error {
	if n == nil || n.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	raw, err := json.Marshal(changeMessage{Paths: paths})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, raw).Err()
}

func (n *RedisNotifier) Start(ctx context.Context, onChange func(paths []string)) error {
	if n == nil || n.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	if onChange == nil {
		return fmt.Errorf("onChange callback required")
	}

	sub := n.rdb.Subscribe(ctx, n.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg changeMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					n.log.Warn("bad store change payload", "error", err)
					continue
				}
				onChange(msg.Paths)
			}
		}
	}()

	return nil
}

func (n *RedisNotifier) Close() error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Close()
}
