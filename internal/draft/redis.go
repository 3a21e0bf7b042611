package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

// maxMergeAttempts bounds optimistic-lock retries when another writer
// touches the draft key between read and write.
const maxMergeAttempts = 10

// RedisStore keeps the draft as JSON under a single redis key.
type RedisStore struct {
	client *backend.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the expiration of the draft key.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithKey sets the redis key holding the draft.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		s.key = key
	}
}

// NewRedisStore connects to the redis server at address.
func NewRedisStore(address string, db int, opts ...RedisOption) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr: address,
		DB:   db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient creates a RedisStore from an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		key:    "chaosflow:draft",
		ttl:    0, // No expiration by default
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current draft, or the zero draft if the key is absent.
func (s *RedisStore) Get(ctx context.Context) (WorkflowDraft, error) {
	d, err := decodeDraft(s.client.Get(ctx, s.key))
	if err != nil {
		return WorkflowDraft{}, &cferrors.DraftError{Op: "get", Err: err}
	}
	return d, nil
}

// Merge applies p inside a WATCH transaction so concurrent writers never
// drop each other's fields.
func (s *RedisStore) Merge(ctx context.Context, p Patch) (WorkflowDraft, error) {
	if p.IsEmpty() {
		return s.Get(ctx)
	}

	var merged WorkflowDraft

	txf := func(tx *backend.Tx) error {
		cur, err := decodeDraft(tx.Get(ctx, s.key))
		if err != nil {
			return err
		}
		next := Apply(cur, p)
		next.UpdatedAt = s.now().UTC()

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, s.key, data, s.ttl)
			return nil
		})
		if err == nil {
			merged = next
		}
		return err
	}

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, backend.TxFailedErr) {
			continue
		}
		return WorkflowDraft{}, &cferrors.DraftError{Op: "merge", Err: err}
	}
	return WorkflowDraft{}, &cferrors.DraftError{Op: "merge", Err: fmt.Errorf("gave up after %d conflicting writes", maxMergeAttempts)}
}

// Reset deletes the draft key.
func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return &cferrors.DraftError{Op: "reset", Err: err}
	}
	return nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeDraft(cmd *backend.StringCmd) (WorkflowDraft, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, backend.Nil) {
		return WorkflowDraft{}, nil
	}
	if err != nil {
		return WorkflowDraft{}, fmt.Errorf("%w: %v", cferrors.ErrNetwork, err)
	}
	var d WorkflowDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return WorkflowDraft{}, fmt.Errorf("%w: failed to unmarshal draft: %v", cferrors.ErrInvalid, err)
	}
	return d, nil
}
