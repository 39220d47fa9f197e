package conversation

import (
	"context"
	"encoding/json"
	"time"

	"movebot/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "chat:sess:"

// sessionBlob is the JSON document stored per session key.
type sessionBlob struct {
	Messages []models.Message   `json:"messages"`
	Meta     models.SessionMeta `json:"meta"`
}

// RedisStore keeps session state in Redis with a TTL, so idle
// conversations expire instead of accumulating. Turn serialization is
// still in-process via the lock table; the service runs single-process.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *lockTable
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, locks: newLockTable()}
}

func (s *RedisStore) Lock(sessionID string) func() {
	return s.locks.Lock(sessionID)
}

func (s *RedisStore) load(ctx context.Context, sessionID string) (sessionBlob, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return sessionBlob{}, nil
	}
	if err != nil {
		return sessionBlob{}, err
	}
	var blob sessionBlob
	if err := json.Unmarshal([]byte(data), &blob); err != nil {
		return sessionBlob{}, err
	}
	return blob, nil
}

func (s *RedisStore) save(ctx context.Context, sessionID string, blob sessionBlob) error {
	b, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sessionID, b, s.ttl).Err()
}

func (s *RedisStore) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return blob.Messages, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, msgs ...models.Message) error {
	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	blob.Messages = trim(append(blob.Messages, msgs...))
	return s.save(ctx, sessionID, blob)
}

func (s *RedisStore) Meta(ctx context.Context, sessionID string) (models.SessionMeta, error) {
	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return models.SessionMeta{}, err
	}
	return blob.Meta, nil
}

func (s *RedisStore) SetMeta(ctx context.Context, sessionID string, meta models.SessionMeta) error {
	blob, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	blob.Meta = meta
	return s.save(ctx, sessionID, blob)
}

func (s *RedisStore) Reset(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
