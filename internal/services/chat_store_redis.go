package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"frodi/internal/config"
	"frodi/internal/logger"
	"frodi/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	redisSessionPrefix = "frodi:chat:session:"
	redisLockPrefix    = "frodi:chat:lock:"
	redisLockTTL       = 5 * time.Minute
	redisLockRetry     = 50 * time.Millisecond
)

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisClient connects and pings the configured redis server.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisSessionStore shares sessions between service instances. Every write
// refreshes the key's ttl; the size bound is left to the server's maxmemory policy.
type RedisSessionStore struct {
	client  *redis.Client
	threads ThreadCreator
	ttl     time.Duration
}

func NewRedisSessionStore(client *redis.Client, threads ThreadCreator, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, threads: threads, ttl: ttl}
}

func (s *RedisSessionStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	key := redisLockPrefix + sessionID
	token := uuid.NewString()

	for {
		ok, err := s.client.SetNX(ctx, key, token, redisLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockRetry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, s.client, []string{key}, token).Err(); err != nil {
			logger.WithFields(logrus.Fields{
				"sessionId": sessionID,
				"error":     err.Error(),
			}).Warn("Failed to release session lock")
		}
	}, nil
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, sessionID, threadHint string) (*ChatSession, error) {
	sess, err := s.load(ctx, sessionID)
	if err == nil {
		sess.LastSeen = time.Now()
		return sess, s.save(ctx, sess)
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	threadID := threadHint
	if threadID == "" {
		thread, err := s.threads.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		threadID = thread.ID
	}

	now := time.Now()
	sess = &ChatSession{ID: sessionID, ThreadID: threadID, CreatedAt: now, LastSeen: now}
	return sess, s.save(ctx, sess)
}

func (s *RedisSessionStore) Append(ctx context.Context, sessionID string, turns ...models.Turn) error {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.Transcript = append(sess.Transcript, turns...)
	sess.LastSeen = time.Now()
	return s.save(ctx, sess)
}

func (s *RedisSessionStore) load(ctx context.Context, sessionID string) (*ChatSession, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	data, err := s.client.Get(ctx, redisSessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}

	var sess ChatSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode chat session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) save(ctx context.Context, sess *ChatSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode chat session: %w", err)
	}
	if err := s.client.Set(ctx, redisSessionPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save chat session: %w", err)
	}
	return nil
}
