package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"frodi/internal/logger"
	"frodi/internal/models"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("chat session not found")

// ChatSession is one assistant conversation and its local transcript.
type ChatSession struct {
	ID         string        `json:"id"`
	ThreadID   string        `json:"thread_id"`
	Transcript []models.Turn `json:"transcript"`
	CreatedAt  time.Time     `json:"created_at"`
	LastSeen   time.Time     `json:"last_seen"`
}

func (s *ChatSession) clone() *ChatSession {
	cp := *s
	cp.Transcript = append([]models.Turn(nil), s.Transcript...)
	return &cp
}

// ThreadCreator opens remote assistant threads for new sessions.
type ThreadCreator interface {
	CreateThread(ctx context.Context) (Thread, error)
}

// SessionStore keeps chat sessions between requests. Callers hold Lock for
// the whole exchange so turns on one session never interleave.
type SessionStore interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
	GetOrCreate(ctx context.Context, sessionID, threadHint string) (*ChatSession, error)
	Append(ctx context.Context, sessionID string, turns ...models.Turn) error
}

// MemorySessionStore keeps sessions in process. Entries expire after ttl of
// inactivity, and once maxSessions is reached the least recently seen session
// that nobody holds locked is evicted to make room.
type MemorySessionStore struct {
	threads     ThreadCreator
	cache       *cache.Cache
	maxSessions int
	mu          sync.Mutex
	locks       *keyedLocks
	now         func() time.Time
}

func NewMemorySessionStore(threads ThreadCreator, ttl time.Duration, maxSessions int) *MemorySessionStore {
	cleanup := 10 * time.Minute
	if ttl < cleanup {
		cleanup = ttl
	}
	return &MemorySessionStore{
		threads:     threads,
		cache:       cache.New(ttl, cleanup),
		maxSessions: maxSessions,
		locks:       newKeyedLocks(),
		now:         time.Now,
	}
}

func (s *MemorySessionStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	return s.locks.lock(ctx, sessionID)
}

func (s *MemorySessionStore) GetOrCreate(ctx context.Context, sessionID, threadHint string) (*ChatSession, error) {
	s.mu.Lock()
	if sess, ok := s.get(sessionID); ok {
		sess.LastSeen = s.now()
		s.cache.Set(sessionID, sess, cache.DefaultExpiration)
		s.mu.Unlock()
		return sess.clone(), nil
	}
	s.mu.Unlock()

	threadID := threadHint
	if threadID == "" {
		thread, err := s.threads.CreateThread(ctx)
		if err != nil {
			return nil, err
		}
		threadID = thread.ID
	}

	now := s.now()
	sess := &ChatSession{ID: sessionID, ThreadID: threadID, CreatedAt: now, LastSeen: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxSessions > 0 && s.cache.ItemCount() >= s.maxSessions {
		s.evictOldest()
	}
	s.cache.Set(sessionID, sess, cache.DefaultExpiration)

	logger.WithFields(logrus.Fields{
		"sessionId": sessionID,
		"threadId":  threadID,
	}).Info("Chat session created")

	return sess.clone(), nil
}

func (s *MemorySessionStore) Append(ctx context.Context, sessionID string, turns ...models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	sess.Transcript = append(sess.Transcript, turns...)
	sess.LastSeen = s.now()
	s.cache.Set(sessionID, sess, cache.DefaultExpiration)
	return nil
}

// Len reports the number of live sessions.
func (s *MemorySessionStore) Len() int {
	return s.cache.ItemCount()
}

func (s *MemorySessionStore) get(sessionID string) (*ChatSession, bool) {
	if sessionID == "" {
		return nil, false
	}
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	return x.(*ChatSession), true
}

func (s *MemorySessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, item := range s.cache.Items() {
		if s.locks.held(id) {
			continue
		}
		sess := item.Object.(*ChatSession)
		if oldestID == "" || sess.LastSeen.Before(oldest) {
			oldestID, oldest = id, sess.LastSeen
		}
	}
	if oldestID == "" {
		return
	}
	s.cache.Delete(oldestID)
	logger.WithFields(logrus.Fields{
		"sessionId": oldestID,
	}).Info("Chat session evicted")
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// keyedLocks hands out one exclusive lock per key and forgets keys nobody holds.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*keyedLock)}
}

func (k *keyedLocks) lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			k.release(key, l)
		})
	}, nil
}

// held reports whether key is locked or waited on.
func (k *keyedLocks) held(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.locks[key]
	return ok
}

func (k *keyedLocks) release(key string, l *keyedLock) {
	k.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
