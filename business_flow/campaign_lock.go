package businessflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CampaignLocker serializes mutations of one campaign's progress
type CampaignLocker interface {
	Lock(ctx context.Context, campaignID uint) (unlock func(), err error)
}

const campaignLockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCampaignLocker is a SETNX lock shared by every API instance
type RedisCampaignLocker struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
}

// NewRedisCampaignLocker creates a distributed campaign lock.
// ttl bounds how long a crashed holder blocks others; wait bounds how long Lock retries.
func NewRedisCampaignLocker(rc *redis.Client, prefix string, ttl, wait time.Duration) *RedisCampaignLocker {
	return &RedisCampaignLocker{rc: rc, prefix: prefix, ttl: ttl, wait: wait}
}

func (l *RedisCampaignLocker) key(campaignID uint) string {
	return fmt.Sprintf("%scampaign-lock:%d", l.prefix, campaignID)
}

// Lock acquires the campaign lock, retrying until wait elapses or ctx ends
func (l *RedisCampaignLocker) Lock(ctx context.Context, campaignID uint) (func(), error) {
	key := l.key(campaignID)
	token, err := newLockToken()
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rc.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire campaign lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrCampaignLocked
		}
		select {
		case <-ctx.Done():
			return nil, ErrCampaignLocked
		case <-time.After(campaignLockRetryInterval):
		}
	}

	return func() {
		if err := releaseScript.Run(context.Background(), l.rc, []string{key}, token).Err(); err != nil {
			log.Printf("campaign lock: failed to release %s: %v", key, err)
		}
	}, nil
}

func newLockToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return id.String(), nil
}

// LocalCampaignLocker serializes campaigns within one process
type LocalCampaignLocker struct {
	mu    sync.Mutex
	locks map[uint]*localLock
	wait  time.Duration
}

type localLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalCampaignLocker creates an in-process campaign lock. A zero wait
// blocks until ctx ends.
func NewLocalCampaignLocker(wait time.Duration) *LocalCampaignLocker {
	return &LocalCampaignLocker{locks: make(map[uint]*localLock), wait: wait}
}

// Lock acquires the campaign lock
func (l *LocalCampaignLocker) Lock(ctx context.Context, campaignID uint) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[campaignID]
	if !ok {
		lk = &localLock{ch: make(chan struct{}, 1)}
		l.locks[campaignID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case lk.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(campaignID, lk, false)
		return nil, ErrCampaignLocked
	case <-timeout:
		l.release(campaignID, lk, false)
		return nil, ErrCampaignLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(campaignID, lk, true) })
	}, nil
}

func (l *LocalCampaignLocker) release(campaignID uint, lk *localLock, held bool) {
	if held {
		<-lk.ch
	}
	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, campaignID)
	}
	l.mu.Unlock()
}
