package utils

import (
	"context"
	"sync"
	"time"
)

// AttemptLimiter throttles download-code guessing per client IP and artifact
// identifier. Failed attempts count against an hourly budget; exhausting the
// budget puts the pair behind a temporary ban. Redis backs the counters when
// configured so the budget holds across instances; otherwise an in-process
// map serves single-node deployments. Redis errors fail open.
type AttemptLimiter struct {
	maxPerHour int
	ban        time.Duration
	now        func() time.Time

	mu     sync.Mutex
	counts map[string]*attemptWindow
	bans   map[string]time.Time
}

type attemptWindow struct {
	count int
	reset time.Time
}

// NewAttemptLimiter builds a limiter with defaults applied.
func NewAttemptLimiter(maxPerHour, banMinutes int) *AttemptLimiter {
	if maxPerHour <= 0 {
		maxPerHour = 10
	}
	if banMinutes <= 0 {
		banMinutes = 15
	}
	return &AttemptLimiter{
		maxPerHour: maxPerHour,
		ban:        time.Duration(banMinutes) * time.Minute,
		now:        time.Now,
		counts:     map[string]*attemptWindow{},
		bans:       map[string]time.Time{},
	}
}

func codeFailKey(kind, ip, identifier string) string {
	return "codefail:" + kind + ":" + ip + ":" + identifier
}

// Blocked reports whether the pair is currently banned.
func (l *AttemptLimiter) Blocked(ip, identifier string) bool {
	if cli := GetRedis(); cli != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if exists, err := cli.Exists(ctx, codeFailKey("ban", ip, identifier)).Result(); err == nil {
			return exists > 0
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	key := ip + ":" + identifier
	until, ok := l.bans[key]
	if !ok {
		return false
	}
	if l.now().After(until) {
		delete(l.bans, key)
		return false
	}
	return true
}

// RecordFailure counts one failed code attempt and starts the ban once the
// hourly budget is used up.
func (l *AttemptLimiter) RecordFailure(ip, identifier string) {
	if cli := GetRedis(); cli != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		key := codeFailKey("cnt", ip, identifier) + ":" + l.now().Format("2006010215")
		if n, err := cli.Incr(ctx, key).Result(); err == nil {
			_ = cli.Expire(ctx, key, time.Hour).Err()
			if int(n) >= l.maxPerHour {
				_ = cli.Set(ctx, codeFailKey("ban", ip, identifier), "1", l.ban).Err()
			}
			return
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.cleanupLocked()

	key := ip + ":" + identifier
	now := l.now()
	w := l.counts[key]
	if w == nil || now.After(w.reset) {
		w = &attemptWindow{reset: now.Add(time.Hour)}
		l.counts[key] = w
	}
	w.count++
	if w.count >= l.maxPerHour {
		l.bans[key] = now.Add(l.ban)
		delete(l.counts, key)
	}
}

// Reset clears the pair's budget after a successful download.
func (l *AttemptLimiter) Reset(ip, identifier string) {
	if cli := GetRedis(); cli != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		_ = cli.Del(ctx,
			codeFailKey("ban", ip, identifier),
			codeFailKey("cnt", ip, identifier)+":"+l.now().Format("2006010215"),
		).Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	key := ip + ":" + identifier
	delete(l.counts, key)
	delete(l.bans, key)
}

func (l *AttemptLimiter) cleanupLocked() {
	now := l.now()
	for key, w := range l.counts {
		if now.After(w.reset) {
			delete(l.counts, key)
		}
	}
	for key, until := range l.bans {
		if now.After(until) {
			delete(l.bans, key)
		}
	}
}
