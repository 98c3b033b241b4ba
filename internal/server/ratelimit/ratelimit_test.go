package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l := NewLimiter(cfg, WithClock(clock.Now))
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLimiter_AllowAndRefill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: 10 * time.Second})

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("1.2.3.4", "/resumes/abc", "GET")
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if info.Limit != 10 || info.Remaining != 9-i {
			t.Errorf("request %d: limit=%d remaining=%d", i+1, info.Limit, info.Remaining)
		}
	}

	allowed, info := l.Allow("1.2.3.4", "/resumes/abc", "GET")
	if allowed {
		t.Fatal("11th request should be denied")
	}
	if info.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %v, want 1s", info.RetryAfter)
	}
	if want := clock.Now().Add(10 * time.Second); !info.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", info.ResetTime, want)
	}

	// One token per second.
	clock.Advance(1500 * time.Millisecond)
	if allowed, _ := l.Allow("1.2.3.4", "/resumes/abc", "GET"); !allowed {
		t.Error("request should be allowed after refill")
	}
	if allowed, _ := l.Allow("1.2.3.4", "/resumes/abc", "GET"); allowed {
		t.Error("only one token should have refilled")
	}

	// Refill never exceeds capacity.
	clock.Advance(time.Hour)
	_, info = l.Allow("1.2.3.4", "/resumes/abc", "GET")
	if info.Remaining != 9 {
		t.Errorf("Remaining after long idle = %d, want 9", info.Remaining)
	}
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	if allowed, _ := l.Allow("a", "/resumes", "GET"); !allowed {
		t.Fatal("first request from a should pass")
	}
	if allowed, _ := l.Allow("a", "/resumes", "GET"); allowed {
		t.Error("second request from a should be limited")
	}
	if allowed, _ := l.Allow("b", "/resumes", "GET"); !allowed {
		t.Error("b has its own bucket")
	}
	if allowed, _ := l.Allow("a", "/resumes", "DELETE"); !allowed {
		t.Error("method is part of the bucket key")
	}
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	for i := 0; i < 5; i++ {
		if allowed, _ := l.Allow("10.0.0.1", "/resumes", "GET"); !allowed {
			t.Fatal("whitelisted client is never limited")
		}
	}
	if allowed, _ := l.Allow("10.0.0.2", "/health", "GET"); allowed {
		t.Error("blacklisted client is always denied")
	}

	off, _ := newTestLimiter(t, &Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	for i := 0; i < 5; i++ {
		if allowed, _ := off.Allow("x", "/resumes", "GET"); !allowed {
			t.Fatal("disabled limiter allows everything")
		}
	}
	if off.Len() != 0 {
		t.Error("disabled limiter keeps no buckets")
	}
}

func TestLimiter_ExportSharesOneBucketAcrossResumes(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("c", fmt.Sprintf("/resumes/r%d/export.pdf", i), "GET")
		if !allowed {
			t.Fatalf("export %d should be within the burst", i+1)
		}
		if info.Limit != 30 {
			t.Errorf("limit = %d, want 30", info.Limit)
		}
	}
	if allowed, _ := l.Allow("c", "/resumes/other/export.pdf", "GET"); allowed {
		t.Error("burst of 3 is shared by every resume id")
	}
	if allowed, _ := l.Allow("c", "/resumes/r0/print.pdf", "GET"); !allowed {
		t.Error("print has its own allowance")
	}
	if allowed, _ := l.Allow("c", "/health", "GET"); !allowed {
		t.Error("health is unlimited")
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: 24 * time.Hour, IdleTTL: 10 * time.Minute})

	l.Allow("old", "/resumes", "GET")
	clock.Advance(9 * time.Minute)
	l.Allow("recent", "/resumes", "GET")
	clock.Advance(2 * time.Minute)

	l.Sweep()
	if l.Len() != 1 {
		t.Fatalf("Len = %d, want 1", l.Len())
	}
	if _, info := l.Allow("recent", "/resumes", "GET"); info.Remaining != 8 {
		t.Errorf("surviving bucket kept its state, remaining = %d", info.Remaining)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("same", "/resumes", "GET"); ok {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed = %d, want exactly 50", allowed)
	}
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()
	if allowed, info := l.Allow("x", "/resumes", "GET"); !allowed || info.Limit != 1000 {
		t.Errorf("nil config uses defaults: allowed=%v limit=%d", allowed, info.Limit)
	}
	l.Stop()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "bogus")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")

	cfg := LoadConfig()
	if !cfg.Enabled || cfg.DefaultLimit != 50 || cfg.DefaultWindow != time.Minute || cfg.IdleTTL != time.Hour {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Whitelist) != 2 || !cfg.Whitelist["10.0.0.2"] {
		t.Errorf("whitelist = %v", cfg.Whitelist)
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if LoadConfig().Enabled {
		t.Error("RATE_LIMIT_ENABLED=false disables limiting")
	}
}
