package server

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend-tripline/internal/config"
	"backend-tripline/internal/legstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testConfig() config.Config {
	return config.Config{ServerPort: ":0", LegStore: config.LegStoreMemory, CORSOrigins: "*"}
}

func TestHealthRoute(t *testing.T) {
	s, err := NewServer(testConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["leg_store"] != config.LegStoreMemory {
		t.Fatalf("unexpected leg store %q", body["leg_store"])
	}
}

func TestNewServerWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s, err := NewServer(testConfig(), nil, client, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer s.Stream.Close()

	resp, err := s.App.Test(httptest.NewRequest("GET", "/stream/ws/it-1", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 426 {
		t.Fatalf("expected 426 for plain GET on websocket route, got %d", resp.StatusCode)
	}
}

func TestLegStoreSelection(t *testing.T) {
	cfg := testConfig()

	cfg.LegStore = ""
	store, err := newLegStore(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("default store: %v", err)
	}
	if _, ok := store.(*legstore.Postgres); !ok {
		t.Fatalf("expected postgres store by default, got %T", store)
	}

	cfg.LegStore = config.LegStoreMemory
	store, err = newLegStore(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, ok := store.(*legstore.Memory); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg.LegStore = config.LegStoreMongo
	if _, err := newLegStore(cfg, nil, nil, nil); err != errMongoStoreWithoutClient {
		t.Fatalf("expected missing mongo client error, got %v", err)
	}

	cfg.LegStore = "cassandra"
	if _, err := newLegStore(cfg, nil, nil, nil); err == nil {
		t.Fatalf("expected error for unknown store")
	}
	if _, err := NewServer(cfg, nil, nil, nil); err == nil {
		t.Fatalf("expected NewServer to reject unknown store")
	}
}

func TestWriteRoutesAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.WriteRateLimit = 0.001
	cfg.WriteRateBurst = 1
	s, err := NewServer(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	post := func() int {
		req := httptest.NewRequest("POST", "/waypoints", strings.NewReader(`{"name":""}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("test request: %v", err)
		}
		return resp.StatusCode
	}

	if got := post(); got != 400 {
		t.Fatalf("expected first write to reach validation, got %d", got)
	}
	if got := post(); got != 429 {
		t.Fatalf("expected second write to be limited, got %d", got)
	}
}

func TestWriteLimiter(t *testing.T) {
	off := newWriteLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !off.allow("1.2.3.4") {
			t.Fatalf("disabled limiter must always allow")
		}
	}

	lim := newWriteLimiter(0.001, 2)
	if !lim.allow("a") || !lim.allow("a") {
		t.Fatalf("burst should be allowed")
	}
	if lim.allow("a") {
		t.Fatalf("third request should be limited")
	}
	if !lim.allow("b") {
		t.Fatalf("other clients have their own bucket")
	}
}

func TestWriteLimiterEvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 9, 2, 6, 0, 0, 0, time.UTC)
	lim := newWriteLimiter(20, 40)
	lim.now = func() time.Time { return clock }
	lim.lastSweep = clock

	for i := 0; i < 1000; i++ {
		lim.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if got := lim.size(); got != 1000 {
		t.Fatalf("expected 1000 buckets, got %d", got)
	}

	clock = clock.Add(limiterIdleTTL / 2)
	lim.allow("10.0.0.1")

	clock = clock.Add(limiterIdleTTL/2 + time.Second)
	lim.allow("192.168.1.1")
	if got := lim.size(); got != 2 {
		t.Fatalf("expected only recently seen clients to remain, got %d", got)
	}

	clock = clock.Add(limiterIdleTTL)
	lim.allow("192.168.1.2")
	if got := lim.size(); got != 1 {
		t.Fatalf("expected idle clients swept, got %d", got)
	}
}

func TestWriteLimiterKeepsStateWithinIdleWindow(t *testing.T) {
	clock := time.Date(2024, 9, 2, 6, 0, 0, 0, time.UTC)
	lim := newWriteLimiter(0.001, 1)
	lim.now = func() time.Time { return clock }
	lim.lastSweep = clock

	if !lim.allow("a") {
		t.Fatalf("first write should pass")
	}
	clock = clock.Add(limiterIdleTTL - time.Second)
	if lim.allow("a") {
		t.Fatalf("bucket should still be drained inside the idle window")
	}
}
