package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	goRelay "github.com/MrEthical07/goRelay"
	"github.com/MrEthical07/goRelay/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		backend     = flag.String("store", "redis", "session backend: memory, redis or sqlite")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase")
		recordSize  = flag.Int("record-bytes", 2048, "approximate size of each stored session record")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 || *recordSize <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency, ops, and record-bytes must be > 0")
		os.Exit(2)
	}

	store, cleanup, err := openStore(*backend, *redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	engine, err := goRelay.New().WithStore(store).WithLatencyHistograms(true).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	records := make([]goRelay.SessionRecord, 64)
	for i := range records {
		records[i] = buildRecord(i, *recordSize)
	}

	ctx := context.Background()
	storeStats := runPhase(ctx, *ops, *concurrency, func(r *rand.Rand) error {
		return handle(ctx, engine, goRelay.Message{Type: goRelay.TypeStoreSession, Session: records[r.Intn(len(records))]})
	})
	getStats := runPhase(ctx, *ops, *concurrency, func(*rand.Rand) error {
		return handle(ctx, engine, goRelay.Message{Type: goRelay.TypeGetSession})
	})
	mixedStats := runPhase(ctx, *ops, *concurrency, func(r *rand.Rand) error {
		msg := goRelay.Message{Type: goRelay.TypeGetSession}
		switch n := r.Intn(10); {
		case n == 0:
			msg = goRelay.Message{Type: goRelay.TypeLogout}
		case n < 3:
			msg = goRelay.Message{Type: goRelay.TypeStoreSession, Session: records[r.Intn(len(records))]}
		}
		return handle(ctx, engine, msg)
	})

	fmt.Println("---- results ----")
	printStats("store", storeStats)
	printStats("get", getStats)
	printStats("mixed", mixedStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("storage failures=%d\n", snap.Counters[goRelay.MetricStorageFailure])
}

func handle(ctx context.Context, engine *goRelay.Engine, msg goRelay.Message) error {
	resp, err := engine.Handle(ctx, msg)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", msg.Type, resp.Error)
	}
	return nil
}

func openStore(backend, addr string) (session.Store, func(), error) {
	switch strings.ToLower(backend) {
	case "memory":
		fmt.Println("using in-memory store")
		return session.NewMemoryStore(), func() {}, nil

	case "sqlite":
		dir, err := os.MkdirTemp("", "gorelay-loadtest")
		if err != nil {
			return nil, nil, err
		}
		path := filepath.Join(dir, "relay.db")
		store, err := session.OpenSQLite(path)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		fmt.Printf("using sqlite at %s\n", path)
		return store, func() {
			_ = store.Close()
			_ = os.RemoveAll(dir)
		}, nil

	case "redis":
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
			fmt.Printf("using miniredis at %s\n", mr.Addr())
			return session.NewRedisStore(client, "lt"), func() {
				_ = client.Close()
				mr.Close()
			}, nil
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return session.NewRedisStore(client, "lt"), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", backend)
}

func runPhase(ctx context.Context, ops, concurrency int, op func(*rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops || ctx.Err() != nil {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// buildRecord returns a session-shaped JSON object padded to roughly size bytes.
func buildRecord(i, size int) goRelay.SessionRecord {
	head := fmt.Sprintf(`{"access_token":"at-%d","refresh_token":"rt-%d","expires_at":%d,"user":{"id":"u%d"},"pad":"`,
		i, i, time.Now().Add(time.Hour).Unix(), i)
	pad := size - len(head) - 2
	if pad < 0 {
		pad = 0
	}
	return goRelay.SessionRecord(head + strings.Repeat("x", pad) + `"}`)
}
