package main

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kestrelcore/pds/draft"
)

// snapshotter periodically persists a summary of every published (i.e.
// non-draft, finalized) collection in reg to Redis, keyed by collection
// name. This is a demo convenience for restarting pdsserver without
// losing track of what existed, not a durability guarantee for the
// engine itself — the core module has no storage layer of its own.
type snapshotter struct {
	rdb      *redis.Client
	reg      *registry
	interval time.Duration
}

func newSnapshotter(addr string, reg *registry, interval time.Duration) *snapshotter {
	return &snapshotter{
		rdb:      redis.NewClient(&redis.Options{Addr: addr}),
		reg:      reg,
		interval: interval,
	}
}

func (s *snapshotter) run() {
	ctx := context.Background()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for range ticker.C {
		s.snapshotOnce(ctx)
	}
}

func (s *snapshotter) snapshotOnce(ctx context.Context) {
	vals := s.reg.snapshot()
	if len(vals) == 0 {
		return
	}

	pipe := s.rdb.Pipeline()
	for name, v := range vals {
		if !draft.IsManaged(v) {
			continue // only persist values finalized by Produce or a constructor
		}
		body, err := json.Marshal(collectionSummary{Name: name, Kind: v.Kind().String(), Len: v.Len()})
		if err != nil {
			log.Printf("[snapshot] marshal %s: %v", name, err)
			continue
		}
		pipe.Set(ctx, snapshotKey(name), body, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[snapshot] redis exec: %v", err)
		return
	}
	log.Printf("[snapshot] persisted %d collection(s)", len(vals))
}

func snapshotKey(name string) string {
	return "pds:snapshot:" + name
}
