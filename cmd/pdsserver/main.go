// Command pdsserver is a small demo façade over package draft: an HTTP +
// WebSocket server exposing Wrap/Produce/Extract for a handful of named,
// in-memory collections, broadcasting a diff summary to connected
// viewers after every produce call and periodically snapshotting
// published collections to Redis.
//
// This binary is explicitly outside the core engine's scope; it exists
// to pin the external contract the core exposes, the way gaissmai/bart's
// own cmd/main.go demo binary pins bart's Lite/Table API without being
// part of the library itself.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/kestrelcore/pds/draft"
)

var (
	listenAddr   = flag.String("listen", ":8080", "HTTP listen address")
	redisAddr    = flag.String("redis", "localhost:6379", "Redis address for snapshot persistence")
	snapInterval = flag.Duration("snapshot-interval", 30*time.Second, "interval between Redis snapshots")
)

// registry holds every named collection this server currently manages.
// A real host integration would back this with its own storage; here a
// process-local map is enough to demonstrate the draft/produce contract.
type registry struct {
	mu   sync.RWMutex
	vals map[string]*draft.Value
}

func newRegistry() *registry {
	return &registry{vals: map[string]*draft.Value{}}
}

func (r *registry) get(name string) (*draft.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vals[name]
	return v, ok
}

func (r *registry) set(name string, v *draft.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vals[name] = v
}

func (r *registry) snapshot() map[string]*draft.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*draft.Value, len(r.vals))
	for k, v := range r.vals {
		out[k] = v
	}
	return out
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	reg := newRegistry()
	hub := newHub()
	go hub.run()

	snap := newSnapshotter(*redisAddr, reg, *snapInterval)
	go snap.run()

	router := mux.NewRouter()
	srv := &server{reg: reg, hub: hub}
	router.HandleFunc("/collections/{name}", srv.handleWrap).Methods(http.MethodPost)
	router.HandleFunc("/collections/{name}", srv.handleExtract).Methods(http.MethodGet)
	router.HandleFunc("/collections/{name}/produce", srv.handleProduce).Methods(http.MethodPost)
	router.HandleFunc("/collections/{name}/ws", srv.handleWebsocket)

	log.Printf("pdsserver listening on %s", *listenAddr)
	if err := http.ListenAndServe(*listenAddr, router); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

type server struct {
	reg *registry
	hub *hub
}

// handleWrap creates a new empty named collection of the kind given by
// the "kind" query parameter (vec, map, set, or record).
func (s *server) handleWrap(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	switch r.URL.Query().Get("kind") {
	case "vec":
		s.reg.set(name, draft.EmptyVec())
	case "map":
		s.reg.set(name, draft.EmptyMap())
	case "set":
		s.reg.set(name, draft.EmptySet())
	case "record":
		s.reg.set(name, draft.NewRecord())
	default:
		http.Error(w, "kind must be one of vec, map, set, record", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handleExtract reports a summary of the named collection's current
// state: its kind and element count. Extracting the full value back into
// plain JSON is a host-façade concern outside this demo's scope.
func (s *server) handleExtract(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	v, ok := s.reg.get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeSummary(w, name, v)
}

// op is one step of a produce recipe submitted over HTTP.
type op struct {
	Op    string `json:"op"`
	Index *int   `json:"index,omitempty"`
	Key   any    `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`
}

// handleProduce replays a JSON-encoded list of ops against the named
// collection through a single draft.Produce call, then broadcasts a diff
// summary to every WebSocket viewer of that collection.
func (s *server) handleProduce(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	base, ok := s.reg.get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var ops []op
	if err := json.NewDecoder(r.Body).Decode(&ops); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := draft.Produce(base, func(d *draft.Draft) {
		for _, o := range ops {
			applyOp(d, o)
		}
	})

	s.reg.set(name, result)
	log.Printf("produce %s: %d op(s), len %d -> %d", name, len(ops), base.Len(), result.Len())

	s.hub.broadcast(name, result)
	writeSummary(w, name, result)
}

func applyOp(d *draft.Draft, o op) {
	switch o.Op {
	case "push":
		d.Push(o.Value)
	case "pop":
		d.Pop()
	case "set_index":
		d.Set(*o.Index, o.Value)
	case "set_key":
		d.SetKey(o.Key, o.Value)
	case "delete_key":
		d.DeleteKey(o.Key)
	case "add":
		d.Add(o.Value)
	case "remove":
		d.Remove(o.Value)
	case "set_field":
		d.SetField(o.Key.(string), o.Value)
	default:
		panic(fmt.Sprintf("pdsserver: unknown op %q", o.Op))
	}
}

func writeSummary(w http.ResponseWriter, name string, v *draft.Value) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collectionSummary{
		Name: name,
		Kind: v.Kind().String(),
		Len:  v.Len(),
	})
}

type collectionSummary struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Len  int    `json:"len"`
}
