package session

import (
	"context"
	"hash/fnv"
	"sync"
)

type record struct {
	lastIntent           *string
	lastPart             *string
	lastModel            *string
	lastSwitchRefusedFor *string
}

func (r *record) snapshot() Snapshot {
	return Snapshot{
		LastIntent:           r.lastIntent,
		LastPart:             r.lastPart,
		LastModel:            r.lastModel,
		LastSwitchRefusedFor: r.lastSwitchRefusedFor,
	}
}

func (r *record) apply(fields map[string]string) {
	for name, value := range fields {
		if _, ok := knownFields[name]; !ok {
			continue
		}
		v := value
		switch name {
		case FieldLastIntent:
			r.lastIntent = &v
		case FieldLastPart:
			r.lastPart = &v
		case FieldLastModel:
			r.lastModel = &v
		case FieldLastSwitchRefusedFor:
			r.lastSwitchRefusedFor = &v
		}
	}
}

type shard struct {
	mu       sync.Mutex
	sessions map[string]*record
}

// InMemoryStore keeps sessions in a sharded map: turns for different ids
// do not contend, turns for the same id serialize on the shard lock.
// Records live for the process lifetime; there is no eviction.
type InMemoryStore struct {
	shards []*shard
}

const defaultShardCount = 16

// NewInMemoryStore creates a store with n lock shards (n <= 0 uses the
// default).
func NewInMemoryStore(n int) *InMemoryStore {
	if n <= 0 {
		n = defaultShardCount
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{sessions: make(map[string]*record)}
	}
	return &InMemoryStore{shards: shards}
}

func (s *InMemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *InMemoryStore) Get(_ context.Context, id string) Snapshot {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.getOrCreate(id).snapshot()
}

func (s *InMemoryStore) Update(_ context.Context, id string, fields map[string]string) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.getOrCreate(id).apply(fields)
}

func (sh *shard) getOrCreate(id string) *record {
	r, ok := sh.sessions[id]
	if !ok {
		r = &record{}
		sh.sessions[id] = r
	}
	return r
}
