package session

import "context"

// Snapshot is the structured per-session state. Nil fields marshal to JSON
// null and mean "never set".
type Snapshot struct {
	LastIntent           *string `json:"last_intent"`
	LastPart             *string `json:"last_part"`
	LastModel            *string `json:"last_model"`
	LastSwitchRefusedFor *string `json:"last_switch_refused_for"`
}

// Field names accepted by Store.Update. Unknown names are ignored silently.
const (
	FieldLastIntent           = "last_intent"
	FieldLastPart             = "last_part"
	FieldLastModel            = "last_model"
	FieldLastSwitchRefusedFor = "last_switch_refused_for"
)

var knownFields = map[string]struct{}{
	FieldLastIntent:           {},
	FieldLastPart:             {},
	FieldLastModel:            {},
	FieldLastSwitchRefusedFor: {},
}

// Store is the per-session key/value state. Get never fails: unseen ids
// yield an all-nil snapshot and lazily create the backing record. Update
// overwrites only the named fields and is idempotent under repetition.
type Store interface {
	Get(ctx context.Context, id string) Snapshot
	Update(ctx context.Context, id string, fields map[string]string)
}

// StoreType selects a session store backend.
type StoreType string

const (
	InMemoryStoreType StoreType = "inmemory"
	RedisStoreType    StoreType = "redis"
)
