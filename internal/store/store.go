package store

import (
	"context"
	"encoding/json"
)

// Collections used by taskdeck
const (
	CollectionUsers       = "users"
	CollectionProjects    = "projects"
	CollectionTasks       = "tasks"
	CollectionCredentials = "credentials"
)

// ChunkLimit is the maximum number of ids a single QueryIn call may carry.
// Callers batching larger id sets must split them into chunks of this size.
const ChunkLimit = 10

// Doc is one stored document: an id plus its raw JSON body.
type Doc struct {
	ID   string
	Data []byte
}

// Decode unmarshals the document body into v.
func (d Doc) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// Op is a query operator
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

// Filter selects documents within a collection. When DocID is set the filter
// matches exactly that document and Field/Op/Value are ignored.
type Filter struct {
	DocID string
	Field string
	Op    Op
	Value string
}

// Snapshot is the full result set of a listened query at some point in time.
type Snapshot struct {
	Docs []Doc
}

// WriteKind discriminates batch write operations
type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteDelete
)

// Write is one operation inside a batch write. Value is marshalled to JSON
// for WriteSet and ignored for WriteDelete.
type Write struct {
	Kind       WriteKind
	Collection string
	ID         string
	Value      any
}

// Tx is the handle passed to a transaction callback. All reads and writes
// made through it commit atomically or not at all.
type Tx interface {
	Get(collection, id string) (Doc, error)
	Set(collection, id string, v any) error
	Delete(collection, id string) error
}

// Subscription detaches a listener when closed. Close is idempotent.
type Subscription interface {
	Close()
}

// Store is the document database contract. Implementations must deliver a
// listener's current result set on subscribe and a fresh one after every
// commit that touches the listened collection.
type Store interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	Query(ctx context.Context, collection string, f Filter) ([]Doc, error)
	QueryIn(ctx context.Context, collection string, ids []string) ([]Doc, error)
	Set(ctx context.Context, collection, id string, v any) error
	Delete(ctx context.Context, collection, id string) error
	Listen(collection string, f Filter, onChange func(Snapshot), onError func(error)) (Subscription, error)
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	BatchWrite(ctx context.Context, writes []Write) error
	Close() error
}
