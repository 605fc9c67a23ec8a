/*
store.go - Persistence contract for the ledger

PURPOSE:
  Defines the boundary between the ledger and its durable medium. The
  ledger only ever writes whole collections; adapters do no validation.

KEYS:
  Four logical keys, shared with the browser front end's storage layout:
    KeyProducts, KeySales, KeyStaff, KeyPIN

OVERWRITE, NOT APPEND:
  Save replaces the value under a key. SaveBatch replaces several keys
  at once and must be all-or-nothing.

IMPLEMENTATIONS:
  - store/memory: map-backed, for tests and ephemeral sessions
  - store/sqlite: single key/value table

SEE ALSO:
  - codec.go: what the values look like
*/
package ledger

import "context"

const (
	KeyProducts = "salesManager_products"
	KeySales    = "salesManager_sales"
	KeyStaff    = "salesManager_salesManagers"
	KeyPIN      = "salesManager_pin"
)

// Entry is a single key/value pair written by SaveBatch.
type Entry struct {
	Key   string
	Value []byte
}

// KV is a durable key-value store.
type KV interface {
	// Load returns the value under key. ok is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Save overwrites the value under key.
	Save(ctx context.Context, key string, value []byte) error

	// SaveBatch overwrites several keys atomically.
	// Either all entries are written or none are.
	SaveBatch(ctx context.Context, entries []Entry) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}
