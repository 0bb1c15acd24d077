// Package testutil provides deterministic test doubles: an in-memory
// schema catalog that counts backend calls, and id generators for
// reproducible query logs.
package testutil
