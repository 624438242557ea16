// SPDX-License-Identifier: Apache-2.0

// Package kvstore provides the local persisted key-value store the migration
// engine and the application data layer operate on.
//
// Values are plain strings; structured entries are UTF-8 JSON text. Access is
// local and synchronous. The store is a single shared resource: the engine
// assumes exclusive access for the duration of a migration run and performs no
// key-level locking.
package kvstore

// Store is the persisted key-value store boundary.
type Store interface {
	// Get returns the value for key and whether the key exists.
	Get(key string) (string, bool, error)

	// Set writes value under key, creating or replacing it.
	Set(key string, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys enumerates every key currently present, in unspecified order.
	Keys() ([]string, error)
}
