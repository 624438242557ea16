// SPDX-License-Identifier: Apache-2.0

package kvstore

import "sync"

// MemStore is an in-memory Store used as a test double for the migration
// engine and anywhere persistence is not wanted.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string]string)}
}

func (ms *MemStore) Get(key string) (string, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	v, ok := ms.data[key]
	return v, ok, nil
}

func (ms *MemStore) Set(key string, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.data[key] = value
	return nil
}

func (ms *MemStore) Remove(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.data, key)
	return nil
}

func (ms *MemStore) Keys() ([]string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	keys := make([]string, 0, len(ms.data))
	for k := range ms.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len reports the number of keys currently stored.
func (ms *MemStore) Len() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.data)
}
