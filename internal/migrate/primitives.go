// SPDX-License-Identifier: Apache-2.0

// primitives.go implements the reusable store mutations migration procedures
// are composed from: field add/rename on a record collection, bulk transform
// over a key namespace, selective clearing, and generic key enumeration.
//
// Every primitive is idempotent-safe: re-running it against already-migrated
// data must not corrupt it. AddField writes the default only where the field
// is absent; RenameField passes records without the old field through
// unchanged; transformers are expected to guard their own rewrites.

package migrate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"github.com/joomcode/errorx"
	"github.com/reviewdeck/reviewdeck/pkg/kvstore"
)

// FieldLastMigrated is stamped onto every entry TransformEntries rewrites.
const FieldLastMigrated = "lastMigrated"

// Transformer rewrites one element of an entry's item list. Returning an error
// marks the whole entry failed without aborting the batch.
type Transformer func(item map[string]any) (map[string]any, error)

// KeyHandler processes one matching key during ForEachMatchingKey.
type KeyHandler func(key string) error

// readCollection loads and decodes a JSON array-of-records collection.
// A missing key is reported via the bool, not an error; an unreadable or
// unparsable collection is a CollectionUnreadable failure.
func readCollection(store kvstore.Store, key string) ([]map[string]any, bool, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return nil, false, CollectionUnreadable.Wrap(err, "failed to read collection %q", key)
	}
	if !ok {
		return nil, false, nil
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, CollectionUnreadable.Wrap(err, "collection %q is not a JSON array of records", key)
	}

	return records, true, nil
}

func writeCollection(store kvstore.Store, key string, records []map[string]any) error {
	b, err := json.Marshal(records)
	if err != nil {
		return errorx.InternalError.Wrap(err, "failed to encode collection %q", key)
	}
	if err := store.Set(key, string(b)); err != nil {
		return errorx.InternalError.Wrap(err, "failed to write collection %q", key)
	}
	return nil
}

// AddField overlays field onto every record of the named collection, writing
// defaultValue only where the field is absent. A missing collection is a
// no-op, not a failure: on a fresh data set there is nothing to migrate.
func AddField(store kvstore.Store, logger *StepLogger, collectionKey, field string, defaultValue any) (OpResult, error) {
	records, ok, err := readCollection(store, collectionKey)
	if err != nil {
		return OpResult{}, err
	}
	if !ok {
		logger.Warn(fmt.Sprintf("collection %q not present, nothing to migrate", collectionKey))
		return OpResult{}, nil
	}

	res := OpResult{Processed: len(records)}
	for _, record := range records {
		if _, present := record[field]; !present {
			record[field] = defaultValue
			res.Updated++
		}
	}

	if res.Updated > 0 {
		if err := writeCollection(store, collectionKey, records); err != nil {
			return res, err
		}
	}

	logger.Info(fmt.Sprintf("added field %q to %d of %d records in %q",
		field, res.Updated, res.Processed, collectionKey))

	return res, nil
}

// RenameField copies oldName's value to newName and removes oldName on every
// record that has it. Records without oldName pass through unchanged.
func RenameField(store kvstore.Store, logger *StepLogger, collectionKey, oldName, newName string) (OpResult, error) {
	records, ok, err := readCollection(store, collectionKey)
	if err != nil {
		return OpResult{}, err
	}
	if !ok {
		logger.Warn(fmt.Sprintf("collection %q not present, nothing to migrate", collectionKey))
		return OpResult{}, nil
	}

	res := OpResult{Processed: len(records)}
	for _, record := range records {
		if value, present := record[oldName]; present {
			record[newName] = value
			delete(record, oldName)
			res.Updated++
		}
	}

	if res.Updated > 0 {
		if err := writeCollection(store, collectionKey, records); err != nil {
			return res, err
		}
	}

	logger.Info(fmt.Sprintf("renamed field %q to %q on %d of %d records in %q",
		oldName, newName, res.Updated, res.Processed, collectionKey))

	return res, nil
}

// TransformEntries applies transform to every element of the listField
// sub-collection of each entry whose key matches keyPattern, then rewrites the
// entry with a fresh lastMigrated stamp.
//
// Per-entry failures (unparsable entry, wrong-shaped list field, transformer
// error) are counted and
// skipped, never propagated: one corrupt cache entry must not block the rest
// of the namespace. Only a failure to enumerate keys at all fails the
// primitive.
func TransformEntries(store kvstore.Store, logger *StepLogger, keyPattern, listField string, transform Transformer) (OpResult, error) {
	matcher, err := glob.Compile(keyPattern)
	if err != nil {
		return OpResult{}, errorx.IllegalArgument.Wrap(err, "invalid key pattern %q", keyPattern)
	}

	keys, err := store.Keys()
	if err != nil {
		return OpResult{}, CollectionUnreadable.Wrap(err, "failed to enumerate keys for pattern %q", keyPattern)
	}

	var res OpResult
	for _, key := range keys {
		if !matcher.Match(key) {
			continue
		}
		res.Processed++

		raw, ok, err := store.Get(key)
		if err != nil || !ok {
			res.Failed++
			logger.Warn(fmt.Sprintf("skipping unreadable entry %q", key))
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			res.Failed++
			logger.Warn(fmt.Sprintf("skipping unparsable entry %q", key))
			continue
		}

		rawItems, hasItems := entry[listField]
		var items []any
		if hasItems {
			list, ok := rawItems.([]any)
			if !ok {
				res.Failed++
				logger.Warn(fmt.Sprintf("skipping entry %q: field %q is not a list", key, listField))
				continue
			}
			items = list
		}

		transformed := make([]any, 0, len(items))
		entryFailed := false
		for _, item := range items {
			record, ok := item.(map[string]any)
			if !ok {
				entryFailed = true
				break
			}
			out, err := transform(record)
			if err != nil {
				entryFailed = true
				break
			}
			transformed = append(transformed, out)
		}
		if entryFailed {
			res.Failed++
			logger.Warn(fmt.Sprintf("skipping entry %q: transform failed", key))
			continue
		}

		if hasItems {
			entry[listField] = transformed
		}
		entry[FieldLastMigrated] = time.Now().UTC().Format(time.RFC3339)

		b, err := json.Marshal(entry)
		if err != nil {
			res.Failed++
			continue
		}
		if err := store.Set(key, string(b)); err != nil {
			res.Failed++
			logger.Warn(fmt.Sprintf("failed to rewrite entry %q", key))
			continue
		}
		res.Updated++
	}

	logger.Info(fmt.Sprintf("transformed %d of %d entries matching %q (%d failed)",
		res.Updated, res.Processed, keyPattern, res.Failed))

	return res, nil
}

// ClearAll deletes the named collection outright. Used for breaking changes
// where migrating in place is not worth the complexity.
func ClearAll(store kvstore.Store, logger *StepLogger, collectionKey string) (OpResult, error) {
	_, ok, err := store.Get(collectionKey)
	if err != nil {
		return OpResult{}, CollectionUnreadable.Wrap(err, "failed to read collection %q", collectionKey)
	}
	if !ok {
		return OpResult{}, nil
	}

	if err := store.Remove(collectionKey); err != nil {
		return OpResult{}, errorx.InternalError.Wrap(err, "failed to clear collection %q", collectionKey)
	}

	logger.Info(fmt.Sprintf("cleared collection %q", collectionKey))
	return OpResult{Cleared: 1}, nil
}

// ClearMatching deletes every entry whose key matches keyPattern and returns
// the count cleared.
func ClearMatching(store kvstore.Store, logger *StepLogger, keyPattern string) (OpResult, error) {
	matcher, err := glob.Compile(keyPattern)
	if err != nil {
		return OpResult{}, errorx.IllegalArgument.Wrap(err, "invalid key pattern %q", keyPattern)
	}

	keys, err := store.Keys()
	if err != nil {
		return OpResult{}, CollectionUnreadable.Wrap(err, "failed to enumerate keys for pattern %q", keyPattern)
	}

	var res OpResult
	for _, key := range keys {
		if !matcher.Match(key) {
			continue
		}
		if err := store.Remove(key); err != nil {
			res.Failed++
			logger.Warn(fmt.Sprintf("failed to clear entry %q", key))
			continue
		}
		res.Cleared++
	}

	logger.Info(fmt.Sprintf("cleared %d entries matching %q", res.Cleared, keyPattern))
	return res, nil
}

// ForEachMatchingKey invokes handler for every key matching keyPattern. A
// handler failure is counted and logged but does not abort enumeration of the
// remaining keys.
func ForEachMatchingKey(store kvstore.Store, logger *StepLogger, keyPattern string, handler KeyHandler) (OpResult, error) {
	matcher, err := glob.Compile(keyPattern)
	if err != nil {
		return OpResult{}, errorx.IllegalArgument.Wrap(err, "invalid key pattern %q", keyPattern)
	}

	keys, err := store.Keys()
	if err != nil {
		return OpResult{}, CollectionUnreadable.Wrap(err, "failed to enumerate keys for pattern %q", keyPattern)
	}

	var res OpResult
	for _, key := range keys {
		if !matcher.Match(key) {
			continue
		}
		res.Processed++
		if err := handler(key); err != nil {
			res.Failed++
			logger.Error(fmt.Sprintf("handler failed for key %q", key), err)
			continue
		}
		res.Succeeded++
	}

	return res, nil
}
