// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package backend

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divide key-value storage into spaces by adding a prefix to the key.
type TableSpace byte

const (
	// VersionKey is a tablespace holding the next version to be committed
	VersionKey TableSpace = 'v'
	// NodeKey is a tablespace for tree nodes, keyed by version and path
	NodeKey TableSpace = 'n'
	// PreimageKey is a tablespace mapping key hashes to the original keys
	PreimageKey TableSpace = 'p'
	// MetadataKey is a tablespace for store-wide settings
	MetadataKey TableSpace = 'm'
)

// ToDBKey converts the input key parts to its respective table space key.
func ToDBKey(t TableSpace, parts ...[]byte) []byte {
	size := 1
	for _, part := range parts {
		size += len(part)
	}
	res := make([]byte, 1, size)
	res[0] = byte(t)
	for _, part := range parts {
		res = append(res, part...)
	}
	return res
}

// TableRange returns the range covering all keys of the given table space.
func TableRange(t TableSpace) *util.Range {
	return util.BytesPrefix([]byte{byte(t)})
}

// LevelDBReader covers the read access shared by LevelDB instances and
// their snapshots.
type LevelDBReader interface {
	// Get returns leveldb.ErrNotFound for missing keys. The result is a copy.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)
	Has(key []byte, ro *opt.ReadOptions) (bool, error)
	// NewIterator iterates the given key range. Keys and values handed out
	// by the iterator must not be modified; it must be released after use.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// ForEachInTable visits all entries of a table space in key order. Key and
// value are only valid during the visit. Iteration stops at the first error
// returned by the visitor.
func ForEachInTable(reader LevelDBReader, t TableSpace, visit func(key, value []byte) error) error {
	iter := reader.NewIterator(TableRange(t), nil)
	defer iter.Release()
	for iter.Next() {
		if err := visit(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// OpenLevelDb opens the LevelDB located in the given directory, creating it
// if it does not exist.
func OpenLevelDb(path string, options *opt.Options) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s: %w", path, err)
	}
	return db, nil
}

// OpenInMemoryLevelDb opens a LevelDB instance kept entirely in memory.
// All content is lost when the instance is closed.
func OpenInMemoryLevelDb(options *opt.Options) (*leveldb.DB, error) {
	return leveldb.Open(storage.NewMemStorage(), options)
}
