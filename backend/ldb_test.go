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
	"bytes"
	"errors"
	"testing"

	"github.com/syndtr/goleveldb/leveldb"
)

func TestToDBKey_PrefixesTableSpace(t *testing.T) {
	key := ToDBKey(NodeKey, []byte{1, 2}, []byte{3})
	want := []byte{'n', 1, 2, 3}
	if !bytes.Equal(key, want) {
		t.Errorf("got %v, want %v", key, want)
	}
	if got := ToDBKey(VersionKey); !bytes.Equal(got, []byte{'v'}) {
		t.Errorf("unexpected key without parts: %v", got)
	}
}

func TestTableRange_CoversOnlyItsTableSpace(t *testing.T) {
	db, err := OpenInMemoryLevelDb(nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	batch := new(leveldb.Batch)
	batch.Put(ToDBKey(NodeKey, []byte{1}), []byte{1})
	batch.Put(ToDBKey(NodeKey, []byte{2}), []byte{2})
	batch.Put(ToDBKey(PreimageKey, []byte{1}), []byte{3})
	batch.Put(ToDBKey(VersionKey), []byte{4})
	if err := db.Write(batch, nil); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}

	iter := db.NewIterator(TableRange(NodeKey), nil)
	defer iter.Release()
	count := 0
	for iter.Next() {
		if iter.Key()[0] != byte(NodeKey) {
			t.Errorf("iterated key %v of foreign table space", iter.Key())
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 nodes, got %d", count)
	}
}

func TestOpenLevelDb_ContentSurvivesReopening(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenLevelDb(dir, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.Put(ToDBKey(MetadataKey, []byte("hasher")), []byte("sha256"), nil); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close db: %v", err)
	}

	db, err = OpenLevelDb(dir, nil)
	if err != nil {
		t.Fatalf("failed to reopen db: %v", err)
	}
	defer db.Close()
	got, err := db.Get(ToDBKey(MetadataKey, []byte("hasher")), nil)
	if err != nil || string(got) != "sha256" {
		t.Errorf("unexpected content %q, err %v", got, err)
	}
}

func TestForEachInTable_VisitsSnapshotInKeyOrder(t *testing.T) {
	db, err := OpenInMemoryLevelDb(nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer db.Close()

	for _, i := range []byte{3, 1, 2} {
		if err := db.Put(ToDBKey(PreimageKey, []byte{i}), []byte{i}, nil); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
	}
	snapshot, err := db.GetSnapshot()
	if err != nil {
		t.Fatalf("failed to get snapshot: %v", err)
	}
	defer snapshot.Release()
	if err := db.Put(ToDBKey(PreimageKey, []byte{4}), []byte{4}, nil); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	var seen []byte
	err = ForEachInTable(snapshot, PreimageKey, func(key, value []byte) error {
		seen = append(seen, value[0])
		return nil
	})
	if err != nil {
		t.Fatalf("failed to iterate: %v", err)
	}
	if !bytes.Equal(seen, []byte{1, 2, 3}) {
		t.Errorf("unexpected visit order %v", seen)
	}

	stop := errors.New("stop")
	count := 0
	err = ForEachInTable(db, PreimageKey, func(key, value []byte) error {
		count++
		return stop
	})
	if !errors.Is(err, stop) || count != 1 {
		t.Errorf("iteration should stop at first error, got %v after %d visits", err, count)
	}
}
