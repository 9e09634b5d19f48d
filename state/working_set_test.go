// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"errors"
	"testing"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"go.uber.org/mock/gomock"
)

func TestWorkingSet_WritesAreVisibleWithoutStorageAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)

	ws := NewWorkingSet(storage)
	ws.Set(storageKey("a"), storageValue("1"))
	if got, found := ws.Get(storageKey("a")); !found || got != storageValue("1") {
		t.Errorf("unexpected value, wanted 1, got %v", got)
	}
	ws.Delete(storageKey("a"))
	if _, found := ws.Get(storageKey("a")); found {
		t.Errorf("deleted value should not be visible")
	}
	if err := ws.Check(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWorkingSet_StorageIsReadOncePerKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)
	storage.EXPECT().Get(storageKey("a"), gomock.Any()).Return(storageValue("1"), true, nil)
	storage.EXPECT().Get(storageKey("b"), gomock.Any()).Return(common.StorageValue{}, false, nil)

	ws := NewWorkingSet(storage)
	for i := 0; i < 3; i++ {
		if got, found := ws.Get(storageKey("a")); !found || got != storageValue("1") {
			t.Errorf("unexpected value of a: %v", got)
		}
		if _, found := ws.Get(storageKey("b")); found {
			t.Errorf("b should not exist")
		}
	}
}

func TestWorkingSet_WitnessIsPassedToStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)
	w := witness.NewArrayWitness()
	storage.EXPECT().Get(storageKey("a"), w).Return(common.StorageValue{}, false, nil)

	ws := NewWorkingSetWithWitness(storage, w)
	ws.Get(storageKey("a"))
	if ws.Witness() != w {
		t.Errorf("unexpected witness")
	}
}

func TestWorkingSet_RemoveReturnsPreviousValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)
	storage.EXPECT().Get(storageKey("a"), gomock.Any()).Return(storageValue("1"), true, nil)

	ws := NewWorkingSet(storage)
	if got, found := ws.Remove(storageKey("a")); !found || got != storageValue("1") {
		t.Errorf("unexpected previous value %v", got)
	}
	if _, found := ws.Remove(storageKey("a")); found {
		t.Errorf("value should be removed")
	}

	log, _, err := ws.Freeze()
	if err != nil {
		t.Fatalf("failed to freeze: %v", err)
	}
	reads, writes := log.Split()
	if len(reads) != 1 || len(writes) != 1 || writes[0].Value.IsPresent() {
		t.Errorf("unexpected log content, reads %v, writes %v", reads, writes)
	}
}

func TestWorkingSet_RevertToSnapshotUndoesWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)
	storage.EXPECT().Get(storageKey("b"), gomock.Any()).Return(storageValue("stored"), true, nil)
	storage.EXPECT().Get(storageKey("c"), gomock.Any()).Return(storageValue("read"), true, nil)

	ws := NewWorkingSet(storage)
	ws.Set(storageKey("a"), storageValue("1"))
	snapshot := ws.Snapshot()
	ws.Set(storageKey("a"), storageValue("2"))
	ws.Delete(storageKey("b"))
	ws.Get(storageKey("c"))
	ws.Set(storageKey("d"), storageValue("new"))
	inner := ws.Snapshot()
	ws.Set(storageKey("a"), storageValue("3"))

	ws.RevertToSnapshot(inner)
	if got, _ := ws.Get(storageKey("a")); got != storageValue("2") {
		t.Errorf("unexpected value after inner revert: %v", got)
	}

	ws.RevertToSnapshot(snapshot)
	if got, _ := ws.Get(storageKey("a")); got != storageValue("1") {
		t.Errorf("unexpected value after revert: %v", got)
	}
	// b was never read, so reverting its deletion requires a storage access.
	if got, found := ws.Get(storageKey("b")); !found || got != storageValue("stored") {
		t.Errorf("unexpected value of b: %v", got)
	}
	// c was read, reverting keeps the read.
	if got, _ := ws.Get(storageKey("c")); got != storageValue("read") {
		t.Errorf("unexpected value of c: %v", got)
	}

	log, _, err := ws.Freeze()
	if err != nil {
		t.Fatalf("failed to freeze: %v", err)
	}
	reads, writes := log.Split()
	if len(reads) != 2 {
		t.Errorf("reads should survive reverts, got %v", reads)
	}
	if len(writes) != 1 || writes[0].Key != storageKey("a") {
		t.Errorf("unexpected writes %v", writes)
	}
}

func TestWorkingSet_InvalidSnapshotIsReported(t *testing.T) {
	ws := NewWorkingSet(NewMockStorage(gomock.NewController(t)))
	ws.Set(storageKey("a"), storageValue("1"))
	ws.RevertToSnapshot(5)
	if err := ws.Check(); err == nil {
		t.Errorf("reverting to an invalid snapshot should fail")
	}
	if got, _ := ws.Get(storageKey("a")); got != storageValue("1") {
		t.Errorf("failed revert modified the state")
	}
}

func TestWorkingSet_StorageErrorsAreCollected(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := NewMockStorage(ctrl)
	injectedErr := errors.New("injected error")
	storage.EXPECT().Get(storageKey("a"), gomock.Any()).Return(common.StorageValue{}, false, injectedErr)

	ws := NewWorkingSet(storage)
	if _, found := ws.Get(storageKey("a")); found {
		t.Errorf("failed read should not find a value")
	}
	if err := ws.Check(); !errors.Is(err, injectedErr) {
		t.Errorf("unexpected error: %v", err)
	}
	if _, _, err := ws.Freeze(); !errors.Is(err, injectedErr) {
		t.Errorf("freezing should report the error, got %v", err)
	}
}

func TestWorkingSet_UseAfterFreezePanics(t *testing.T) {
	ws := NewWorkingSet(NewMockStorage(gomock.NewController(t)))
	if _, _, err := ws.Freeze(); err != nil {
		t.Fatalf("failed to freeze: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("using a frozen working set should panic")
		}
	}()
	ws.Set(storageKey("a"), storageValue("1"))
}
