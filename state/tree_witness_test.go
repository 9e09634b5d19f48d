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
	"fmt"
	"testing"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/database/jmt"
	"go.uber.org/mock/gomock"
	"golang.org/x/exp/slices"
)

func buildTestTree(t *testing.T, size int) *jmt.MemoryNodeStore {
	t.Helper()
	store := jmt.NewMemoryNodeStore()
	updates := make([]jmt.Update, 0, size)
	for i := 0; i < size; i++ {
		key := common.Sha256.Hash([]byte(fmt.Sprintf("key_%d", i)))
		updates = append(updates, jmt.Update{KeyHash: key, Value: []byte{byte(i)}})
	}
	slices.SortFunc(updates, func(a, b jmt.Update) int { return a.KeyHash.Compare(b.KeyHash) })
	batch, err := jmt.NewTree(store, common.Sha256).PutValueSet(updates, store.NextVersion())
	if err != nil {
		t.Fatalf("failed to build tree: %v", err)
	}
	if err := store.Apply(batch); err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	return store
}

func TestTreeWitness_RecordedReadsCanBeReplayed(t *testing.T) {
	store := buildTestTree(t, 10)
	w := witness.NewArrayWitness()
	logger := NewTreeReadLogger(store, w)

	root, err := logger.GetNode(jmt.RootKey(1))
	if err != nil {
		t.Fatalf("failed to read root: %v", err)
	}
	inner, ok := root.(*jmt.InternalNode)
	if !ok {
		t.Fatalf("unexpected root node %v", root)
	}
	keys := []jmt.NodeKey{jmt.RootKey(1)}
	want := []jmt.Node{root}
	for _, right := range []bool{false, true} {
		child := inner.GetChild(right)
		if child == nil {
			continue
		}
		key := jmt.NodeKey{Version: child.Version, Path: jmt.EmptyPath().Child(right)}
		node, err := logger.GetNode(key)
		if err != nil {
			t.Fatalf("failed to read node %v: %v", key, err)
		}
		keys = append(keys, key)
		want = append(want, node)
	}
	if got := w.Len(); got != len(keys) {
		t.Errorf("unexpected number of hints, wanted %d, got %d", len(keys), got)
	}

	reader := NewTreeWitnessReader(witness.ReplayOf(w))
	for i, key := range keys {
		node, err := reader.GetNode(key)
		if err != nil {
			t.Fatalf("failed to replay node %v: %v", key, err)
		}
		if node.Hash(common.Sha256) != want[i].Hash(common.Sha256) {
			t.Errorf("replayed node %v differs", key)
		}
	}
	if _, err := reader.GetNode(keys[0]); !errors.Is(err, witness.ErrWitnessExhausted) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTreeWitness_MissingNodesAreNotRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := jmt.NewMockNodeReader(ctrl)
	key := jmt.RootKey(7)
	reader.EXPECT().GetNode(key).Return(nil, jmt.ErrMissingNode)

	w := witness.NewArrayWitness()
	if _, err := NewTreeReadLogger(reader, w).GetNode(key); !errors.Is(err, jmt.ErrMissingNode) {
		t.Errorf("unexpected error: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("failed read should not be recorded")
	}
}

func TestTreeWitness_InvalidNodeIsAMismatch(t *testing.T) {
	w := witness.NewArrayWitness()
	if err := w.AddHint([]byte{0xff, 1, 2}); err != nil {
		t.Fatalf("failed to add hint: %v", err)
	}
	if err := w.AddHint(uint64(12)); err != nil {
		t.Fatalf("failed to add hint: %v", err)
	}
	reader := NewTreeWitnessReader(witness.ReplayOf(w))
	for i := 0; i < 2; i++ {
		if _, err := reader.GetNode(jmt.RootKey(1)); !errors.Is(err, witness.ErrWitnessMismatch) {
			t.Errorf("unexpected error for hint %d: %v", i, err)
		}
	}
}

func TestStorage_WitnessErrorsArePropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	injected := errors.New("injected")

	storage := newTestStorage(t, Parameters{})
	recording := witness.NewMockWitness(ctrl)
	recording.EXPECT().AddHint(gomock.Any()).Return(injected)
	if _, _, err := storage.Get(storageKey("a"), recording); !errors.Is(err, injected) {
		t.Errorf("unexpected error of native read: %v", err)
	}

	zk, err := NewZkStorage(common.Hash{}, Parameters{})
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	replaying := witness.NewMockWitness(ctrl)
	replaying.EXPECT().GetHint(gomock.Any()).Return(witness.ErrWitnessExhausted)
	if _, _, err := zk.Get(storageKey("a"), replaying); !errors.Is(err, witness.ErrWitnessExhausted) {
		t.Errorf("unexpected error of replayed read: %v", err)
	}

	failing := witness.NewMockWitness(ctrl)
	failing.EXPECT().GetHint(gomock.Any()).Return(witness.ErrWitnessMismatch)
	if _, err := NewTreeWitnessReader(failing).GetNode(jmt.RootKey(0)); !errors.Is(err, witness.ErrWitnessMismatch) {
		t.Errorf("unexpected error of replayed node: %v", err)
	}
}
