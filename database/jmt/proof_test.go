// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package jmt

import (
	"errors"
	"testing"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/fxamacker/cbor/v2"
)

func TestSparseMerkleProof_TooManySiblingsAreRejected(t *testing.T) {
	proof := SparseMerkleProof{Siblings: make([]common.Hash, MaxDepth+1)}
	if err := proof.Verify(common.ZeroHash, common.Hash{}, nil, false, common.Sha256); !errors.Is(err, ErrInvalidProof) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSparseMerkleProof_CanBeTransferredAsCbor(t *testing.T) {
	store := NewMemoryNodeStore()
	batch := commit(t, store, set(keyHash(0), "a"), set(keyHash(1), "b"), set(keyHash(2), "c"))
	tree := NewTree(store, common.Sha256)

	for i := 0; i < 4; i++ {
		value, found, proof, err := tree.GetWithProof(keyHash(i), 1)
		if err != nil {
			t.Fatalf("failed to get proof: %v", err)
		}
		data, err := cbor.Marshal(proof)
		if err != nil {
			t.Fatalf("failed to encode proof: %v", err)
		}
		var restored SparseMerkleProof
		if err := cbor.Unmarshal(data, &restored); err != nil {
			t.Fatalf("failed to decode proof: %v", err)
		}
		if !restored.Equal(&proof) {
			t.Errorf("restored proof %v differs from %v", &restored, &proof)
		}
		if err := restored.Verify(batch.Root, keyHash(i), value, found, common.Sha256); err != nil {
			t.Errorf("restored proof rejected: %v", err)
		}
	}
}
