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
	"fmt"
	"strings"

	"github.com/LukaszRozmej/sovereign/common"
)

const ErrInvalidProof = common.ConstError("invalid proof")

// ProofLeaf is the leaf found at the end of a proof's path.
type ProofLeaf struct {
	_         struct{} `cbor:",toarray"`
	KeyHash   common.Hash
	ValueHash common.Hash
}

// SparseMerkleProof proves the presence or absence of a key in a tree with a
// given root. Siblings are the hashes of the subtrees next to the path of
// the key, ordered from the root downwards. If the path ends in a leaf, the
// leaf is included; if it ends in an empty subtree, Leaf is nil.
type SparseMerkleProof struct {
	_        struct{} `cbor:",toarray"`
	Leaf     *ProofLeaf
	Siblings []common.Hash
}

// Verify checks that the proof shows the key to be associated to the given
// value (if present) or to be absent (otherwise) in the tree of the given
// root.
func (p *SparseMerkleProof) Verify(root common.Hash, keyHash common.Hash, value []byte, present bool, hasher common.Hasher) error {
	if len(p.Siblings) > MaxDepth {
		return fmt.Errorf("%w: %d siblings exceed the maximum depth", ErrInvalidProof, len(p.Siblings))
	}
	current := common.ZeroHash
	if present {
		if p.Leaf == nil {
			return fmt.Errorf("%w: missing leaf for key %v", ErrInvalidProof, keyHash)
		}
		if p.Leaf.KeyHash != keyHash {
			return fmt.Errorf("%w: leaf of key %v found instead of %v", ErrInvalidProof, p.Leaf.KeyHash, keyHash)
		}
		if want := hasher.Hash(value); p.Leaf.ValueHash != want {
			return fmt.Errorf("%w: value hash of key %v is %v, expected %v", ErrInvalidProof, keyHash, p.Leaf.ValueHash, want)
		}
	} else if p.Leaf != nil {
		if p.Leaf.KeyHash == keyHash {
			return fmt.Errorf("%w: key %v is present", ErrInvalidProof, keyHash)
		}
		if !PathOf(keyHash, len(p.Siblings)).IsPrefixOf(p.Leaf.KeyHash) {
			return fmt.Errorf("%w: leaf %v is not on the path of key %v", ErrInvalidProof, p.Leaf.KeyHash, keyHash)
		}
	}
	if p.Leaf != nil {
		current = hashLeaf(hasher, p.Leaf.KeyHash, p.Leaf.ValueHash)
	}
	for i := len(p.Siblings) - 1; i >= 0; i-- {
		if keyHash.Bit(i) {
			current = hashInternal(hasher, p.Siblings[i], current)
		} else {
			current = hashInternal(hasher, current, p.Siblings[i])
		}
	}
	if current != root {
		return fmt.Errorf("%w: proof leads to root %v, expected %v", ErrInvalidProof, current, root)
	}
	return nil
}

// Equal reports whether both proofs have the same content.
func (p *SparseMerkleProof) Equal(other *SparseMerkleProof) bool {
	if (p.Leaf == nil) != (other.Leaf == nil) || len(p.Siblings) != len(other.Siblings) {
		return false
	}
	if p.Leaf != nil && (p.Leaf.KeyHash != other.Leaf.KeyHash || p.Leaf.ValueHash != other.Leaf.ValueHash) {
		return false
	}
	for i := range p.Siblings {
		if p.Siblings[i] != other.Siblings[i] {
			return false
		}
	}
	return true
}

func (p *SparseMerkleProof) String() string {
	var builder strings.Builder
	if p.Leaf == nil {
		builder.WriteString("Proof{leaf: none")
	} else {
		builder.WriteString(fmt.Sprintf("Proof{leaf: %v -> %v", p.Leaf.KeyHash, p.Leaf.ValueHash))
	}
	builder.WriteString(fmt.Sprintf(", siblings: %d}", len(p.Siblings)))
	return builder.String()
}
