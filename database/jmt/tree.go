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

	"github.com/LukaszRozmej/sovereign/common"
)

// Tree provides read and update operations on a versioned tree whose nodes
// are resolved through a NodeReader. A Tree has no state of its own; it is
// safe for concurrent use if the reader is.
type Tree struct {
	reader NodeReader
	hasher common.Hasher
}

func NewTree(reader NodeReader, hasher common.Hasher) *Tree {
	return &Tree{reader: reader, hasher: hasher}
}

// GetRootHash returns the root hash of the given version.
func (t *Tree) GetRootHash(version uint64) (common.Hash, error) {
	root, err := t.reader.GetNode(RootKey(version))
	if err != nil {
		return common.Hash{}, err
	}
	return root.Hash(t.hasher), nil
}

// Get looks up the value associated to the given key hash in the given
// version. The boolean result is false if the key is not present.
func (t *Tree) Get(keyHash common.Hash, version uint64) ([]byte, bool, error) {
	leaf, _, err := t.lookup(keyHash, version, false)
	if err != nil || leaf == nil || leaf.KeyHash != keyHash {
		return nil, false, err
	}
	return leaf.Value, true, nil
}

// GetWithProof looks up the value associated to the given key hash in the
// given version and produces a proof for the result.
func (t *Tree) GetWithProof(keyHash common.Hash, version uint64) ([]byte, bool, SparseMerkleProof, error) {
	leaf, siblings, err := t.lookup(keyHash, version, true)
	if err != nil {
		return nil, false, SparseMerkleProof{}, err
	}
	proof := SparseMerkleProof{Siblings: siblings}
	if leaf == nil {
		return nil, false, proof, nil
	}
	proof.Leaf = &ProofLeaf{KeyHash: leaf.KeyHash, ValueHash: leaf.ValueHash(t.hasher)}
	if leaf.KeyHash != keyHash {
		return nil, false, proof, nil
	}
	return leaf.Value, true, proof, nil
}

// lookup navigates along the path of the key hash and returns the leaf the
// path ends in, nil if it ends in an empty subtree.
func (t *Tree) lookup(keyHash common.Hash, version uint64, collectSiblings bool) (*LeafNode, []common.Hash, error) {
	var siblings []common.Hash
	node, err := t.reader.GetNode(RootKey(version))
	if err != nil {
		return nil, nil, err
	}
	path := EmptyPath()
	for {
		switch n := node.(type) {
		case NullNode:
			return nil, siblings, nil
		case *LeafNode:
			return n, siblings, nil
		case *InternalNode:
			if path.Depth() >= MaxDepth {
				return nil, nil, fmt.Errorf("%w: internal node at maximum depth %v", ErrInvalidNode, path)
			}
			right := keyHash.Bit(path.Depth())
			if collectSiblings {
				siblings = append(siblings, childHash(n.GetChild(!right)))
			}
			child := n.GetChild(right)
			path = path.Child(right)
			if child == nil {
				return nil, siblings, nil
			}
			if node, err = t.getChild(child, path); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("unsupported node type %T", node)
		}
	}
}

// getChild resolves the node referenced by the given child and checks that
// it matches the reference.
func (t *Tree) getChild(child *Child, path NodePath) (Node, error) {
	key := NodeKey{Version: child.Version, Path: path}
	node, err := t.reader.GetNode(key)
	if err != nil {
		return nil, err
	}
	if _, isLeaf := node.(*LeafNode); isLeaf != child.Leaf {
		return nil, fmt.Errorf("%w: node %v is a %T, reference expects leaf=%t", ErrNodeHashMismatch, key, node, child.Leaf)
	}
	if _, isNull := node.(NullNode); isNull {
		return nil, fmt.Errorf("%w: empty node referenced at %v", ErrNodeHashMismatch, key)
	}
	if hash := node.Hash(t.hasher); hash != child.Hash {
		return nil, fmt.Errorf("%w: node %v has hash %v, expected %v", ErrNodeHashMismatch, key, hash, child.Hash)
	}
	return node, nil
}
