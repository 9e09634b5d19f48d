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

//go:generate mockgen -source nodes.go -destination nodes_mocks.go -package jmt

import (
	"bytes"
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	ErrMissingNode      = common.ConstError("missing node")
	ErrNodeHashMismatch = common.ConstError("node hash does not match its parent's reference")
	ErrInvalidNode      = common.ConstError("invalid node")
)

const (
	leafDomain     = 0x00
	internalDomain = 0x01
)

// NodeReader provides access to the nodes of a versioned tree. It is the
// only way the tree accesses its nodes.
type NodeReader interface {
	// GetNode resolves the node stored under the given key. It fails with
	// ErrMissingNode if there is no such node.
	GetNode(key NodeKey) (Node, error)
}

// Node is one of NullNode, *InternalNode, or *LeafNode. Nodes are immutable
// once created.
type Node interface {
	// Hash computes the hash of the subtree rooted by this node.
	Hash(hasher common.Hasher) common.Hash
	kind() nodeKind
}

type nodeKind byte

const (
	nullKind     nodeKind = 0
	internalKind nodeKind = 1
	leafKind     nodeKind = 2
)

// NullNode is the root of an empty tree. It only ever appears as a root.
type NullNode struct{}

func (NullNode) Hash(common.Hasher) common.Hash {
	return common.ZeroHash
}

func (NullNode) kind() nodeKind {
	return nullKind
}

func (NullNode) String() string {
	return "Null"
}

// Child is the reference of an internal node to one of its children.
type Child struct {
	Hash    common.Hash
	Version uint64 // the version the child was written in
	Leaf    bool
}

// InternalNode is a node with at least two leaves in its subtree. At most
// one of its children may be empty, and only if the other child is an
// internal node.
type InternalNode struct {
	Left  *Child `rlp:"nil"`
	Right *Child `rlp:"nil"`
}

// GetChild returns the child in the given direction, nil if it is empty.
func (n *InternalNode) GetChild(right bool) *Child {
	if right {
		return n.Right
	}
	return n.Left
}

func (n *InternalNode) Hash(hasher common.Hasher) common.Hash {
	return hashInternal(hasher, childHash(n.Left), childHash(n.Right))
}

func (*InternalNode) kind() nodeKind {
	return internalKind
}

func (n *InternalNode) String() string {
	return fmt.Sprintf("Internal{L: %v, R: %v}", n.Left, n.Right)
}

func childHash(c *Child) common.Hash {
	if c == nil {
		return common.ZeroHash
	}
	return c.Hash
}

func hashInternal(hasher common.Hasher, left, right common.Hash) common.Hash {
	return hasher.Hash([]byte{internalDomain}, left[:], right[:])
}

// LeafNode holds a value and the hash of the key it is associated to.
type LeafNode struct {
	KeyHash common.Hash
	Value   []byte
}

// ValueHash is the hash of the value the leaf commits to.
func (n *LeafNode) ValueHash(hasher common.Hasher) common.Hash {
	return hasher.Hash(n.Value)
}

func (n *LeafNode) Hash(hasher common.Hasher) common.Hash {
	return hashLeaf(hasher, n.KeyHash, n.ValueHash(hasher))
}

func (*LeafNode) kind() nodeKind {
	return leafKind
}

func (n *LeafNode) String() string {
	return fmt.Sprintf("Leaf{%v: 0x%x}", n.KeyHash, n.Value)
}

func hashLeaf(hasher common.Hasher, keyHash, valueHash common.Hash) common.Hash {
	return hasher.Hash([]byte{leafDomain}, keyHash[:], valueHash[:])
}

// EncodeNode produces the persistent form of a node: a kind byte followed by
// the RLP encoding of its content.
func EncodeNode(node Node) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte(byte(node.kind()))
	switch n := node.(type) {
	case NullNode:
		return buffer.Bytes(), nil
	case *InternalNode, *LeafNode:
		if err := rlp.Encode(&buffer, n); err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	}
	return nil, fmt.Errorf("unsupported node type %T", node)
}

// DecodeNode parses the output of EncodeNode.
func DecodeNode(data []byte) (Node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidNode)
	}
	switch nodeKind(data[0]) {
	case nullKind:
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: null node with content", ErrInvalidNode)
		}
		return NullNode{}, nil
	case internalKind:
		res := &InternalNode{}
		if err := rlp.DecodeBytes(data[1:], res); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNode, err)
		}
		if res.Left == nil && res.Right == nil {
			return nil, fmt.Errorf("%w: internal node without children", ErrInvalidNode)
		}
		return res, nil
	case leafKind:
		res := &LeafNode{}
		if err := rlp.DecodeBytes(data[1:], res); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNode, err)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %d", ErrInvalidNode, data[0])
}
