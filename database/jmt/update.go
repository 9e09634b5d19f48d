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
	"sort"

	"github.com/LukaszRozmej/sovereign/common"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const ErrInvalidUpdate = common.ConstError("invalid update")

// Update is a single modification of the tree. If Delete is set, the key is
// removed and Value is ignored.
type Update struct {
	KeyHash common.Hash
	Value   []byte
	Delete  bool
}

// TreeUpdateBatch summarizes the effect of applying a set of updates to a
// tree. Nodes contains all nodes created for the new version; none of them
// is visible to readers before the batch is persisted.
type TreeUpdateBatch struct {
	PreviousRoot common.Hash
	Root         common.Hash
	Version      uint64
	Nodes        map[NodeKey]Node
}

// SortedKeys lists the keys of the new nodes in ascending order.
func (b *TreeUpdateBatch) SortedKeys() []NodeKey {
	keys := maps.Keys(b.Nodes)
	slices.SortFunc(keys, func(a, b NodeKey) int { return a.Compare(b) })
	return keys
}

// PutValueSet applies the given updates on top of version-1 and returns the
// nodes forming the given version. The updates must be sorted by key hash
// and may not contain duplicates. The tree is not modified; persisting the
// resulting batch is the responsibility of the caller.
//
// The result depends only on the previous version's nodes and the updates.
// Nodes are resolved in a deterministic order, so that a reader replaying
// recorded nodes observes the same sequence of requests.
func (t *Tree) PutValueSet(updates []Update, version uint64) (*TreeUpdateBatch, error) {
	if version == 0 {
		return nil, fmt.Errorf("%w: version 0 is reserved for the empty tree", ErrInvalidUpdate)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i-1].KeyHash.Compare(updates[i].KeyHash) >= 0 {
			return nil, fmt.Errorf("%w: updates not sorted or duplicated at %v", ErrInvalidUpdate, updates[i].KeyHash)
		}
	}

	prevKey := RootKey(version - 1)
	root, err := t.reader.GetNode(prevKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load root of version %d: %w", version-1, err)
	}
	var rootRef *Child
	switch n := root.(type) {
	case NullNode:
	case *LeafNode, *InternalNode:
		rootRef = &Child{Hash: n.Hash(t.hasher), Version: version - 1, Leaf: n.kind() == leafKind}
	default:
		return nil, fmt.Errorf("unsupported node type %T", root)
	}

	u := &updater{tree: t, version: version, nodes: map[NodeKey]Node{}}
	res, err := u.updateNode(root, rootRef, EmptyPath(), updates)
	if err != nil {
		return nil, err
	}

	newRoot := RootKey(version)
	switch {
	case res.leaf != nil:
		u.nodes[newRoot] = res.leaf
	case res.ref == nil:
		u.nodes[newRoot] = NullNode{}
	case res.ref.Version != version:
		// the tree is unchanged, the previous root is carried over
		u.nodes[newRoot] = root
	}
	return &TreeUpdateBatch{
		PreviousRoot: root.Hash(t.hasher),
		Root:         u.nodes[newRoot].Hash(t.hasher),
		Version:      version,
		Nodes:        u.nodes,
	}, nil
}

// subtree is the result of updating a part of the tree. An empty subtree has
// neither a reference nor a leaf. A subtree consisting of a single leaf has
// the leaf set; it is only written once its final position is known. The
// reference is set if the subtree's root is stored at the subtree's path.
type subtree struct {
	ref  *Child
	leaf *LeafNode
}

type updater struct {
	tree    *Tree
	version uint64
	nodes   map[NodeKey]Node
}

// update applies the updates to the subtree referenced by ref at the given
// path, where ref is nil for an empty subtree.
func (u *updater) update(ref *Child, path NodePath, updates []Update) (subtree, error) {
	if len(updates) == 0 {
		return subtree{ref: ref}, nil
	}
	if ref == nil {
		return u.build(path, insertions(nil, updates)), nil
	}
	node, err := u.tree.getChild(ref, path)
	if err != nil {
		return subtree{}, err
	}
	return u.updateNode(node, ref, path, updates)
}

func (u *updater) updateNode(node Node, ref *Child, path NodePath, updates []Update) (subtree, error) {
	switch n := node.(type) {
	case NullNode:
		return u.build(path, insertions(nil, updates)), nil
	case *LeafNode:
		touched := false
		for _, cur := range updates {
			if cur.KeyHash == n.KeyHash {
				touched = true
				break
			}
		}
		if !touched {
			if !hasInsertions(updates) {
				return subtree{ref: ref, leaf: n}, nil
			}
			return u.build(path, insertions(n, updates)), nil
		}
		return u.build(path, insertions(nil, updates)), nil
	case *InternalNode:
		if len(updates) == 0 {
			return subtree{ref: ref}, nil
		}
		if path.Depth() >= MaxDepth {
			return subtree{}, fmt.Errorf("%w: internal node at maximum depth %v", ErrInvalidNode, path)
		}
		split := splitPoint(updates, path.Depth())
		left, err := u.update(n.Left, path.Child(false), updates[:split])
		if err != nil {
			return subtree{}, err
		}
		right, err := u.update(n.Right, path.Child(true), updates[split:])
		if err != nil {
			return subtree{}, err
		}
		if ref != nil && unchanged(left, n.Left) && unchanged(right, n.Right) {
			return subtree{ref: ref}, nil
		}
		return u.join(path, left, right)
	}
	return subtree{}, fmt.Errorf("unsupported node type %T", node)
}

// build creates the subtree holding exactly the given leaves, which must be
// sorted by key hash and located below the given path.
func (u *updater) build(path NodePath, leaves []*LeafNode) subtree {
	switch len(leaves) {
	case 0:
		return subtree{}
	case 1:
		return subtree{leaf: leaves[0]}
	}
	split := sort.Search(len(leaves), func(i int) bool {
		return leaves[i].KeyHash.Bit(path.Depth())
	})
	left := u.build(path.Child(false), leaves[:split])
	right := u.build(path.Child(true), leaves[split:])
	// join never needs to resolve nodes for freshly built subtrees
	res, _ := u.join(path, left, right)
	return res
}

// join combines two subtrees into the subtree at the given path. A single
// leaf is lifted to the parent instead of being placed below an internal
// node with an empty sibling.
func (u *updater) join(path NodePath, left, right subtree) (subtree, error) {
	leftEmpty := left.ref == nil && left.leaf == nil
	rightEmpty := right.ref == nil && right.leaf == nil
	switch {
	case leftEmpty && rightEmpty:
		return subtree{}, nil
	case leftEmpty:
		if lifted, ok, err := u.lift(right, path.Child(true)); ok || err != nil {
			return lifted, err
		}
	case rightEmpty:
		if lifted, ok, err := u.lift(left, path.Child(false)); ok || err != nil {
			return lifted, err
		}
	}
	node := &InternalNode{
		Left:  u.place(left, path.Child(false)),
		Right: u.place(right, path.Child(true)),
	}
	key := NodeKey{Version: u.version, Path: path}
	u.nodes[key] = node
	return subtree{ref: &Child{Hash: node.Hash(u.tree.hasher), Version: u.version}}, nil
}

// lift converts the given subtree into a floating leaf if it consists of a
// single leaf. Leaves only known by reference are resolved.
func (u *updater) lift(s subtree, path NodePath) (subtree, bool, error) {
	if s.leaf != nil {
		return subtree{leaf: s.leaf}, true, nil
	}
	if !s.ref.Leaf {
		return subtree{}, false, nil
	}
	node, err := u.tree.getChild(s.ref, path)
	if err != nil {
		return subtree{}, false, err
	}
	return subtree{leaf: node.(*LeafNode)}, true, nil
}

// place fixes the position of a subtree and returns the reference to it.
func (u *updater) place(s subtree, path NodePath) *Child {
	if s.ref != nil {
		return s.ref
	}
	if s.leaf == nil {
		return nil
	}
	u.nodes[NodeKey{Version: u.version, Path: path}] = s.leaf
	return &Child{Hash: s.leaf.Hash(u.tree.hasher), Version: u.version, Leaf: true}
}

// unchanged reports whether the subtree is still the one referenced by the
// original child.
func unchanged(s subtree, original *Child) bool {
	return s.ref == original && (original != nil || s.leaf == nil)
}

// splitPoint returns the index of the first update going to the right child
// of a node at the given depth.
func splitPoint(updates []Update, depth int) int {
	return sort.Search(len(updates), func(i int) bool {
		return updates[i].KeyHash.Bit(depth)
	})
}

func hasInsertions(updates []Update) bool {
	for _, cur := range updates {
		if !cur.Delete {
			return true
		}
	}
	return false
}

// insertions lists the leaves resulting from the non-delete updates merged
// with the given existing leaf, sorted by key hash.
func insertions(existing *LeafNode, updates []Update) []*LeafNode {
	res := make([]*LeafNode, 0, len(updates)+1)
	for _, cur := range updates {
		if existing != nil && existing.KeyHash.Compare(cur.KeyHash) < 0 {
			res = append(res, existing)
			existing = nil
		}
		if !cur.Delete {
			res = append(res, &LeafNode{KeyHash: cur.KeyHash, Value: slices.Clone(cur.Value)})
		}
	}
	if existing != nil {
		res = append(res, existing)
	}
	return res
}
