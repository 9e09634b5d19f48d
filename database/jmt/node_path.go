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
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/LukaszRozmej/sovereign/common"
)

// MaxDepth is the maximum length of a path in the tree.
const MaxDepth = common.HashSize * 8

// NodePath addresses a node by the sequence of left (0) and right (1) steps
// leading to it from the root. Bits beyond the depth of the path are zero,
// so paths are comparable and can be used as map keys.
type NodePath struct {
	bits  common.Hash
	depth uint16
}

// EmptyPath is the path of the root node.
func EmptyPath() NodePath {
	return NodePath{}
}

// PathOf returns the path formed by the first depth bits of the key hash.
func PathOf(keyHash common.Hash, depth int) NodePath {
	if depth < 0 || depth > MaxDepth {
		panic(fmt.Sprintf("invalid path depth %d", depth))
	}
	res := NodePath{depth: uint16(depth)}
	full := depth / 8
	copy(res.bits[:full], keyHash[:full])
	if rem := depth % 8; rem != 0 {
		res.bits[full] = keyHash[full] & (0xff << (8 - rem))
	}
	return res
}

func (p NodePath) Depth() int {
	return int(p.depth)
}

// Bit returns the step taken at the given depth.
func (p NodePath) Bit(i int) bool {
	return p.bits.Bit(i)
}

// Child extends the path by a single step to the left or right.
func (p NodePath) Child(right bool) NodePath {
	if int(p.depth) >= MaxDepth {
		panic("cannot extend a path of maximum depth")
	}
	res := p
	if right {
		res.bits[p.depth/8] |= 0x80 >> (p.depth % 8)
	}
	res.depth++
	return res
}

// IsPrefixOf reports whether the key hash is located in the subtree
// addressed by this path.
func (p NodePath) IsPrefixOf(keyHash common.Hash) bool {
	return PathOf(keyHash, int(p.depth)) == p
}

// Compare orders paths by their bits, shorter paths before their extensions.
func (p NodePath) Compare(other NodePath) int {
	if res := bytes.Compare(p.bits[:], other.bits[:]); res != 0 {
		return res
	}
	return cmp.Compare(p.depth, other.depth)
}

// Encode produces the binary form of the path used in database keys: the
// depth as two big-endian bytes followed by the minimal number of bytes
// needed to hold the steps.
func (p NodePath) Encode() []byte {
	size := (int(p.depth) + 7) / 8
	res := make([]byte, 2+size)
	res[0] = byte(p.depth >> 8)
	res[1] = byte(p.depth)
	copy(res[2:], p.bits[:size])
	return res
}

// DecodeNodePath parses the output of Encode.
func DecodeNodePath(data []byte) (NodePath, error) {
	if len(data) < 2 {
		return NodePath{}, fmt.Errorf("%w: path encoding too short", ErrInvalidNode)
	}
	depth := int(data[0])<<8 | int(data[1])
	if depth > MaxDepth || len(data) != 2+(depth+7)/8 {
		return NodePath{}, fmt.Errorf("%w: invalid path encoding of depth %d", ErrInvalidNode, depth)
	}
	var bits common.Hash
	copy(bits[:], data[2:])
	res := PathOf(bits, depth)
	if res.bits != bits {
		return NodePath{}, fmt.Errorf("%w: path has bits set beyond its depth", ErrInvalidNode)
	}
	return res, nil
}

func (p NodePath) String() string {
	var builder strings.Builder
	builder.WriteRune('[')
	for i := 0; i < int(p.depth); i++ {
		if p.Bit(i) {
			builder.WriteRune('1')
		} else {
			builder.WriteRune('0')
		}
	}
	builder.WriteRune(']')
	return builder.String()
}

// NodeKey is the address of a node in the versioned tree.
type NodeKey struct {
	Version uint64
	Path    NodePath
}

// RootKey is the key of the root node of the given version.
func RootKey(version uint64) NodeKey {
	return NodeKey{Version: version}
}

func (k NodeKey) Compare(other NodeKey) int {
	if res := cmp.Compare(k.Version, other.Version); res != 0 {
		return res
	}
	return k.Path.Compare(other.Path)
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%d:%v", k.Version, k.Path)
}
