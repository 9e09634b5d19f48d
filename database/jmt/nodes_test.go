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
	"reflect"
	"testing"

	"github.com/LukaszRozmej/sovereign/common"
	"go.uber.org/mock/gomock"
)

func TestNodes_EncodingRoundTrip(t *testing.T) {
	nodes := []Node{
		NullNode{},
		&LeafNode{KeyHash: common.Hash{1, 2}, Value: []byte("value")},
		&LeafNode{KeyHash: common.Hash{3}, Value: []byte{}},
		&InternalNode{
			Left:  &Child{Hash: common.Hash{1}, Version: 12, Leaf: true},
			Right: &Child{Hash: common.Hash{2}, Version: 7},
		},
		&InternalNode{Right: &Child{Hash: common.Hash{2}, Version: 7}},
		&InternalNode{Left: &Child{Hash: common.Hash{3}, Version: 1}},
	}
	for _, node := range nodes {
		encoded, err := EncodeNode(node)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", node, err)
		}
		decoded, err := DecodeNode(encoded)
		if err != nil {
			t.Fatalf("failed to decode %v: %v", node, err)
		}
		if got, want := decoded.Hash(common.Sha256), node.Hash(common.Sha256); got != want {
			t.Errorf("hash of decoded node %v differs from %v", decoded, node)
		}
		if in, ok := node.(*InternalNode); ok {
			if !reflect.DeepEqual(in, decoded) {
				t.Errorf("decoded node %v differs from %v", decoded, in)
			}
		}
	}
}

func TestNodes_DecodingRejectsInvalidInput(t *testing.T) {
	noChildren, err := EncodeNode(&InternalNode{})
	if err != nil {
		t.Fatalf("failed to encode node: %v", err)
	}
	tests := map[string][]byte{
		"empty":        nil,
		"unknown kind": {7},
		"null content": {0, 1},
		"truncated":    {2, 0xc5, 0x80},
		"no children":  noChildren,
	}
	for name, input := range tests {
		if _, err := DecodeNode(input); !errors.Is(err, ErrInvalidNode) {
			t.Errorf("%s: unexpected error %v", name, err)
		}
	}
}

func TestNodes_HashesAreDomainSeparated(t *testing.T) {
	hasher := common.Sha256
	leaf := &LeafNode{KeyHash: common.Hash{1}, Value: []byte{2}}
	valueHash := hasher.Hash([]byte{2})
	want := hasher.Hash([]byte{0x00}, leaf.KeyHash[:], valueHash[:])
	if got := leaf.Hash(hasher); got != want {
		t.Errorf("unexpected leaf hash %v, want %v", got, want)
	}

	left := common.Hash{1}
	node := &InternalNode{Left: &Child{Hash: left}}
	want = hasher.Hash([]byte{0x01}, left[:], common.ZeroHash[:])
	if got := node.Hash(hasher); got != want {
		t.Errorf("unexpected internal hash %v, want %v", got, want)
	}
	if got := (NullNode{}).Hash(hasher); got != common.ZeroHash {
		t.Errorf("empty node should have zero hash, got %v", got)
	}
}

func TestNodes_UnknownNodeTypesAreRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	node := NewMockNode(ctrl)
	node.EXPECT().kind().Return(nodeKind(7)).AnyTimes()

	if _, err := EncodeNode(node); err == nil {
		t.Errorf("encoding an unknown node type should fail")
	}

	reader := NewMockNodeReader(ctrl)
	reader.EXPECT().GetNode(RootKey(0)).Return(node, nil)
	tree := NewTree(reader, common.Sha256)
	if _, err := tree.PutValueSet([]Update{{KeyHash: common.Hash{1}, Value: []byte{1}}}, 1); err == nil {
		t.Errorf("updating a tree with an unknown root type should fail")
	}
}
