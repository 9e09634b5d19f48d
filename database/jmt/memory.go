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
	"sync"
)

// MemoryNodeStore keeps the nodes of all versions of a tree in memory. It
// is intended for tests and short-lived trees.
type MemoryNodeStore struct {
	nodes       map[NodeKey]Node
	nextVersion uint64
	mutex       sync.RWMutex
}

// NewMemoryNodeStore creates a store holding the empty tree as version 0.
func NewMemoryNodeStore() *MemoryNodeStore {
	return &MemoryNodeStore{
		nodes:       map[NodeKey]Node{RootKey(0): NullNode{}},
		nextVersion: 1,
	}
}

func (s *MemoryNodeStore) GetNode(key NodeKey) (Node, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	node, found := s.nodes[key]
	if !found {
		return nil, fmt.Errorf("%w: %v", ErrMissingNode, key)
	}
	return node, nil
}

// NextVersion returns the version the next batch must have.
func (s *MemoryNodeStore) NextVersion() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.nextVersion
}

// Apply adds the nodes of the given batch, which must be the next version.
func (s *MemoryNodeStore) Apply(batch *TreeUpdateBatch) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if batch.Version != s.nextVersion {
		return fmt.Errorf("%w: expected version %d, got %d", ErrInvalidUpdate, s.nextVersion, batch.Version)
	}
	for key, node := range batch.Nodes {
		s.nodes[key] = node
	}
	s.nextVersion++
	return nil
}

// NumNodes returns the number of nodes of all versions.
func (s *MemoryNodeStore) NumNodes() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.nodes)
}
