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
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/database/jmt"
	"github.com/LukaszRozmej/sovereign/state/cache"
	"github.com/ethereum/go-ethereum/log"
)

// ZkStorage is the replaying Storage. It has no access to the state besides
// the root hash it extends; all values, proofs, and tree nodes are taken
// from a witness recorded by a ProverStorage and authenticated against that
// root while committing.
type ZkStorage struct {
	root common.Hash
	hash common.Hasher
	log  log.Logger
}

// NewZkStorage creates a replaying storage extending the state of the given
// root. Only the Hasher of the parameters is considered.
func NewZkStorage(root common.Hash, params Parameters) (*ZkStorage, error) {
	hasher, err := params.hasher()
	if err != nil {
		return nil, err
	}
	return &ZkStorage{root: root, hash: hasher, log: log.New("storage", "zk")}, nil
}

// Root returns the root hash of the state the next commit extends.
func (s *ZkStorage) Root() common.Hash {
	return s.root
}

// Get returns the value recorded for the next read. The value is not
// authenticated until the log containing the read is committed.
func (s *ZkStorage) Get(key common.StorageKey, w witness.Witness) (common.StorageValue, bool, error) {
	var hint valueHint
	if err := w.GetHint(&hint); err != nil {
		return common.StorageValue{}, false, fmt.Errorf("failed to replay read of key %v: %w", key, err)
	}
	if !hint.Present {
		return common.StorageValue{}, false, nil
	}
	return common.NewStorageValue(hint.Value), true, nil
}

// ValidateAndCommit replays the commit of the log. The commit concludes the
// replay of a transition, so the witness must be fully consumed by it. On
// success, the new root becomes the base of subsequent commits.
func (s *ZkStorage) ValidateAndCommit(log *cache.Log, w witness.Witness) (common.Hash, error) {
	batch, err := validateAndCommit(zkSource{s}, log, w)
	if err != nil {
		return common.Hash{}, err
	}
	if err := witness.CheckExhausted(w); err != nil {
		return common.Hash{}, fmt.Errorf("replay of version %d: %w", batch.Version, err)
	}
	s.root = batch.Root
	s.log.Debug("Replayed commit", "version", batch.Version, "root", batch.Root, "hints", w.Len())
	return batch.Root, nil
}

// zkSource serves the commit algorithm from the witness.
type zkSource struct {
	*ZkStorage
}

func (s zkSource) hasher() common.Hasher {
	return s.hash
}

func (s zkSource) latestVersion(w witness.Witness) (uint64, error) {
	var version uint64
	if err := w.GetHint(&version); err != nil {
		return 0, fmt.Errorf("failed to replay version: %w", err)
	}
	return version, nil
}

func (s zkSource) rootHash(uint64) (common.Hash, error) {
	return s.root, nil
}

func (s zkSource) readProof(keyHash common.Hash, _ uint64, w witness.Witness) (jmt.SparseMerkleProof, error) {
	var proof jmt.SparseMerkleProof
	if err := w.GetHint(&proof); err != nil {
		return proof, fmt.Errorf("failed to replay proof of %v: %w", keyHash, err)
	}
	return proof, nil
}

func (s zkSource) validateReads() bool {
	return true
}

func (s zkSource) nodeReader(w witness.Witness) jmt.NodeReader {
	return NewTreeWitnessReader(w)
}

// persist keeps nothing; the new root is adopted once the witness is known
// to be consumed.
func (s zkSource) persist(*jmt.TreeUpdateBatch, map[common.Hash][]byte) error {
	return nil
}
