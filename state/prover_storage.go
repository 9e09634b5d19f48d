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
	"time"
	"unsafe"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/database/jmt"
	"github.com/LukaszRozmej/sovereign/database/statedb"
	"github.com/LukaszRozmej/sovereign/state/cache"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	nativeCommitTimer = metrics.NewRegisteredTimer("state/native/commit", nil)
	nativeReadCounter = metrics.NewRegisteredCounter("state/native/read", nil)
)

// ProverStorage is the native Storage backed by a persistent versioned tree.
// It records in the witness everything a ZkStorage needs to replay the same
// reads and commits without access to the tree.
//
// A ProverStorage may be shared by multiple working sets; all of them read
// the latest committed version. Committing is not synchronized: the caller
// must make sure only a single log is committed on top of each version.
type ProverStorage struct {
	db             *statedb.StateDB
	skipValidation bool
	log            log.Logger
}

func newProverStorage(db *statedb.StateDB, params Parameters) *ProverStorage {
	return &ProverStorage{
		db:             db,
		skipValidation: params.DisableReadValidation,
		log:            log.New("storage", "native"),
	}
}

// Get returns the value of the key in the latest committed version and
// records it in the witness.
func (s *ProverStorage) Get(key common.StorageKey, w witness.Witness) (common.StorageValue, bool, error) {
	nativeReadCounter.Inc(1)
	value, found, err := s.db.Tree().Get(key.HashWith(s.db.Hasher()), s.LatestVersion())
	if err != nil {
		return common.StorageValue{}, false, fmt.Errorf("failed to read key %v: %w", key, err)
	}
	if err := w.AddHint(valueHint{Present: found, Value: value}); err != nil {
		return common.StorageValue{}, false, err
	}
	if !found {
		return common.StorageValue{}, false, nil
	}
	return common.NewStorageValue(value), true, nil
}

// ValidateAndCommit validates the reads of the log against the latest
// version, writes the log's updates as the next version and returns the
// new root.
func (s *ProverStorage) ValidateAndCommit(log *cache.Log, w witness.Witness) (common.Hash, error) {
	start := time.Now()
	batch, err := validateAndCommit(nativeSource{s}, log, w)
	if err != nil {
		return common.Hash{}, err
	}
	nativeCommitTimer.UpdateSince(start)
	s.log.Debug("Committed", "version", batch.Version, "root", batch.Root, "keys", log.Len(), "hints", w.Len())
	return batch.Root, nil
}

// LatestVersion returns the most recently committed version.
func (s *ProverStorage) LatestVersion() uint64 {
	return s.db.GetNextVersion() - 1
}

// GetRootHash returns the root hash of a committed version.
func (s *ProverStorage) GetRootHash(version uint64) (common.Hash, error) {
	return s.db.GetRootHash(version)
}

// GetWithProof returns the value of the key in the given version together
// with a proof for the result.
func (s *ProverStorage) GetWithProof(key common.StorageKey, version uint64) (common.StorageValue, bool, jmt.SparseMerkleProof, error) {
	value, found, proof, err := s.db.Tree().GetWithProof(key.HashWith(s.db.Hasher()), version)
	if err != nil || !found {
		return common.StorageValue{}, false, proof, err
	}
	return common.NewStorageValue(value), true, proof, nil
}

// GetPreimage returns the original key of a key hash written before.
func (s *ProverStorage) GetPreimage(keyHash common.Hash) (common.StorageKey, bool, error) {
	key, found, err := s.db.GetPreimage(keyHash)
	if err != nil || !found {
		return common.StorageKey{}, false, err
	}
	return common.StorageKeyFromBytes(key), true, nil
}

// ForEachPreimage visits all keys ever written, ordered by key hash.
func (s *ProverStorage) ForEachPreimage(visit func(keyHash common.Hash, key common.StorageKey) error) error {
	return s.db.ForEachPreimage(func(keyHash common.Hash, key []byte) error {
		return visit(keyHash, common.StorageKeyFromBytes(key))
	})
}

// ForEachNode visits all tree nodes of all versions, ordered by version.
func (s *ProverStorage) ForEachNode(visit func(key jmt.NodeKey, node jmt.Node) error) error {
	return s.db.ForEachNode(visit)
}

// GetMemoryFootprint provides sizes of the in-memory components of the storage.
func (s *ProverStorage) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	mf.AddChild("db", s.db.GetMemoryFootprint())
	return mf
}

// Hasher returns the hasher used for keys and tree nodes.
func (s *ProverStorage) Hasher() common.Hasher {
	return s.db.Hasher()
}

func (s *ProverStorage) Flush() error {
	return s.db.Flush()
}

func (s *ProverStorage) Close() error {
	return s.db.Close()
}

// nativeSource serves the commit algorithm from the database.
type nativeSource struct {
	*ProverStorage
}

func (s nativeSource) hasher() common.Hasher {
	return s.db.Hasher()
}

func (s nativeSource) latestVersion(w witness.Witness) (uint64, error) {
	version := s.LatestVersion()
	return version, w.AddHint(version)
}

func (s nativeSource) rootHash(version uint64) (common.Hash, error) {
	return s.db.GetRootHash(version)
}

func (s nativeSource) readProof(keyHash common.Hash, version uint64, w witness.Witness) (jmt.SparseMerkleProof, error) {
	_, _, proof, err := s.db.Tree().GetWithProof(keyHash, version)
	if err != nil {
		return proof, err
	}
	return proof, w.AddHint(proof)
}

func (s nativeSource) validateReads() bool {
	return !s.skipValidation
}

func (s nativeSource) nodeReader(w witness.Witness) jmt.NodeReader {
	return NewTreeReadLogger(s.db, w)
}

func (s nativeSource) persist(batch *jmt.TreeUpdateBatch, preimages map[common.Hash][]byte) error {
	return s.db.WriteNodeBatch(batch, preimages)
}
