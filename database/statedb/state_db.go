// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package statedb persists the nodes of a versioned Merkle tree together with
// the preimages of the tree's key hashes in LevelDB.
//
// The store holds three tables: the next version to be committed, the nodes
// of all versions keyed by (version, path), and the original keys of all
// hashed keys ever written. A commit of a new version writes its nodes, its
// preimages and the advanced version counter in a single LevelDB batch, so
// readers never observe a partially committed version.
package statedb

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unsafe"

	"github.com/LukaszRozmej/sovereign/backend"
	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/database/jmt"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pbnjay/memory"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const (
	ErrIncompatibleStore = common.ConstError("incompatible store")
	ErrVersionMismatch   = common.ConstError("version mismatch")
	ErrClosed            = common.ConstError("store is closed")
)

var (
	nodeCacheHitCounter  = metrics.NewRegisteredCounter("statedb/node/cache/hit", nil)
	nodeCacheMissCounter = metrics.NewRegisteredCounter("statedb/node/cache/miss", nil)
	nodesWrittenCounter  = metrics.NewRegisteredCounter("statedb/node/written", nil)
	commitTimer          = metrics.NewRegisteredTimer("statedb/commit", nil)
)

// estimatedNodeSize is the average memory used by a cached node including
// its key and the cache's bookkeeping.
const estimatedNodeSize = 256

// Options configures a StateDB.
type Options struct {
	// Hasher used for the tree. A store can only be reopened with the
	// hasher it was created with. Defaults to SHA-256.
	Hasher common.Hasher
	// NodeCacheSize is the number of nodes kept in memory. If zero, the
	// size is derived from the available memory.
	NodeCacheSize int
}

// DefaultNodeCacheSize uses 1/32 of the system's memory for cached nodes,
// bounded to a reasonable range.
func DefaultNodeCacheSize() int {
	const minSize, maxSize = 1 << 10, 1 << 22
	size := memory.TotalMemory() / 32 / estimatedNodeSize
	if size < minSize {
		return minSize
	}
	if size > maxSize {
		return maxSize
	}
	return int(size)
}

// StateDB is a versioned node store backed by LevelDB. It implements the
// jmt.NodeReader interface and is safe for concurrent use. Commits must be
// serialized by the caller.
type StateDB struct {
	db          *leveldb.DB
	hasher      common.Hasher
	cache       *lru.Cache[jmt.NodeKey, jmt.Node]
	nextVersion uint64
	closed      bool
	mutex       sync.RWMutex
	log         log.Logger
}

// Open opens the store in the given directory, creating an empty store
// holding the empty tree as version 0 if the directory contains none.
func Open(directory string, options Options) (*StateDB, error) {
	db, err := backend.OpenLevelDb(directory, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return open(db, options, log.New("statedb", directory))
}

// OpenTemporary creates a store kept entirely in memory.
func OpenTemporary(options Options) (*StateDB, error) {
	db, err := backend.OpenInMemoryLevelDb(&opt.Options{})
	if err != nil {
		return nil, err
	}
	return open(db, options, log.New("statedb", "memory"))
}

func open(db *leveldb.DB, options Options, logger log.Logger) (*StateDB, error) {
	res, err := initialize(db, options, logger)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return res, nil
}

func initialize(db *leveldb.DB, options Options, logger log.Logger) (*StateDB, error) {
	hasher := options.Hasher
	if hasher == nil {
		hasher = common.Sha256
	}
	cacheSize := options.NodeCacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultNodeCacheSize()
	}
	cache, err := lru.New[jmt.NodeKey, jmt.Node](cacheSize)
	if err != nil {
		return nil, err
	}
	res := &StateDB{
		db:     db,
		hasher: hasher,
		cache:  cache,
		log:    logger,
	}

	stored, err := db.Get(nextVersionKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		if err := res.writeGenesis(); err != nil {
			return nil, err
		}
		logger.Info("Created new state", "hasher", hasher.Name())
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	if res.nextVersion, err = decodeVersion(stored); err != nil {
		return nil, err
	}
	name, err := db.Get(hasherKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read hasher of store: %w", err)
	}
	if string(name) != hasher.Name() {
		return nil, fmt.Errorf("%w: store uses hasher %s, configured %s", ErrIncompatibleStore, name, hasher.Name())
	}
	logger.Info("Opened existing state", "nextVersion", res.nextVersion, "hasher", hasher.Name())
	return res, nil
}

// writeGenesis initializes an empty store with the empty tree as version 0.
func (s *StateDB) writeGenesis() error {
	root, err := jmt.EncodeNode(jmt.NullNode{})
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(nodeDbKey(jmt.RootKey(0)), root)
	batch.Put(hasherKey, []byte(s.hasher.Name()))
	batch.Put(nextVersionKey, encodeVersion(1))
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return err
	}
	s.nextVersion = 1
	return nil
}

// Hasher returns the hasher used for the tree of this store.
func (s *StateDB) Hasher() common.Hasher {
	return s.hasher
}

// Tree provides read access to the versions stored in this store.
func (s *StateDB) Tree() *jmt.Tree {
	return jmt.NewTree(s, s.hasher)
}

// GetNextVersion returns the version the next commit will create.
func (s *StateDB) GetNextVersion() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.nextVersion
}

// GetNode implements jmt.NodeReader.
func (s *StateDB) GetNode(key jmt.NodeKey) (jmt.Node, error) {
	if node, found := s.cache.Get(key); found {
		nodeCacheHitCounter.Inc(1)
		return node, nil
	}
	nodeCacheMissCounter.Inc(1)

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	data, err := s.db.Get(nodeDbKey(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", jmt.ErrMissingNode, key)
	}
	if err != nil {
		return nil, err
	}
	node, err := jmt.DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %v: %w", key, err)
	}
	s.cache.Add(key, node)
	return node, nil
}

// GetRootHash returns the root hash of the given committed version.
func (s *StateDB) GetRootHash(version uint64) (common.Hash, error) {
	return s.Tree().GetRootHash(version)
}

// GetPreimage returns the original key of the given key hash, if known.
func (s *StateDB) GetPreimage(keyHash common.Hash) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	key, err := s.db.Get(preimageDbKey(keyHash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

// snapshot provides a consistent view of the committed data which remains
// valid while the store is used concurrently.
func (s *StateDB) snapshot() (*leveldb.Snapshot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.db.GetSnapshot()
}

// ForEachPreimage visits all known preimages ordered by key hash. Iteration
// stops at the first error returned by the visitor.
func (s *StateDB) ForEachPreimage(visit func(keyHash common.Hash, key []byte) error) error {
	snapshot, err := s.snapshot()
	if err != nil {
		return err
	}
	defer snapshot.Release()
	return backend.ForEachInTable(snapshot, backend.PreimageKey, func(dbKey, value []byte) error {
		keyHash, err := common.HashFromBytes(dbKey[1:])
		if err != nil {
			return err
		}
		key := make([]byte, len(value))
		copy(key, value)
		return visit(keyHash, key)
	})
}

// ForEachNode visits all nodes of all versions, ordered by version.
func (s *StateDB) ForEachNode(visit func(key jmt.NodeKey, node jmt.Node) error) error {
	snapshot, err := s.snapshot()
	if err != nil {
		return err
	}
	defer snapshot.Release()
	return backend.ForEachInTable(snapshot, backend.NodeKey, func(dbKey, value []byte) error {
		key, err := parseNodeDbKey(dbKey)
		if err != nil {
			return err
		}
		node, err := jmt.DecodeNode(value)
		if err != nil {
			return fmt.Errorf("failed to decode node %v: %w", key, err)
		}
		return visit(key, node)
	})
}

// WriteNodeBatch persists the nodes of a new version together with the
// preimages of the keys written in it and advances the version counter. All
// changes are applied atomically; on failure the store is unchanged.
func (s *StateDB) WriteNodeBatch(update *jmt.TreeUpdateBatch, preimages map[common.Hash][]byte) error {
	start := time.Now()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ErrClosed
	}
	if update.Version != s.nextVersion {
		return fmt.Errorf("%w: cannot write version %d, next version is %d", ErrVersionMismatch, update.Version, s.nextVersion)
	}

	batch := new(leveldb.Batch)
	for _, key := range update.SortedKeys() {
		data, err := jmt.EncodeNode(update.Nodes[key])
		if err != nil {
			return fmt.Errorf("failed to encode node %v: %w", key, err)
		}
		batch.Put(nodeDbKey(key), data)
	}
	for keyHash, key := range preimages {
		batch.Put(preimageDbKey(keyHash), key)
	}
	batch.Put(nextVersionKey, encodeVersion(update.Version+1))
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write version %d: %w", update.Version, err)
	}

	for key, node := range update.Nodes {
		s.cache.Add(key, node)
	}
	s.nextVersion = update.Version + 1
	nodesWrittenCounter.Inc(int64(len(update.Nodes)))
	commitTimer.UpdateSince(start)
	s.log.Debug("Committed version", "version", update.Version, "root", update.Root, "nodes", len(update.Nodes), "preimages", len(preimages))
	return nil
}

// GetMemoryFootprint provides sizes of the in-memory components of the store.
func (s *StateDB) GetMemoryFootprint() *common.MemoryFootprint {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	cached := s.cache.Len()
	nodes := common.NewMemoryFootprint(uintptr(cached) * estimatedNodeSize)
	nodes.SetNote(fmt.Sprintf("%d nodes", cached))
	mf.AddChild("nodeCache", nodes)
	if !s.closed {
		if property, err := s.db.GetProperty("leveldb.cachedblock"); err == nil {
			if size, err := strconv.ParseUint(property, 10, 64); err == nil {
				mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(size)))
			}
		}
	}
	return mf
}

// Flush forces all committed data to be synced to disk.
func (s *StateDB) Flush() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return ErrClosed
	}
	// a synced write also syncs the journal holding all previous writes
	return s.db.Put(nextVersionKey, encodeVersion(s.nextVersion), &opt.WriteOptions{Sync: true})
}

// Close releases the underlying database. Closing a closed store is a no-op.
func (s *StateDB) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache.Purge()
	if err := s.db.Close(); err != nil {
		return err
	}
	s.log.Debug("Closed state", "nextVersion", s.nextVersion)
	return nil
}
