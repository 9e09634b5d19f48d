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
	"golang.org/x/exp/slices"
)

// commitSource provides the authenticated data the commit algorithm needs.
// A native source derives it from the tree and records it in the witness, a
// replaying source takes it from the witness.
type commitSource interface {
	hasher() common.Hasher

	// latestVersion returns the version a commit extends.
	latestVersion(w witness.Witness) (uint64, error)

	// rootHash returns the trusted root hash of the given version.
	rootHash(version uint64) (common.Hash, error)

	// readProof provides the proof of the key's value in the given version.
	readProof(keyHash common.Hash, version uint64, w witness.Witness) (jmt.SparseMerkleProof, error)

	// validateReads reports whether read proofs need to be verified.
	validateReads() bool

	// nodeReader provides the nodes of the tree required by an update.
	nodeReader(w witness.Witness) jmt.NodeReader

	// persist stores the result of a successful commit.
	persist(batch *jmt.TreeUpdateBatch, preimages map[common.Hash][]byte) error
}

type hashedEntry struct {
	cache.Entry
	keyHash common.Hash
}

func hashEntries(entries []cache.Entry, hasher common.Hasher) []hashedEntry {
	res := make([]hashedEntry, len(entries))
	for i, entry := range entries {
		res[i] = hashedEntry{Entry: entry, keyHash: entry.Key.HashWith(hasher)}
	}
	slices.SortFunc(res, func(a, b hashedEntry) int { return a.keyHash.Compare(b.keyHash) })
	return res
}

// validateAndCommit is the commit algorithm shared by native and replaying
// storages. Both must observe the same sequence of witness operations for
// the same log, which is why all entries are processed in key hash order.
func validateAndCommit(src commitSource, log *cache.Log, w witness.Witness) (*jmt.TreeUpdateBatch, error) {
	hasher := src.hasher()
	version, err := src.latestVersion(w)
	if err != nil {
		return nil, err
	}
	root, err := src.rootHash(version)
	if err != nil {
		return nil, err
	}

	reads, writes := log.Split()
	for _, read := range hashEntries(reads, hasher) {
		proof, err := src.readProof(read.keyHash, version, w)
		if err != nil {
			return nil, fmt.Errorf("failed to get proof for key %v: %w", read.Key, err)
		}
		if !src.validateReads() {
			continue
		}
		value, present := read.Value.Get()
		if err := proof.Verify(root, read.keyHash, value.Bytes(), present, hasher); err != nil {
			return nil, fmt.Errorf("%w: key %v read as %v: %w", ErrReadMismatch, read.Key, read.Value, err)
		}
	}

	updates := make([]jmt.Update, 0, len(writes))
	preimages := make(map[common.Hash][]byte, len(writes))
	for _, write := range hashEntries(writes, hasher) {
		value, present := write.Value.Get()
		updates = append(updates, jmt.Update{KeyHash: write.keyHash, Value: value.Bytes(), Delete: !present})
		preimages[write.keyHash] = write.Key.Bytes()
	}

	reader := &rootCheckingReader{
		NodeReader: src.nodeReader(w),
		rootKey:    jmt.RootKey(version),
		root:       root,
		hasher:     hasher,
	}
	tree := jmt.NewTree(reader, hasher)
	batch, err := tree.PutValueSet(updates, version+1)
	if err != nil {
		return nil, fmt.Errorf("failed to update tree: %w", err)
	}
	if batch.PreviousRoot != root {
		return nil, fmt.Errorf("%w: update based on %v, expected %v", ErrRootMismatch, batch.PreviousRoot, root)
	}
	if err := src.persist(batch, preimages); err != nil {
		return nil, fmt.Errorf("failed to persist version %d: %w", batch.Version, err)
	}
	return batch, nil
}

// rootCheckingReader authenticates the root of the version being extended
// before any of its descendants are resolved. Descendants are checked
// against their parents by the tree.
type rootCheckingReader struct {
	jmt.NodeReader
	rootKey jmt.NodeKey
	root    common.Hash
	hasher  common.Hasher
}

func (r *rootCheckingReader) GetNode(key jmt.NodeKey) (jmt.Node, error) {
	node, err := r.NodeReader.GetNode(key)
	if err != nil || key != r.rootKey {
		return node, err
	}
	if hash := node.Hash(r.hasher); hash != r.root {
		return nil, fmt.Errorf("%w: root node of %v has hash %v, expected %v", ErrRootMismatch, key, hash, r.root)
	}
	return node, nil
}
