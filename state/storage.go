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
	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/state/cache"
)

//go:generate mockgen -source storage.go -destination storage_mocks.go -package state

const (
	// ErrReadMismatch signals that a value observed during an execution does
	// not match the authenticated state. It indicates a bug in the execution
	// or a manipulated witness; the affected commit must be abandoned.
	ErrReadMismatch = common.ConstError("read does not match authenticated state")

	// ErrRootMismatch signals that a replayed witness extends a state other
	// than the expected one.
	ErrRootMismatch = common.ConstError("witness does not extend expected root")
)

// Storage is the backing store of executions. Implementations either have
// access to the full state and record every decision derived from it in the
// witness, or replay those decisions from the witness alone.
type Storage interface {
	// Get returns the latest committed value of the key. The result is
	// recorded in, or replayed from, the given witness.
	Get(key common.StorageKey, w witness.Witness) (common.StorageValue, bool, error)

	// ValidateAndCommit authenticates all reads of the log against the
	// latest committed state, applies all of its writes as a new version and
	// returns the new root hash.
	ValidateAndCommit(log *cache.Log, w witness.Witness) (common.Hash, error)
}
