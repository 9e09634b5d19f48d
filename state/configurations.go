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
	"github.com/LukaszRozmej/sovereign/database/statedb"
)

// Parameters struct defining configuration parameters for storage instances.
type Parameters struct {
	Variant       Variant
	Directory     string // required by the ldb variant
	Hasher        string // name of the hasher, sha256 by default
	NodeCacheSize int    // number of tree nodes kept in memory, derived from system memory if zero

	// DisableReadValidation skips the re-validation of an execution's reads
	// against the authenticated state when committing natively. Replaying
	// storages always validate reads, since they have no other source of
	// truth.
	DisableReadValidation bool
}

// UnsupportedConfiguration is the error returned if unsupported configuration
// parameters have been specified. The text may contain further details regarding the
// unsupported feature.
const UnsupportedConfiguration = common.ConstError("unsupported configuration")

// Variant selects the way a native storage keeps its state.
type Variant string

const (
	// LevelDbVariant keeps the state in a LevelDB instance in Parameters.Directory.
	LevelDbVariant Variant = "ldb"
	// MemoryVariant keeps the state in memory; it is lost on close.
	MemoryVariant Variant = "memory"
)

// NewProverStorage is the public interface for creating native storage
// instances. If the requested configuration is not supported, the error is
// an UnsupportedConfiguration error.
func NewProverStorage(params Parameters) (*ProverStorage, error) {
	// Enforce default values.
	if params.Variant == "" {
		params.Variant = LevelDbVariant
		if params.Directory == "" {
			params.Variant = MemoryVariant
		}
	}
	factory, found := storageFactoryRegistry[params.Variant]
	if !found {
		return nil, fmt.Errorf("%w: no registered implementation for variant %q", UnsupportedConfiguration, params.Variant)
	}
	options, err := params.statedbOptions()
	if err != nil {
		return nil, err
	}
	db, err := factory(params, options)
	if err != nil {
		return nil, err
	}
	return newProverStorage(db, params), nil
}

func (p *Parameters) hasher() (common.Hasher, error) {
	hasher, err := common.GetHasher(p.Hasher)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", UnsupportedConfiguration, err)
	}
	return hasher, nil
}

func (p *Parameters) statedbOptions() (statedb.Options, error) {
	hasher, err := p.hasher()
	if err != nil {
		return statedb.Options{}, err
	}
	if p.NodeCacheSize < 0 {
		return statedb.Options{}, fmt.Errorf("%w: negative node cache size %d", UnsupportedConfiguration, p.NodeCacheSize)
	}
	return statedb.Options{Hasher: hasher, NodeCacheSize: p.NodeCacheSize}, nil
}

type storageFactory func(params Parameters, options statedb.Options) (*statedb.StateDB, error)

var storageFactoryRegistry = map[Variant]storageFactory{
	LevelDbVariant: func(params Parameters, options statedb.Options) (*statedb.StateDB, error) {
		if params.Directory == "" {
			return nil, fmt.Errorf("%w: variant %q requires a directory", UnsupportedConfiguration, LevelDbVariant)
		}
		return statedb.Open(params.Directory, options)
	},
	MemoryVariant: func(_ Parameters, options statedb.Options) (*statedb.StateDB, error) {
		return statedb.OpenTemporary(options)
	},
}
