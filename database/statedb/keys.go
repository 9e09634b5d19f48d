// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package statedb

import (
	"encoding/binary"
	"fmt"

	"github.com/LukaszRozmej/sovereign/backend"
	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/database/jmt"
)

const versionSize = 8

// hasherKey is the metadata entry recording the hasher a store was created with.
var hasherKey = backend.ToDBKey(backend.MetadataKey, []byte("hasher"))

// nextVersionKey is the single entry holding the next version to be committed.
var nextVersionKey = backend.ToDBKey(backend.VersionKey)

// nodeDbKey is a key for the node table, it consists of
// * the tablespace
// * the version the node was written in, big-endian to keep versions ordered
// * the encoded path of the node
func nodeDbKey(key jmt.NodeKey) []byte {
	var version [versionSize]byte
	binary.BigEndian.PutUint64(version[:], key.Version)
	return backend.ToDBKey(backend.NodeKey, version[:], key.Path.Encode())
}

func parseNodeDbKey(data []byte) (jmt.NodeKey, error) {
	if len(data) < 1+versionSize || data[0] != byte(backend.NodeKey) {
		return jmt.NodeKey{}, fmt.Errorf("invalid node key %x", data)
	}
	path, err := jmt.DecodeNodePath(data[1+versionSize:])
	if err != nil {
		return jmt.NodeKey{}, err
	}
	return jmt.NodeKey{
		Version: binary.BigEndian.Uint64(data[1 : 1+versionSize]),
		Path:    path,
	}, nil
}

// preimageDbKey is a key for the preimage table, it consists of
// * the tablespace
// * the hash of the original key
func preimageDbKey(keyHash common.Hash) []byte {
	return backend.ToDBKey(backend.PreimageKey, keyHash[:])
}

func encodeVersion(version uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, version)
}

func decodeVersion(data []byte) (uint64, error) {
	if len(data) != versionSize {
		return 0, fmt.Errorf("invalid version encoding %x", data)
	}
	return binary.BigEndian.Uint64(data), nil
}
