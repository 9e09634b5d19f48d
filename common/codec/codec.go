// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package codec provides the canonical encodings of keys and values stored
// in the state. Every codec is deterministic: equal values always produce
// identical bytes, and decoding rejects any input that is not the exact
// encoding of some value.
package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"
)

const ErrInvalidEncoding = common.ConstError("invalid encoding")

// Codec converts values of type T to and from their canonical encoding.
type Codec[T any] interface {
	Encode(value T) []byte
	Decode(data []byte) (T, error)
}

func errLength(kind string, got, want int) error {
	return fmt.Errorf("%w: %s requires %d bytes, got %d", ErrInvalidEncoding, kind, want, got)
}

// Uint32 encodes integers as 4 little-endian bytes.
type Uint32 struct{}

func (Uint32) Encode(value uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, value)
}

func (Uint32) Decode(data []byte) (uint32, error) {
	if len(data) != 4 {
		return 0, errLength("uint32", len(data), 4)
	}
	return binary.LittleEndian.Uint32(data), nil
}

// Uint64 encodes integers as 8 little-endian bytes.
type Uint64 struct{}

func (Uint64) Encode(value uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, value)
}

func (Uint64) Decode(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, errLength("uint64", len(data), 8)
	}
	return binary.LittleEndian.Uint64(data), nil
}

// Bool encodes booleans as a single 0 or 1 byte.
type Bool struct{}

func (Bool) Encode(value bool) []byte {
	if value {
		return []byte{1}
	}
	return []byte{0}
}

func (Bool) Decode(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, errLength("bool", len(data), 1)
	}
	switch data[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("%w: invalid bool byte %d", ErrInvalidEncoding, data[0])
}

// Bytes encodes byte slices as a 4-byte little-endian length followed by
// the content.
type Bytes struct{}

func (Bytes) Encode(value []byte) []byte {
	res := make([]byte, 4, 4+len(value))
	binary.LittleEndian.PutUint32(res, uint32(len(value)))
	return append(res, value...)
}

func (Bytes) Decode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: missing length", ErrInvalidEncoding)
	}
	size := binary.LittleEndian.Uint32(data)
	if uint64(len(data)-4) != uint64(size) {
		return nil, errLength("bytes", len(data)-4, int(size))
	}
	res := make([]byte, size)
	copy(res, data[4:])
	return res, nil
}

// String encodes strings like Bytes.
type String struct{}

func (String) Encode(value string) []byte {
	return Bytes{}.Encode([]byte(value))
}

func (String) Decode(data []byte) (string, error) {
	res, err := Bytes{}.Decode(data)
	if err != nil {
		return "", err
	}
	return string(res), nil
}

// Singleton is the key codec of containers holding a single value. All
// keys encode to the empty sequence, so the storage key is just the prefix.
type Singleton struct{}

func (Singleton) Encode(struct{}) []byte {
	return nil
}

func (Singleton) Decode(data []byte) (struct{}, error) {
	if len(data) != 0 {
		return struct{}{}, errLength("singleton", len(data), 0)
	}
	return struct{}{}, nil
}

// Uint256 encodes 256-bit integers as 32 big-endian bytes.
type Uint256 struct{}

func (Uint256) Encode(value *uint256.Int) []byte {
	res := value.Bytes32()
	return res[:]
}

func (Uint256) Decode(data []byte) (*uint256.Int, error) {
	if len(data) != 32 {
		return nil, errLength("uint256", len(data), 32)
	}
	return new(uint256.Int).SetBytes32(data), nil
}

// RLP encodes values using Ethereum's recursive length prefix encoding.
// Encoding panics for types RLP cannot represent.
type RLP[T any] struct{}

func (RLP[T]) Encode(value T) []byte {
	res, err := rlp.EncodeToBytes(value)
	if err != nil {
		panic(fmt.Sprintf("type %T cannot be RLP encoded: %v", value, err))
	}
	return res
}

func (RLP[T]) Decode(data []byte) (T, error) {
	var res T
	if err := rlp.DecodeBytes(data, &res); err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return res, nil
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	if cborEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDecMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

// CBOR encodes values using deterministic CBOR (RFC 8949 core encoding).
// Encoding panics for types CBOR cannot represent.
type CBOR[T any] struct{}

func (CBOR[T]) Encode(value T) []byte {
	res, err := cborEncMode.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("type %T cannot be CBOR encoded: %v", value, err))
	}
	return res
}

func (CBOR[T]) Decode(data []byte) (T, error) {
	var res T
	if err := cborDecMode.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return res, nil
}
