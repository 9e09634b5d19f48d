// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package immutable

import (
	"fmt"
	"strings"
)

// Bytes is an immutable slice of bytes that can be trivially cloned.
// Copies of a Bytes value share the same backing memory, and since the
// content can never be modified, no copy-on-read is required. Bytes values
// are comparable and may thus be used as map keys.
type Bytes struct {
	data string
}

// NewBytes creates a new Bytes from a slice of bytes. The input is copied,
// later modifications of the slice are not reflected.
func NewBytes(data []byte) Bytes {
	return Bytes{data: string(data)}
}

// Concat creates a new Bytes instance holding the concatenation of the
// given byte slices.
func Concat(parts ...[]byte) Bytes {
	var b strings.Builder
	size := 0
	for _, part := range parts {
		size += len(part)
	}
	b.Grow(size)
	for _, part := range parts {
		b.Write(part)
	}
	return Bytes{data: b.String()}
}

// ToBytes returns a fresh copy of the content.
func (b Bytes) ToBytes() []byte {
	return []byte(b.data)
}

// Len returns the number of bytes.
func (b Bytes) Len() int {
	return len(b.data)
}

// Compare orders Bytes lexicographically.
func (b Bytes) Compare(other Bytes) int {
	return strings.Compare(b.data, other.data)
}

// HasPrefix reports whether the given bytes start with the content of prefix.
func (b Bytes) HasPrefix(prefix Bytes) bool {
	return strings.HasPrefix(b.data, prefix.data)
}

func (b Bytes) String() string {
	return fmt.Sprintf("0x%x", b.data)
}
