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
)

// ErrMissingValue is matched by all errors reporting that a required state
// entry is absent.
const ErrMissingValue = common.ConstError("missing value")

// MissingValueError names the container and key of an absent state entry.
type MissingValueError struct {
	Prefix common.Prefix
	Key    []byte
}

func (e *MissingValueError) Error() string {
	if len(e.Key) == 0 {
		return fmt.Sprintf("%v in %v", ErrMissingValue, e.Prefix)
	}
	return fmt.Sprintf("%v in %v for key 0x%x", ErrMissingValue, e.Prefix, e.Key)
}

func (e *MissingValueError) Is(target error) bool {
	return target == ErrMissingValue
}

// DecodeError reports a stored value that could not be decoded by the codec
// of its container.
type DecodeError struct {
	Key   common.StorageKey
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode value of %v: %v", e.Key, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
