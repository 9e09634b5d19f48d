// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package witness provides the side-channel connecting an execution with
// full state access to its replay with only a proof bundle. The recording
// execution appends a hint for every decision it derives from storage; the
// replaying execution consumes the same hints in the same order.
package witness

import (
	"fmt"

	"github.com/LukaszRozmej/sovereign/common"
)

//go:generate mockgen -source witness.go -destination witness_mocks.go -package witness

const (
	ErrWitnessExhausted = common.ConstError("witness exhausted")
	ErrWitnessMismatch  = common.ConstError("witness hint does not match the expected type")
	ErrWrongWitnessMode = common.ConstError("operation not supported in witness mode")

	ErrWitnessNotExhausted = common.ConstError("witness not exhausted")
)

// Mode is the operating mode of a witness.
type Mode byte

const (
	Recording Mode = iota
	Replaying
)

func (m Mode) String() string {
	switch m {
	case Recording:
		return "recording"
	case Replaying:
		return "replaying"
	}
	return "unknown"
}

// Witness is an ordered sequence of hints. A witness is either recording,
// in which case hints may only be added, or replaying, in which case hints
// may only be consumed in the order they were recorded.
type Witness interface {
	// AddHint appends the encoding of the given hint. Only valid while
	// recording.
	AddHint(hint any) error

	// GetHint decodes the next hint into out, which must be a pointer. Only
	// valid while replaying. Fails with ErrWitnessExhausted if no hints are
	// left and with ErrWitnessMismatch if the next hint is not a valid
	// encoding of out's type. A failed decoding still consumes the hint.
	GetHint(out any) error

	// MarshalBinary serializes all hints of this witness.
	MarshalBinary() ([]byte, error)

	// Len returns the total number of hints.
	Len() int

	// Remaining returns the number of hints not yet consumed.
	Remaining() int

	Mode() Mode
}

// CheckExhausted fails with ErrWitnessNotExhausted if the given witness is
// replaying and not all of its hints have been consumed. A recording witness
// is always considered exhausted.
func CheckExhausted(w Witness) error {
	if w.Mode() != Replaying {
		return nil
	}
	if remaining := w.Remaining(); remaining != 0 {
		return fmt.Errorf("%w: %d of %d hints unused", ErrWitnessNotExhausted, remaining, w.Len())
	}
	return nil
}
