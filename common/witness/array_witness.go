// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package witness

import (
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}).DecMode(); err != nil {
		panic(err)
	}
}

// ArrayWitness keeps its hints in memory as a list of CBOR encoded entries.
// The serialized form is a CBOR array of byte strings, one per hint.
type ArrayWitness struct {
	mode  Mode
	hints [][]byte
	next  int
	mutex sync.Mutex
}

// NewArrayWitness creates an empty witness in recording mode.
func NewArrayWitness() *ArrayWitness {
	return &ArrayWitness{mode: Recording}
}

// NewReplayWitness creates a replaying witness from a serialized hint
// sequence as produced by MarshalBinary.
func NewReplayWitness(data []byte) (*ArrayWitness, error) {
	var hints [][]byte
	if err := decMode.Unmarshal(data, &hints); err != nil {
		return nil, fmt.Errorf("invalid witness encoding: %w", err)
	}
	return &ArrayWitness{mode: Replaying, hints: hints}, nil
}

// ReplayOf creates a replaying witness consuming the hints of the given
// witness. The source witness is not modified.
func ReplayOf(w *ArrayWitness) *ArrayWitness {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	hints := make([][]byte, len(w.hints))
	copy(hints, w.hints)
	return &ArrayWitness{mode: Replaying, hints: hints}
}

func (w *ArrayWitness) AddHint(hint any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.mode != Recording {
		return fmt.Errorf("%w: cannot add hints to a %v witness", ErrWrongWitnessMode, w.mode)
	}
	data, err := encMode.Marshal(hint)
	if err != nil {
		return fmt.Errorf("failed to encode hint %T: %w", hint, err)
	}
	w.hints = append(w.hints, data)
	return nil
}

func (w *ArrayWitness) GetHint(out any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.mode != Replaying {
		return fmt.Errorf("%w: cannot consume hints of a %v witness", ErrWrongWitnessMode, w.mode)
	}
	if w.next >= len(w.hints) {
		return fmt.Errorf("%w: all %d hints consumed", ErrWitnessExhausted, len(w.hints))
	}
	pos := w.next
	w.next++
	if err := decMode.Unmarshal(w.hints[pos], out); err != nil {
		return fmt.Errorf("%w: hint %d cannot be decoded as %T: %w", ErrWitnessMismatch, pos, out, err)
	}
	return nil
}

func (w *ArrayWitness) MarshalBinary() ([]byte, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	hints := w.hints
	if hints == nil {
		hints = [][]byte{}
	}
	return encMode.Marshal(hints)
}

func (w *ArrayWitness) Len() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.hints)
}

func (w *ArrayWitness) Remaining() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.mode != Replaying {
		return 0
	}
	return len(w.hints) - w.next
}

func (w *ArrayWitness) Mode() Mode {
	return w.mode
}

// String summarizes the state of the witness for debugging.
func (w *ArrayWitness) String() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return fmt.Sprintf("%v witness, %d hints, %d consumed", w.mode, len(w.hints), w.next)
}
