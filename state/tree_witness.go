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

	"github.com/LukaszRozmej/sovereign/common/witness"
	"github.com/LukaszRozmej/sovereign/database/jmt"
)

// valueHint is the witness record of a single storage read.
type valueHint struct {
	_       struct{} `cbor:",toarray"`
	Present bool
	Value   []byte
}

// TreeReadLogger is a jmt.NodeReader recording every node it resolves in a
// witness, so that the same sequence of reads can be replayed by a
// TreeWitnessReader.
type TreeReadLogger struct {
	reader  jmt.NodeReader
	witness witness.Witness
}

func NewTreeReadLogger(reader jmt.NodeReader, w witness.Witness) *TreeReadLogger {
	return &TreeReadLogger{reader: reader, witness: w}
}

func (l *TreeReadLogger) GetNode(key jmt.NodeKey) (jmt.Node, error) {
	node, err := l.reader.GetNode(key)
	if err != nil {
		return nil, err
	}
	data, err := jmt.EncodeNode(node)
	if err != nil {
		return nil, err
	}
	if err := l.witness.AddHint(data); err != nil {
		return nil, fmt.Errorf("failed to record node %v: %w", key, err)
	}
	return node, nil
}

// TreeWitnessReader is a jmt.NodeReader serving nodes recorded by a
// TreeReadLogger. The requested keys are not checked; the tree verifies
// every resolved node against the hash of its parent.
type TreeWitnessReader struct {
	witness witness.Witness
}

func NewTreeWitnessReader(w witness.Witness) *TreeWitnessReader {
	return &TreeWitnessReader{witness: w}
}

func (r *TreeWitnessReader) GetNode(key jmt.NodeKey) (jmt.Node, error) {
	var data []byte
	if err := r.witness.GetHint(&data); err != nil {
		return nil, fmt.Errorf("failed to replay node %v: %w", key, err)
	}
	node, err := jmt.DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid node %v: %w", witness.ErrWitnessMismatch, key, err)
	}
	return node, nil
}
