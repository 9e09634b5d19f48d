// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package jmt

import (
	"testing"

	"github.com/LukaszRozmej/sovereign/common"
)

// FuzzTree_RandomUpdates interprets the input as a sequence of commits of
// set and delete operations and compares the resulting tree with a map.
// Every 3 bytes form an operation: kind, key, value. A kind divisible by 5
// ends the current commit.
func FuzzTree_RandomUpdates(f *testing.F) {
	f.Add([]byte{1, 1, 1, 1, 2, 2, 0, 0, 0, 2, 1, 0})
	f.Add([]byte{1, 1, 1, 1, 2, 2, 1, 3, 3, 0, 0, 0, 2, 2, 0, 2, 1, 0, 0, 0, 0, 2, 3, 0})
	f.Add([]byte{1, 7, 1, 0, 0, 0, 1, 7, 2, 0, 0, 0, 2, 7, 0})

	f.Fuzz(func(t *testing.T, data []byte) {
		store := NewMemoryNodeStore()
		model := map[common.Hash]string{}
		pending := map[common.Hash]Update{}

		flush := func() {
			updates := make([]Update, 0, len(pending))
			for _, update := range pending {
				updates = append(updates, update)
			}
			batch := commit(t, store, updates...)
			pending = map[common.Hash]Update{}
			if want := rootOf(t, model); batch.Root != want {
				t.Fatalf("root of version %d is %v, expected %v", batch.Version, batch.Root, want)
			}
			tree := NewTree(store, common.Sha256)
			for i := 0; i < 16; i++ {
				key := keyHash(i)
				value, found, err := tree.Get(key, batch.Version)
				if err != nil {
					t.Fatalf("failed to get key %d: %v", i, err)
				}
				want, exists := model[key]
				if found != exists || string(value) != want {
					t.Fatalf("key %d: got %q/%t, want %q/%t", i, value, found, want, exists)
				}
			}
		}

		for ; len(data) >= 3; data = data[3:] {
			kind, key := data[0], keyHash(int(data[1]%16))
			switch {
			case kind%5 == 0:
				flush()
			case kind%2 == 0:
				pending[key] = del(key)
				delete(model, key)
			default:
				value := string([]byte{'v', data[2]})
				pending[key] = set(key, value)
				model[key] = value
			}
		}
		flush()
	})
}
