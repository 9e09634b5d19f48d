// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"encoding/hex"
	"errors"
	"sync"
	"testing"
)

func TestHasher_EmptyInputDigests(t *testing.T) {
	tests := map[Hasher]string{
		Sha256:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Keccak256: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Blake2b:   "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
	}
	for hasher, want := range tests {
		got := hasher.Hash()
		if hex.EncodeToString(got[:]) != want {
			t.Errorf("%s: got %x, want %s", hasher.Name(), got, want)
		}
	}
}

func TestHasher_PartsAreConcatenated(t *testing.T) {
	for _, hasher := range []Hasher{Sha256, Keccak256, Blake2b} {
		whole := hasher.Hash([]byte("hello world"))
		parts := hasher.Hash([]byte("hello"), []byte(" "), []byte("world"))
		if whole != parts {
			t.Errorf("%s: hashing parts differs from hashing the concatenation", hasher.Name())
		}
		if whole == hasher.Hash([]byte("hello")) {
			t.Errorf("%s: different inputs produced the same hash", hasher.Name())
		}
	}
}

func TestHasher_CanBeUsedConcurrently(t *testing.T) {
	want := Sha256.Hash([]byte{1, 2, 3})
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Sha256.Hash([]byte{1, 2, 3}); got != want {
					errs[i] = errors.New("unexpected hash")
					return
				}
			}
		}(i)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		t.Error(err)
	}
}

func TestGetHasher_ResolvesNames(t *testing.T) {
	tests := map[string]Hasher{
		"":          Sha256,
		"sha256":    Sha256,
		"keccak256": Keccak256,
		"blake2b":   Blake2b,
	}
	for name, want := range tests {
		got, err := GetHasher(name)
		if err != nil {
			t.Fatalf("failed to resolve %q: %v", name, err)
		}
		if got != want {
			t.Errorf("%q resolved to %s", name, got.Name())
		}
	}
	if _, err := GetHasher("md5"); !errors.Is(err, ErrUnknownHasher) {
		t.Errorf("unexpected error for unknown hasher: %v", err)
	}
}
