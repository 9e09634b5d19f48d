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
	"regexp"
	"strings"
	"testing"
)

func TestMemoryFootprint_PrintsTotalsOfComponents(t *testing.T) {
	fp := NewMemoryFootprint(12)
	fp.AddChild("left", NewMemoryFootprint(50*1024))
	fp.AddChild("right", NewMemoryFootprint(10*1024*1024+200*1024))

	print := fp.String()
	for _, want := range []string{"10.2 MB .\n", "50.0 KB ./left", "10.2 MB ./right"} {
		if !strings.Contains(print, want) {
			t.Errorf("expected %q to contain %q", print, want)
		}
	}
}

func TestMemoryFootprint_NoteIsPrinted(t *testing.T) {
	fp := NewMemoryFootprint(12)
	fp.SetNote("1000 nodes")
	if !strings.Contains(fp.String(), "(1000 nodes)") {
		t.Errorf("note not printed: %v", fp)
	}
}

func TestMemoryFootprint_SharedComponentsAreCountedOnce(t *testing.T) {
	shared := NewMemoryFootprint(100)
	fp := NewMemoryFootprint(12)
	fp.AddChild("a", shared)
	fp.AddChild("b", shared)
	fp.AddChild("self", fp)
	fp.AddChild("nil", nil)

	if got, want := fp.Total(), uintptr(112); got != want {
		t.Errorf("unexpected total, wanted %d, got %d", want, got)
	}
	if got, want := fp.Value(), uintptr(12); got != want {
		t.Errorf("unexpected value, wanted %d, got %d", want, got)
	}
}

func TestMemoryFootprint_ComponentsArePrintedInOrder(t *testing.T) {
	fp := NewMemoryFootprint(4)
	fp.AddChild("b", NewMemoryFootprint(5*1024))
	fp.AddChild("a", NewMemoryFootprint(6*1024))
	fp.AddChild("c", NewMemoryFootprint(7*1024))

	match, err := regexp.MatchString(`6.*a[\S\s]*5.*b[\S\s]*7.*c`, fp.String())
	if err != nil {
		t.Fatalf("invalid pattern: %v", err)
	}
	if !match {
		t.Errorf("components not printed in order:\n%v", fp)
	}
}
