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
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MemoryFootprint describes the memory used by a component and its named
// sub-components as a tree.
type MemoryFootprint struct {
	value    uintptr
	note     string
	children map[string]*MemoryFootprint
}

func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: map[string]*MemoryFootprint{},
	}
}

// AddChild attaches the footprint of a sub-component. Nil children are ignored.
func (f *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	if child != nil {
		f.children[name] = child
	}
}

// SetNote attaches a free-form remark printed next to the component.
func (f *MemoryFootprint) SetNote(note string) {
	f.note = note
}

// Value returns the bytes used by the component itself.
func (f *MemoryFootprint) Value() uintptr {
	return f.value
}

// Total returns the bytes used by the component and all its sub-components.
// Components reachable through multiple paths are counted once.
func (f *MemoryFootprint) Total() uintptr {
	seen := map[*MemoryFootprint]struct{}{}
	var sum func(*MemoryFootprint) uintptr
	sum = func(cur *MemoryFootprint) uintptr {
		if _, found := seen[cur]; found {
			return 0
		}
		seen[cur] = struct{}{}
		total := cur.value
		for _, child := range cur.children {
			total += sum(child)
		}
		return total
	}
	return sum(f)
}

// String lists the totals of all components, children in name order.
func (f *MemoryFootprint) String() string {
	var b strings.Builder
	f.print(&b, ".", map[*MemoryFootprint]struct{}{})
	return b.String()
}

func (f *MemoryFootprint) print(b *strings.Builder, path string, visited map[*MemoryFootprint]struct{}) {
	if _, found := visited[f]; found {
		return
	}
	visited[f] = struct{}{}
	fmt.Fprintf(b, "%s %s", formatMemory(f.Total()), path)
	if f.note != "" {
		fmt.Fprintf(b, " (%s)", f.note)
	}
	b.WriteByte('\n')
	names := maps.Keys(f.children)
	slices.Sort(names)
	for _, name := range names {
		f.children[name].print(b, path+"/"+name, visited)
	}
}

func formatMemory(bytes uintptr) string {
	const unit = 1024
	const prefixes = "KMGTPE"
	div, exp := uint64(unit), 0
	for n := uint64(bytes) / unit; n >= unit && exp+1 < len(prefixes); n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), prefixes[exp])
}
