// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package jmt implements a versioned binary sparse Merkle tree in the style
// of a Jellyfish Merkle Tree.
//
// Keys are 32-byte hashes; the bits of a key hash, most significant first,
// describe the navigation path from the root to the key's leaf. A subtree
// holding a single leaf is represented by that leaf, placed at the shortest
// path that is not shared with any other key. Empty subtrees hash to the
// zero hash.
//
// Nodes are never modified. Every update produces a new version in which all
// nodes touched by the update are re-created, while untouched subtrees are
// referenced by the version they were created in. Thus, every node is
// addressed by a NodeKey consisting of the version it was written in and its
// path, and the root of version v is always stored at (v, empty path).
//
// Node hashes are
//
//	leaf:     H(0x00 || key hash || H(value))
//	internal: H(0x01 || left hash || right hash)
//	empty:    0x00..00
//
// The tree performs no I/O on its own. Nodes are resolved through a
// NodeReader, which allows the same update logic to run on a database or on
// nodes replayed from a witness. Every resolved node is checked against the
// hash recorded in its parent.
package jmt
