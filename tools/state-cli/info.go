// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"

	"github.com/LukaszRozmej/sovereign/database/jmt"
	"github.com/urfave/cli/v2"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a state directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&hasherFlag,
		&versionFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	storage, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(storage, &err)

	version, err := selectedVersion(ctx, storage)
	if err != nil {
		return err
	}
	root, err := storage.GetRootHash(version)
	if err != nil {
		return err
	}
	fmt.Printf("Hasher:         %s\n", storage.Hasher().Name())
	fmt.Printf("Latest version: %d\n", storage.LatestVersion())
	fmt.Printf("Root of %d:      %v\n", version, root)

	var nodes, leaves int
	if err := storage.ForEachNode(func(_ jmt.NodeKey, node jmt.Node) error {
		nodes++
		if _, isLeaf := node.(*jmt.LeafNode); isLeaf {
			leaves++
		}
		return nil
	}); err != nil {
		return err
	}
	fmt.Printf("Stored nodes:   %d (%d leaves)\n", nodes, leaves)
	fmt.Printf("Memory usage:\n%v", storage.GetMemoryFootprint())
	return nil
}
