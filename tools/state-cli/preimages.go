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

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"
)

var listPreimagesCommand = cli.Command{
	Action: listPreimages,
	Name:   "preimages",
	Usage:  "lists all keys ever written together with their hashes",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&hasherFlag,
	},
}

func listPreimages(ctx *cli.Context) (err error) {
	storage, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(storage, &err)

	count := 0
	err = storage.ForEachPreimage(func(keyHash common.Hash, key common.StorageKey) error {
		count++
		fmt.Printf("%v %s\n", keyHash, hexutil.Encode(key.Bytes()))
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Printf("%d keys\n", count)
	return nil
}
