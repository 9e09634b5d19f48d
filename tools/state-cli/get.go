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

var keyFlag = cli.StringFlag{
	Name:     "key",
	Usage:    "the hex encoded storage key",
	Required: true,
}

var getValueCommand = cli.Command{
	Action: getValue,
	Name:   "get",
	Usage:  "prints the value of a key together with its proof",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&hasherFlag,
		&versionFlag,
		&keyFlag,
	},
}

func getValue(ctx *cli.Context) (err error) {
	raw, err := hexutil.Decode(ctx.String(keyFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	key := common.StorageKeyFromBytes(raw)

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
	value, found, proof, err := storage.GetWithProof(key, version)
	if err != nil {
		return err
	}
	if err := proof.Verify(root, key.HashWith(storage.Hasher()), value.Bytes(), found, storage.Hasher()); err != nil {
		return fmt.Errorf("proof of key %v does not match root %v: %w", key, root, err)
	}

	fmt.Printf("Key:      %v\n", key)
	fmt.Printf("Key hash: %v\n", key.HashWith(storage.Hasher()))
	fmt.Printf("Version:  %d\n", version)
	fmt.Printf("Root:     %v\n", root)
	if found {
		fmt.Printf("Value:    %s\n", hexutil.Encode(value.Bytes()))
	} else {
		fmt.Printf("Value:    <absent>\n")
	}
	fmt.Printf("Proof:    %v\n", &proof)
	return nil
}
