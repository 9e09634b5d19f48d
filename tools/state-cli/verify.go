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
	"time"

	"github.com/LukaszRozmej/sovereign/common"
	"github.com/LukaszRozmej/sovereign/common/interrupt"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var verifyCommand = cli.Command{
	Action: verify,
	Name:   "verify",
	Usage:  "checks the proofs of all known keys against the root of a version",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&hasherFlag,
		&versionFlag,
		&cpuProfilingFlag,
	},
}

func verify(ctx *cli.Context) (err error) {
	profileTarget := ctx.String(cpuProfilingFlag.Name)
	if len(profileTarget) != 0 {
		if err := StartCPUProfile(profileTarget); err != nil {
			return err
		}
		defer StopCPUProfile()
	}

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

	var keys []common.StorageKey
	if err := storage.ForEachPreimage(func(_ common.Hash, key common.StorageKey) error {
		keys = append(keys, key)
		return nil
	}); err != nil {
		return err
	}

	interrupted, stop := interrupt.Register(ctx.Context)
	defer stop()

	log.Info("Verifying proofs", "keys", len(keys), "version", version, "root", root)
	start := time.Now()
	hasher := storage.Hasher()
	present := 0
	for i, key := range keys {
		if err := interrupt.Check(interrupted); err != nil {
			return fmt.Errorf("verified %d of %d keys: %w", i, len(keys), err)
		}
		value, found, proof, err := storage.GetWithProof(key, version)
		if err != nil {
			return err
		}
		if err := proof.Verify(root, key.HashWith(hasher), value.Bytes(), found, hasher); err != nil {
			return fmt.Errorf("invalid proof for key %v: %w", key, err)
		}
		if found {
			present++
		}
		if (i+1)%100_000 == 0 {
			log.Info("Verifying proofs", "done", i+1, "elapsed", time.Since(start))
		}
	}
	fmt.Printf("Verified %d keys (%d present) against root %v in %v\n", len(keys), present, root, time.Since(start))
	return nil
}
