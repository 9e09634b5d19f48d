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
	"os"
	"runtime/pprof"

	"github.com/LukaszRozmej/sovereign/state"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted state directory",
		Required: true,
	}
	hasherFlag = cli.StringFlag{
		Name:  "hasher",
		Usage: "the hasher the state was created with (sha256, keccak256, blake2b)",
		Value: "sha256",
	}
	versionFlag = cli.Uint64Flag{
		Name:  "version",
		Usage: "the version to inspect, the latest if not set",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	cpuProfilingFlag = cli.StringFlag{
		Name:  "cpu-profile",
		Usage: "enable the recording of a CPU profile",
	}
)

func setupLogging(ctx *cli.Context) error {
	level := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
	return nil
}

// open opens the native storage in the directory given by the command's flags.
func open(ctx *cli.Context) (*state.ProverStorage, error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Info("Opening state", "dir", dir)
	return state.NewProverStorage(state.Parameters{
		Variant:   state.LevelDbVariant,
		Directory: dir,
		Hasher:    ctx.String(hasherFlag.Name),
	})
}

// closeStorage closes the storage, reporting a failure through err unless
// an earlier error is pending.
func closeStorage(storage *state.ProverStorage, err *error) {
	log.Info("Closing state")
	if closeError := storage.Close(); closeError != nil {
		if *err == nil {
			*err = closeError
		} else {
			log.Error("Failure closing state", "err", closeError)
		}
	}
}

// selectedVersion returns the version given by the flags, the latest if none.
func selectedVersion(ctx *cli.Context, storage *state.ProverStorage) (uint64, error) {
	latest := storage.LatestVersion()
	if !ctx.IsSet(versionFlag.Name) {
		return latest, nil
	}
	version := ctx.Uint64(versionFlag.Name)
	if version > latest {
		return 0, fmt.Errorf("version %d not committed yet, latest is %d", version, latest)
	}
	return version, nil
}

func StartCPUProfile(profileName string) error {
	f, err := os.Create(profileName)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %s", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("could not start CPU profile: %s", err)
	}
	return nil
}

func StopCPUProfile() {
	pprof.StopCPUProfile()
}
