// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Command bootsync drives the zipl backend by hand: stamp a pending sync
//after a config write, or run the sync itself. Must run as root on the
//booted deployment - zipl and genprotimg are privileged.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nikita-dubrovskii/ostree/pkg/bootloader/zipl"
	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/log/flags"
	"github.com/nikita-dubrovskii/ostree/pkg/sysroot"
)

func main() {
	log.AddConsoleLog(flags.NA)
	log.FlushMemLog()

	var sysrootPath string
	var bootversion int

	root := &cobra.Command{
		Use:           "bootsync",
		Short:         "synchronize the zipl boot loader after a deployment write",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&sysrootPath, "sysroot", "/", "path to the managed sysroot")
	root.PersistentFlags().IntVar(&bootversion, "boot-version", 0, "boot version to operate on")

	writeConfig := &cobra.Command{
		Use:   "write-config",
		Short: "record that boot configuration changed and a sync is required",
		RunE: func(cmd *cobra.Command, args []string) error {
			return zipl.New(sysroot.New(sysrootPath)).WriteConfig(bootversion)
		},
	}
	sync := &cobra.Command{
		Use:   "sync",
		Short: "run the pending loader synchronization, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			return zipl.New(sysroot.New(sysrootPath)).PostBLSSync(bootversion)
		},
	}
	root.AddCommand(writeConfig, sync)

	if err := root.Execute(); err != nil {
		log.Logf("bootsync: %s", err)
		log.Finalize()
		os.Exit(1)
	}
	log.Finalize()
}
