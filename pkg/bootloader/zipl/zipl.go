// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package zipl is the s390x boot loader backend. After new BLS entries are
// written, the zipl installation must be resynchronized; on hardware with
// Secure Execution host keys this means sealing kernel, initrd and kernel
// command line into one encrypted boot image first.
//
// The sync is stamp-gated and retried at whole-sequence granularity: the
// stamp written by WriteConfig is only removed once an entire sync (secure
// or fallback) succeeds, so any failure leaves the next invocation to redo
// everything from the start.
package zipl

import (
	"os"

	"github.com/nikita-dubrovskii/ostree/pkg/bootloader"
	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/strs"
	"github.com/nikita-dubrovskii/ostree/pkg/sysroot"
)

type Bootloader struct {
	sysroot *sysroot.Sysroot
}

var _ bootloader.Bootloader = (*Bootloader)(nil)

func New(sr *sysroot.Sysroot) *Bootloader {
	return &Bootloader{sysroot: sr}
}

func (z *Bootloader) Name() string { return "zipl" }

// This backend is never auto-detected; it must be explicitly chosen by the
// deployment system.
func (z *Bootloader) Query() (bool, error) { return false, nil }

// WriteConfig stamps the sysroot so the next PostBLSSync actually runs.
// The BLS entries themselves are written by the deployment machinery.
func (z *Bootloader) WriteConfig(bootversion int) error {
	return z.markSyncRequired()
}

// PostBLSSync (re)installs zipl for the given boot version. No-op without
// a pending stamp. With Secure Execution host keys present, the sealed
// image pipeline runs; otherwise plain zipl re-reads the BLS config
// itself. Only full success clears the stamp.
func (z *Bootloader) PostBLSSync(bootversion int) error {
	required, err := z.isSyncRequired()
	if err != nil {
		return err
	}
	if !required {
		return nil
	}

	keys, err := z.listHostKeys()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		err = z.secureExecutionEnable(bootversion, keys)
	} else {
		err = z.installFallback()
	}
	if err != nil {
		return err
	}
	return z.clearSyncRequired()
}

// The Secure Execution pipeline, in strict sequence: read the boot entry,
// fold in the luks key if configured, seal the image, install it.
func (z *Bootloader) secureExecutionEnable(bootversion int, keys []string) error {
	entry, err := z.readEntry(bootversion)
	if err != nil {
		return err
	}
	initrd, err := z.tryAugmentInitrd(entry.initrd)
	if err != nil {
		return err
	}
	image, err := z.buildSecureImage(entry.kernel, initrd, entry.options, keys)
	if err != nil {
		return err
	}
	return z.installSecureImage(image)
}

func (z *Bootloader) stampPath() string {
	return z.sysroot.Join(strs.UpdateStamp())
}

// markSyncRequired creates the stamp; an existing stamp is truncated, so
// repeated config writes collapse into one pending sync.
func (z *Bootloader) markSyncRequired() error {
	return os.WriteFile(z.stampPath(), nil, 0644)
}

// isSyncRequired reports whether a config write is awaiting sync. Absence
// of the stamp is not an error.
func (z *Bootloader) isSyncRequired() (bool, error) {
	_, err := os.Stat(z.stampPath())
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (z *Bootloader) clearSyncRequired() error {
	err := os.Remove(z.stampPath())
	if err == nil {
		log.Logf("zipl: sync complete, stamp cleared")
	}
	return err
}
