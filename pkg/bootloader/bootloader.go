// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package bootloader defines the capability a boot loader backend offers
// to the deployment machinery. The surrounding system selects one
// implementation per loader family (zipl, grub2, ...) and drives it
// through this interface.
package bootloader

type Bootloader interface {
	// Query reports whether this backend detects itself as active on the
	// running system. Backends that must be chosen explicitly always
	// report false.
	Query() (active bool, err error)

	// Name identifies the loader family, e.g. "zipl".
	Name() string

	// WriteConfig records that boot configuration for the given boot
	// version was (re)written and the real loader now needs a sync.
	WriteConfig(bootversion int) error

	// PostBLSSync (re)installs the real boot loader if a preceding
	// WriteConfig made that necessary. A no-op when nothing is pending.
	// On any failure the pending state survives, so the next call
	// retries the whole sequence.
	PostBLSSync(bootversion int) error
}
