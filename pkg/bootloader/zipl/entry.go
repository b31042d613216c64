// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package zipl

import (
	"fmt"
	fp "path/filepath"

	"github.com/nikita-dubrovskii/ostree/pkg/strs"
)

//the kernel/initrd/options triple of the entry being sealed
type blsEntry struct {
	kernel  string
	initrd  string
	options string
}

// readEntry loads the highest-priority BLS entry for the boot version.
// All three of linux/initrd/options must be present; each missing key is
// its own ConfigError. Kernel and initrd paths resolve under the boot dir.
func (z *Bootloader) readEntry(bootversion int) (e blsEntry, err error) {
	configs, err := z.sysroot.BootLoaderConfigs(bootversion)
	if err != nil {
		return e, fmt.Errorf("s390x SE: loading bls configs: %w", err)
	}
	if len(configs) == 0 {
		return e, fmt.Errorf("s390x SE: %w", ErrNoBLSConfig)
	}
	entry := configs[0]

	val, ok := entry.Get("linux")
	if !ok {
		return e, fmt.Errorf("s390x SE: %w", &ConfigError{Key: "linux"})
	}
	e.kernel = fp.Join(strs.BootDir(), val)

	val, ok = entry.Get("initrd")
	if !ok {
		return e, fmt.Errorf("s390x SE: %w", &ConfigError{Key: "initrd"})
	}
	e.initrd = fp.Join(strs.BootDir(), val)

	e.options, ok = entry.Get("options")
	if !ok {
		return e, fmt.Errorf("s390x SE: %w", &ConfigError{Key: "options"})
	}
	return e, nil
}
