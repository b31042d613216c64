// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package zipl

import (
	"fmt"
	"os/exec"

	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/strs"
)

// installSecureImage registers the sealed image as the boot target.
func (z *Bootloader) installSecureImage(image string) error {
	tool := strs.LoaderTool()
	out, ok := log.Cmd(exec.Command(tool, "-V", "-t", strs.BootDir(), "-i", image))
	if !ok {
		return fmt.Errorf("s390x SE: %w", &SubprocessError{Tool: tool, Output: out})
	}
	log.Logf("s390x SE: `%s` installed", image)
	return nil
}

// installFallback runs the loader with no arguments; it discovers the BLS
// config from the standard boot directory on its own.
func (z *Bootloader) installFallback() error {
	tool := strs.LoaderTool()
	out, ok := log.Cmd(exec.Command(tool))
	if !ok {
		return &SubprocessError{Tool: tool, Output: out}
	}
	return nil
}
