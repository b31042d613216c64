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

	futil "github.com/nikita-dubrovskii/ostree/pkg/fileutil"
	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/strs"
)

// Both the root key and the device-mapping config naming it must exist for
// injection to be worthwhile; one without the other leaves nothing to
// unlock with and nothing to unlock, respectively.
func luksKeyExists() bool {
	return futil.Accessible(strs.LuksRootKey()) && futil.Accessible(strs.LuksConfig())
}

// tryAugmentInitrd repackages initrd with the local luks root key folded
// in, returning the augmented image's path. When the luks gate is not met,
// the original initrd is returned untouched and no tool runs.
func (z *Bootloader) tryAugmentInitrd(initrd string) (string, error) {
	if !luksKeyExists() {
		return initrd, nil
	}
	tool := strs.RamdiskTool()
	augmented := strs.SecureInitrd()
	out, ok := log.Cmd(exec.Command(tool, initrd, augmented))
	if !ok {
		return "", fmt.Errorf("s390x SE: enabling luks: %w",
			&SubprocessError{Tool: tool, Output: out})
	}
	log.Logf("s390x SE: luks key added to initrd")
	return augmented, nil
}
