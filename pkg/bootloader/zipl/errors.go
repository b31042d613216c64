// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package zipl

import (
	"errors"
	"fmt"
	"strings"
)

//the BLS store held no entry for the boot version being synced
var ErrNoBLSConfig = errors.New("no bls config")

//ConfigError reports a BLS entry missing a mandatory key. Each missing
//key yields its own error; fields are never silently defaulted.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no %q key in bootloader config", e.Key)
}

//SubprocessError reports an external tool that could not be spawned or
//exited non-zero. Output carries the tool's combined stdout/stderr where
//available.
type SubprocessError struct {
	Tool   string
	Output string
}

func (e *SubprocessError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("`%s` failed", e.Tool)
	}
	return fmt.Sprintf("`%s` failed: %s", e.Tool, out)
}
