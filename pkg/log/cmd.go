// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os/exec"
)

type CommandFunc func(cmd *exec.Cmd) (out string, success bool)

//Wrapper for exec.Command(...).CombinedOutput(). If this is used, exec's can
//be mocked/tracked by testlog. External loader tooling (zipl, genprotimg,
//the luks ramdisk tool) must go through this seam.
var Cmd CommandFunc = DefaultCmd

// Default impl of Cmd(); runs a command, capturing output, logging in the
// event of failure. Combined output is returned in both cases so failures
// can be surfaced to the caller with the tool's own words.
func DefaultCmd(cmd *exec.Cmd) (out string, success bool) {
	Logf("Running %v...", cmd.Args)
	b, err := cmd.CombinedOutput()
	out = string(b)
	if err == nil {
		success = true
		return
	}
	Logf("Running %v: error %s\noutput:\n%s\n", cmd.Args, err, out)
	return
}
