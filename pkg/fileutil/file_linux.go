// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package fileutil

import (
	"golang.org/x/sys/unix"
)

// Accessible reports whether path can be reached, via access(2). Used for
// gating decisions that the loader tooling itself will re-check, so F_OK
// is sufficient.
func Accessible(path string) bool {
	return unix.Access(path, unix.F_OK) == nil
}
