// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package zipl

import (
	"fmt"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/nikita-dubrovskii/ostree/pkg/strs"
)

// listHostKeys returns full paths of every Secure Execution host key: the
// files in the host key dir whose names carry the host key prefix. A
// non-empty result is the sole trigger for the secure path. Order is
// directory iteration order; downstream passes it through unchanged and
// attaches no meaning to it.
func (z *Bootloader) listHostKeys() ([]string, error) {
	dir := strs.HostKeyDir()
	dents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("s390x SE: looking for SE keys: %w", err)
	}
	var keys []string
	for _, d := range dents {
		if strings.HasPrefix(d.Name(), strs.HostKeyPrefix()) {
			keys = append(keys, fp.Join(dir, d.Name()))
		}
	}
	return keys, nil
}
