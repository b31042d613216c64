// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package fileutil contains small filesystem helpers shared by the boot
// loader backends.
package fileutil

import (
	"bufio"
	"os"
	"strings"

	"github.com/nikita-dubrovskii/ostree/pkg/log"
)

// Exists reports whether path exists. Any stat error other than
// non-existence is treated as absence; callers needing the error must
// stat themselves.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadConfigLines reads a config file at the given path. Whitespace is
// stripped, as are comments (anything between # and \n). Individual lines
// are returned, up to maxLines.
func ReadConfigLines(path string, maxLines int) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	var lines []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if strings.Contains(l, "#") {
			l = strings.TrimSpace(strings.SplitN(l, "#", 2)[0]) //get rid of the comment
		}
		if len(l) == 0 {
			continue
		}
		lines = append(lines, l)
		if len(lines) == maxLines {
			log.Logf("ReadConfigLines: max lines (%d) read from %s", maxLines, path)
			break
		}
	}
	err = scanner.Err()
	if err != nil {
		return nil, err
	}
	return lines, nil
}
