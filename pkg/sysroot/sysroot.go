// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package sysroot represents the managed root a boot loader backend
// operates on. The root is always passed explicitly; backends hold no
// ambient global state.
package sysroot

import (
	"fmt"
	fp "path/filepath"

	"github.com/nikita-dubrovskii/ostree/pkg/bls"
)

type Sysroot struct {
	path string
}

//New returns a sysroot rooted at path. "/" for the booted deployment.
func New(path string) *Sysroot {
	return &Sysroot{path: path}
}

func (s *Sysroot) Path() string { return s.path }

//Join resolves a sysroot-relative path.
func (s *Sysroot) Join(parts ...string) string {
	return fp.Join(append([]string{s.path}, parts...)...)
}

//BootLoaderConfigs returns the BLS entries for the given boot version,
//highest priority first. Zero entries is not an error here; callers that
//require an entry must treat an empty result as one.
func (s *Sysroot) BootLoaderConfigs(bootversion int) ([]*bls.Entry, error) {
	dir := s.Join("boot", fmt.Sprintf("loader.%d", bootversion), "entries")
	return bls.ReadEntries(dir)
}
