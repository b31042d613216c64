// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package bls reads Boot Loader Specification entries - the per-kernel
// `key value` config files a deployment write leaves under
// boot/loader.N/entries/.
package bls

import (
	"os"
	fp "path/filepath"
	"sort"
	"strings"

	futil "github.com/nikita-dubrovskii/ostree/pkg/fileutil"
)

//max lines parsed per entry file; real entries have well under a dozen
const maxEntryLines = 64

//One BLS entry: the keys of a single .conf file.
type Entry struct {
	file string
	kv   map[string]string
}

//Path of the file the entry was read from.
func (e *Entry) File() string { return e.file }

//Raw value for key; ok is false if the entry lacks the key entirely.
func (e *Entry) Get(key string) (val string, ok bool) {
	val, ok = e.kv[key]
	return
}

//Parse one entry file. Lines hold a key, whitespace, and the raw value;
//blank lines and comments are skipped.
func ParseFile(path string) (*Entry, error) {
	lines, err := futil.ReadConfigLines(path, maxEntryLines)
	if err != nil {
		return nil, err
	}
	e := &Entry{file: path, kv: make(map[string]string)}
	for _, l := range lines {
		idx := strings.IndexAny(l, " \t")
		if idx < 0 {
			e.kv[l] = ""
			continue
		}
		e.kv[l[:idx]] = strings.TrimSpace(l[idx+1:])
	}
	return e, nil
}

//ReadEntries parses every .conf file in dir, highest priority first
//(entries sort descending by file name, so the newest deployment's entry
//is index 0). A missing dir yields no entries, not an error - the caller
//decides whether an empty store is fatal.
func ReadEntries(dir string) ([]*Entry, error) {
	dents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, d := range dents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".conf") {
			continue
		}
		names = append(names, d.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	var entries []*Entry
	for _, n := range names {
		e, err := ParseFile(fp.Join(dir, n))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
