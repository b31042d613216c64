// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package strs

import (
	"testing"
)

type altPaths struct{}

func (altPaths) HostKeyDir() string     { return "/custom/keys" }
func (altPaths) HostKeyPrefix() string  { return "hostkey" }
func (altPaths) BootDir() string        { return "/custom/boot" }
func (altPaths) SecureImage() string    { return "/custom/boot/image" }
func (altPaths) SecureInitrd() string   { return "/custom/tmp/initrd" }
func (altPaths) LuksRootKey() string    { return "/custom/luks" }
func (altPaths) LuksConfig() string     { return "/custom/crypttab" }
func (altPaths) RamdiskTool() string    { return "gencpio" }
func (altPaths) ProtImgTool() string    { return "protimg" }
func (altPaths) LoaderTool() string     { return "loader" }
func (altPaths) UpdateStamp() string    { return "custom.stamp" }
func (altPaths) ParmfilePrefix() string { return "parm." }

//func SetStringer(b Stringer)
func TestSetStringer(t *testing.T) {
	if HostKeyDir() != "/etc/se-hostkeys/" {
		t.Errorf("bad default %q", HostKeyDir())
	}
	if LoaderTool() != "zipl" {
		t.Errorf("bad default %q", LoaderTool())
	}
	SetStringer(altPaths{})
	defer SetStringer(nil)
	if HostKeyDir() != "/custom/keys" {
		t.Errorf("override ignored: %q", HostKeyDir())
	}
	if UpdateStamp() != "custom.stamp" {
		t.Errorf("override ignored: %q", UpdateStamp())
	}
	SetStringer(nil)
	if ProtImgTool() != "genprotimg" {
		t.Errorf("defaults not restored: %q", ProtImgTool())
	}
}
