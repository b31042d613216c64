// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Abstraction for fixed paths and tool names that implementors (and tests)
//will likely wish to change.
package strs

import (
	"github.com/nikita-dubrovskii/ostree/pkg/log"
)

//Abstraction for fixed paths and tool names that implementors will likely
//wish to change. Defaults match a booted s390x deployment.
type Stringer interface {
	//Directory scanned for Secure Execution host keys.
	HostKeyDir() string
	//Filename prefix a host key file must carry.
	HostKeyPrefix() string
	//Directory holding kernels, initrds and the loader configuration.
	BootDir() string
	//Output path of the sealed Secure Execution boot image.
	SecureImage() string
	//Output path of the initrd with the luks key folded in.
	SecureInitrd() string
	//Local disk-decryption key; one half of the luks gate.
	LuksRootKey() string
	//Device-mapping config naming encrypted devices; other half of the gate.
	LuksConfig() string
	//Tool repackaging an initrd with the luks key.
	RamdiskTool() string
	//Tool sealing kernel+initrd+cmdline under host keys.
	ProtImgTool() string
	//The boot loader installer itself.
	LoaderTool() string
	//Stamp recording that a config write happened, relative to the sysroot.
	UpdateStamp() string
	//Name prefix for the kernel command line scratch file.
	ParmfilePrefix() string
}

var stringImpl Stringer

//Override defaults. Pass nil to restore them (used by tests).
func SetStringer(b Stringer) {
	if stringImpl != nil && b != nil {
		log.Log("strs: overriding non-nil impl")
	}
	stringImpl = b
}

//Directory scanned for Secure Execution host keys.
func HostKeyDir() string {
	if stringImpl != nil {
		return stringImpl.HostKeyDir()
	}
	return "/etc/se-hostkeys/"
}

//Filename prefix a host key file must carry.
func HostKeyPrefix() string {
	if stringImpl != nil {
		return stringImpl.HostKeyPrefix()
	}
	return "ibm-z-hostkey"
}

//Directory holding kernels, initrds and the loader configuration.
func BootDir() string {
	if stringImpl != nil {
		return stringImpl.BootDir()
	}
	return "/boot"
}

//Output path of the sealed Secure Execution boot image.
func SecureImage() string {
	if stringImpl != nil {
		return stringImpl.SecureImage()
	}
	return "/boot/sd-boot"
}

//Output path of the initrd with the luks key folded in.
func SecureInitrd() string {
	if stringImpl != nil {
		return stringImpl.SecureInitrd()
	}
	return "/tmp/sd-initrd.img"
}

//Local disk-decryption key; one half of the luks gate.
func LuksRootKey() string {
	if stringImpl != nil {
		return stringImpl.LuksRootKey()
	}
	return "/etc/luks/root"
}

//Device-mapping config naming encrypted devices; other half of the gate.
func LuksConfig() string {
	if stringImpl != nil {
		return stringImpl.LuksConfig()
	}
	return "/etc/crypttab"
}

//Tool repackaging an initrd with the luks key.
func RamdiskTool() string {
	if stringImpl != nil {
		return stringImpl.RamdiskTool()
	}
	return "s390x-se-luks-gencpio"
}

//Tool sealing kernel+initrd+cmdline under host keys.
func ProtImgTool() string {
	if stringImpl != nil {
		return stringImpl.ProtImgTool()
	}
	return "genprotimg"
}

//The boot loader installer itself.
func LoaderTool() string {
	if stringImpl != nil {
		return stringImpl.LoaderTool()
	}
	return "zipl"
}

//Stamp recording that a config write happened, relative to the sysroot.
func UpdateStamp() string {
	if stringImpl != nil {
		return stringImpl.UpdateStamp()
	}
	return "boot/ostree-bootloader-update.stamp"
}

//Name prefix for the kernel command line scratch file.
func ParmfilePrefix() string {
	if stringImpl != nil {
		return stringImpl.ParmfilePrefix()
	}
	return "sd_boot.parmfile."
}
