// Copyright (C) 2021-2026 the Ostree-Go Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Subpackages implement boot loader management for image-based OS
// deployments. The central piece is the s390x zipl backend: after new
// Boot Loader Specification entries are written for a deployment, the
// real loader installation must be resynchronized, and on machines with
// IBM Secure Execution host keys this means sealing kernel, initrd and
// kernel command line into one encrypted boot image before zipl runs.
//
// Layout:
//
//    - pkg/bootloader: the capability a loader backend offers to the
//      surrounding deployment machinery.
//    - pkg/bootloader/zipl: the s390x backend, including the Secure
//      Execution image build pipeline.
//    - pkg/sysroot, pkg/bls: the managed root and the BLS entry store
//      the backends read from.
//    - pkg/log, pkg/strs, pkg/fileutil: shared plumbing.
//
package ostree
