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
	"os"
	"os/exec"

	"github.com/opencontainers/go-digest"

	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/strs"
)

// buildSecureImage seals kernel, initrd and kernel command line under the
// given host keys into one boot image, overwriting the previous one. The
// key set must be non-empty; callers branch on that before getting here.
// Returns the image path.
func (z *Bootloader) buildSecureImage(kernel, initrd, options string, keys []string) (string, error) {
	if len(keys) == 0 {
		return "", errors.New("s390x SE: building image with no host keys")
	}
	log.Logf("s390x SE: kernel: %s", kernel)
	log.Logf("s390x SE: initrd: %s", initrd)
	log.Logf("s390x SE: kargs: %s", options)

	parmfile, err := writeParmfile(options)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(parmfile); err != nil {
			log.Logf("s390x SE: removing %s: %s", parmfile, err)
		}
	}()

	tool := strs.ProtImgTool()
	image := strs.SecureImage()
	args := []string{"-i", kernel, "-r", initrd, "-p", parmfile}
	for i, key := range keys {
		args = append(args, "-k", key)
		log.Logf("s390x SE: key[%d]: %s", i+1, key)
	}
	args = append(args, "--no-verify", "-o", image)

	out, ok := log.Cmd(exec.Command(tool, args...))
	if !ok {
		return "", fmt.Errorf("s390x SE: %w", &SubprocessError{Tool: tool, Output: out})
	}
	logImageDigest(image)
	log.Logf("s390x SE: `%s` generated", image)
	return image, nil
}

// writeParmfile writes the kernel options verbatim - raw bytes, no
// trailing newline - to a uniquely named scratch file for the image
// generator. The caller removes it once the build is over, success or not.
func writeParmfile(options string) (string, error) {
	f, err := os.CreateTemp("", strs.ParmfilePrefix())
	if err != nil {
		return "", fmt.Errorf("s390x SE: creating parmfile: %w", err)
	}
	_, werr := f.WriteString(options)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("s390x SE: writing %s: %w", f.Name(), werr)
	}
	return f.Name(), nil
}

// Best effort; the digest only serves to let operators correlate the
// installed artifact with journal output.
func logImageDigest(image string) {
	f, err := os.Open(image)
	if err != nil {
		log.Logf("s390x SE: cannot digest %s: %s", image, err)
		return
	}
	defer f.Close()
	dgst, err := digest.FromReader(f)
	if err != nil {
		log.Logf("s390x SE: cannot digest %s: %s", image, err)
		return
	}
	log.Logf("s390x SE: %s digest: %s", image, dgst)
}
