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
	fp "path/filepath"
	"strings"
	"testing"

	"github.com/nikita-dubrovskii/ostree/pkg/log"
	"github.com/nikita-dubrovskii/ostree/pkg/log/testlog"
	"github.com/nikita-dubrovskii/ostree/pkg/strs"
	"github.com/nikita-dubrovskii/ostree/pkg/sysroot"
)

//paths rooted in a per-test dir; satisfies strs.Stringer
type testPaths struct {
	root string
}

func (p testPaths) HostKeyDir() string     { return fp.Join(p.root, "etc/se-hostkeys") }
func (p testPaths) HostKeyPrefix() string  { return "ibm-z-hostkey" }
func (p testPaths) BootDir() string        { return fp.Join(p.root, "boot") }
func (p testPaths) SecureImage() string    { return fp.Join(p.root, "boot/sd-boot") }
func (p testPaths) SecureInitrd() string   { return fp.Join(p.root, "tmp/sd-initrd.img") }
func (p testPaths) LuksRootKey() string    { return fp.Join(p.root, "etc/luks/root") }
func (p testPaths) LuksConfig() string     { return fp.Join(p.root, "etc/crypttab") }
func (p testPaths) RamdiskTool() string    { return "s390x-se-luks-gencpio" }
func (p testPaths) ProtImgTool() string    { return "genprotimg" }
func (p testPaths) LoaderTool() string     { return "zipl" }
func (p testPaths) UpdateStamp() string    { return "boot/ostree-bootloader-update.stamp" }
func (p testPaths) ParmfilePrefix() string { return "sd_boot.parmfile." }

func newTestBackend(t *testing.T) (*Bootloader, testPaths) {
	t.Helper()
	tp := testPaths{root: t.TempDir()}
	strs.SetStringer(tp)
	t.Cleanup(func() { strs.SetStringer(nil) })
	for _, d := range []string{"boot", "etc/se-hostkeys", "etc/luks", "tmp"} {
		if err := os.MkdirAll(fp.Join(tp.root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return New(sysroot.New(tp.root)), tp
}

//replaces log.Cmd: records every argv, returns canned results, and mimics
//tool side effects (parmfile capture, image creation) without spawning
//anything
type execRecorder struct {
	argv [][]string
	fail map[string]bool   //tool name -> exit non-zero
	out  map[string]string //tool name -> combined output
	parm []string          //genprotimg -p file contents, captured during the call
}

func (r *execRecorder) hijack(t *testing.T) {
	t.Helper()
	if r.fail == nil {
		r.fail = make(map[string]bool)
	}
	if r.out == nil {
		r.out = make(map[string]string)
	}
	log.Cmd = func(cmd *exec.Cmd) (string, bool) {
		r.argv = append(r.argv, cmd.Args)
		tool := cmd.Args[0]
		if tool == "genprotimg" && !r.fail[tool] {
			for i, a := range cmd.Args {
				if a == "-p" && i+1 < len(cmd.Args) {
					b, err := os.ReadFile(cmd.Args[i+1])
					if err != nil {
						t.Errorf("parmfile unreadable during build: %s", err)
					}
					r.parm = append(r.parm, string(b))
				}
				if a == "-o" && i+1 < len(cmd.Args) {
					if err := os.WriteFile(cmd.Args[i+1], []byte("sealed"), 0644); err != nil {
						t.Errorf("writing fake image: %s", err)
					}
				}
			}
		}
		return r.out[tool], !r.fail[tool]
	}
	t.Cleanup(func() { log.Cmd = log.DefaultCmd })
}

//ran returns how many times the named tool was invoked
func (r *execRecorder) ran(tool string) (n int) {
	for _, a := range r.argv {
		if a[0] == tool {
			n++
		}
	}
	return
}

func writeBLSEntry(t *testing.T, tp testPaths, bootversion int, keys map[string]string) {
	t.Helper()
	dir := fp.Join(tp.root, "boot", fmt.Sprintf("loader.%d", bootversion), "entries")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	b.WriteString("title test deployment\n")
	for k, v := range keys {
		fmt.Fprintf(&b, "%s %s\n", k, v)
	}
	if err := os.WriteFile(fp.Join(dir, "ostree-1.conf"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeHostKey(t *testing.T, tp testPaths, name string) string {
	t.Helper()
	p := fp.Join(tp.HostKeyDir(), name)
	if err := os.WriteFile(p, []byte("key material"), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func stampExists(tp testPaths) bool {
	_, err := os.Stat(fp.Join(tp.root, tp.UpdateStamp()))
	return err == nil
}

//func (z *Bootloader) PostBLSSync(bootversion int) error
func TestSyncNoOpWithoutStamp(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{}
	rec.hijack(t)

	for i := 0; i < 3; i++ {
		if err := z.PostBLSSync(0); err != nil {
			t.Fatalf("run %d: %s", i, err)
		}
	}
	if len(rec.argv) != 0 {
		t.Errorf("no-op sync spawned tools: %v", rec.argv)
	}
	if stampExists(tp) {
		t.Error("no-op sync created a stamp")
	}
}

//func (z *Bootloader) WriteConfig(bootversion int) error
func TestStampLifecycle(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{}
	rec.hijack(t)

	//write-config is idempotent
	for i := 0; i < 2; i++ {
		if err := z.WriteConfig(0); err != nil {
			t.Fatal(err)
		}
		if !stampExists(tp) {
			t.Fatal("stamp missing after WriteConfig")
		}
	}

	//successful fallback clears the stamp
	if err := z.PostBLSSync(0); err != nil {
		t.Fatal(err)
	}
	if stampExists(tp) {
		t.Error("stamp survived successful sync")
	}

	//failing run leaves it set
	if err := z.WriteConfig(0); err != nil {
		t.Fatal(err)
	}
	rec.fail["zipl"] = true
	if err := z.PostBLSSync(0); err == nil {
		t.Error("want error from failing zipl")
	}
	if !stampExists(tp) {
		t.Error("stamp cleared despite failure")
	}

	//retry after the tool recovers succeeds and clears
	rec.fail["zipl"] = false
	if err := z.PostBLSSync(0); err != nil {
		t.Fatal(err)
	}
	if stampExists(tp) {
		t.Error("stamp survived successful retry")
	}
}

//func (z *Bootloader) listHostKeys() ([]string, error)
func TestListHostKeys(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)

	keys, err := z.listHostKeys()
	if err != nil || len(keys) != 0 {
		t.Errorf("empty dir: got %v, %s", keys, err)
	}

	k1 := writeHostKey(t, tp, "ibm-z-hostkey-1.crt")
	k2 := writeHostKey(t, tp, "ibm-z-hostkey-2.crt")
	writeHostKey(t, tp, "README") //no prefix, ignored

	keys, err = z.listHostKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != k1 || keys[1] != k2 {
		t.Errorf("bad keys %v", keys)
	}

	//unreadable key dir is fatal
	if err := os.RemoveAll(tp.HostKeyDir()); err != nil {
		t.Fatal(err)
	}
	if _, err = z.listHostKeys(); err == nil {
		t.Error("missing key dir must be an error")
	}
}

func TestKeyGatedBranching(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	t.Run("no keys -> fallback", func(t *testing.T) {
		z, tp := newTestBackend(t)
		rec := &execRecorder{}
		rec.hijack(t)
		if err := z.WriteConfig(0); err != nil {
			t.Fatal(err)
		}
		if err := z.PostBLSSync(0); err != nil {
			t.Fatal(err)
		}
		if len(rec.argv) != 1 || len(rec.argv[0]) != 1 || rec.argv[0][0] != "zipl" {
			t.Errorf("want bare zipl, got %v", rec.argv)
		}
		if stampExists(tp) {
			t.Error("stamp survived fallback success")
		}
	})

	t.Run("keys -> secure path", func(t *testing.T) {
		z, tp := newTestBackend(t)
		rec := &execRecorder{}
		rec.hijack(t)
		writeHostKey(t, tp, "ibm-z-hostkey-1.crt")
		writeBLSEntry(t, tp, 0, map[string]string{
			"linux":   "vmlinuz-5.10",
			"initrd":  "initramfs-5.10.img",
			"options": "root=/dev/mapper/ostree",
		})
		if err := z.WriteConfig(0); err != nil {
			t.Fatal(err)
		}
		if err := z.PostBLSSync(0); err != nil {
			t.Fatal(err)
		}
		if rec.ran("genprotimg") != 1 {
			t.Errorf("genprotimg runs: %v", rec.argv)
		}
		want := []string{"zipl", "-V", "-t", tp.BootDir(), "-i", tp.SecureImage()}
		last := rec.argv[len(rec.argv)-1]
		if strings.Join(last, " ") != strings.Join(want, " ") {
			t.Errorf("zipl argv\n got %v\nwant %v", last, want)
		}
		if stampExists(tp) {
			t.Error("stamp survived secure success")
		}
	})
}

//func (z *Bootloader) readEntry(bootversion int) (blsEntry, error)
func TestReadEntry(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)

	//zero entries
	_, err := z.readEntry(0)
	if !errors.Is(err, ErrNoBLSConfig) {
		t.Errorf("want ErrNoBLSConfig, got %v", err)
	}

	complete := map[string]string{
		"linux":   "vmlinuz-5.10",
		"initrd":  "initramfs-5.10.img",
		"options": "root=/dev/mapper/ostree rw",
	}
	for _, missing := range []string{"linux", "initrd", "options"} {
		partial := make(map[string]string)
		for k, v := range complete {
			if k != missing {
				partial[k] = v
			}
		}
		writeBLSEntry(t, tp, 0, partial)
		_, err := z.readEntry(0)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("missing %s: want ConfigError, got %v", missing, err)
		}
		if ce.Key != missing {
			t.Errorf("want error naming %q, got %q", missing, ce.Key)
		}
	}

	writeBLSEntry(t, tp, 0, complete)
	e, err := z.readEntry(0)
	if err != nil {
		t.Fatal(err)
	}
	if e.kernel != fp.Join(tp.BootDir(), "vmlinuz-5.10") {
		t.Errorf("bad kernel %q", e.kernel)
	}
	if e.initrd != fp.Join(tp.BootDir(), "initramfs-5.10.img") {
		t.Errorf("bad initrd %q", e.initrd)
	}
	if e.options != "root=/dev/mapper/ostree rw" {
		t.Errorf("bad options %q", e.options)
	}
}

//func (z *Bootloader) tryAugmentInitrd(initrd string) (string, error)
func TestLuksGating(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()

	cases := []struct {
		name     string
		key, cfg bool
		augment  bool
	}{
		{"neither", false, false, false},
		{"key only", true, false, false},
		{"config only", false, true, false},
		{"both", true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			z, tp := newTestBackend(t)
			rec := &execRecorder{}
			rec.hijack(t)
			if tc.key {
				if err := os.WriteFile(tp.LuksRootKey(), []byte("secret"), 0600); err != nil {
					t.Fatal(err)
				}
			}
			if tc.cfg {
				if err := os.WriteFile(tp.LuksConfig(), []byte("root /etc/luks/root\n"), 0644); err != nil {
					t.Fatal(err)
				}
			}
			orig := fp.Join(tp.BootDir(), "initramfs.img")
			got, err := z.tryAugmentInitrd(orig)
			if err != nil {
				t.Fatal(err)
			}
			if !tc.augment {
				if got != orig {
					t.Errorf("initrd changed to %q", got)
				}
				if len(rec.argv) != 0 {
					t.Errorf("ramdisk tool spawned: %v", rec.argv)
				}
				return
			}
			if got != tp.SecureInitrd() {
				t.Errorf("bad augmented path %q", got)
			}
			want := []string{"s390x-se-luks-gencpio", orig, tp.SecureInitrd()}
			if len(rec.argv) != 1 || strings.Join(rec.argv[0], " ") != strings.Join(want, " ") {
				t.Errorf("bad argv %v", rec.argv)
			}
		})
	}

	t.Run("tool failure is fatal and reports output", func(t *testing.T) {
		z, tp := newTestBackend(t)
		rec := &execRecorder{
			fail: map[string]bool{"s390x-se-luks-gencpio": true},
			out:  map[string]string{"s390x-se-luks-gencpio": "cpio: short write"},
		}
		rec.hijack(t)
		if err := os.WriteFile(tp.LuksRootKey(), []byte("secret"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(tp.LuksConfig(), []byte("root\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := z.tryAugmentInitrd("initrd.img")
		var se *SubprocessError
		if !errors.As(err, &se) {
			t.Fatalf("want SubprocessError, got %v", err)
		}
		if se.Tool != "s390x-se-luks-gencpio" || !strings.Contains(se.Output, "short write") {
			t.Errorf("bad error %#v", se)
		}
	})
}

//func (z *Bootloader) buildSecureImage(kernel, initrd, options string, keys []string) (string, error)
func TestSecureImageArgs(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{}
	rec.hijack(t)

	k1 := writeHostKey(t, tp, "ibm-z-hostkey-a.crt")
	k2 := writeHostKey(t, tp, "ibm-z-hostkey-b.crt")
	kernel := fp.Join(tp.BootDir(), "vmlinuz-5.10")
	initrd := fp.Join(tp.BootDir(), "initramfs-5.10.img")

	image, err := z.buildSecureImage(kernel, initrd, "root=/dev/mapper/ostree", []string{k1, k2})
	if err != nil {
		t.Fatal(err)
	}
	if image != tp.SecureImage() {
		t.Errorf("bad image path %q", image)
	}
	if len(rec.argv) != 1 {
		t.Fatalf("bad spawn count %v", rec.argv)
	}
	args := rec.argv[0]
	parmfile := ""
	for i, a := range args {
		if a == "-p" {
			parmfile = args[i+1]
		}
	}
	if parmfile == "" {
		t.Fatalf("no -p flag in %v", args)
	}
	want := []string{"genprotimg", "-i", kernel, "-r", initrd, "-p", parmfile,
		"-k", k1, "-k", k2, "--no-verify", "-o", tp.SecureImage()}
	if strings.Join(args, " ") != strings.Join(want, " ") {
		t.Errorf("argv\n got %v\nwant %v", args, want)
	}
	//command line file content is the options verbatim, no trailing newline
	if len(rec.parm) != 1 || rec.parm[0] != "root=/dev/mapper/ostree" {
		t.Errorf("bad parmfile contents %q", rec.parm)
	}
	//scratch file is gone after a successful build
	if _, err := os.Stat(parmfile); !os.IsNotExist(err) {
		t.Errorf("parmfile %s still present", parmfile)
	}
}

func TestSecureImageScratchCleanupOnFailure(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{
		fail: map[string]bool{"genprotimg": true},
		out:  map[string]string{"genprotimg": "genprotimg: host key mismatch"},
	}
	rec.hijack(t)

	k := writeHostKey(t, tp, "ibm-z-hostkey-a.crt")
	_, err := z.buildSecureImage("vmlinuz", "initrd.img", "ro", []string{k})
	var se *SubprocessError
	if !errors.As(err, &se) || se.Tool != "genprotimg" {
		t.Fatalf("want SubprocessError for genprotimg, got %v", err)
	}
	parmfile := ""
	for i, a := range rec.argv[0] {
		if a == "-p" {
			parmfile = rec.argv[0][i+1]
		}
	}
	if parmfile == "" {
		t.Fatal("no parmfile recorded")
	}
	if _, err := os.Stat(parmfile); !os.IsNotExist(err) {
		t.Errorf("parmfile %s survived failed build", parmfile)
	}
}

func TestSecureFailureLeavesStampAndStopsPipeline(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{
		fail: map[string]bool{"genprotimg": true},
	}
	rec.hijack(t)

	writeHostKey(t, tp, "ibm-z-hostkey-1.crt")
	writeBLSEntry(t, tp, 0, map[string]string{
		"linux":   "vmlinuz",
		"initrd":  "initramfs.img",
		"options": "ro",
	})
	if err := z.WriteConfig(0); err != nil {
		t.Fatal(err)
	}
	if err := z.PostBLSSync(0); err == nil {
		t.Fatal("want error from failing genprotimg")
	}
	if rec.ran("zipl") != 0 {
		t.Errorf("zipl ran despite aborted pipeline: %v", rec.argv)
	}
	if !stampExists(tp) {
		t.Error("stamp cleared despite failure")
	}
}

func TestFallbackFailurePropagation(t *testing.T) {
	tlog := testlog.NewTestLog(t, true, false)
	defer tlog.Freeze()
	z, tp := newTestBackend(t)
	rec := &execRecorder{
		fail: map[string]bool{"zipl": true},
		out:  map[string]string{"zipl": "zipl: device busy"},
	}
	rec.hijack(t)

	if err := z.WriteConfig(0); err != nil {
		t.Fatal(err)
	}
	err := z.PostBLSSync(0)
	var se *SubprocessError
	if !errors.As(err, &se) {
		t.Fatalf("want SubprocessError, got %v", err)
	}
	if se.Tool != "zipl" || !strings.Contains(se.Output, "device busy") {
		t.Errorf("bad error %#v", se)
	}
	if !stampExists(tp) {
		t.Error("stamp cleared despite failure")
	}
}
