package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the command tree with args the way Execute does.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(normalizePolicyArgs(args))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

// minutes lists eleven snapshots one minute apart.
func minutes() string {
	var b strings.Builder
	for i := 0; i <= 10; i++ {
		fmt.Fprintf(&b, "20200101-00:%02d\n", i)
	}
	return b.String()
}

var wantDropped = "20200101-00:00\n20200101-00:01\n20200101-00:02\n20200101-00:03\n" +
	"20200101-00:04\n20200101-00:05\n20200101-00:06\n20200101-00:08\n20200101-00:09\n"

// snapshotDir creates an empty file per line of names.
func snapshotDir(t *testing.T, names string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range strings.Fields(names) {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retain.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "retain "+Version+"\n") {
		t.Errorf("version output = %q", stdout)
	}
	if !strings.Contains(stdout, "Go Version:") {
		t.Errorf("version output misses the Go version: %q", stdout)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		stdout, _, err := execute(t, "", "completion", shell)
		if err != nil {
			t.Fatalf("completion %s error = %v", shell, err)
		}
		if !strings.Contains(stdout, "retain") {
			t.Errorf("completion %s output does not mention retain", shell)
		}
	}
	if _, _, err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("completion accepted an unsupported shell")
	}
}
