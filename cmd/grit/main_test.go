package main

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("grit %v: %v\n%s", args, err, buf.String())
	}
	return buf.String()
}

func TestEndToEnd(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	out := execute(t, "init")
	if !strings.Contains(out, "Initialized empty repository") {
		t.Fatalf("init output: %q", out)
	}

	if err := os.WriteFile("hello.txt", []byte("hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out = execute(t, "status")
	if !strings.Contains(out, "No commits yet") || !strings.Contains(out, "hello.txt") {
		t.Fatalf("status output: %q", out)
	}

	execute(t, "add", ".")
	out = execute(t, "commit", "-m", "first commit")
	if !strings.Contains(out, "[main ") || !strings.Contains(out, "first commit") {
		t.Fatalf("commit output: %q", out)
	}

	out = execute(t, "status")
	if !strings.Contains(out, "nothing to commit, working tree clean") {
		t.Fatalf("clean status output: %q", out)
	}

	if err := os.WriteFile("hello.txt", []byte("hello again, world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out = execute(t, "status")
	if !strings.Contains(out, "modified") || !strings.Contains(out, "not staged") {
		t.Fatalf("dirty status output: %q", out)
	}

	execute(t, "add", "hello.txt")
	execute(t, "commit", "-m", "second commit")

	out = execute(t, "log", "-n", "1")
	if !strings.Contains(out, "second commit") || strings.Contains(out, "first commit") {
		t.Fatalf("log output: %q", out)
	}
	out = execute(t, "log")
	if !strings.Contains(out, "first commit") {
		t.Fatalf("full log output: %q", out)
	}

	out = execute(t, "ls-files")
	if !strings.Contains(out, "hello.txt") {
		t.Fatalf("ls-files output: %q", out)
	}
}
