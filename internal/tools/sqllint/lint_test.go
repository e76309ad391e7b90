package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintAcceptsMarkedStatements(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "q.go", "package q\n\nconst QOne = `--sql 06d4e69d-53e4-4a74-9e62-0aa1f5dc8bf2\nselect 1;`\n\nconst Label = \"not sql\"\n")

	vs, err := lintTargets([]string{dir})
	if err != nil {
		t.Fatalf("lintTargets: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("expected no violations, got %+v", vs)
	}
}

func TestLintFlagsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\nconst QA = `--sql 06d4e69d-53e4-4a74-9e62-0aa1f5dc8bf2\nselect 1;`\n\nconst QBare = `delete from submissions;`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QB = `--sql 06d4e69d-53e4-4a74-9e62-0aa1f5dc8bf2\nupdate submissions set is_deleted = true;`\n")

	vs, err := lintTargets([]string{dir})
	if err != nil {
		t.Fatalf("lintTargets: %v", err)
	}
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %+v", vs)
	}
	byName := map[string]string{}
	for _, v := range vs {
		byName[v.name] = v.message
	}
	if !strings.Contains(byName["QBare"], "missing") {
		t.Fatalf("QBare: unexpected message %q", byName["QBare"])
	}
	if !strings.Contains(byName["QB"], "already used by QA") {
		t.Fatalf("QB: unexpected message %q", byName["QB"])
	}
}

func TestLintRepositoryStatements(t *testing.T) {
	vs, err := lintTargets([]string{"../../sqlinline"})
	if err != nil {
		t.Fatalf("lintTargets: %v", err)
	}
	for _, v := range vs {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}
