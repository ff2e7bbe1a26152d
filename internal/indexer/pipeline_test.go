package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestIndexDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "lib/util.py", "def helper():\n    return 1\n")
	writeFile(t, root, "README.md", "# not source\n")
	writeFile(t, root, "node_modules/dep/index.js", "function skipped() {}\n")
	writeFile(t, root, ".git/config", "[core]\n")

	p := NewPipeline(nil, nil, nil)
	defer p.Close()

	result, err := p.indexDirectory(context.Background(), root, "proj-1")
	if err != nil {
		t.Fatalf("indexDirectory failed: %v", err)
	}

	if result.FilesProcessed != 2 {
		t.Errorf("expected 2 source files, got %d", result.FilesProcessed)
	}
	for _, f := range result.Files {
		if f.ProjectID != "proj-1" {
			t.Errorf("file missing project id: %+v", f)
		}
		if filepath.IsAbs(f.Path) {
			t.Errorf("expected relative path, got %q", f.Path)
		}
	}

	if result.EntitiesFound != 2 {
		t.Errorf("expected 2 entities (main, helper), got %d", result.EntitiesFound)
	}
	for _, e := range result.Entities {
		if e.ProjectID != "proj-1" {
			t.Errorf("entity missing project id: %+v", e)
		}
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
}

func TestIndexDirectory_Empty(t *testing.T) {
	p := NewPipeline(nil, nil, nil)
	defer p.Close()

	result, err := p.indexDirectory(context.Background(), t.TempDir(), "proj-2")
	if err != nil {
		t.Fatalf("indexDirectory failed: %v", err)
	}
	if result.FilesProcessed != 0 || result.EntitiesFound != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
