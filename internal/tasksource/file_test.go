package tasksource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validListDoc = `schema: evalsweep.tasklist.v1
tasks:
  - openml_cc18/car
  - openml_cc18/abalone
  - grinsztajn/house
`

func TestParseListSpec(t *testing.T) {
	spec, err := ParseListSpec([]byte(validListDoc))
	if err != nil {
		t.Fatalf("ParseListSpec() err=%v", err)
	}
	if len(spec.Tasks) != 3 {
		t.Fatalf("len(Tasks)=%d, want 3", len(spec.Tasks))
	}
}

func TestParseListSpecRejectsWrongSchema(t *testing.T) {
	doc := strings.Replace(validListDoc, "evalsweep.tasklist.v1", "evalsweep.tasklist.v9", 1)
	if _, err := ParseListSpec([]byte(doc)); err == nil {
		t.Fatalf("expected schema error")
	}
}

func TestParseListSpecRejectsEmpty(t *testing.T) {
	doc := "schema: evalsweep.tasklist.v1\ntasks: []\n"
	if _, err := ParseListSpec([]byte(doc)); err == nil {
		t.Fatalf("expected error for empty task list")
	}
}

func TestParseListSpecRejectsMalformedTask(t *testing.T) {
	doc := "schema: evalsweep.tasklist.v1\ntasks:\n  - abalone\n"
	if _, err := ParseListSpec([]byte(doc)); err == nil {
		t.Fatalf("expected error for single-segment task")
	}
}

func TestParseListSpecRejectsDuplicates(t *testing.T) {
	doc := "schema: evalsweep.tasklist.v1\ntasks:\n  - a/b\n  - a/b\n"
	if _, err := ParseListSpec([]byte(doc)); err == nil {
		t.Fatalf("expected error for duplicate task")
	}
}

func TestFileSourceListSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte(validListDoc), 0o644); err != nil {
		t.Fatalf("write task list: %v", err)
	}

	ids, err := NewFileSource(path).List(context.Background())
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	want := []string{"grinsztajn/house", "openml_cc18/abalone", "openml_cc18/car"}
	for i := range want {
		if string(ids[i]) != want[i] {
			t.Fatalf("List()[%d]=%q, want %q", i, ids[i], want[i])
		}
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := src.List(context.Background()); err == nil {
		t.Fatalf("List() expected error for missing file")
	}
}
