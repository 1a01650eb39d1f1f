package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestResolveModelIDPassthrough(t *testing.T) {
	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), "mlfoundations/tabula-8b")
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if got != "mlfoundations/tabula-8b" {
		t.Fatalf("Resolve()=%q, want passthrough", got)
	}
}

func TestResolveLocalPicksHighestStep(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"step-100", "step-2000", "step-900", "logs", "step-final"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
	}

	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if got != filepath.Join(dir, "step-2000") {
		t.Fatalf("Resolve()=%q, want step-2000", got)
	}
}

func TestResolveLocalNoSteps(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(nil)
	got, err := r.Resolve(context.Background(), dir)
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if got != dir {
		t.Fatalf("Resolve()=%q, want the dir itself", got)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Resolve(context.Background(), "  "); err == nil {
		t.Fatalf("Resolve() expected error for empty input")
	}
}

type staticObjects struct {
	objs []minio.ObjectInfo
}

func (s staticObjects) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(s.objs))
	for _, obj := range s.objs {
		ch <- obj
	}
	close(ch)
	return ch
}

func TestResolveObjectPicksHighestStep(t *testing.T) {
	r := NewResolver(staticObjects{objs: []minio.ObjectInfo{
		{Key: "runs/tabula-8b/step-500/"},
		{Key: "runs/tabula-8b/step-1500/"},
		{Key: "runs/tabula-8b/config.yaml"},
	}})
	got, err := r.Resolve(context.Background(), "s3://checkpoints/runs/tabula-8b")
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if got != "s3://checkpoints/runs/tabula-8b/step-1500" {
		t.Fatalf("Resolve()=%q, want step-1500", got)
	}
}

func TestResolveObjectNoSteps(t *testing.T) {
	r := NewResolver(staticObjects{})
	got, err := r.Resolve(context.Background(), "s3://checkpoints/runs/empty")
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if got != "s3://checkpoints/runs/empty" {
		t.Fatalf("Resolve()=%q, want input verbatim", got)
	}
}

func TestResolveObjectWithoutStore(t *testing.T) {
	r := NewResolver(nil)
	if _, err := r.Resolve(context.Background(), "s3://checkpoints/runs/x"); err == nil {
		t.Fatalf("Resolve() expected error without object store")
	}
}

func TestResolveObjectListError(t *testing.T) {
	r := NewResolver(staticObjects{objs: []minio.ObjectInfo{
		{Err: errors.New("access denied")},
	}})
	if _, err := r.Resolve(context.Background(), "s3://checkpoints/runs/x"); err == nil {
		t.Fatalf("Resolve() expected listing error")
	}
}

func TestStepNumber(t *testing.T) {
	cases := []struct {
		in string
		n  int
		ok bool
	}{
		{"step-0", 0, true},
		{"step-1500", 1500, true},
		{"step-final", 0, false},
		{"checkpoint-100", 0, false},
		{"step--5", 0, false},
	}
	for _, tc := range cases {
		n, ok := stepNumber(tc.in)
		if n != tc.n || ok != tc.ok {
			t.Fatalf("stepNumber(%q)=(%d,%v), want (%d,%v)", tc.in, n, ok, tc.n, tc.ok)
		}
	}
}

func TestSplitObjectURI(t *testing.T) {
	bucket, prefix, err := splitObjectURI("s3://checkpoints/runs/tabula-8b/")
	if err != nil {
		t.Fatalf("splitObjectURI() err=%v", err)
	}
	if bucket != "checkpoints" || prefix != "runs/tabula-8b" {
		t.Fatalf("splitObjectURI()=(%q,%q)", bucket, prefix)
	}
	if _, _, err := splitObjectURI("s3://"); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
}
