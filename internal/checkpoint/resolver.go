// Package checkpoint resolves a checkpoint directory to a concrete
// checkpoint. Training runs leave numbered step-N directories behind; a
// sweep usually wants the newest one. Published model identifiers pass
// through untouched.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ObjectLister is the slice of the MinIO client the resolver needs.
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Resolver picks the latest checkpoint under a directory. store may be
// nil, in which case s3:// inputs are rejected.
type Resolver struct {
	store ObjectLister
}

func NewResolver(store ObjectLister) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps raw to a concrete checkpoint:
//   - an s3://bucket/prefix URI resolves to its highest step-N prefix;
//   - an existing local directory resolves to its highest step-N
//     subdirectory;
//   - anything else (a published model identifier) passes through.
//
// A directory with no step-N children resolves to itself.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	dir := strings.TrimSpace(raw)
	if dir == "" {
		return "", errors.New("checkpoint dir is required")
	}
	if strings.HasPrefix(dir, "s3://") {
		return r.resolveObject(ctx, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return dir, nil
	}
	return resolveLocal(dir)
}

func resolveLocal(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read checkpoint dir: %w", err)
	}
	best := -1
	bestName := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		n, ok := stepNumber(entry.Name())
		if !ok {
			continue
		}
		if n > best {
			best = n
			bestName = entry.Name()
		}
	}
	if best < 0 {
		return dir, nil
	}
	return filepath.Join(dir, bestName), nil
}

func (r *Resolver) resolveObject(ctx context.Context, uri string) (string, error) {
	if r.store == nil {
		return "", fmt.Errorf("object store not configured, cannot resolve %s", uri)
	}
	bucket, prefix, err := splitObjectURI(uri)
	if err != nil {
		return "", err
	}
	listPrefix := prefix
	if listPrefix != "" && !strings.HasSuffix(listPrefix, "/") {
		listPrefix += "/"
	}

	best := -1
	bestName := ""
	for obj := range r.store.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: listPrefix}) {
		if obj.Err != nil {
			return "", fmt.Errorf("list checkpoints: %w", obj.Err)
		}
		// Non-recursive listing surfaces step directories as common
		// prefixes with a trailing slash.
		name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, listPrefix), "/")
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		n, ok := stepNumber(name)
		if !ok {
			continue
		}
		if n > best {
			best = n
			bestName = name
		}
	}
	if best < 0 {
		return uri, nil
	}
	return "s3://" + bucket + "/" + listPrefix + bestName, nil
}

func splitObjectURI(uri string) (string, string, error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if strings.TrimSpace(bucket) == "" {
		return "", "", fmt.Errorf("invalid object uri: %s", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func stepNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "step-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
