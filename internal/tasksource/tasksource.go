// Package tasksource enumerates the evaluation tasks a sweep covers.
package tasksource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tabfm-labs/evalsweep/internal/domain"
)

// Lister yields the task identifiers of a sweep, sorted ascending.
type Lister interface {
	List(ctx context.Context) ([]domain.TaskID, error)
}

// DirSource discovers tasks on the filesystem. Every directory exactly
// two levels below the collection root is a task, identified by its
// path relative to the root. A missing or empty root is an empty sweep,
// not an error.
type DirSource struct {
	Root string
}

func NewDirSource(root string) DirSource {
	return DirSource{Root: strings.TrimSpace(root)}
}

func (s DirSource) List(ctx context.Context) ([]domain.TaskID, error) {
	if s.Root == "" {
		return nil, nil
	}
	entries, err := filepath.Glob(filepath.Join(s.Root, "*", "*"))
	if err != nil {
		return nil, fmt.Errorf("glob tasks under %s: %w", s.Root, err)
	}
	ids := make([]domain.TaskID, 0, len(entries))
	for _, entry := range entries {
		info, err := os.Stat(entry)
		if err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(s.Root, entry)
		if err != nil {
			continue
		}
		id := domain.TaskID(filepath.ToSlash(rel))
		if hasHiddenSegment(string(id)) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func hasHiddenSegment(id string) bool {
	for _, seg := range strings.Split(id, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
