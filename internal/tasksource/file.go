package tasksource

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tabfm-labs/evalsweep/internal/domain"
)

const ListSchemaV1 = "evalsweep.tasklist.v1"

// ListSpec is a curated task-list document, the alternative to
// directory discovery when a sweep should cover a hand-picked subset.
type ListSpec struct {
	Schema string   `yaml:"schema"`
	Tasks  []string `yaml:"tasks"`
}

func ParseListSpec(input []byte) (ListSpec, error) {
	var spec ListSpec
	if err := yaml.Unmarshal(input, &spec); err != nil {
		return ListSpec{}, fmt.Errorf("decode task list: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return ListSpec{}, err
	}
	return spec, nil
}

func (s ListSpec) Validate() error {
	if strings.TrimSpace(s.Schema) != ListSchemaV1 {
		return fmt.Errorf("task list schema must be %q", ListSchemaV1)
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("task list must name at least one task")
	}
	seen := make(map[string]struct{}, len(s.Tasks))
	for i, raw := range s.Tasks {
		id := domain.TaskID(strings.TrimSpace(raw))
		if err := id.Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		if _, ok := seen[string(id)]; ok {
			return fmt.Errorf("tasks[%d] duplicates %q", i, id)
		}
		seen[string(id)] = struct{}{}
	}
	return nil
}

// FileSource lists tasks from a ListSpec document on disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) FileSource {
	return FileSource{Path: strings.TrimSpace(path)}
}

func (s FileSource) List(ctx context.Context) ([]domain.TaskID, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read task list: %w", err)
	}
	spec, err := ParseListSpec(raw)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.TaskID, 0, len(spec.Tasks))
	for _, raw := range spec.Tasks {
		ids = append(ids, domain.TaskID(strings.TrimSpace(raw)))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
