package domain

import (
	"errors"
	"fmt"
	"strings"
)

// TaskID identifies one evaluation task by its path relative to the
// collection root: exactly <suite>/<task>, slash separated. The
// identifier doubles verbatim as the scheduler job name.
type TaskID string

func (id TaskID) Validate() error {
	s := string(id)
	if strings.TrimSpace(s) == "" {
		return errors.New("task id is required")
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return fmt.Errorf("task id %q must be <suite>/<task>", s)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("task id %q has an empty segment", s)
		}
	}
	return nil
}

// Suite returns the first segment of the identifier.
func (id TaskID) Suite() string {
	parts := strings.SplitN(string(id), "/", 2)
	return parts[0]
}
