package batchexec

import (
	"sort"
	"strings"
)

// Environment keys owned by the backends. Payload entries with these
// names are dropped so a stray override cannot shadow what the driver
// rendered from the job spec.
func isReservedJobEnvKey(key string) bool {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "EVAL_TASK_NAMES", "SHOT_SELECTOR", "EVALSWEEP_ID":
		return true
	default:
		return false
	}
}

func sortedEnvKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		if strings.TrimSpace(k) == "" || isReservedJobEnvKey(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SanitizeJobName maps a job name onto the DNS-1123 charset Kubernetes
// requires: lowercase alphanumerics and dashes, at most 63 characters.
// Slurm takes names as-is; only the Kubernetes backend sanitizes.
func SanitizeJobName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	out = strings.Trim(out, "-")
	if len(out) > 63 {
		out = strings.Trim(out[:63], "-")
	}
	return out
}
