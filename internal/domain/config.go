package domain

import "strings"

// Published defaults for an evaluation run. Every knob is an opaque
// string carried to the evaluation job untouched.
const (
	DefaultMaxSamples    = "100"
	DefaultSerializerCls = "BasicSerializerV2"
	DefaultContextLength = "8192"
	DefaultCheckpointDir = "mlfoundations/tabula-8b"
	DefaultEvalScript    = "scripts/eval/evaluate_checkpoint.sbatch"
	DefaultShotSelectors = "random,rices"
)

// Environment keys recognized by the resolver. The first four are also
// the payload keys of every submission.
const (
	EnvMaxSamples    = "MAX_SAMPLES"
	EnvSerializerCls = "SERIALIZER_CLS"
	EnvContextLength = "CONTEXT_LENGTH"
	EnvCheckpointDir = "CKPT_DIR"
	EnvEvalScript    = "EVAL_SCRIPT"
	EnvShotSelector  = "SHOT_SELECTOR"
)

// LookupFunc reports the raw value of a configuration key and whether
// the key is set at all. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// RunConfig holds the resolved parameters of one evaluation sweep.
// Immutable once resolved; the driver never interprets the values.
type RunConfig struct {
	MaxSamples    string
	SerializerCls string
	ContextLength string
	CheckpointDir string
	EvalScript    string
}

// ResolveRunConfig applies overrides from lookup atop the published
// defaults. A key that is unset, empty, or all whitespace falls back to
// its default. No validation happens here: a nonsensical MAX_SAMPLES
// surfaces from the evaluation job, not from the driver.
func ResolveRunConfig(lookup LookupFunc) RunConfig {
	return RunConfig{
		MaxSamples:    resolveValue(lookup, EnvMaxSamples, DefaultMaxSamples),
		SerializerCls: resolveValue(lookup, EnvSerializerCls, DefaultSerializerCls),
		ContextLength: resolveValue(lookup, EnvContextLength, DefaultContextLength),
		CheckpointDir: resolveValue(lookup, EnvCheckpointDir, DefaultCheckpointDir),
		EvalScript:    resolveValue(lookup, EnvEvalScript, DefaultEvalScript),
	}
}

func resolveValue(lookup LookupFunc, key, def string) string {
	if lookup == nil {
		return def
	}
	v, ok := lookup(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}

// SubmitEnv renders the configuration as the environment payload carried
// by a submission. The eval script path is not part of the payload; it is
// what the scheduler launches.
func (c RunConfig) SubmitEnv() map[string]string {
	return map[string]string{
		EnvMaxSamples:    c.MaxSamples,
		EnvSerializerCls: c.SerializerCls,
		EnvContextLength: c.ContextLength,
		EnvCheckpointDir: c.CheckpointDir,
	}
}

// ParseStrategies splits a comma-separated shot-selector list into the
// strategy set of the sweep. Entries are trimmed and blanks dropped. The
// literal "none" disables strategy sweeping: the result is empty and the
// sweep submits one job per task.
func ParseStrategies(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "none") {
		return nil
	}
	parts := strings.Split(raw, ",")
	strategies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		strategies = append(strategies, p)
	}
	return strategies
}
