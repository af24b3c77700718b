package data

import (
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
)

var (
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv returns the shared CEL environment for entry filters. The
// environment exposes the entry id and its targets map.
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("id", cel.StringType),
			cel.Variable("targets", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// compileFilter compiles a CEL filter expression, e.g.
// `targets.irmsd < 10.0` or `id.startsWith("1ATN")`.
func compileFilter(expr string) (cel.Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create filter environment")
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid filter expression: %s", expr)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile filter expression: %s", expr)
	}
	return prg, nil
}

// evalFilter evaluates a compiled filter for one entry.
func evalFilter(prg cel.Program, id string, targets map[string]float64) (bool, error) {
	vals := make(map[string]any, len(targets))
	for k, v := range targets {
		vals[k] = v
	}

	out, _, err := prg.Eval(map[string]any{
		"id":      id,
		"targets": vals,
	})
	if err != nil {
		return false, errors.Wrapf(err, "filter failed on entry %s", id)
	}

	keep, ok := out.Value().(bool)
	if !ok {
		return false, errors.Errorf("filter did not produce a boolean on entry %s", id)
	}
	return keep, nil
}
