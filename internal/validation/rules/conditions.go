package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"securedeal/internal/validation/models"
)

// conditionCostLimit caps CEL evaluation cost so a pathological expression
// cannot stall a run.
const conditionCostLimit = 1_000_000

// newConditionEnv declares one dynamic variable per entity kind, so rule
// conditions can reference any field of the input record.
func newConditionEnv() (*cel.Env, error) {
	opts := []cel.EnvOption{}
	for _, entity := range models.ConditionEntities() {
		opts = append(opts, cel.Variable(string(entity), cel.DynType))
	}
	return cel.NewEnv(opts...)
}

func compileCondition(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile condition: %w", issues.Err())
	}
	prog, err := env.Program(ast, cel.CostLimit(conditionCostLimit))
	if err != nil {
		return nil, fmt.Errorf("build condition program: %w", err)
	}
	return prog, nil
}

// evalCondition runs a compiled condition. A non-boolean result reads as
// "condition not met"; evaluation errors (absent fields, type mismatches) are
// reported so the caller can record the rule as not applicable.
func evalCondition(prog cel.Program, vars map[string]any) (bool, error) {
	out, _, err := prog.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval condition: %w", err)
	}
	b, ok := out.Value().(bool)
	return ok && b, nil
}
