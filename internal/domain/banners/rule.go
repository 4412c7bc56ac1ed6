package banners

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/memberportal/planinfo/internal/domain/coverage"
)

const ruleCostLimit = 1000000

// RuleEngine compiles and evaluates banner audience rules. Rules are CEL
// expressions over a single variable, plan, e.g.
//
//	plan.is_medicaid && plan.product_id.startsWith("MCAR")
//
// Compiled programs are cached by expression text.
type RuleEngine struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

func NewRuleEngine() (*RuleEngine, error) {
	env, err := cel.NewEnv(cel.Variable("plan", cel.DynType))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &RuleEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile checks expr and caches its program. The expression must produce a bool.
func (e *RuleEngine) Compile(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, iss.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: expression returns %s, want bool", ErrInvalidRule, out)
	}
	prg, err := e.env.Program(ast, cel.CostLimit(ruleCostLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	e.mu.Lock()
	e.programs[expr] = prg
	e.mu.Unlock()
	return prg, nil
}

// Matches evaluates expr against plan. A blank expression matches.
func (e *RuleEngine) Matches(expr string, plan *coverage.MemberPlan) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	prg, err := e.Compile(expr)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(map[string]interface{}{"plan": planVars(plan)})
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %T, want bool", out.Value())
	}
	return matched, nil
}

func planVars(p *coverage.MemberPlan) map[string]interface{} {
	if p == nil {
		p = &coverage.MemberPlan{}
	}
	return map[string]interface{}{
		"member_id":        p.MemberID,
		"plan_identifier":  p.PlanIdentifier,
		"line_of_business": string(p.LineOfBusiness),
		"is_medicaid":      p.IsMedicaid,
		"is_msho":          p.IsMSHO,
		"product_id":       p.ProductID,
		"plan_name":        p.PlanName,
		"group_number":     p.GroupNumber,
		"group_name":       p.GroupName,
		"client_id":        p.ClientID,
		"network":          p.Network,
		"coverage_start":   p.CoverageStart,
		"coverage_end":     p.CoverageEnd,
	}
}
