package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/sqlmodel/collector"
)

// Policy decision sentinel errors.
//
// These errors are used as return values from policy rules to indicate
// how the policy evaluation should proceed. Use errors.Is() to check
// for these values:
//
//	if errors.Is(err, privacy.Allow) { ... }
//	if errors.Is(err, privacy.Deny) { ... }
//	if errors.Is(err, privacy.Skip) { ... }
var (
	// Allow may be returned by rules to indicate that the policy
	// evaluation should terminate with an allow decision.
	Allow = errors.New("sqlmodel/privacy: allow rule")

	// Deny may be returned by rules to indicate that the policy
	// evaluation should terminate with a deny decision.
	Deny = errors.New("sqlmodel/privacy: deny rule")

	// Skip may be returned by rules to indicate that the policy
	// evaluation should continue to the next rule in the chain.
	Skip = errors.New("sqlmodel/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() QueryMutationRule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() QueryMutationRule {
	return fixedDecision{Deny}
}

// ContextQueryMutationRule creates a query/mutation rule from a context evaluation function.
// The provided function receives the context and should return Allow, Deny, Skip, or nil.
// Returning nil is equivalent to returning Skip.
func ContextQueryMutationRule(eval func(context.Context) error) QueryMutationRule {
	return contextDecision{eval}
}

type (
	// QueryRule decides whether a count, get or find operation is allowed.
	QueryRule interface {
		EvalQuery(context.Context, collector.Operation) error
	}

	// QueryPolicy combines multiple query rules into a single policy.
	QueryPolicy []QueryRule

	// MutationRule decides whether a remove or modify operation is allowed.
	MutationRule interface {
		EvalMutation(context.Context, collector.Operation) error
	}

	// MutationPolicy combines multiple mutation rules into a single policy.
	MutationPolicy []MutationRule

	// QueryMutationRule is an interface which groups query and mutation rules.
	QueryMutationRule interface {
		QueryRule
		MutationRule
	}
)

// QueryRuleFunc type is an adapter which allows the use of
// ordinary functions as query rules.
type QueryRuleFunc func(context.Context, collector.Operation) error

// EvalQuery returns f(ctx, op).
func (f QueryRuleFunc) EvalQuery(ctx context.Context, op collector.Operation) error {
	return f(ctx, op)
}

// MutationRuleFunc type is an adapter which allows the use of
// ordinary functions as mutation rules.
type MutationRuleFunc func(context.Context, collector.Operation) error

// EvalMutation returns f(ctx, op).
func (f MutationRuleFunc) EvalMutation(ctx context.Context, op collector.Operation) error {
	return f(ctx, op)
}

// OnMutationOperation evaluates the given rule only on mutations of the
// given intent.
func OnMutationOperation(rule MutationRule, intent collector.Intent) MutationRule {
	return MutationRuleFunc(func(ctx context.Context, op collector.Operation) error {
		if op.Intent == intent {
			return rule.EvalMutation(ctx, op)
		}
		return Skip
	})
}

// DenyMutationOperationRule returns a rule denying mutations of the given intent.
func DenyMutationOperationRule(intent collector.Intent) MutationRule {
	rule := MutationRuleFunc(func(_ context.Context, op collector.Operation) error {
		return Denyf("sqlmodel/privacy: operation %s is not allowed", op.Intent)
	})
	return OnMutationOperation(rule, intent)
}

// DenyUnconditionalMutationRule returns a rule denying mutations that apply
// to every record of a table, such as RemoveAll or a modify with an empty
// condition.
func DenyUnconditionalMutationRule() MutationRule {
	return MutationRuleFunc(func(_ context.Context, op collector.Operation) error {
		if op.Unconditional() {
			return Denyf("sqlmodel/privacy: unconditional %s on %s", op.Intent, op.Table)
		}
		return Skip
	})
}

// OnTable evaluates the given rule only on operations of the given table.
func OnTable(rule QueryMutationRule, table string) QueryMutationRule {
	return tableRule{rule: rule, table: table}
}

type tableRule struct {
	rule  QueryMutationRule
	table string
}

func (r tableRule) EvalQuery(ctx context.Context, op collector.Operation) error {
	if op.Table != r.table {
		return Skip
	}
	return r.rule.EvalQuery(ctx, op)
}

func (r tableRule) EvalMutation(ctx context.Context, op collector.Operation) error {
	if op.Table != r.table {
		return Skip
	}
	return r.rule.EvalMutation(ctx, op)
}

// Policy groups query and mutation policies.
type Policy struct {
	Query    QueryPolicy
	Mutation MutationPolicy
}

// EvalQuery forwards evaluation to the query policy.
func (p Policy) EvalQuery(ctx context.Context, op collector.Operation) error {
	return p.Query.EvalQuery(ctx, op)
}

// EvalMutation forwards evaluation to the mutation policy.
func (p Policy) EvalMutation(ctx context.Context, op collector.Operation) error {
	return p.Mutation.EvalMutation(ctx, op)
}

// Policies combines multiple policies into a single policy. A decision
// attached to the context with DecisionContext overrides all of them.
type Policies []QueryMutationRule

// EvalQuery evaluates the query policies. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
func (policies Policies) EvalQuery(ctx context.Context, op collector.Operation) error {
	return policies.eval(ctx, func(policy QueryMutationRule) error {
		return policy.EvalQuery(ctx, op)
	})
}

// EvalMutation evaluates the mutation policies. If the Allow error is returned
// from one of the policies, it stops the evaluation with a nil error.
func (policies Policies) EvalMutation(ctx context.Context, op collector.Operation) error {
	return policies.eval(ctx, func(policy QueryMutationRule) error {
		return policy.EvalMutation(ctx, op)
	})
}

func (policies Policies) eval(ctx context.Context, eval func(QueryMutationRule) error) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, policy := range policies {
		switch decision := eval(policy); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// EvalQuery evaluates an operation against a query policy.
func (policies QueryPolicy) EvalQuery(ctx context.Context, op collector.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalQuery(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// EvalMutation evaluates an operation against a mutation policy.
func (policies MutationPolicy) EvalMutation(ctx context.Context, op collector.Operation) error {
	for _, policy := range policies {
		switch decision := policy.EvalMutation(ctx, op); {
		case decision == nil || errors.Is(decision, Skip):
		default:
			return decision
		}
	}
	return nil
}

// Eval dispatches op to EvalMutation or EvalQuery by its intent and folds
// the decision: Allow and Skip become nil, anything else is returned.
func Eval(ctx context.Context, rule QueryMutationRule, op collector.Operation) error {
	var decision error
	if op.Intent.IsMutation() {
		decision = rule.EvalMutation(ctx, op)
	} else {
		decision = rule.EvalQuery(ctx, op)
	}
	if decision == nil || errors.Is(decision, Allow) || errors.Is(decision, Skip) {
		return nil
	}
	return decision
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attach to it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalQuery(context.Context, collector.Operation) error {
	return f.decision
}

func (f fixedDecision) EvalMutation(context.Context, collector.Operation) error {
	return f.decision
}

type contextDecision struct {
	eval func(context.Context) error
}

func (c contextDecision) EvalQuery(ctx context.Context, _ collector.Operation) error {
	return c.eval(ctx)
}

func (c contextDecision) EvalMutation(ctx context.Context, _ collector.Operation) error {
	return c.eval(ctx)
}

var (
	_ QueryMutationRule = Policy{}
	_ QueryMutationRule = Policies(nil)
)
