// Package privacy provides rules that authorize collectors before they
// reach the database.
//
// A rule looks at the collector.Operation of a prepared collector: its
// intent, table, condition and, for modify operations, the columns it
// writes. Rules return one of three decisions:
//
//   - Allow: grants access and stops evaluation
//   - Deny: denies access and stops evaluation
//   - Skip: continues to the next rule
//
// Count, get and find operations are evaluated by QueryRule, remove and
// modify operations by MutationRule. A service built with a policy
// evaluates it on every Collect:
//
//	policy := privacy.Policy{
//	    Mutation: privacy.MutationPolicy{
//	        privacy.DenyUnconditionalMutationRule(),
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.IsOwner("owner_id"),
//	        privacy.AlwaysDenyRule(),
//	    },
//	    Query: privacy.QueryPolicy{
//	        privacy.AlwaysAllowRule(),
//	    },
//	}
//	users, err := service.New[User](drv, service.WithPolicy(policy))
//
// A decision attached with DecisionContext overrides every rule of a
// Policies value, which is how trusted background jobs bypass checks:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
//
// The viewer of a request is attached with WithViewer and read back by the
// built-in rules DenyIfNoViewer, HasRole, HasAnyRole, IsOwner and
// TenantRule.
package privacy
