package privacy_test

import (
	"context"
	"testing"

	"github.com/syssam/sqlmodel/collector"
	"github.com/syssam/sqlmodel/dialect/sql"
	"github.com/syssam/sqlmodel/privacy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writes returns a modify operation on users writing the given values.
func writes(set ...sql.Assignment) collector.Operation {
	return collector.Operation{
		Name:   "ModifyModelByOnlyPrimaryKeyEQ",
		Intent: collector.IntentModify,
		Table:  "users",
		Keyed:  true,
		Set:    set,
	}
}

func TestSimpleViewer(t *testing.T) {
	viewer := &privacy.SimpleViewer{
		UserID:   "user-123",
		Roles:    []string{"admin", "user"},
		TenantID: "tenant-abc",
	}
	assert.Equal(t, "user-123", viewer.GetID())
	assert.Equal(t, []string{"admin", "user"}, viewer.GetRoles())
	assert.Equal(t, "tenant-abc", viewer.GetTenantID())
}

func TestViewerContext(t *testing.T) {
	t.Run("WithViewer_and_ViewerFromContext", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-123"})
		retrieved := privacy.ViewerFromContext(ctx)
		require.NotNil(t, retrieved)
		assert.Equal(t, "user-123", retrieved.GetID())
	})
	t.Run("ViewerFromContext_returns_nil_without_viewer", func(t *testing.T) {
		assert.Nil(t, privacy.ViewerFromContext(context.Background()))
	})
	t.Run("ViewerFromContext_returns_nil_with_wrong_type", func(t *testing.T) {
		type wrongKey struct{}
		ctx := context.WithValue(context.Background(), wrongKey{}, "not a viewer")
		assert.Nil(t, privacy.ViewerFromContext(ctx))
	})
}

func TestDenyIfNoViewer(t *testing.T) {
	rule := privacy.DenyIfNoViewer()
	ctx := context.Background()
	assert.ErrorIs(t, rule.EvalQuery(ctx, findOp), privacy.Deny)
	assert.ErrorIs(t, rule.EvalMutation(ctx, removeOp), privacy.Deny)

	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "user-1"})
	assert.ErrorIs(t, rule.EvalQuery(ctx, findOp), privacy.Skip)
	assert.ErrorIs(t, rule.EvalMutation(ctx, removeOp), privacy.Skip)
}

func TestHasRole(t *testing.T) {
	rule := privacy.HasRole("admin")
	tests := []struct {
		name   string
		viewer privacy.Viewer
		want   error
	}{
		{name: "no_viewer", viewer: nil, want: privacy.Skip},
		{name: "has_role", viewer: &privacy.SimpleViewer{Roles: []string{"user", "admin"}}, want: privacy.Allow},
		{name: "missing_role", viewer: &privacy.SimpleViewer{Roles: []string{"user"}}, want: privacy.Skip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.viewer != nil {
				ctx = privacy.WithViewer(ctx, tt.viewer)
			}
			assert.ErrorIs(t, rule.EvalQuery(ctx, findOp), tt.want)
			assert.ErrorIs(t, rule.EvalMutation(ctx, modifyOp), tt.want)
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	rule := privacy.HasAnyRole("admin", "moderator")
	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{Roles: []string{"moderator"}})
	assert.ErrorIs(t, rule.EvalMutation(ctx, removeOp), privacy.Allow)

	ctx = privacy.WithViewer(context.Background(), &privacy.SimpleViewer{Roles: []string{"user"}})
	assert.ErrorIs(t, rule.EvalMutation(ctx, removeOp), privacy.Skip)

	assert.ErrorIs(t, rule.EvalQuery(context.Background(), findOp), privacy.Skip)
}

func TestIsOwner(t *testing.T) {
	rule := privacy.IsOwner("owner_id")
	viewer := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "7"})
	tests := []struct {
		name string
		ctx  context.Context
		op   collector.Operation
		want error
	}{
		{name: "int64_match", ctx: viewer, op: writes(sql.Assignment{Column: "owner_id", Value: int64(7)}), want: privacy.Allow},
		{name: "int_match", ctx: viewer, op: writes(sql.Assignment{Column: "owner_id", Value: 7}), want: privacy.Allow},
		{name: "string_match", ctx: viewer, op: writes(sql.Assignment{Column: "owner_id", Value: "7"}), want: privacy.Allow},
		{name: "other_owner", ctx: viewer, op: writes(sql.Assignment{Column: "owner_id", Value: int64(8)}), want: privacy.Skip},
		{name: "column_not_written", ctx: viewer, op: writes(sql.Assignment{Column: "name", Value: "a8m"}), want: privacy.Skip},
		{name: "remove_writes_nothing", ctx: viewer, op: removeOp, want: privacy.Skip},
		{name: "no_viewer", ctx: context.Background(), op: writes(sql.Assignment{Column: "owner_id", Value: int64(7)}), want: privacy.Skip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, rule.EvalMutation(tt.ctx, tt.op), tt.want)
		})
	}
}

func TestOwnerQueryRule(t *testing.T) {
	rule := privacy.OwnerQueryRule()
	assert.ErrorIs(t, rule.EvalQuery(context.Background(), findOp), privacy.Deny)
	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "1"})
	assert.ErrorIs(t, rule.EvalQuery(ctx, findOp), privacy.Skip)
}

func TestTenantRule(t *testing.T) {
	rule := privacy.TenantRule("tenant_id")
	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "1", TenantID: "tenant-a"})

	assert.ErrorIs(t, rule.EvalMutation(ctx, writes(sql.Assignment{Column: "tenant_id", Value: "tenant-a"})), privacy.Allow)
	assert.ErrorIs(t, rule.EvalMutation(ctx, writes(sql.Assignment{Column: "tenant_id", Value: "tenant-b"})), privacy.Deny)
	assert.ErrorIs(t, rule.EvalMutation(ctx, writes(sql.Assignment{Column: "name", Value: "x"})), privacy.Skip)

	noTenant := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "1"})
	assert.ErrorIs(t, rule.EvalMutation(noTenant, writes(sql.Assignment{Column: "tenant_id", Value: "tenant-b"})), privacy.Skip)
}

func TestTenantQueryRule(t *testing.T) {
	rule := privacy.TenantQueryRule()
	assert.ErrorIs(t, rule.EvalQuery(context.Background(), findOp), privacy.Deny)

	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "1"})
	err := rule.EvalQuery(ctx, findOp)
	require.ErrorIs(t, err, privacy.Deny)
	assert.Contains(t, err.Error(), "tenant required")

	ctx = privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "1", TenantID: "t"})
	assert.ErrorIs(t, rule.EvalQuery(ctx, findOp), privacy.Skip)
}

func TestAllowMutationOperationRule(t *testing.T) {
	rule := privacy.AllowMutationOperationRule(collector.IntentModify)
	ctx := context.Background()
	assert.ErrorIs(t, rule.EvalMutation(ctx, modifyOp), privacy.Allow)
	assert.ErrorIs(t, rule.EvalMutation(ctx, removeOp), privacy.Skip)
}

func TestIntegratedPolicyChain(t *testing.T) {
	policy := privacy.MutationPolicy{
		privacy.DenyUnconditionalMutationRule(),
		privacy.DenyIfNoViewer(),
		privacy.HasRole("admin"),
		privacy.IsOwner("owner_id"),
		privacy.AlwaysDenyRule(),
	}
	owned := writes(sql.Assignment{Column: "owner_id", Value: "user-123"})

	t.Run("admin_allowed_through_role", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "admin-1", Roles: []string{"admin"}})
		assert.ErrorIs(t, policy.EvalMutation(ctx, removeOp), privacy.Allow)
	})
	t.Run("admin_denied_unconditional", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "admin-1", Roles: []string{"admin"}})
		all := collector.Operation{Name: "RemoveAll", Intent: collector.IntentRemove, Table: "users"}
		assert.ErrorIs(t, policy.EvalMutation(ctx, all), privacy.Deny)
	})
	t.Run("owner_allowed", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-123", Roles: []string{"user"}})
		assert.ErrorIs(t, policy.EvalMutation(ctx, owned), privacy.Allow)
	})
	t.Run("user_denied_without_ownership", func(t *testing.T) {
		ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "user-1", Roles: []string{"user"}})
		assert.ErrorIs(t, policy.EvalMutation(ctx, owned), privacy.Deny)
	})
	t.Run("unauthenticated_denied", func(t *testing.T) {
		assert.ErrorIs(t, policy.EvalMutation(context.Background(), owned), privacy.Deny)
	})
}

func BenchmarkRules(b *testing.B) {
	policy := privacy.MutationPolicy{
		privacy.DenyIfNoViewer(),
		privacy.HasRole("admin"),
		privacy.IsOwner("owner_id"),
		privacy.AlwaysDenyRule(),
	}
	ctx := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "7", Roles: []string{"user"}})
	b.ReportAllocs()
	for b.Loop() {
		_ = policy.EvalMutation(ctx, modifyOp)
	}
}
