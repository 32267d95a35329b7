package identity

import (
	"errors"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Authorize(t *testing.T) {
	policy := DefaultPolicy()
	boss := Actor{UserID: uuid.New(), Name: "boss", Role: RoleBoss}
	manager := Actor{UserID: uuid.New(), Name: "manager", Role: RoleManager}

	tests := []struct {
		name    string
		actor   Actor
		action  Action
		allowed bool
	}{
		{"boss approves", boss, ActionPOApprove, true},
		{"manager cannot approve", manager, ActionPOApprove, false},
		{"manager receives", manager, ActionPOReceive, true},
		{"manager pays", manager, ActionPOPay, true},
		{"manager cannot see dashboard", manager, ActionReportDashboard, false},
		{"manager cannot record salary", manager, ActionExpenseSalary, false},
		{"boss records salary", boss, ActionExpenseSalary, true},
		{"manager cannot reconcile stock", manager, ActionStockReconcile, false},
		{"manager cannot manage users", manager, ActionUserManage, false},
		{"boss inspects housekeeping", boss, ActionSystemInspect, true},
		{"manager cannot inspect housekeeping", manager, ActionSystemInspect, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.actor, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, shared.ErrForbidden))
				assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
			}
		})
	}
}

func TestPolicy_AuthorizeOwned(t *testing.T) {
	policy := DefaultPolicy()
	author := Actor{UserID: uuid.New(), Role: RoleManager}
	otherManager := Actor{UserID: uuid.New(), Role: RoleManager}
	boss := Actor{UserID: uuid.New(), Role: RoleBoss}

	t.Run("author submits own PO", func(t *testing.T) {
		assert.NoError(t, policy.AuthorizeOwned(author, ActionPOSubmit, author.UserID))
	})

	t.Run("other manager cannot submit", func(t *testing.T) {
		err := policy.AuthorizeOwned(otherManager, ActionPOSubmit, author.UserID)
		assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	})

	t.Run("boss cannot submit a manager's PO", func(t *testing.T) {
		err := policy.AuthorizeOwned(boss, ActionPOSubmit, author.UserID)
		assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	})

	t.Run("boss cancels any PO", func(t *testing.T) {
		assert.NoError(t, policy.AuthorizeOwned(boss, ActionPOCancel, author.UserID))
	})

	t.Run("author cancels own PO", func(t *testing.T) {
		assert.NoError(t, policy.AuthorizeOwned(author, ActionPOCancel, author.UserID))
	})

	t.Run("other manager cannot cancel", func(t *testing.T) {
		err := policy.AuthorizeOwned(otherManager, ActionPOCancel, author.UserID)
		assert.Equal(t, shared.KindForbidden, shared.KindOf(err))
	})

	t.Run("anonymous actor is unauthorized", func(t *testing.T) {
		err := policy.AuthorizeOwned(Actor{}, ActionPOCancel, author.UserID)
		assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	})
}
