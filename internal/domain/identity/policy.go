package identity

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Action names an operation guarded by the authorization policy
type Action string

const (
	ActionProductManage     Action = "product:manage"
	ActionProductDelete     Action = "product:delete"
	ActionStockAdd          Action = "stock:add"
	ActionStockReconcile    Action = "stock:reconcile"
	ActionSupplierManage    Action = "supplier:manage"
	ActionSupplierDelete    Action = "supplier:delete"
	ActionSupplierReconcile Action = "supplier:reconcile"
	ActionPOCreate          Action = "po:create"
	ActionPOSubmit          Action = "po:submit"
	ActionPOApprove         Action = "po:approve"
	ActionPOMarkOrdered     Action = "po:order"
	ActionPOReceive         Action = "po:receive"
	ActionPOCancel          Action = "po:cancel"
	ActionPOPay             Action = "po:pay"
	ActionSaleCreate        Action = "sale:create"
	ActionExpenseRecord     Action = "expense:record"
	ActionExpenseSalary     Action = "expense:salary"
	ActionReportDashboard   Action = "report:dashboard"
	ActionReportDaily       Action = "report:daily"
	ActionUserManage        Action = "user:manage"
	ActionSystemInspect     Action = "system:inspect"
)

// Scope is how far a grant reaches
type Scope int

const (
	// ScopeNone denies the action
	ScopeNone Scope = iota
	// ScopeOwn allows the action only on records the actor authored
	ScopeOwn
	// ScopeAll allows the action on any record
	ScopeAll
)

// Policy is the (role, action) authorization table. It is consulted once per
// operation by the application services.
type Policy struct {
	rules map[Role]map[Action]Scope
}

// DefaultPolicy returns the policy of the back office
func DefaultPolicy() *Policy {
	return &Policy{rules: map[Role]map[Action]Scope{
		RoleBoss: {
			ActionProductManage:     ScopeAll,
			ActionProductDelete:     ScopeAll,
			ActionStockAdd:          ScopeAll,
			ActionStockReconcile:    ScopeAll,
			ActionSupplierManage:    ScopeAll,
			ActionSupplierDelete:    ScopeAll,
			ActionSupplierReconcile: ScopeAll,
			ActionPOCreate:          ScopeAll,
			ActionPOSubmit:          ScopeOwn,
			ActionPOApprove:         ScopeAll,
			ActionPOMarkOrdered:     ScopeAll,
			ActionPOReceive:         ScopeAll,
			ActionPOCancel:          ScopeAll,
			ActionPOPay:             ScopeAll,
			ActionSaleCreate:        ScopeAll,
			ActionExpenseRecord:     ScopeAll,
			ActionExpenseSalary:     ScopeAll,
			ActionReportDashboard:   ScopeAll,
			ActionReportDaily:       ScopeAll,
			ActionUserManage:        ScopeAll,
			ActionSystemInspect:     ScopeAll,
		},
		RoleManager: {
			ActionProductManage:  ScopeAll,
			ActionStockAdd:       ScopeAll,
			ActionSupplierManage: ScopeAll,
			ActionPOCreate:       ScopeAll,
			ActionPOSubmit:       ScopeOwn,
			ActionPOMarkOrdered:  ScopeAll,
			ActionPOReceive:      ScopeAll,
			ActionPOCancel:       ScopeOwn,
			ActionPOPay:          ScopeAll,
			ActionSaleCreate:     ScopeAll,
			ActionExpenseRecord:  ScopeAll,
			ActionReportDaily:    ScopeAll,
		},
	}}
}

// ScopeFor returns the scope granted to role for action
func (p *Policy) ScopeFor(role Role, action Action) Scope {
	return p.rules[role][action]
}

// Authorize checks an action that is not tied to a record owner
func (p *Policy) Authorize(actor Actor, action Action) error {
	if actor.IsZero() {
		return shared.ErrUnauthorized
	}
	if p.ScopeFor(actor.Role, action) == ScopeNone {
		return shared.NewForbiddenError(fmt.Sprintf("Role %s may not perform %s", actor.Role, action))
	}
	return nil
}

// AuthorizeOwned checks an action against a record authored by owner
func (p *Policy) AuthorizeOwned(actor Actor, action Action, owner uuid.UUID) error {
	if actor.IsZero() {
		return shared.ErrUnauthorized
	}
	switch p.ScopeFor(actor.Role, action) {
	case ScopeAll:
		return nil
	case ScopeOwn:
		if owner == actor.UserID {
			return nil
		}
		return shared.NewForbiddenError(fmt.Sprintf("Only the author may perform %s", action))
	default:
		return shared.NewForbiddenError(fmt.Sprintf("Role %s may not perform %s", actor.Role, action))
	}
}
