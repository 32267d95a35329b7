// Package finance implements expense bookkeeping and the payment DTOs shared
// by the purchasing and supplier services.
package finance

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/finance"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
)

// ExpenseService handles expense types, records and the name suggestions
type ExpenseService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{runner: runner, policy: policy, logger: logger}
}

// CreateType adds an expense type. Names are unique ignoring case, and
// payroll types need the salary permission.
func (s *ExpenseService) CreateType(ctx context.Context, actor identity.Actor, req CreateExpenseTypeRequest) (*ExpenseTypeResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionExpenseRecord); err != nil {
		return nil, err
	}
	if finance.IsSalaryName(req.Name) {
		if err := s.policy.Authorize(actor, identity.ActionExpenseSalary); err != nil {
			return nil, err
		}
	}
	t, err := finance.NewExpenseType(req.Name, actor.UserID)
	if err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		exists, err := repos.ExpenseTypes().ExistsByName(ctx, t.NormalizedName)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewKindError(shared.KindConflict, "EXPENSE_TYPE_EXISTS", "An expense type with this name already exists").
				WithDetail("name", t.Name)
		}
		return nil, repos.ExpenseTypes().Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense type created", zap.String("expense_type_id", t.ID.String()), zap.String("name", t.Name))
	resp := ToExpenseTypeResponse(t)
	return &resp, nil
}

// ListTypes returns every expense type
func (s *ExpenseService) ListTypes(ctx context.Context) ([]ExpenseTypeResponse, error) {
	var types []finance.ExpenseType
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		types, err = repos.ExpenseTypes().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ExpenseTypeResponse, len(types))
	for i := range types {
		out[i] = ToExpenseTypeResponse(&types[i])
	}
	return out, nil
}

// Record books an expense. A free-text name feeds the suggestion index in
// the same transaction.
func (s *ExpenseService) Record(ctx context.Context, actor identity.Actor, req CreateExpenseRecordRequest) (*ExpenseRecordResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionExpenseRecord); err != nil {
		return nil, err
	}

	var record *finance.ExpenseRecord
	err := s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		t, err := repos.ExpenseTypes().FindByID(ctx, req.TypeID)
		if err != nil {
			return nil, err
		}
		record, err = finance.NewExpenseRecord(t, finance.ExpenseInput{
			Subtype:       req.Subtype,
			Amount:        req.Amount,
			DateOfExpense: req.DateOfExpense,
			Notes:         req.Notes,
		}, actor.UserID, actor.Name)
		if err != nil {
			return nil, err
		}
		if record.IsSalary() {
			if err := s.policy.Authorize(actor, identity.ActionExpenseSalary); err != nil {
				return nil, err
			}
		}
		if err := repos.ExpenseRecords().Create(ctx, record); err != nil {
			return nil, err
		}
		if record.Subtype != "" {
			if err := repos.ExpenseSuggestions().Increment(ctx, record.Subtype, record.CreatedAt); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Expense recorded",
		zap.String("expense_id", record.ID.String()),
		zap.String("type", record.TypeName),
		zap.String("amount", record.Amount.String()),
		zap.String("user_id", actor.UserID.String()),
	)
	resp := ToExpenseRecordResponse(record)
	return &resp, nil
}

// ListRecords returns a page of expense records
func (s *ExpenseService) ListRecords(ctx context.Context, filter ExpenseRecordFilter) (*shared.Paginated[ExpenseRecordResponse], error) {
	from, to := shared.InclusiveRange(filter.From, filter.To)
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   strings.TrimSpace(filter.Search),
		From:     from,
		To:       to,
	}.Normalize()
	if filter.TypeID != nil {
		domainFilter.Filters["type_id"] = *filter.TypeID
	}
	if filter.ManagerID != nil {
		domainFilter.Filters["manager_id"] = *filter.ManagerID
	}

	var page shared.Paginated[ExpenseRecordResponse]
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		records, err := repos.ExpenseRecords().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.ExpenseRecords().Count(ctx, domainFilter)
		if err != nil {
			return err
		}
		items := make([]ExpenseRecordResponse, len(records))
		for i := range records {
			items[i] = ToExpenseRecordResponse(&records[i])
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Suggestions returns the most used expense names starting with prefix
func (s *ExpenseService) Suggestions(ctx context.Context, prefix string, limit int) ([]ExpenseSuggestionResponse, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}
	if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}
	var entries []finance.ExpenseSuggestion
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		entries, err = repos.ExpenseSuggestions().Search(ctx, prefix, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]ExpenseSuggestionResponse, len(entries))
	for i, e := range entries {
		out[i] = ExpenseSuggestionResponse{Name: e.DisplayName, UsageCount: e.UsageCount, LastUsedAt: e.LastUsedAt}
	}
	return out, nil
}
