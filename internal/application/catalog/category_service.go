package catalog

import (
	"context"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/catalog"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles product category operations
type CategoryService struct {
	runner *uow.Runner
	policy *identity.Policy
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(runner *uow.Runner, policy *identity.Policy, logger *zap.Logger) *CategoryService {
	return &CategoryService{runner: runner, policy: policy, logger: logger}
}

// List returns every category ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	var categories []catalog.Category
	err := s.runner.Read(ctx, func(ctx context.Context, repos uow.Repositories) error {
		var err error
		categories, err = repos.Categories().FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, nil
}

// Create adds a category. Names are unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, actor identity.Actor, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := s.policy.Authorize(actor, identity.ActionProductManage); err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}

	err = s.runner.Write(ctx, nil, func(ctx context.Context, repos uow.Repositories) ([]shared.DomainEvent, error) {
		exists, err := repos.Categories().ExistsByName(ctx, category.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewKindError(shared.KindConflict, "CATEGORY_EXISTS", "A category with this name already exists").
				WithDetail("name", category.Name)
		}
		return nil, repos.Categories().Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", category.Name))
	resp := ToCategoryResponse(category)
	return &resp, nil
}
