package persistence

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return m.ToDomain(), nil
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var m models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m).Error; err != nil {
		return nil, translateError(err, "User")
	}
	return m.ToDomain(), nil
}

// FindAll returns every user ordered by name
func (r *GormUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "User")
	}
	users := make([]identity.User, len(rows))
	for i := range rows {
		users[i] = *rows[i].ToDomain()
	}
	return users, nil
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error; err != nil {
		return 0, translateError(err, "User")
	}
	return count, nil
}

// Save inserts a new user or updates an existing one guarded by its version
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	exists, err := rowExists(ctx, r.db, &models.UserModel{}, user.ID)
	if err != nil {
		return translateError(err, "User")
	}
	m := models.UserModelFromDomain(user)
	if !exists {
		return translateError(r.db.WithContext(ctx).Create(m).Error, "User")
	}
	loaded := user.Version
	m.Version = loaded + 1
	if err := saveVersioned(ctx, r.db, m, user.ID, loaded, "User"); err != nil {
		return err
	}
	user.Version = m.Version
	return nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
