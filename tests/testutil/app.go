package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/uow"
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Stack is the persistence and concurrency plumbing the application
// services run on, backed by an in-memory SQLite database
type Stack struct {
	DB     *gorm.DB
	Scope  *persistence.GormTransactionScope
	Locker *lock.MemoryLocker
	Bus    *event.InMemoryEventBus
	Runner *uow.Runner
	Events *MockEventHandler
}

// NewSQLiteDB opens a private in-memory database with the full schema
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewStack wires a Runner over a fresh database. Every published event is
// recorded by Events.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	db := NewSQLiteDB(t)
	s := &Stack{
		DB:     db,
		Scope:  persistence.NewGormTransactionScope(db, 0),
		Locker: lock.NewMemoryLocker(200 * time.Millisecond),
		Bus:    event.NewInMemoryEventBus(zap.NewNop()),
		Events: NewMockEventHandler(),
	}
	s.Bus.Subscribe(s.Events)
	s.Runner = uow.NewRunner(s.Scope, s.Locker, s.Bus, zap.NewNop())
	return s
}

// EventTypes lists the types of the events published so far, in order
func (s *Stack) EventTypes() []string {
	handled := s.Events.Handled()
	out := make([]string, len(handled))
	for i, e := range handled {
		out[i] = e.EventType()
	}
	return out
}

// BossActor returns a Boss caller
func BossActor() identity.Actor {
	return identity.Actor{UserID: NewTestUUID("boss"), Name: "Boss", Role: identity.RoleBoss}
}

// ManagerActor returns a Manager caller
func ManagerActor() identity.Actor {
	return identity.Actor{UserID: NewTestUUID("manager"), Name: "Manager", Role: identity.RoleManager}
}

// OtherManagerActor returns a second Manager, distinct from ManagerActor
func OtherManagerActor() identity.Actor {
	return identity.Actor{UserID: NewTestUUID("manager-2"), Name: "Second Manager", Role: identity.RoleManager}
}
