package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type recordingHandler struct {
	mu      sync.Mutex
	types   []string
	handled []shared.DomainEvent
	err     error
	panics  bool
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, e)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	typed := &recordingHandler{types: []string{"PurchaseOrderPaid"}}
	other := &recordingHandler{types: []string{"StockDepleted"}}
	all := &recordingHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(other)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("PurchaseOrderPaid"),
		newTestEvent("PurchaseOrderPaid"),
		newTestEvent("SupplierBalanceChanged"),
	))

	assert.Equal(t, 2, typed.count())
	assert.Equal(t, 0, other.count())
	assert.Equal(t, 3, all.count())

	published, failed := bus.Stats()
	assert.Equal(t, int64(3), published)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_ExplicitTypesOverrideDeclared(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"A"}}
	bus.Subscribe(h, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"E"}, err: errors.New("handler error")}
	panicking := &recordingHandler{types: []string{"E"}, panics: true}
	healthy := &recordingHandler{types: []string{"E"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("E"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	_, failed := bus.Stats()
	assert.Equal(t, int64(2), failed)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"E", "F"}}
	bus.Subscribe(h)
	assert.Equal(t, 2, bus.registry.Len())

	bus.Unsubscribe(h)
	assert.Zero(t, bus.registry.Len())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Zero(t, h.count())
}

func TestCollectEvents(t *testing.T) {
	a := shared.NewBaseAggregateRoot()
	b := shared.NewBaseAggregateRoot()
	a.AddDomainEvent(newTestEvent("one"))
	b.AddDomainEvent(newTestEvent("two"))
	b.AddDomainEvent(newTestEvent("three"))

	events := shared.CollectEvents(&a, &b)

	require.Len(t, events, 3)
	assert.Equal(t, "one", events[0].EventType())
	assert.Equal(t, "three", events[2].EventType())
	assert.Empty(t, a.GetDomainEvents())
	assert.Empty(t, b.GetDomainEvents())
}
