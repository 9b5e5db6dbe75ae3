package production

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// MockEventPublisher collects published domain events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// memBatchRepository is an in-memory ProductionBatchRepository
type memBatchRepository struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*production.ProductionBatch
	seq     int
}

func newMemBatchRepository() *memBatchRepository {
	return &memBatchRepository{batches: make(map[uuid.UUID]*production.ProductionBatch)}
}

func (r *memBatchRepository) FindByID(_ context.Context, id uuid.UUID) (*production.ProductionBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b, nil
}

func (r *memBatchRepository) FindByReference(_ context.Context, reference string) (*production.ProductionBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.Reference == reference {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepository) FindAll(_ context.Context, filter shared.Filter) (*shared.Paginated[production.ProductionBatch], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]production.ProductionBatch, 0, len(r.batches))
	for _, b := range r.batches {
		items = append(items, *b)
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *memBatchRepository) FindByStatus(_ context.Context, status production.BatchStatus, filter shared.Filter) (*shared.Paginated[production.ProductionBatch], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]production.ProductionBatch, 0)
	for _, b := range r.batches {
		if b.Status == status {
			items = append(items, *b)
		}
	}
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *memBatchRepository) Save(_ context.Context, batch *production.ProductionBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// References are unique, as in the real schema
	for id, b := range r.batches {
		if id != batch.ID && b.Reference == batch.Reference {
			return shared.ErrAlreadyExists
		}
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *memBatchRepository) SaveWithLock(_ context.Context, batch *production.ProductionBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *memBatchRepository) SaveLine(_ context.Context, line *production.BatchMaterialLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[line.BatchID]
	if !ok {
		return shared.ErrNotFound
	}
	for i := range b.Lines {
		if b.Lines[i].ID == line.ID {
			b.Lines[i] = *line
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memBatchRepository) NextReference(_ context.Context, day time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("PB-%s-%03d", day.Format("20060102"), r.seq), nil
}

func (r *memBatchRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.batches)), nil
}

// memHistoryRepository reads history straight from the stored batches
type memHistoryRepository struct {
	batches *memBatchRepository
}

func (r *memHistoryRepository) FindByBatch(_ context.Context, batchID uuid.UUID) ([]production.StatusHistoryEntry, error) {
	r.batches.mu.Lock()
	defer r.batches.mu.Unlock()
	b, ok := r.batches.batches[batchID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return b.History, nil
}

// memMaterialRepository is an in-memory stock.MaterialRepository
type memMaterialRepository struct {
	mu        sync.Mutex
	materials map[uuid.UUID]*stock.Material
	// conflictsOn injects one concurrency conflict per listed material
	conflictsOn map[uuid.UUID]int
}

func newMemMaterialRepository() *memMaterialRepository {
	return &memMaterialRepository{
		materials:   make(map[uuid.UUID]*stock.Material),
		conflictsOn: make(map[uuid.UUID]int),
	}
}

func (r *memMaterialRepository) put(m *stock.Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials[m.ID] = m
}

func (r *memMaterialRepository) FindByID(_ context.Context, id uuid.UUID) (*stock.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.materials[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *memMaterialRepository) FindByCode(_ context.Context, code string) (*stock.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.materials {
		if m.Code == code {
			clone := *m
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memMaterialRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]stock.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]stock.Material, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.materials[id]; ok {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *memMaterialRepository) FindAll(_ context.Context, _ shared.Filter) ([]stock.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]stock.Material, 0, len(r.materials))
	for _, m := range r.materials {
		result = append(result, *m)
	}
	return result, nil
}

func (r *memMaterialRepository) FindBelowMinimum(_ context.Context, _ shared.Filter) ([]stock.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]stock.Material, 0)
	for _, m := range r.materials {
		if m.IsBelowMinimum() {
			result = append(result, *m)
		}
	}
	return result, nil
}

func (r *memMaterialRepository) Save(_ context.Context, material *stock.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.materials[material.ID] = material
	return nil
}

func (r *memMaterialRepository) SaveWithLock(_ context.Context, material *stock.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.conflictsOn[material.ID]; n > 0 {
		r.conflictsOn[material.ID] = n - 1
		return shared.ErrConcurrencyConflict
	}
	clone := *material
	r.materials[material.ID] = &clone
	return nil
}

func (r *memMaterialRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.materials)), nil
}

// memStockTransactionRepository is an in-memory append-only ledger
type memStockTransactionRepository struct {
	mu           sync.Mutex
	transactions []stock.StockTransaction
}

func newMemStockTransactionRepository() *memStockTransactionRepository {
	return &memStockTransactionRepository{}
}

func (r *memStockTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*stock.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.transactions {
		if r.transactions[i].ID == id {
			return &r.transactions[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockTransactionRepository) FindByMaterial(_ context.Context, materialID uuid.UUID, _ shared.Filter) ([]stock.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]stock.StockTransaction, 0)
	for i := range r.transactions {
		if r.transactions[i].MaterialID == materialID {
			result = append(result, r.transactions[i])
		}
	}
	return result, nil
}

func (r *memStockTransactionRepository) FindByBatchRef(_ context.Context, batchRef string) ([]stock.StockTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]stock.StockTransaction, 0)
	for i := range r.transactions {
		if r.transactions[i].BatchRef == batchRef {
			result = append(result, r.transactions[i])
		}
	}
	return result, nil
}

func (r *memStockTransactionRepository) Create(_ context.Context, tx *stock.StockTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *memStockTransactionRepository) CountByMaterial(_ context.Context, materialID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.transactions {
		if r.transactions[i].MaterialID == materialID {
			n++
		}
	}
	return n, nil
}

var (
	_ production.ProductionBatchRepository = (*memBatchRepository)(nil)
	_ production.StatusHistoryRepository   = (*memHistoryRepository)(nil)
	_ stock.MaterialRepository             = (*memMaterialRepository)(nil)
	_ stock.StockTransactionRepository     = (*memStockTransactionRepository)(nil)
)
