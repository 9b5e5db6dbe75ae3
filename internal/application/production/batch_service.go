package production

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// maxSaveRetries bounds the optimistic-lock retry loop for batch writes
const maxSaveRetries = 3

// BatchService handles the production batch lifecycle: planning, actual
// quantity reconciliation, guarded transitions, leftovers and the audit log.
// Stock deduction lives in CommitService.
type BatchService struct {
	batchRepo      production.ProductionBatchRepository
	historyRepo    production.StatusHistoryRepository
	materialRepo   stock.MaterialRepository
	eventPublisher shared.EventPublisher
}

// NewBatchService creates a new BatchService
func NewBatchService(
	batchRepo production.ProductionBatchRepository,
	historyRepo production.StatusHistoryRepository,
	materialRepo stock.MaterialRepository,
) *BatchService {
	return &BatchService{
		batchRepo:    batchRepo,
		historyRepo:  historyRepo,
		materialRepo: materialRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all domain events collected by the batch
func (s *BatchService) publishDomainEvents(ctx context.Context, batch *production.ProductionBatch) {
	if s.eventPublisher == nil {
		return
	}
	events := batch.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	batch.ClearDomainEvents()
}

// Create plans a new batch. Material lines are snapshotted from the ledger at
// creation time (code, name, unit, cost); estimated quantities come from the
// request. Two concurrent creates can allocate the same reference; the loser
// re-allocates and saves again.
func (s *BatchService) Create(ctx context.Context, req CreateBatchRequest, actor string) (*BatchResponse, error) {
	var batch *production.ProductionBatch
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		reference, err := s.batchRepo.NextReference(ctx, time.Now())
		if err != nil {
			return nil, err
		}

		batch, err = production.NewProductionBatch(
			reference, req.ProductRef, req.QuantityToProduce,
			req.SizeBreakdown, req.Specifications, actor,
		)
		if err != nil {
			return nil, err
		}

		for _, lineReq := range req.Materials {
			material, err := s.materialRepo.FindByID(ctx, lineReq.MaterialID)
			if err != nil {
				return nil, err
			}
			if err := batch.AddMaterialLine(
				material.ID, material.Code, material.Name,
				lineReq.Color, material.Unit,
				material.UnitCost, lineReq.EstimatedPerUnit,
			); err != nil {
				return nil, err
			}
		}

		lastErr = s.batchRepo.Save(ctx, batch)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, shared.ErrAlreadyExists) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.publishDomainEvents(ctx, batch)

	response := ToBatchResponse(batch)
	return &response, nil
}

// GetByID retrieves a batch with its lines and leftovers
func (s *BatchService) GetByID(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// GetByReference retrieves a batch by its human-readable reference
func (s *BatchService) GetByReference(ctx context.Context, reference string) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// List retrieves batches with filtering and pagination
func (s *BatchService) List(ctx context.Context, filter BatchListFilter) ([]BatchListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	var page *shared.Paginated[production.ProductionBatch]
	var err error
	if filter.Status != "" {
		status := production.BatchStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown batch status filter")
		}
		page, err = s.batchRepo.FindByStatus(ctx, status, domainFilter)
	} else {
		page, err = s.batchRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BatchListItemResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, ToBatchListItemResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

// saveWithRetry applies mutate to a freshly loaded batch and saves it with
// optimistic locking, retrying on concurrent modification.
func (s *BatchService) saveWithRetry(ctx context.Context, batchID uuid.UUID, mutate func(*production.ProductionBatch) error) (*production.ProductionBatch, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		batch, err := s.batchRepo.FindByID(ctx, batchID)
		if err != nil {
			return nil, err
		}

		if err := mutate(batch); err != nil {
			return nil, err
		}

		lastErr = s.batchRepo.SaveWithLock(ctx, batch)
		if lastErr == nil {
			return batch, nil
		}
		if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// RecordActual records the operator-entered per-unit quantity for one line.
// Last write wins across concurrent editors.
func (s *BatchService) RecordActual(ctx context.Context, batchID, lineID uuid.UUID, req RecordActualRequest, actor string) (*BatchResponse, error) {
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor is required")
	}

	batch, err := s.saveWithRetry(ctx, batchID, func(b *production.ProductionBatch) error {
		return b.RecordActualQuantity(lineID, req.PerUnitQuantity, req.Comment)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, batch)

	response := ToBatchResponse(batch)
	return &response, nil
}

// RequestTransition moves a batch forward through its lifecycle, or cancels
// it when the target is CANCELLED. Backward moves are rejected here and must
// go through ConfirmTransition.
func (s *BatchService) RequestTransition(ctx context.Context, batchID uuid.UUID, req TransitionRequest, actor string) (*BatchResponse, error) {
	target := production.BatchStatus(req.Target)

	batch, err := s.saveWithRetry(ctx, batchID, func(b *production.ProductionBatch) error {
		_, err := b.TransitionTo(target, actor, req.Comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, batch)

	response := ToBatchResponse(batch)
	return &response, nil
}

// ConfirmTransition performs an explicitly confirmed backward transition.
// Ledger entries already written for the batch are left untouched.
func (s *BatchService) ConfirmTransition(ctx context.Context, batchID uuid.UUID, req TransitionRequest, actor string) (*BatchResponse, error) {
	target := production.BatchStatus(req.Target)

	batch, err := s.saveWithRetry(ctx, batchID, func(b *production.ProductionBatch) error {
		_, err := b.ConfirmTransitionTo(target, actor, req.Comment)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, batch)

	response := ToBatchResponse(batch)
	return &response, nil
}

// RecordLeftover records (or overwrites) the leftover for one material line.
// Routing a reusable leftover back to stock is a separate, explicit ledger
// credit; recording alone never touches the ledger.
func (s *BatchService) RecordLeftover(ctx context.Context, batchID, lineID uuid.UUID, req RecordLeftoverRequest, actor string) (*BatchResponse, error) {
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor is required")
	}

	batch, err := s.saveWithRetry(ctx, batchID, func(b *production.ProductionBatch) error {
		return b.RecordLeftover(lineID, req.Quantity, req.Reusable, req.Notes)
	})
	if err != nil {
		return nil, err
	}

	response := ToBatchResponse(batch)
	return &response, nil
}

// GetStatusHistory returns the transition log for a batch, oldest first
func (s *BatchService) GetStatusHistory(ctx context.Context, batchID uuid.UUID) ([]StatusHistoryResponse, error) {
	if _, err := s.batchRepo.FindByID(ctx, batchID); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	responses := make([]StatusHistoryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, ToStatusHistoryResponse(&entries[i]))
	}
	return responses, nil
}
