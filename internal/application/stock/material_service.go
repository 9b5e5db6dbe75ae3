package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// maxSaveRetries bounds the optimistic-lock retry loop for ledger writes
const maxSaveRetries = 3

// consistencyPageSize is how many ledger records a consistency check replays
// per repository round trip
const consistencyPageSize = 1000

// MaterialService handles material ledger operations
type MaterialService struct {
	materialRepo    stock.MaterialRepository
	transactionRepo stock.StockTransactionRepository
	txScope         TransactionScope
	eventPublisher  shared.EventPublisher
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materialRepo stock.MaterialRepository,
	transactionRepo stock.StockTransactionRepository,
	txScope TransactionScope,
) *MaterialService {
	return &MaterialService{
		materialRepo:    materialRepo,
		transactionRepo: transactionRepo,
		txScope:         txScope,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *MaterialService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes all domain events collected by the material
func (s *MaterialService) publishDomainEvents(ctx context.Context, m *stock.Material) {
	if s.eventPublisher == nil {
		return
	}
	events := m.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	m.ClearDomainEvents()
}

// Create registers a new material in the ledger
func (s *MaterialService) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	existing, err := s.materialRepo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	material, err := stock.NewMaterial(req.Code, req.Name, req.Unit)
	if err != nil {
		return nil, err
	}
	material.Color = req.Color
	if err := material.SetUnitCost(req.UnitCost); err != nil {
		return nil, err
	}
	if err := material.SetThresholds(req.MinQuantity, req.MaxQuantity); err != nil {
		return nil, err
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByID retrieves a material by ID
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByCode retrieves a material by its unique code
func (s *MaterialService) GetByCode(ctx context.Context, code string) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToMaterialResponse(material)
	return &response, nil
}

// List retrieves materials with filtering and pagination
func (s *MaterialService) List(ctx context.Context, filter MaterialListFilter) ([]MaterialResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Halted != nil {
		domainFilter.Filters["halted"] = *filter.Halted
	}

	var materials []stock.Material
	var err error
	if filter.BelowMinimum != nil && *filter.BelowMinimum {
		materials, err = s.materialRepo.FindBelowMinimum(ctx, domainFilter)
	} else {
		materials, err = s.materialRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.materialRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MaterialResponse, 0, len(materials))
	for i := range materials {
		responses = append(responses, ToMaterialResponse(&materials[i]))
	}
	return responses, total, nil
}

// CreditStock adds quantity to a material's balance and appends the matching
// ledger transaction in the same database transaction. Retries on concurrent
// modification.
func (s *MaterialService) CreditStock(ctx context.Context, materialID uuid.UUID, req CreditStockRequest, actor string) (*MaterialResponse, error) {
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor is required")
	}

	var material *stock.Material
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		lastErr = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			m, err := repos.MaterialRepo().FindByID(ctx, materialID)
			if err != nil {
				return err
			}

			if err := m.Credit(req.Quantity, req.BatchRef, actor); err != nil {
				return err
			}

			tx, err := stock.NewCredit(m, req.Quantity, req.BatchRef, actor)
			if err != nil {
				return err
			}
			tx.WithReason(req.Reason)

			if err := repos.MaterialRepo().SaveWithLock(ctx, m); err != nil {
				return err
			}
			if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
				return err
			}

			material = m
			return nil
		})
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
			return nil, lastErr
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.publishDomainEvents(ctx, material)

	response := ToMaterialResponse(material)
	return &response, nil
}

// Halt blocks automated deduction for a material pending operator review
func (s *MaterialService) Halt(ctx context.Context, materialID uuid.UUID, req HaltMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if err := material.Halt(req.Reason); err != nil {
		return nil, err
	}
	if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, material)

	response := ToMaterialResponse(material)
	return &response, nil
}

// ClearHalt re-enables automated deduction after operator review
func (s *MaterialService) ClearHalt(ctx context.Context, materialID uuid.UUID) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	material.ClearHalt()
	if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}

	response := ToMaterialResponse(material)
	return &response, nil
}

// ListTransactions retrieves the ledger transactions for a material, newest first
func (s *MaterialService) ListTransactions(ctx context.Context, materialID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "transaction_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	if _, err := s.materialRepo.FindByID(ctx, materialID); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}

	transactions, err := s.transactionRepo.FindByMaterial(ctx, materialID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactionRepo.CountByMaterial(ctx, materialID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, ToTransactionResponse(&transactions[i]))
	}
	return responses, total, nil
}

// CheckConsistency audits a material's ledger: every transaction's recorded
// balances must match its quantity delta, consecutive transactions must chain,
// and the final balance must equal the material's available quantity. On any
// fault the material is halted until an operator intervenes.
func (s *MaterialService) CheckConsistency(ctx context.Context, materialID uuid.UUID) (*ConsistencyReport, error) {
	material, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{
		MaterialID:   material.ID,
		MaterialCode: material.Code,
	}

	// Oldest first so the chain can be replayed, page by page until the
	// ledger is exhausted
	var prev *stock.StockTransaction
	for page := 1; ; page++ {
		filter := shared.Filter{Page: page, PageSize: consistencyPageSize, OrderBy: "transaction_date", OrderDir: "asc"}
		transactions, err := s.transactionRepo.FindByMaterial(ctx, materialID, filter)
		if err != nil {
			return nil, err
		}
		if len(transactions) == 0 {
			break
		}

		for i := range transactions {
			tx := &transactions[i]
			if !tx.Consistent() {
				report.Faults = append(report.Faults,
					fmt.Sprintf("transaction %s: balance delta does not match quantity", tx.ID))
			}
			if prev != nil && !tx.BalanceBefore.Equal(prev.BalanceAfter) {
				report.Faults = append(report.Faults,
					fmt.Sprintf("transaction %s: balance before does not chain from previous record", tx.ID))
			}
			prev = tx
		}
		report.Checked += len(transactions)

		if len(transactions) < consistencyPageSize {
			break
		}
	}
	if prev != nil && !prev.BalanceAfter.Equal(material.AvailableQuantity) {
		report.Faults = append(report.Faults,
			"ledger balance does not match last transaction")
	}

	if len(report.Faults) > 0 && !material.Halted {
		if err := material.Halt("ledger consistency fault detected"); err != nil {
			return nil, err
		}
		if err := s.materialRepo.SaveWithLock(ctx, material); err != nil {
			return nil, err
		}
		s.publishDomainEvents(ctx, material)
	}
	report.Halted = material.Halted

	return report, nil
}
