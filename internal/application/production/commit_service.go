package production

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/production"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/stock"
)

// CommitService deducts reconciled material quantities from the stock ledger.
//
// Each pending line is finalized in its own database transaction: the balance
// mutation, the ledger record and the line's deducted flag commit together.
// Lines never share a transaction, so a failing line leaves earlier lines
// deducted. Commit is re-invocable: already deducted lines are skipped, and
// recorded actual quantities are never rolled back.
type CommitService struct {
	batchRepo      production.ProductionBatchRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCommitService creates a new CommitService
func NewCommitService(
	batchRepo production.ProductionBatchRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *CommitService {
	return &CommitService{
		batchRepo: batchRepo,
		txScope:   txScope,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CommitService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Commit deducts stock for every pending line of the batch. It returns a
// CommitResult describing the outcome per line; an error is returned only
// when the run could not proceed at all (unknown batch, wrong status,
// missing reconciliation).
func (s *CommitService) Commit(ctx context.Context, batchID uuid.UUID, actor string) (*CommitResult, error) {
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor is required")
	}

	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	// IN_PRODUCTION is accepted so an incomplete deduction can be finished
	// after stock is replenished
	if batch.Status != production.BatchStatusPlanned && batch.Status != production.BatchStatusInProduction {
		return nil, shared.NewDomainError("INVALID_STATUS", "Stock can only be committed while the batch is planned or in production")
	}
	if !batch.IsReconciled() {
		return nil, production.ErrMaterialsNotReconciled
	}

	result := &CommitResult{
		BatchID:   batch.ID,
		Reference: batch.Reference,
	}

	for i := range batch.Lines {
		line := &batch.Lines[i]
		if line.Deducted {
			result.LinesSkipped++
			continue
		}

		failure, err := s.commitLine(ctx, batch, line, actor)
		if err != nil {
			return nil, err
		}
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			s.publishEvent(ctx, production.NewStockDeductionFailedEvent(
				batch, failure.MaterialCode, failure.Required, failure.Available, failure.MaxProducible))
			continue
		}
		result.LinesDeducted++
	}

	result.FullyCommitted = len(result.Failures) == 0
	batch.MarkCommitOutcome(!result.FullyCommitted)
	if err := s.batchRepo.SaveWithLock(ctx, batch); err != nil {
		return nil, err
	}

	if result.FullyCommitted {
		s.publishEvent(ctx, production.NewMaterialsCommittedEvent(batch, result.LinesDeducted, actor))
	} else {
		s.logger.Warn("commit left lines undeducted",
			zap.String("batch_ref", batch.Reference),
			zap.Int("deducted", result.LinesDeducted),
			zap.Int("failed", len(result.Failures)),
		)
	}

	return result, nil
}

// commitLine deducts one line inside its own transaction, retrying on
// concurrent ledger writes. A nil failure with a nil error means the line
// was deducted.
func (s *CommitService) commitLine(ctx context.Context, batch *production.ProductionBatch, line *production.BatchMaterialLine, actor string) (*CommitFailure, error) {
	required := line.TotalActual(batch.QuantityToProduce)

	var failure *CommitFailure
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		failure = nil
		lastErr = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			material, err := repos.MaterialRepo().FindByID(ctx, line.MaterialID)
			if err != nil {
				return err
			}

			if err := material.Deduct(required, batch.Reference, actor); err != nil {
				f, convErr := toCommitFailure(line, material, required, err)
				if convErr != nil {
					return convErr
				}
				failure = f
				return nil
			}

			tx, err := stock.NewDeduction(material, required, batch.Reference, actor)
			if err != nil {
				return err
			}

			if err := repos.MaterialRepo().SaveWithLock(ctx, material); err != nil {
				return err
			}
			if err := repos.StockTransactionRepo().Create(ctx, tx); err != nil {
				return err
			}

			line.MarkDeducted()
			return repos.BatchRepo().SaveLine(ctx, line)
		})
		if lastErr == nil {
			return failure, nil
		}
		if !errors.Is(lastErr, shared.ErrConcurrencyConflict) {
			return nil, lastErr
		}
		// Another writer changed the material; reload and retry
		line.Deducted = false
		line.DeductedAt = nil
	}
	return nil, lastErr
}

// toCommitFailure maps a domain deduction error onto a CommitFailure.
// Unexpected errors are passed through and abort the run.
func toCommitFailure(line *production.BatchMaterialLine, material *stock.Material, required decimal.Decimal, err error) (*CommitFailure, error) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return nil, err
	}
	switch domainErr.Code {
	case shared.ErrInsufficientStock.Code, "MATERIAL_HALTED":
		return &CommitFailure{
			LineID:        line.ID,
			MaterialID:    material.ID,
			MaterialCode:  material.Code,
			Color:         line.Color,
			Code:          domainErr.Code,
			Message:       domainErr.Message,
			Required:      required,
			Available:     material.AvailableQuantity,
			MaxProducible: material.MaxProducible(line.ActualPerUnit),
		}, nil
	default:
		return nil, err
	}
}

func (s *CommitService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, event)
}
