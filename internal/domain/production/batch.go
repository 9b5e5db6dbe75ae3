package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SizeBreakdown maps a size label to the quantity produced in that size.
// When present, the quantities must sum to the batch's quantity to produce.
type SizeBreakdown map[string]int

// Total returns the sum of all size quantities
func (b SizeBreakdown) Total() int {
	total := 0
	for _, qty := range b {
		total += qty
	}
	return total
}

// Specifications holds free-text production notes as key/value pairs
type Specifications map[string]string

// ProductionBatch is the aggregate root for the batch lifecycle. It owns the
// material lines, leftover records and the append-only status history; status
// only changes through the guarded transition methods.
type ProductionBatch struct {
	shared.BaseAggregateRoot
	Reference           string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductRef          string         `gorm:"type:varchar(100);not null"`
	QuantityToProduce   int            `gorm:"not null"`
	SizeBreakdown       SizeBreakdown  `gorm:"type:jsonb;serializer:json"`
	Specifications      Specifications `gorm:"type:jsonb;serializer:json"`
	Status              BatchStatus    `gorm:"type:varchar(20);not null;index"`
	CancellationReason  string         `gorm:"type:varchar(255)"`
	CommitInvoked       bool           `gorm:"not null;default:false"` // A commit (full or partial) has been run for this batch
	DeductionIncomplete bool           `gorm:"not null;default:false"` // Last commit left one or more lines undeducted
	StartedAt           *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time

	Lines     []BatchMaterialLine  `gorm:"foreignKey:BatchID;references:ID"`
	Leftovers []LeftoverRecord     `gorm:"foreignKey:BatchID;references:ID"`
	History   []StatusHistoryEntry `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (ProductionBatch) TableName() string {
	return "production_batches"
}

// NewProductionBatch creates a batch in PLANNED status and writes the first
// history entry (previous status nil).
func NewProductionBatch(reference, productRef string, quantityToProduce int, sizes SizeBreakdown, specs Specifications, actor string) (*ProductionBatch, error) {
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Batch reference cannot be empty")
	}
	if productRef == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product reference cannot be empty")
	}
	if quantityToProduce <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity to produce must be positive")
	}
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}
	if len(sizes) > 0 && sizes.Total() != quantityToProduce {
		return nil, shared.NewDomainError("SIZE_BREAKDOWN_MISMATCH", "Size breakdown must sum to the quantity to produce")
	}

	batch := &ProductionBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		ProductRef:        productRef,
		QuantityToProduce: quantityToProduce,
		SizeBreakdown:     sizes,
		Specifications:    specs,
		Status:            BatchStatusPlanned,
		Lines:             make([]BatchMaterialLine, 0),
		Leftovers:         make([]LeftoverRecord, 0),
		History:           make([]StatusHistoryEntry, 0),
	}

	entry := NewStatusHistoryEntry(batch.ID, nil, BatchStatusPlanned, actor, "")
	batch.History = append(batch.History, *entry)

	batch.AddDomainEvent(NewBatchCreatedEvent(batch, actor))

	return batch, nil
}

// AddMaterialLine copies one configured material requirement onto the batch.
// Lines can only be added while the batch is planned; the same material may
// appear more than once only with a different color.
func (b *ProductionBatch) AddMaterialLine(materialID uuid.UUID, code, name, color, unit string, unitCost, estimatedPerUnit decimal.Decimal) error {
	if b.Status != BatchStatusPlanned {
		return shared.NewDomainError("INVALID_STATUS", "Material lines can only be added while the batch is planned")
	}
	if materialID == uuid.Nil {
		return shared.NewDomainError("INVALID_MATERIAL", "Material ID cannot be empty")
	}
	if estimatedPerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Estimated quantity cannot be negative")
	}

	for _, line := range b.Lines {
		if line.MaterialID == materialID && line.Color == color {
			return shared.NewDomainError("DUPLICATE_MATERIAL", "Material already present on batch with this color")
		}
	}

	line := NewBatchMaterialLine(b.ID, materialID, code, name, color, unit, unitCost, estimatedPerUnit)
	b.Lines = append(b.Lines, *line)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// FindLine returns the material line with the given ID, or nil
func (b *ProductionBatch) FindLine(lineID uuid.UUID) *BatchMaterialLine {
	for i := range b.Lines {
		if b.Lines[i].ID == lineID {
			return &b.Lines[i]
		}
	}
	return nil
}

// RecordActualQuantity stores the operator-entered per-unit quantity for one
// line. Last write wins; allowed only while the batch is planned and rejected
// once stock has been deducted against the line.
func (b *ProductionBatch) RecordActualQuantity(lineID uuid.UUID, perUnitQuantity decimal.Decimal, comment string) error {
	if b.Status != BatchStatusPlanned {
		return shared.NewDomainError("INVALID_STATUS", "Actual quantities can only be edited while the batch is planned")
	}

	line := b.FindLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}

	if err := line.RecordActual(perUnitQuantity, comment); err != nil {
		return err
	}

	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewMaterialQuantityRecordedEvent(b, line, perUnitQuantity))

	return nil
}

// IsReconciled returns true when every material line has a positive actual
// quantity. This is the gate for entering production.
func (b *ProductionBatch) IsReconciled() bool {
	for i := range b.Lines {
		if !b.Lines[i].IsReconciled() {
			return false
		}
	}
	return true
}

// PendingLines returns the lines that have not had stock deducted yet
func (b *ProductionBatch) PendingLines() []*BatchMaterialLine {
	pending := make([]*BatchMaterialLine, 0)
	for i := range b.Lines {
		if !b.Lines[i].Deducted {
			pending = append(pending, &b.Lines[i])
		}
	}
	return pending
}

// MarkCommitOutcome records that a commit was run and whether any lines
// remain undeducted. Saved quantities are never rolled back on failure.
func (b *ProductionBatch) MarkCommitOutcome(incomplete bool) {
	b.CommitInvoked = true
	b.DeductionIncomplete = incomplete
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}

// RecordLeftover records the leftover quantity for one material line.
// Called while the batch is in production, once per line (repeat calls
// overwrite), before the COMPLETED transition can be accepted.
func (b *ProductionBatch) RecordLeftover(lineID uuid.UUID, quantity decimal.Decimal, reusable bool, notes string) error {
	if b.Status != BatchStatusInProduction {
		return shared.NewDomainError("INVALID_STATUS", "Leftovers can only be recorded while the batch is in production")
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Leftover quantity cannot be negative")
	}

	line := b.FindLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}

	for i := range b.Leftovers {
		if b.Leftovers[i].LineID == lineID {
			b.Leftovers[i].Update(quantity, reusable, notes)
			b.UpdatedAt = time.Now()
			b.IncrementVersion()
			return nil
		}
	}

	record := NewLeftoverRecord(b.ID, lineID, line.MaterialID, quantity, reusable, notes)
	b.Leftovers = append(b.Leftovers, *record)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return nil
}

// LeftoversComplete returns true when every material line has a leftover record
func (b *ProductionBatch) LeftoversComplete() bool {
	for i := range b.Lines {
		found := false
		for j := range b.Leftovers {
			if b.Leftovers[j].LineID == b.Lines[i].ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TransitionTo requests a forward transition. It validates the transition
// table and the per-edge guards, mutates the status and appends exactly one
// history entry. Cancellation goes through Cancel; backward moves through
// ConfirmTransitionTo.
func (b *ProductionBatch) TransitionTo(target BatchStatus, actor, comment string) (*StatusHistoryEntry, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}
	if target == b.Status {
		return nil, ErrInvalidTransition
	}
	if target == BatchStatusCancelled {
		return b.Cancel(comment, actor)
	}
	if target.IsBackwardFrom(b.Status) {
		return nil, ErrInvalidBackwardTransition
	}
	if !b.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}

	switch target {
	case BatchStatusInProduction:
		if !b.IsReconciled() {
			return nil, ErrMaterialsNotReconciled
		}
		if !b.CommitInvoked {
			return nil, ErrMaterialsNotCommitted
		}
	case BatchStatusCompleted:
		if !b.LeftoversComplete() {
			return nil, ErrLeftoversNotRecorded
		}
	}

	return b.applyTransition(target, actor, comment), nil
}

// ConfirmTransitionTo performs an explicitly confirmed backward transition.
// Stock already deducted is never credited back automatically; any correction
// is a manual ledger credit.
func (b *ProductionBatch) ConfirmTransitionTo(target BatchStatus, actor, comment string) (*StatusHistoryEntry, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown target status")
	}
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}
	if b.Status == BatchStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !target.IsBackwardFrom(b.Status) {
		return nil, ErrInvalidTransition
	}

	return b.applyTransition(target, actor, comment), nil
}

// Cancel moves the batch to CANCELLED. Requires a non-empty reason; rejected
// once the batch is completed or already cancelled.
func (b *ProductionBatch) Cancel(reason, actor string) (*StatusHistoryEntry, error) {
	if b.Status == BatchStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !b.Status.CanBeCancelled() {
		return nil, ErrCannotCancelCompleted
	}
	if reason == "" {
		return nil, ErrCancellationReasonRequired
	}
	if actor == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor cannot be empty")
	}

	b.CancellationReason = reason
	now := time.Now()
	b.CancelledAt = &now

	entry := b.applyTransition(BatchStatusCancelled, actor, reason)
	b.AddDomainEvent(NewBatchCancelledEvent(b, reason, actor))

	return entry, nil
}

// applyTransition mutates the status, stamps lifecycle timestamps and appends
// the history entry. Guards must already have passed.
func (b *ProductionBatch) applyTransition(target BatchStatus, actor, comment string) *StatusHistoryEntry {
	previous := b.Status
	now := time.Now()

	b.Status = target
	switch target {
	case BatchStatusInProduction:
		if b.StartedAt == nil {
			b.StartedAt = &now
		}
	case BatchStatusCompleted:
		if b.CompletedAt == nil {
			b.CompletedAt = &now
		}
	}
	b.UpdatedAt = now
	b.IncrementVersion()

	entry := NewStatusHistoryEntry(b.ID, &previous, target, actor, comment)
	b.History = append(b.History, *entry)

	b.AddDomainEvent(NewBatchStatusChangedEvent(b, previous, target, actor))

	return entry
}
