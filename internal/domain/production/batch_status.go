package production

// BatchStatus represents the lifecycle status of a production batch
type BatchStatus string

const (
	BatchStatusPlanned      BatchStatus = "PLANNED"
	BatchStatusInProduction BatchStatus = "IN_PRODUCTION"
	BatchStatusCompleted    BatchStatus = "COMPLETED"
	BatchStatusToCollect    BatchStatus = "TO_COLLECT"
	BatchStatusInStore      BatchStatus = "IN_STORE"
	BatchStatusCancelled    BatchStatus = "CANCELLED"
)

// forwardOrder is the position of each status along the forward production
// path. CANCELLED is outside the ordering.
var forwardOrder = map[BatchStatus]int{
	BatchStatusPlanned:      0,
	BatchStatusInProduction: 1,
	BatchStatusCompleted:    2,
	BatchStatusToCollect:    3,
	BatchStatusInStore:      4,
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPlanned, BatchStatusInProduction, BatchStatusCompleted,
		BatchStatusToCollect, BatchStatusInStore, BatchStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once production work on the batch has ended. A
// completed batch still moves through the collection states, but nothing is
// produced or deducted anymore.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusCancelled
}

// CanBeCancelled returns true if a batch in this status may still be cancelled.
// Once a batch reaches COMPLETED, cancellation is rejected outright.
func (s BatchStatus) CanBeCancelled() bool {
	return s == BatchStatusPlanned || s == BatchStatusInProduction
}

// CanTransitionTo checks if the status can move forward to the target status.
// Backward moves and cancellation are handled separately.
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	switch s {
	case BatchStatusPlanned:
		return target == BatchStatusInProduction
	case BatchStatusInProduction:
		return target == BatchStatusCompleted
	case BatchStatusCompleted:
		return target == BatchStatusToCollect || target == BatchStatusInStore
	case BatchStatusToCollect:
		return target == BatchStatusInStore
	case BatchStatusInStore, BatchStatusCancelled:
		return false
	}
	return false
}

// IsBackwardFrom returns true when moving from `from` to this status would go
// against the forward ordering. Such moves require the explicit confirmed
// transition operation.
func (s BatchStatus) IsBackwardFrom(from BatchStatus) bool {
	fromOrder, okFrom := forwardOrder[from]
	targetOrder, okTarget := forwardOrder[s]
	if !okFrom || !okTarget {
		return false
	}
	return targetOrder < fromOrder
}
