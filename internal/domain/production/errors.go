package production

import "github.com/mrp/backend/internal/domain/shared"

// Typed transition errors. Each identifies the precondition the caller must
// resolve before retrying.
var (
	ErrMaterialsNotReconciled     = shared.NewDomainError("MATERIALS_NOT_RECONCILED", "Every material line needs a positive actual quantity before production can start")
	ErrMaterialsNotCommitted      = shared.NewDomainError("MATERIALS_NOT_COMMITTED", "Stock deduction has not been invoked for this batch")
	ErrLeftoversNotRecorded       = shared.NewDomainError("LEFTOVERS_NOT_RECORDED", "Every material line needs a leftover record before the batch can be completed")
	ErrAlreadyCancelled           = shared.NewDomainError("ALREADY_CANCELLED", "Batch is already cancelled")
	ErrCannotCancelCompleted      = shared.NewDomainError("CANNOT_CANCEL_COMPLETED", "A completed batch cannot be cancelled")
	ErrInvalidTransition          = shared.NewDomainError("INVALID_TRANSITION", "Transition not permitted from current status")
	ErrInvalidBackwardTransition  = shared.NewDomainError("INVALID_BACKWARD_TRANSITION", "Backward transitions require explicit confirmation")
	ErrCancellationReasonRequired = shared.NewDomainError("CANCELLATION_REASON_REQUIRED", "Cancellation reason cannot be empty")
	ErrLineDeducted               = shared.NewDomainError("LINE_DEDUCTED", "Material line is immutable after stock deduction")
)
