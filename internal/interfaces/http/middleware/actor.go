package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrp/backend/internal/interfaces/http/dto"
)

// OperatorKey is the gin context key for the acting operator
const OperatorKey = "operator"

// OperatorHeader carries the operator identity on every request
const OperatorHeader = "X-Operator"

// Actor extracts the operator identity from the X-Operator header and stores
// it in the context. Every ledger mutation and status transition records this
// identity in its audit trail.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if operator != "" {
			c.Set(OperatorKey, operator)
		}
		c.Next()
	}
}

// RequireOperator rejects requests without an operator identity. Applied to
// mutating routes; reads stay anonymous.
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetOperator(c) == "" {
			requestID := getRequestIDFromContext(c)
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidationRequired,
				"X-Operator header is required",
				requestID,
			))
			return
		}
		c.Next()
	}
}

// GetOperator returns the operator identity from the context, or empty string
func GetOperator(c *gin.Context) string {
	if operator, ok := c.Get(OperatorKey); ok {
		if op, ok := operator.(string); ok {
			return op
		}
	}
	return ""
}
