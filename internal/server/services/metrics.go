package services

import (
	"errors"

	"github.com/jobfind/jobfind/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Session operation names used as metric labels.
const (
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpLogout   = "logout"
	OpRegister = "register"
)

// Outcome labels.
const (
	OutcomeSuccess              = "success"
	OutcomeAuthenticationFailed = "authentication_failed"
	OutcomeMissingToken         = "missing_token"
	OutcomeInvalidToken         = "invalid_token"
	OutcomeRevokedToken         = "revoked_token"
	OutcomeDuplicateEmail       = "duplicate_email"
	OutcomeUnauthenticated      = "unauthenticated"
	OutcomeStoreUnavailable     = "store_unavailable"
	OutcomeError                = "error"
)

// AuthOperations counts session operations by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "jobfind_auth_operations_total",
		Help: "Total number of session operations by outcome",
	},
	[]string{"operation", "outcome"},
)

// RegisterMetrics registers service metrics with reg. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthOperations)
}

// outcomeOf maps an operation error onto its metric label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, common.ErrAuthenticationFailed):
		return OutcomeAuthenticationFailed
	case errors.Is(err, common.ErrMissingToken):
		return OutcomeMissingToken
	case errors.Is(err, common.ErrInvalidToken):
		return OutcomeInvalidToken
	case errors.Is(err, common.ErrRevokedToken):
		return OutcomeRevokedToken
	case errors.Is(err, common.ErrDuplicateEmail):
		return OutcomeDuplicateEmail
	case errors.Is(err, common.ErrUnauthenticated):
		return OutcomeUnauthenticated
	case errors.Is(err, common.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	default:
		return OutcomeError
	}
}

func record(operation string, err error) {
	AuthOperations.WithLabelValues(operation, outcomeOf(err)).Inc()
}
