package model

// =====================================================
// PAYMENT STATUS
// =====================================================
const (
	PaymentStatusPending         = "pending"
	PaymentStatusCompleted       = "completed"
	PaymentStatusFailed          = "failed"
	PaymentStatusRefunded        = "refunded"
	PaymentStatusPartialRefunded = "partial_refunded"
)

var ValidPaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusRefunded,
	PaymentStatusPartialRefunded,
}

// PaymentTransitions is the forward-only status DAG. failed and
// refunded are absorbing.
var PaymentTransitions = map[string][]string{
	PaymentStatusPending:         {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted:       {PaymentStatusRefunded, PaymentStatusPartialRefunded},
	PaymentStatusPartialRefunded: {PaymentStatusRefunded, PaymentStatusPartialRefunded},
	PaymentStatusFailed:          {},
	PaymentStatusRefunded:        {},
}

// CanTransitionPayment reports whether from -> to is a legal move.
func CanTransitionPayment(from, to string) bool {
	for _, next := range PaymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentTransitionSources returns every status that may move to
// target. Used to build the CAS predicate (status = ANY(sources)).
func PaymentTransitionSources(target string) []string {
	var sources []string
	for from, nexts := range PaymentTransitions {
		for _, next := range nexts {
			if next == target {
				sources = append(sources, from)
				break
			}
		}
	}
	return sources
}

// =====================================================
// REFUND STATUS
// =====================================================
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
	RefundStatusFailed    = "failed"
)

var ValidRefundStatuses = []string{
	RefundStatusPending,
	RefundStatusProcessed,
	RefundStatusFailed,
}

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodePaymentNotFound    = "PAY001"
	ErrCodeValidation         = "PAY002"
	ErrCodeInvalidTransition  = "PAY003"
	ErrCodeInvalidState       = "PAY004"
	ErrCodeDuplicateKey       = "PAY005"
	ErrCodeRefundNotFound     = "PAY006"
	ErrCodeRefundExceedsLimit = "PAY007"
	ErrCodeInternalError      = "PAY008"
)

// =====================================================
// PAYMENT CONFIGURATION
// =====================================================
const (
	// Default currency
	DefaultCurrency = "USD"
)
