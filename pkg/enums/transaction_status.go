package enums

import "fmt"

// TransactionStatus tracks the settlement state of a ledger transaction.
// A transaction is immutable once created except for status moving
// pending -> completed or pending -> failed exactly once.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusCompleted,
	TransactionStatusFailed,
}

// IsValid reports whether the value is a known TransactionStatus.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanSettleTo reports whether the one-shot settlement transition is allowed.
func (s TransactionStatus) CanSettleTo(target TransactionStatus) bool {
	if s != TransactionStatusPending {
		return false
	}
	return target == TransactionStatusCompleted || target == TransactionStatusFailed
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
