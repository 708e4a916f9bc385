package enums

import "fmt"

// TransferStatus tracks the lifecycle of a stock transfer request.
type TransferStatus string

const (
	TransferStatusPending    TransferStatus = "pending"
	TransferStatusInProgress TransferStatus = "in_progress"
	TransferStatusCompleted  TransferStatus = "completed"
	TransferStatusCancelled  TransferStatus = "cancelled"
	TransferStatusReturned   TransferStatus = "returned"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusInProgress,
	TransferStatusCompleted,
	TransferStatusCancelled,
	TransferStatusReturned,
}

// String implements fmt.Stringer.
func (s TransferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TransferStatus.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave the status.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferStatusCancelled || s == TransferStatusReturned
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
