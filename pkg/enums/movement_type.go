package enums

import "fmt"

// MovementType classifies stock movement log entries.
type MovementType string

const (
	MovementTransferOut      MovementType = "transfer_out"
	MovementTransferReversal MovementType = "transfer_reversal"
	MovementStatusChange     MovementType = "status_change"
)

var validMovementTypes = []MovementType{
	MovementTransferOut,
	MovementTransferReversal,
	MovementStatusChange,
}

func (m MovementType) String() string {
	return string(m)
}

func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
