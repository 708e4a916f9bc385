package transfers

import "github.com/foresttrail/trailops/pkg/enums"

// transitions is the complete allowed-transition table. Anything absent is rejected.
var transitions = map[enums.TransferStatus][]enums.TransferStatus{
	enums.TransferStatusPending: {
		enums.TransferStatusInProgress,
		enums.TransferStatusCompleted,
		enums.TransferStatusCancelled,
	},
	enums.TransferStatusInProgress: {
		enums.TransferStatusCompleted,
		enums.TransferStatusCancelled,
		enums.TransferStatusReturned,
	},
	enums.TransferStatusCompleted: {
		enums.TransferStatusCancelled,
		enums.TransferStatusReturned,
	},
	enums.TransferStatusCancelled: nil,
	enums.TransferStatusReturned:  nil,
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to enums.TransferStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from the given status.
func AllowedTransitions(from enums.TransferStatus) []enums.TransferStatus {
	out := make([]enums.TransferStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// effect is the ledger work a transition carries.
type effect int

const (
	effectNone effect = iota
	effectComplete
	effectReverse
)

func effectOf(from, to enums.TransferStatus) effect {
	switch {
	case to == enums.TransferStatusCompleted:
		return effectComplete
	case from == enums.TransferStatusCompleted &&
		(to == enums.TransferStatusCancelled || to == enums.TransferStatusReturned):
		return effectReverse
	default:
		return effectNone
	}
}

func isEditable(status enums.TransferStatus) bool {
	return status == enums.TransferStatusPending || status == enums.TransferStatusInProgress
}
