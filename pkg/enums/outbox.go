package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateTransferRequest OutboxAggregateType = "transfer_request"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransferRequest,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names the domain events queued through the outbox.
type OutboxEventType string

const (
	EventTransferCreated       OutboxEventType = "transfer_created"
	EventTransferLinesUpdated  OutboxEventType = "transfer_lines_updated"
	EventTransferStatusChanged OutboxEventType = "transfer_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTransferCreated,
	EventTransferLinesUpdated,
	EventTransferStatusChanged,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
