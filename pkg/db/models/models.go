package models

// All lists every persisted model, in dependency order, for test schemas.
func All() []any {
	return []any{
		&Location{},
		&Item{},
		&StockLevel{},
		&StockMovement{},
		&TransferRequest{},
		&TransferLine{},
		&TransferCodeSequence{},
		&OutboxEvent{},
	}
}
