package models

// TransferCodeSequence holds the last code number handed out for a calendar day.
type TransferCodeSequence struct {
	SeqDate   string `gorm:"column:seq_date;type:varchar(8);primaryKey"`
	LastValue int    `gorm:"column:last_value;not null;default:0"`
}
