package transfers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultCodePrefix = "TRF"
	codeDateLayout    = "20060102"
)

const reserveSequenceSQL = `INSERT INTO transfer_code_sequences (seq_date, last_value) VALUES (?, 1)
ON CONFLICT (seq_date) DO UPDATE SET last_value = transfer_code_sequences.last_value + 1
RETURNING last_value`

// CodeGenerator hands out PREFIX-YYYYMMDD-NNN codes from a per-day counter.
// The day is the calendar day of loc.
type CodeGenerator struct {
	prefix string
	loc    *time.Location
}

// NewCodeGenerator falls back to DefaultCodePrefix and UTC.
func NewCodeGenerator(prefix string, loc *time.Location) CodeGenerator {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultCodePrefix
	}
	if loc == nil {
		loc = time.UTC
	}
	return CodeGenerator{prefix: prefix, loc: loc}
}

// NextCode reserves the next number for the calendar day of at in the
// generator's zone. Run it in the creating transaction so a rollback also
// releases the number.
func (g CodeGenerator) NextCode(ctx context.Context, tx *gorm.DB, at time.Time) (string, error) {
	loc := g.loc
	if loc == nil {
		loc = time.UTC
	}
	at = at.In(loc)
	day := at.Format(codeDateLayout)
	var next int
	if err := tx.WithContext(ctx).Raw(reserveSequenceSQL, day).Scan(&next).Error; err != nil {
		return "", fmt.Errorf("reserve transfer code sequence: %w", err)
	}
	if next <= 0 {
		return "", fmt.Errorf("reserve transfer code sequence: got %d", next)
	}
	return FormatCode(g.prefix, at, next), nil
}

// FormatCode renders a transfer code using the calendar day of at in its own
// zone. Numbers above 999 simply widen.
func FormatCode(prefix string, at time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, at.Format(codeDateLayout), seq)
}
