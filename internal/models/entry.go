package models

// LineType is the side tag stored with every entry line.
type LineType string

const (
	LineDebit  LineType = "debit"
	LineCredit LineType = "credit"
)

// Entry is a journal or adjusting entry together with its lines.
type Entry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Description string      `json:"description"`
	IsAdjusting bool        `json:"is_adjusting"`
	Lines       []EntryLine `json:"lines"`
}

// EntryLine is one side of a double-entry posting.
type EntryLine struct {
	ID        string   `json:"id"`
	EntryID   string   `json:"entry_id"`
	AccountID string   `json:"account_id"`
	Debit     float64  `json:"debit"`
	Credit    float64  `json:"credit"`
	Type      LineType `json:"type"`
}

// TypeFor derives the line tag: a line with a nonzero debit is a debit line.
func TypeFor(debit float64) LineType {
	if debit != 0 {
		return LineDebit
	}
	return LineCredit
}
