package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/isdelr/ledger-be/internal/models"
)

// EntryCheck is the outcome of checking one entry's lines.
type EntryCheck struct {
	TotalDebits  float64 `json:"totalDebits"`
	TotalCredits float64 `json:"totalCredits"`
	ValidLines   int     `json:"validLines"`
	Balanced     bool    `json:"balanced"`
}

// CheckLines reports whether lines form a valid double entry: debits equal
// credits within Tolerance and at least two lines carry an account and a
// nonzero amount.
func CheckLines(lines []models.EntryLine) EntryCheck {
	debits, credits := decimal.Zero, decimal.Zero
	valid := 0
	for _, l := range lines {
		d := decimal.NewFromFloat(l.Debit)
		c := decimal.NewFromFloat(l.Credit)
		debits = debits.Add(d)
		credits = credits.Add(c)
		if l.AccountID != "" && (d.IsPositive() || c.IsPositive()) {
			valid++
		}
	}
	return EntryCheck{
		TotalDebits:  money(debits),
		TotalCredits: money(credits),
		ValidLines:   valid,
		Balanced:     withinTolerance(debits, credits) && valid >= 2,
	}
}
