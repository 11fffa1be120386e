// Package ledger aggregates double-entry lines into account balances and
// derives the financial statements from them. It performs no I/O.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/isdelr/ledger-be/internal/models"
)

// Tolerance is the largest difference still treated as equal when comparing totals.
var Tolerance = decimal.New(1, -2)

// Book holds a user's accounts, entries and the balances computed from them.
type Book struct {
	accounts []models.Account
	byID     map[string]models.Account
	entries  []models.Entry
	balances map[string]decimal.Decimal
	activity map[string]bool
}

// NewBook aggregates entries into per-account balances.
// Accounts and entries keep the order they are given in.
func NewBook(accounts []models.Account, entries []models.Entry) *Book {
	b := &Book{
		accounts: accounts,
		byID:     make(map[string]models.Account, len(accounts)),
		entries:  entries,
		balances: make(map[string]decimal.Decimal, len(accounts)),
		activity: make(map[string]bool),
	}
	for _, a := range accounts {
		b.byID[a.ID] = a
		b.balances[a.ID] = decimal.Zero
	}
	for _, e := range entries {
		for _, line := range e.Lines {
			b.activity[line.AccountID] = true
			b.post(line)
		}
	}
	return b
}

// post applies one line using the normal-balance convention of its account.
func (b *Book) post(line models.EntryLine) {
	acct, ok := b.byID[line.AccountID]
	if !ok {
		return
	}
	debit := decimal.NewFromFloat(line.Debit)
	credit := decimal.NewFromFloat(line.Credit)
	if acct.Type.DebitNormal() {
		b.balances[acct.ID] = b.balances[acct.ID].Add(debit.Sub(credit))
	} else {
		b.balances[acct.ID] = b.balances[acct.ID].Add(credit.Sub(debit))
	}
}

// Balance returns the signed balance of an account; unknown accounts are zero.
func (b *Book) Balance(accountID string) decimal.Decimal {
	return b.balances[accountID]
}

// Balances returns account id -> balance rounded to cents.
func (b *Book) Balances() map[string]float64 {
	out := make(map[string]float64, len(b.balances))
	for id, bal := range b.balances {
		out[id] = money(bal)
	}
	return out
}

// Total sums the balances of every account of the given type.
func (b *Book) Total(t models.AccountType) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range b.accounts {
		if a.Type == t {
			sum = sum.Add(b.balances[a.ID])
		}
	}
	return sum
}

// TotalAssets is the sum of all asset balances.
func (b *Book) TotalAssets() decimal.Decimal {
	return b.Total(models.AccountTypeAsset)
}

// TotalLiabilities is the sum of all liability balances.
func (b *Book) TotalLiabilities() decimal.Decimal {
	return b.Total(models.AccountTypeLiability)
}

// NetIncome is total revenue minus total expenses.
func (b *Book) NetIncome() decimal.Decimal {
	return b.Total(models.AccountTypeRevenue).Sub(b.Total(models.AccountTypeExpense))
}

// TotalEquity is the sum of equity balances plus net income.
func (b *Book) TotalEquity() decimal.Decimal {
	return b.Total(models.AccountTypeEquity).Add(b.NetIncome())
}

// nonZeroRows lists accounts of a type whose balance is not exactly zero.
func (b *Book) nonZeroRows(t models.AccountType) []AccountAmount {
	rows := []AccountAmount{}
	for _, a := range b.accounts {
		if a.Type != t || b.balances[a.ID].IsZero() {
			continue
		}
		rows = append(rows, AccountAmount{Account: a, Amount: money(b.balances[a.ID])})
	}
	return rows
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Tolerance)
}
