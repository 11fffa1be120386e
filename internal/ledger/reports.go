package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/isdelr/ledger-be/internal/models"
)

// AccountAmount is a statement row: an account and its rounded amount.
type AccountAmount struct {
	Account models.Account `json:"account"`
	Amount  float64        `json:"amount"`
}

// IncomeStatement summarises revenue and expenses.
type IncomeStatement struct {
	Revenue       []AccountAmount `json:"revenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalRevenue  float64         `json:"totalRevenue"`
	TotalExpenses float64         `json:"totalExpenses"`
	NetIncome     float64         `json:"netIncome"`
}

// BalanceSheet lists assets against liabilities and equity.
type BalanceSheet struct {
	Assets                    []AccountAmount `json:"assets"`
	Liabilities               []AccountAmount `json:"liabilities"`
	Equity                    []AccountAmount `json:"equity"`
	NetIncome                 float64         `json:"netIncome"`
	TotalAssets               float64         `json:"totalAssets"`
	TotalLiabilities          float64         `json:"totalLiabilities"`
	TotalEquity               float64         `json:"totalEquity"`
	TotalLiabilitiesAndEquity float64         `json:"totalLiabilitiesAndEquity"`
	Balanced                  bool            `json:"balanced"`
}

// TrialBalanceRow places an account balance in its debit or credit column.
type TrialBalanceRow struct {
	Account models.Account `json:"account"`
	Debit   float64        `json:"debit"`
	Credit  float64        `json:"credit"`
}

// TrialBalance lists every active account and the column totals.
type TrialBalance struct {
	Rows         []TrialBalanceRow `json:"data"`
	TotalDebits  float64           `json:"totalDebits"`
	TotalCredits float64           `json:"totalCredits"`
	Balanced     bool              `json:"balanced"`
}

// LedgerLine is one posting in an account's ledger.
type LedgerLine struct {
	EntryID     string  `json:"entryId"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
}

// LedgerAccount is the general-ledger page for one account.
type LedgerAccount struct {
	Account models.Account `json:"account"`
	Lines   []LedgerLine   `json:"lines"`
	Balance float64        `json:"balance"`
}

// TrendPoint is cumulative net income after an entry.
type TrendPoint struct {
	Period    string  `json:"period"`
	NetIncome float64 `json:"netIncome"`
}

// Report bundles every statement derived from one book.
type Report struct {
	Balances        map[string]float64 `json:"balances"`
	TrialBalance    TrialBalance       `json:"trialBalance"`
	IncomeStatement IncomeStatement    `json:"incomeStatement"`
	BalanceSheet    BalanceSheet       `json:"balanceSheet"`
	GeneralLedger   []LedgerAccount    `json:"generalLedger"`
	Trend           []TrendPoint       `json:"trend"`
}

// IncomeStatement derives revenue, expenses and net income.
func (b *Book) IncomeStatement() IncomeStatement {
	revenue := b.Total(models.AccountTypeRevenue)
	expenses := b.Total(models.AccountTypeExpense)
	return IncomeStatement{
		Revenue:       b.nonZeroRows(models.AccountTypeRevenue),
		Expenses:      b.nonZeroRows(models.AccountTypeExpense),
		TotalRevenue:  money(revenue),
		TotalExpenses: money(expenses),
		NetIncome:     money(revenue.Sub(expenses)),
	}
}

// BalanceSheet derives the statement of financial position.
func (b *Book) BalanceSheet() BalanceSheet {
	assets := b.TotalAssets()
	liabilities := b.TotalLiabilities()
	equity := b.TotalEquity()
	return BalanceSheet{
		Assets:                    b.nonZeroRows(models.AccountTypeAsset),
		Liabilities:               b.nonZeroRows(models.AccountTypeLiability),
		Equity:                    b.nonZeroRows(models.AccountTypeEquity),
		NetIncome:                 money(b.NetIncome()),
		TotalAssets:               money(assets),
		TotalLiabilities:          money(liabilities),
		TotalEquity:               money(equity),
		TotalLiabilitiesAndEquity: money(liabilities.Add(equity)),
		Balanced:                  withinTolerance(assets, liabilities.Add(equity)),
	}
}

// TrialBalance splits each active account's balance into its normal column.
// Accounts with no lines and a balance within a cent of zero are skipped.
func (b *Book) TrialBalance() TrialBalance {
	tb := TrialBalance{Rows: []TrialBalanceRow{}}
	debits, credits := decimal.Zero, decimal.Zero

	for _, a := range b.accounts {
		bal := b.balances[a.ID]
		active := b.activity[a.ID]
		if !active && bal.Abs().LessThanOrEqual(Tolerance) {
			continue
		}

		debit, credit := decimal.Zero, decimal.Zero
		switch {
		case bal.IsPositive() && a.Type.DebitNormal(), bal.IsNegative() && !a.Type.DebitNormal():
			debit = bal.Abs()
		case bal.IsPositive(), bal.IsNegative():
			credit = bal.Abs()
		}

		tb.Rows = append(tb.Rows, TrialBalanceRow{Account: a, Debit: money(debit), Credit: money(credit)})
		debits = debits.Add(debit)
		credits = credits.Add(credit)
	}

	tb.TotalDebits = money(debits)
	tb.TotalCredits = money(credits)
	tb.Balanced = withinTolerance(debits, credits)
	return tb
}

// GeneralLedger lists each account's postings: journal entries first, then
// adjusting entries, each group in entry order.
// Accounts without postings and with a zero balance are omitted.
func (b *Book) GeneralLedger() []LedgerAccount {
	lines := make(map[string][]LedgerLine)
	for _, adjusting := range []bool{false, true} {
		for _, e := range b.entries {
			if e.IsAdjusting != adjusting {
				continue
			}
			for _, l := range e.Lines {
				lines[l.AccountID] = append(lines[l.AccountID], LedgerLine{
					EntryID:     e.ID,
					Date:        e.Date,
					Description: e.Description,
					Debit:       l.Debit,
					Credit:      l.Credit,
				})
			}
		}
	}

	out := []LedgerAccount{}
	for _, a := range b.accounts {
		if len(lines[a.ID]) == 0 && b.balances[a.ID].IsZero() {
			continue
		}
		rows := lines[a.ID]
		if rows == nil {
			rows = []LedgerLine{}
		}
		out = append(out, LedgerAccount{Account: a, Lines: rows, Balance: money(b.balances[a.ID])})
	}
	return out
}

// Trend returns cumulative net income after each non-adjusting entry,
// starting from an initial zero point.
func (b *Book) Trend() []TrendPoint {
	running := NewBook(b.accounts, nil)
	points := []TrendPoint{{Period: "Initial", NetIncome: 0}}

	n := 0
	for _, e := range b.entries {
		if e.IsAdjusting {
			continue
		}
		for _, l := range e.Lines {
			running.post(l)
		}
		n++
		points = append(points, TrendPoint{
			Period:    fmt.Sprintf("E%d (%s)", n, e.Date),
			NetIncome: money(running.NetIncome()),
		})
	}
	return points
}

// Report derives every statement at once.
func (b *Book) Report() Report {
	return Report{
		Balances:        b.Balances(),
		TrialBalance:    b.TrialBalance(),
		IncomeStatement: b.IncomeStatement(),
		BalanceSheet:    b.BalanceSheet(),
		GeneralLedger:   b.GeneralLedger(),
		Trend:           b.Trend(),
	}
}
