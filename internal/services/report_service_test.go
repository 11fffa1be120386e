package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Report(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.register(t, "ada")
	grace := f.register(t, "grace")

	cash := f.accountByCode(t, ada.ID, "1000")
	capital := f.accountByCode(t, ada.ID, "3000")
	sales := f.accountByCode(t, ada.ID, "4000")
	rent := f.accountByCode(t, ada.ID, "5001")
	payable := f.accountByCode(t, ada.ID, "2000")
	supplies := f.accountByCode(t, ada.ID, "1009")

	inputs := []EntryInput{
		{Date: "2024-01-01", Description: "Investment", Lines: []LineInput{{AccountID: cash.ID, Debit: 5000}, {AccountID: capital.ID, Credit: 5000}}},
		{Date: "2024-01-05", Description: "Sale", Lines: []LineInput{{AccountID: cash.ID, Debit: 1200.50}, {AccountID: sales.ID, Credit: 1200.50}}},
		{Date: "2024-01-10", Description: "Rent", Lines: []LineInput{{AccountID: rent.ID, Debit: 800}, {AccountID: cash.ID, Credit: 800}}},
		{Date: "2024-01-15", Description: "Supplies on credit", Lines: []LineInput{{AccountID: supplies.ID, Debit: 300}, {AccountID: payable.ID, Credit: 300}}},
	}
	for _, in := range inputs {
		res, err := f.entries.Save(ctx, ada.ID, in)
		require.NoError(t, err)
		require.True(t, res.Balanced)
	}

	// Another user's books never leak into the report.
	graceCash := f.accountByCode(t, grace.ID, "1000")
	graceCapital := f.accountByCode(t, grace.ID, "3000")
	_, err := f.entries.Save(ctx, grace.ID, EntryInput{Date: "2024-01-01", Lines: []LineInput{{AccountID: graceCash.ID, Debit: 99}, {AccountID: graceCapital.ID, Credit: 99}}})
	require.NoError(t, err)

	report, err := f.reports.Report(ctx, ada.ID)
	require.NoError(t, err)

	assert.Equal(t, 5400.50, report.Balances[cash.ID])
	assert.Len(t, report.Balances, 37)

	assert.True(t, report.TrialBalance.Balanced)
	assert.Equal(t, report.TrialBalance.TotalDebits, report.TrialBalance.TotalCredits)
	assert.Len(t, report.TrialBalance.Rows, 6)

	assert.Equal(t, 1200.50, report.IncomeStatement.TotalRevenue)
	assert.Equal(t, 800.0, report.IncomeStatement.TotalExpenses)
	assert.Equal(t, 400.50, report.IncomeStatement.NetIncome)

	bs := report.BalanceSheet
	assert.True(t, bs.Balanced)
	assert.Equal(t, 5700.50, bs.TotalAssets)
	assert.Equal(t, 300.0, bs.TotalLiabilities)
	assert.Equal(t, 5400.50, bs.TotalEquity)
	assert.Less(t, math.Abs(bs.TotalAssets-bs.TotalLiabilitiesAndEquity), 0.01)

	assert.Len(t, report.GeneralLedger, 6)
	require.Len(t, report.Trend, 5)
	assert.Equal(t, "Initial", report.Trend[0].Period)
	assert.Equal(t, "E4 (2024-01-15)", report.Trend[4].Period)
	assert.Equal(t, 400.50, report.Trend[4].NetIncome)
}

func TestReportService_DataEmpty(t *testing.T) {
	f := newFixture(t)
	data, err := f.reports.Data(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, data.Accounts)
	assert.NotNil(t, data.Entries)
	assert.Empty(t, data.Accounts)
	assert.Empty(t, data.Entries)
}
