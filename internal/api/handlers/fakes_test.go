package handlers

import (
	"context"
	"errors"

	"github.com/isdelr/ledger-be/internal/ledger"
	"github.com/isdelr/ledger-be/internal/models"
	"github.com/isdelr/ledger-be/internal/services"
	ws "github.com/isdelr/ledger-be/internal/websocket"
)

var errStore = errors.New("database is locked")

type fakeUserService struct {
	registerErr error
	authUser    models.User
	authErr     error
	gotName     string
}

func (f *fakeUserService) Register(_ context.Context, name, username, email, password string) (models.User, error) {
	f.gotName = name
	if f.registerErr != nil {
		return models.User{}, f.registerErr
	}
	return models.User{ID: "u-1", Name: name, Username: username, Email: email}, nil
}

func (f *fakeUserService) Authenticate(context.Context, string, string) (models.User, error) {
	return f.authUser, f.authErr
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (models.User, error) {
	if id != f.authUser.ID {
		return models.User{}, services.ErrUserNotFound
	}
	return f.authUser, nil
}

type fakeTokens struct {
	token string
	err   error
}

func (f fakeTokens) GenerateJWT(models.User) (string, error) { return f.token, f.err }

type fakeAccountService struct {
	createErr error
	deleteErr error
	deleted   string
}

func (f *fakeAccountService) List(context.Context, string) ([]models.Account, error) {
	return []models.Account{}, nil
}

func (f *fakeAccountService) Create(_ context.Context, userID, code, name string, t models.AccountType) (models.Account, error) {
	if f.createErr != nil {
		return models.Account{}, f.createErr
	}
	return models.Account{ID: "a-1", UserID: userID, Code: code, Name: name, Type: t}, nil
}

func (f *fakeAccountService) Delete(_ context.Context, _, accountID string) error {
	f.deleted = accountID
	return f.deleteErr
}

type fakeEntryService struct {
	got       services.EntryInput
	result    services.SaveResult
	saveErr   error
	deleteErr error
}

func (f *fakeEntryService) List(context.Context, string) ([]models.Entry, error) {
	return []models.Entry{}, nil
}

func (f *fakeEntryService) Save(_ context.Context, _ string, in services.EntryInput) (services.SaveResult, error) {
	f.got = in
	return f.result, f.saveErr
}

func (f *fakeEntryService) Delete(context.Context, string, string) error {
	return f.deleteErr
}

type fakeReportService struct {
	data   services.LedgerData
	report ledger.Report
	err    error
}

func (f *fakeReportService) Data(context.Context, string) (services.LedgerData, error) {
	return f.data, f.err
}

func (f *fakeReportService) Report(context.Context, string) (ledger.Report, error) {
	return f.report, f.err
}

type fakeEventService struct {
	gotLimit int
	events   []models.Event
	err      error
}

func (f *fakeEventService) Record(context.Context, string, string, string, string) error { return nil }

func (f *fakeEventService) Recent(_ context.Context, _ string, limit int) ([]models.Event, error) {
	f.gotLimit = limit
	return f.events, f.err
}

type fakeMaintenanceService struct {
	updated int
	err     error
}

func (f *fakeMaintenanceService) BackfillCodes(context.Context) (int, error) { return f.updated, f.err }

func (f *fakeMaintenanceService) EnsureDefaultCharts(context.Context) (int, error) { return 0, nil }

func (f *fakeMaintenanceService) Reconcile(context.Context) (services.ReconcileResult, error) {
	return services.ReconcileResult{}, nil
}

type fakeNotifier struct {
	userID string
	msgs   []ws.Message
}

func (f *fakeNotifier) Notify(userID string, msg ws.Message) {
	f.userID = userID
	f.msgs = append(f.msgs, msg)
}

type fakeBroadcaster struct {
	msgs []ws.Message
}

func (f *fakeBroadcaster) BroadcastMessage(msg ws.Message) {
	f.msgs = append(f.msgs, msg)
}
