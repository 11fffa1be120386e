package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/ledger-be/internal/auth"
	"github.com/isdelr/ledger-be/internal/chart"
	"github.com/isdelr/ledger-be/internal/database"
	"github.com/isdelr/ledger-be/internal/ledger"
	"github.com/isdelr/ledger-be/internal/models"
	"github.com/isdelr/ledger-be/internal/services"
	"github.com/isdelr/ledger-be/internal/websocket"
)

type testServer struct {
	*httptest.Server
	db *sql.DB
	t  *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	events := services.NewEventService(db)
	svc := Services{
		Users:       services.NewUserService(db, chart.Default(), events),
		Accounts:    services.NewAccountService(db, events),
		Entries:     services.NewEntryService(db, events),
		Reports:     services.NewReportService(db),
		Events:      events,
		Maintenance: services.NewMaintenanceService(db, chart.Default(), events),
	}

	srv := httptest.NewServer(NewRouter(svc, auth.NewManager("test-secret", time.Hour), hub, []string{"*"}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, db: db, t: t}
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func (s *testServer) do(method, path, token string, body interface{}, out interface{}) int {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) signup(username string) string {
	s.t.Helper()
	status := s.do(http.MethodPost, "/register", "", map[string]string{
		"name": username, "username": username, "email": username + "@example.com", "password": "pw",
	}, nil)
	require.Equal(s.t, http.StatusOK, status)

	var login struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	status = s.do(http.MethodPost, "/login", "", map[string]string{"email": username + "@example.com", "password": "pw"}, &login)
	require.Equal(s.t, http.StatusOK, status)
	require.NotEmpty(s.t, login.Token)
	assert.Equal(s.t, username, login.User.Username)
	return login.Token
}

func (s *testServer) data(token string) services.LedgerData {
	s.t.Helper()
	var data services.LedgerData
	require.Equal(s.t, http.StatusOK, s.do(http.MethodGet, "/data", token, nil, &data))
	return data
}

func accountID(t *testing.T, accounts []models.Account, code string) string {
	t.Helper()
	for _, a := range accounts {
		if a.Code == code {
			return a.ID
		}
	}
	t.Fatalf("no account with code %s", code)
	return ""
}

func TestRouter_LedgerFlow(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada")
	grace := s.signup("grace")

	adaData := s.data(ada)
	require.Len(t, adaData.Accounts, 37)
	assert.Empty(t, adaData.Entries)
	cash := accountID(t, adaData.Accounts, "1000")
	capital := accountID(t, adaData.Accounts, "3000")
	sales := accountID(t, adaData.Accounts, "4000")

	graceCash := accountID(t, s.data(grace).Accounts, "1000")

	// Create two balanced entries, amounts as the form sends them.
	var saved struct {
		Success  bool   `json:"success"`
		ID       string `json:"id"`
		Balanced bool   `json:"balanced"`
	}
	status := s.do(http.MethodPost, "/entries", ada, map[string]interface{}{
		"date": "2024-01-01", "description": "Investment", "is_adjusting": false,
		"lines": []map[string]string{
			{"accountId": cash, "debit": "1000", "credit": ""},
			{"accountId": capital, "debit": "", "credit": "1000"},
		},
	}, &saved)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, saved.Success)
	assert.True(t, saved.Balanced)
	investment := saved.ID

	status = s.do(http.MethodPost, "/entries", ada, map[string]interface{}{
		"date": "2024-01-02", "description": "Sale",
		"lines": []map[string]interface{}{
			{"accountId": cash, "debit": 250, "credit": 0},
			{"accountId": sales, "debit": 0, "credit": 250},
		},
	}, &saved)
	require.Equal(t, http.StatusOK, status)

	var report ledger.Report
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/reports", ada, nil, &report))
	assert.True(t, report.TrialBalance.Balanced)
	assert.Equal(t, 1250.0, report.TrialBalance.TotalDebits)
	assert.True(t, report.BalanceSheet.Balanced)
	assert.Equal(t, 250.0, report.IncomeStatement.NetIncome)

	// Grace can neither post to Ada's accounts nor touch Ada's entries.
	var errBody map[string]string
	status = s.do(http.MethodPost, "/entries", grace, map[string]interface{}{
		"date": "2024-01-01",
		"lines": []map[string]interface{}{
			{"accountId": graceCash, "debit": 5},
			{"accountId": capital, "credit": 5},
		},
	}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "One or more accounts do not belong to you", errBody["error"])

	status = s.do(http.MethodPost, "/entries", grace, map[string]interface{}{
		"id": investment, "date": "2024-01-01",
		"lines": []map[string]interface{}{{"accountId": graceCash, "debit": 5}},
	}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Entry not found or does not belong to you", errBody["error"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/entries/"+investment, grace, nil, nil))
	assert.Len(t, s.data(ada).Entries, 2)

	// Update replaces the lines.
	status = s.do(http.MethodPost, "/entries", ada, map[string]interface{}{
		"id": investment, "date": "2024-01-01", "description": "Investment (corrected)",
		"lines": []map[string]interface{}{
			{"accountId": cash, "debit": 2000},
			{"accountId": capital, "credit": 2000},
		},
	}, &saved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, investment, saved.ID)

	entries := s.data(ada).Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "Investment (corrected)", entries[0].Description)
	require.Len(t, entries[0].Lines, 2)
	assert.Equal(t, 2000.0, entries[0].Lines[0].Debit)

	// Accounts with lines cannot be removed; others can.
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/accounts/"+cash, ada, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/accounts/"+cash, grace, nil, nil))

	var created models.Account
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/accounts", ada,
		map[string]string{"code": "1010", "name": "Petty Cash", "type": "asset"}, &created))
	assert.Equal(t, "Petty Cash", created.Name)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/accounts/"+created.ID, ada, nil, nil))

	// Delete removes the entry.
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/entries/"+investment, ada, nil, nil))
	assert.Len(t, s.data(ada).Entries, 1)

	var events []models.Event
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/events?limit=3", ada, nil, &events))
	require.Len(t, events, 3)
	assert.Equal(t, services.EventEntryDelete, events[0].Type)
}

func TestRouter_Auth(t *testing.T) {
	s := newTestServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/data", "", nil, &body))
	assert.Equal(t, "Missing auth token", body["error"])

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/data", "forged", nil, &body))
	assert.Equal(t, "Invalid auth token", body["error"])

	s.signup("ada")
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/register", "", map[string]string{
		"name": "x", "username": "ada", "email": "new@example.com", "password": "pw",
	}, &body))
	assert.Equal(t, "Username already exists.", body["error"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong",
	}, &body))
	assert.Equal(t, "Invalid password", body["error"])
}

func TestRouter_AdminBackfill(t *testing.T) {
	s := newTestServer(t)
	s.signup("ada")

	var body struct {
		Status  string `json:"status"`
		Updated int    `json:"updated"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/admin/backfill-codes", "", nil, &body))
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Updated)
}

func TestRouter_WebSocketReceivesLedgerChanges(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada")
	data := s.data(ada)

	wsURL := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?token=" + ada
	conn, _, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The ping round trip proves the client is registered with the hub.
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.ActionPong, msg.Action)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/accounts", ada,
		map[string]string{"code": "1010", "name": "Petty Cash", "type": "asset"}, nil))

	var change struct {
		Action  string                 `json:"action"`
		Payload websocket.LedgerChange `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, websocket.ActionLedgerChanged, change.Action)
	assert.Equal(t, "account", change.Payload.Resource)
	assert.Equal(t, "create", change.Payload.Op)
	assert.Len(t, data.Accounts, 37)

	_, _, err = gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws", nil)
	assert.Error(t, err, "unauthenticated upgrade must fail")
}

func TestRouter_BackfillPushesChartChange(t *testing.T) {
	s := newTestServer(t)
	ada := s.signup("ada")

	_, err := s.db.Exec("UPDATE accounts SET code = NULL WHERE name = 'Cash'")
	require.NoError(t, err)

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws?token="+ada, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var pong websocket.Message
	require.NoError(t, conn.ReadJSON(&pong))
	require.Equal(t, websocket.ActionPong, pong.Action)

	var body struct {
		Updated int `json:"updated"`
	}
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/admin/backfill-codes", "", nil, &body))
	assert.Equal(t, 1, body.Updated)

	var change struct {
		Action  string                 `json:"action"`
		Payload websocket.LedgerChange `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, websocket.ActionLedgerChanged, change.Action)
	assert.Equal(t, websocket.LedgerChange{Resource: "chart", Op: "update"}, change.Payload)
}
