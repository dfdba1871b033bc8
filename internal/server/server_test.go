package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueline/internal/app"
	"dueline/internal/config"
	"dueline/internal/domain"
	"dueline/internal/metrics"
	"dueline/internal/tracking"
)

var testNow = time.Date(2025, 1, 24, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := metrics.New()
	a, err := app.Open(context.Background(), app.Options{
		Config:  config.Default(),
		Metrics: m,
		Now:     func() time.Time { return testNow },
	})
	require.NoError(t, err)
	handler, err := New(Config{Engine: a.Engine, BasePath: "/v0", Metrics: m})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

type errorEnvelope struct {
	Error apiErrorBody `json:"error"`
}

func TestHealthAndPage(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v0/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Instrumentos Contratuais")

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v0/openapi.json", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/v0/instruments")
}

func TestListInstrumentsWithFilters(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v0/instruments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[InstrumentListResponse](t, body)
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, "1", all.Items[0].ID)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/instruments?status=signed", nil)
	signed := decode[InstrumentListResponse](t, body)
	require.Len(t, signed.Items, 1)
	assert.Equal(t, domain.StatusSigned, signed.Items[0].Status)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/instruments?entity=1", nil)
	byEntity := decode[InstrumentListResponse](t, body)
	require.Len(t, byEntity.Items, 2)
	assert.Equal(t, "1", byEntity.Items[0].ID)
	assert.Equal(t, "4", byEntity.Items[1].ID)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/instruments?due_from=2025-01-25&due_to=2025-01-25", nil)
	byDate := decode[InstrumentListResponse](t, body)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, "3", byDate.Items[0].ID)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v0/instruments?status=archived", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	env := decode[errorEnvelope](t, body)
	assert.Equal(t, "invalid_field", env.Error.Code)
	assert.Equal(t, "status", env.Error.Details["field"])
}

func TestInstrumentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v0/instruments", map[string]any{
		"title":           "Contrato de Manutenção",
		"due_date":        "2025-03-10",
		"type_id":         "3",
		"entity_ids":      []string{"2"},
		"responsible_ids": []string{"1", "3"},
		"value":           1500.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[InstrumentResponse](t, body)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, "normal", string(created.Urgency))
	require.Len(t, created.Responsibles, 2)
	require.Len(t, created.Movements, 1)

	base := srv.URL + "/v0/instruments/" + created.ID
	resp, body = doJSON(t, http.MethodPatch, base, map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, domain.StatusInProgress, decode[InstrumentResponse](t, body).Status)

	resp, body = doJSON(t, http.MethodPut, base+"/responsibles/3/signature", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	signedOne := decode[InstrumentResponse](t, body)
	assert.Equal(t, domain.SignatureSigned, signedOne.Responsibles[1].SignatureStatus)
	assert.Equal(t, domain.SignaturePending, signedOne.Responsibles[0].SignatureStatus)

	_, body = doJSON(t, http.MethodGet, base+"/movements", nil)
	history := decode[MovementListResponse](t, body)
	assert.Len(t, history.Items, 3)

	resp, _ = doJSON(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[errorEnvelope](t, body).Error.Code)
}

func TestCreateInstrumentValidation(t *testing.T) {
	srv := newTestServer(t)
	cases := map[string]map[string]any{
		"title":    {"title": " ", "due_date": "2025-03-10", "type_id": "1"},
		"due_date": {"title": "X", "due_date": "10/03/2025", "type_id": "1"},
		"type_id":  {"title": "X", "due_date": "2025-03-10", "type_id": "99"},
	}
	for field, payload := range cases {
		t.Run(field, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/v0/instruments", payload)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			env := decode[errorEnvelope](t, body)
			assert.Equal(t, field, env.Error.Details["field"])
		})
	}
}

func TestDashboardAndPriorities(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v0/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := decode[DashboardResponse](t, body)
	assert.Equal(t, 7, d.HorizonDays)
	assert.Equal(t, 4, d.Metrics.Total)
	assert.Equal(t, 25, d.Metrics.Completion)
	require.Len(t, d.Priorities.Items, 4)
	assert.Equal(t, "Vencido", string(d.Priorities.Items[0].Reason))

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/dashboard?responsible=2", nil)
	filtered := decode[DashboardResponse](t, body)
	assert.Equal(t, 1, filtered.Metrics.Total)
	assert.Len(t, filtered.Priorities.Items, 4)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/priorities", nil)
	sel := decode[tracking.Selection](t, body)
	assert.True(t, sel.Computed)
	assert.Len(t, sel.Items, 4)
}

func TestExports(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/v0/exports/csv?status=expired", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "relatorio-instrumentos.csv")
	assert.Contains(t, string(body), "Instrumento de Licenciamento")
	assert.NotContains(t, string(body), "Acordo de Parceria Comercial")

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v0/exports/xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("PK")))

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v0/exports/pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/v0/instruments/4/export.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "instrumento-Instrumento-de-Licenciamento.pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v0/exports/doc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReferenceData(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/v0/entities", map[string]any{"name": " Nova Entidade "})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	ent := decode[domain.Entity](t, body)
	assert.Equal(t, "Nova Entidade", ent.Name)

	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/v0/responsibles/3", map[string]any{"name": "Maria O.", "department": "Operações"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/responsibles", nil)
	people := decode[[]domain.RosterResponsible](t, body)
	require.Len(t, people, 3)
	assert.Equal(t, "Maria O.", people[2].Name)

	resp, body = doJSON(t, http.MethodDelete, srv.URL+"/v0/types/1", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_field", decode[errorEnvelope](t, body).Error.Code)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/v0/types", map[string]any{"name": "Termo Aditivo"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	typ := decode[domain.InstrumentType](t, body)
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/v0/types/"+typ.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/v0/entities/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotifications(t *testing.T) {
	srv := newTestServer(t)

	_, body := doJSON(t, http.MethodGet, srv.URL+"/v0/notifications", nil)
	list := decode[NotificationListResponse](t, body)
	require.Len(t, list.Items, 3)
	assert.Equal(t, 2, list.Unread)
	assert.Equal(t, "1", list.Items[0].ID)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/v0/notifications/1/read", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = doJSON(t, http.MethodGet, srv.URL+"/v0/notifications?unread=true", nil)
	unread := decode[NotificationListResponse](t, body)
	require.Len(t, unread.Items, 1)
	assert.Equal(t, "2", unread.Items[0].ID)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/v0/notifications/read-all", nil)
	assert.Equal(t, int64(1), decode[CountResponse](t, body).Count)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/v0/notifications/refresh", nil)
	refreshed := decode[NotificationListResponse](t, body)
	assert.Len(t, refreshed.Items, 4)

	_, body = doJSON(t, http.MethodPost, srv.URL+"/v0/notifications/refresh", nil)
	assert.Empty(t, decode[NotificationListResponse](t, body).Items)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/v0/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doJSON(t, http.MethodGet, srv.URL+"/v0/instruments/1", nil)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `dueline_http_requests_total{code="200",method="GET",route="/v0/instruments/{instrument_id}"} 1`)
	assert.Contains(t, text, "dueline_movements_appended_total")
}
