package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/metrics"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/scheduler"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	h := New(scheduler.DefaultRules(), slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.NewPrometheus(reg, ""))

	r := gin.New()
	r.Use(h.RequestLogger(), gin.Recovery())
	h.Register(r, reg)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleInput() models.ScheduleInput {
	return models.ScheduleInput{
		Roster: []models.RosterEntry{
			{Name: "Asher", Points: 1},
			{Name: "Benjamin", Points: 7.5},
			{Name: "Dong Han", Points: 3},
			{Name: "Harshith", Points: 14},
			{Name: "Kofi", Points: 4},
		},
		Blocked: "Dong Han: 3, 6, 20–22 Aug\nHarshith: 4–9 Aug",
		Month:   "2025-08",
	}
}

func TestIndex(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), Version)
}

func TestScheduleJSON(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/schedule", sampleInput())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "2025-08", resp.Month)
	require.Len(t, resp.Schedule, 31)
	assert.Equal(t, "2025-08-01", resp.Schedule[0].Date)
	assert.Equal(t, "Asher", resp.Schedule[0].AM)
	assert.Equal(t, []string{"2025-08-03", "2025-08-06", "2025-08-20", "2025-08-21", "2025-08-22"}, resp.Blocked["dong han"])
	require.Len(t, resp.People, 5)
	assert.Equal(t, resp.UnfilledSlots, len(resp.Conflicts))
	assert.GreaterOrEqual(t, resp.FairnessScore, 0.0)
	assert.LessOrEqual(t, resp.FairnessScore, 100.0)

	for _, day := range resp.Schedule {
		for _, name := range day.Names() {
			if name == "Harshith" {
				assert.NotContains(t, []string{"2025-08-04", "2025-08-05", "2025-08-06", "2025-08-07", "2025-08-08", "2025-08-09"}, day.Date)
			}
		}
	}
}

func TestScheduleJSON_BadRequests(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name    string
		mutate  func(in *models.ScheduleInput)
		wantMsg string
	}{
		{
			name:    "month out of range",
			mutate:  func(in *models.ScheduleInput) { in.Month = "2025-13" },
			wantMsg: "invalid input",
		},
		{
			name:    "missing month",
			mutate:  func(in *models.ScheduleInput) { in.Month = "" },
			wantMsg: "Month",
		},
		{
			name: "duplicate names",
			mutate: func(in *models.ScheduleInput) {
				in.Roster = append(in.Roster, models.RosterEntry{Name: " asher", Points: 2})
			},
			wantMsg: "share the name key",
		},
		{
			name:    "negative points",
			mutate:  func(in *models.ScheduleInput) { in.Roster[0].Points = -1 },
			wantMsg: "Points",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := sampleInput()
			tt.mutate(&in)

			w := postJSON(t, r, "/api/schedule", in)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleCSV(t *testing.T) {
	r := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("points_file", "points.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Name,Points\nAsher,1\nBenjamin,7.5\nKofi,4\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("month", "2025-08"))
	require.NoError(t, mw.WriteField("blocked", "Kofi: 1-31"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="PlannedSchedule_Aug-2025.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 32)
	assert.True(t, strings.HasPrefix(lines[1], "1/8/2025,Fri,Asher,Benjamin,"))
	assert.NotContains(t, w.Body.String(), "Kofi")
}

func TestScheduleCSV_Errors(t *testing.T) {
	r := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("month", "2025-08"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "points_file is required")

	body.Reset()
	mw = multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("points_file", "points.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Name,Points\nAsher,many\n"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("month", "2025-08"))
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/schedule/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "line 2")
}

func TestParseBlocked(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/blocked", models.BlockedInput{
		Blocked: "Dong Han: 3, 6\nHarshith: 4-5 Aug",
		Month:   "2025-08",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Month   string                `json:"month"`
		Blocked models.BlockedDateSet `json:"blocked"`
		Summary []string              `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-08", resp.Month)
	assert.Equal(t, []string{"2025-08-04", "2025-08-05"}, resp.Blocked["harshith"])
	assert.Equal(t, []string{"dong han: 3 Aug, 6 Aug", "harshith: 4 Aug, 5 Aug"}, resp.Summary)

	w = postJSON(t, r, "/api/blocked", models.BlockedInput{Blocked: "x: 1", Month: "August"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateInput(t *testing.T) {
	r := newTestRouter(t)

	in := sampleInput()
	in.Blocked += "\nStranger: 4"
	w := postJSON(t, r, "/api/validate", in)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid        bool     `json:"valid"`
		UnknownNames []string `json:"unknown_names"`
		Stats        struct {
			RosterCount int `json:"roster_count"`
			Slots       int `json:"slots"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"stranger"}, resp.UnknownNames)
	assert.Equal(t, 5, resp.Stats.RosterCount)
	assert.Equal(t, 31*6, resp.Stats.Slots)

	in = sampleInput()
	in.Roster = append(in.Roster, models.RosterEntry{Name: "KOFI", Points: 1})
	w = postJSON(t, r, "/api/validate", in)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
	assert.Contains(t, w.Body.String(), "Duplicate roster name")

	in = sampleInput()
	in.Roster = nil
	w = postJSON(t, r, "/api/validate", in)
	assert.Contains(t, w.Body.String(), "At least one roster entry is required")
}

func TestGetRules(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cap_low":8`)
	assert.Contains(t, w.Body.String(), `"reserve_weekly_ceiling":7`)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	postJSON(t, r, "/api/schedule", sampleInput())
	bad := sampleInput()
	bad.Month = "2025-00"
	postJSON(t, r, "/api/schedule", bad)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `dutyplanner_schedule_runs_total{result="ok"} 1`)
	assert.Contains(t, body, `dutyplanner_schedule_runs_total{result="invalid"} 1`)
	assert.Contains(t, body, `dutyplanner_schedule_slots_total{result="filled",slot="AM"}`)
}
