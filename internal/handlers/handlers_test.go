package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/slot-scheduler/internal/audit"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/slot-scheduler/internal/domain/catalog"
	"github.com/BruksfildServices01/slot-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/slot-scheduler/internal/models"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/schedule"
	"github.com/BruksfildServices01/slot-scheduler/internal/usecase/slots"
)

// Sunday.
var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type testServer struct {
	router *gin.Engine
	slots  *memory.SlotStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := memory.NewCatalog()
	st := memory.NewSlotStore()
	bs := memory.NewBookingStore()

	cfg := availability.ProviderConfig{
		ProviderID:      1,
		Timezone:        "UTC",
		IntervalMinutes: 30,
		MaxAdvanceDays:  7,
	}
	for wd := 1; wd <= 5; wd++ {
		cfg.Weekly = append(cfg.Weekly, availability.DayHours{Weekday: wd, Open: "09:00", Close: "12:00"})
	}
	cat.PutProvider(cfg)
	cat.PutService(catalog.Service{ID: 10, ProviderID: 1, Name: "Consult", DurationMinutes: 30})

	validator := availability.NewValidator(clock)
	generate := slots.NewGenerateSlots(cat, st, nil, nil, clock)
	regenerate := slots.NewRegenerateSlots(cat, st, generate, nil, clock)
	reconciler := booking.NewSlotReconciler(st, bs, nil, nil)

	sh := NewSlotsHandler(generate, regenerate, slots.NewGetAvailableSlots(cat, cat, st, bs, validator))
	bh := NewBookingsHandler(
		booking.NewCreateBooking(booking.CreateBookingDeps{
			Configs: cat, Services: cat, Bookings: bs,
			Validator: validator, Reconciler: reconciler, Now: clock,
		}),
		booking.NewConfirmBooking(bs, reconciler, nil, nil, nil, clock),
		booking.NewCancelBooking(bs, reconciler, nil, nil, nil, clock),
		booking.NewCompleteBooking(bs, reconciler, nil, nil, nil, clock),
		booking.NewGetBooking(bs),
	)
	ah := NewAvailabilityHandler(cat, slots.NewUpdateProviderConfig(cat, nil, regenerate, nil))

	r := gin.New()
	p := r.Group("/api/providers/:providerId")
	p.POST("/slots/generate", sh.Generate)
	p.POST("/slots/regenerate", sh.Regenerate)
	p.GET("/availability/slots", sh.Available)
	p.GET("/availability", ah.Get)
	p.PUT("/availability", ah.Update)
	p.POST("/bookings", bh.Create)

	b := r.Group("/api/bookings/:id")
	b.GET("", bh.Get)
	b.POST("/confirm", bh.Confirm())
	b.POST("/cancel", bh.Cancel())
	b.POST("/complete", bh.Complete())

	return &testServer{router: r, slots: st}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func bookingBody(start string) gin.H {
	return gin.H{"client_id": 5, "service_id": 10, "start": start}
}

// ======================================================
// Slots
// ======================================================

func TestSlotsHandler_GenerateAndList(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 30, decode(t, w)["generated"])

	w = s.do(t, http.MethodGet, "/api/providers/1/availability/slots?service_id=10&date=2026-10-19", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "2026-10-19", got["date"])
	require.Len(t, got["slots"], 6)
	assert.Equal(t, "2026-10-19T09:00:00Z", got["slots"].([]any)[0].(map[string]any)["start"])
}

func TestSlotsHandler_GenerateDefaultsToProviderHorizon(t *testing.T) {
	s := newTestServer(t)

	// MaxAdvanceDays is 7: five open weekdays of six slots.
	w := s.do(t, http.MethodPost, "/api/providers/1/slots/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 30, decode(t, w)["generated"])
	assert.Len(t, s.slots.All(), 30)
}

func TestSlotsHandler_BadInput(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/providers/x/slots/generate", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=abc", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=-3", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/providers/1/availability/slots?service_id=10&date=19/10/2026", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/providers/1/availability/slots?service_id=99&date=2026-10-19", nil).Code)
}

// ======================================================
// Bookings
// ======================================================

func TestBookingsHandler_CreateConflictAndReplay(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=7", nil)

	w := s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T09:00:00Z"), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	assert.Equal(t, "pending", created["status"])

	w = s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T09:00:00Z"), "Idempotency-Key", "k1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created["id"], decode(t, w)["id"])

	w = s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T09:00:00Z"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode(t, w)["error_code"])
}

func TestBookingsHandler_ValidationReason(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-01T09:00:00Z"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "PAST", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T09:10:00Z"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NOT_ALIGNED", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("tomorrow"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingsHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=7", nil)

	w := s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T10:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", decode(t, w)["error_code"])

	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode(t, w)["status"])

	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])

	w = s.do(t, http.MethodGet, "/api/bookings/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["status"])

	// Interval is free again.
	w = s.do(t, http.MethodPost, "/api/providers/1/bookings", bookingBody("2026-10-19T10:00:00Z"))
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/bookings/not-a-uuid", nil).Code)
}

// ======================================================
// Availability config
// ======================================================

func TestAvailabilityHandler_UpdateRegenerates(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/providers/1/slots/generate?horizon_days=7", nil)

	body := gin.H{
		"timezone":         "UTC",
		"interval_minutes": 60,
		"max_advance_days": 7,
		"weekly": []gin.H{
			{"weekday": 1, "open": "09:00", "close": "12:00"},
		},
	}
	w := s.do(t, http.MethodPut, "/api/providers/1/availability", body)
	require.Equal(t, http.StatusOK, w.Code)
	regen := decode(t, w)["regeneration"].(map[string]any)
	assert.EqualValues(t, 30, regen["deleted"])
	assert.EqualValues(t, 3, regen["generated"])

	w = s.do(t, http.MethodGet, "/api/providers/1/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 60, decode(t, w)["interval_minutes"])

	body["interval_minutes"] = 1
	w = s.do(t, http.MethodPut, "/api/providers/1/availability", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_interval", decode(t, w)["error_code"])
}

// ======================================================
// Ops and audit
// ======================================================

type stubRunner struct{ err error }

func (s stubRunner) Run(ctx context.Context) (schedule.Report, error) {
	return schedule.Report{Providers: 4, Generated: 12}, s.err
}

func TestOpsHandler_RunDaily(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ops", NewOpsHandler(stubRunner{}).RunDaily)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ops", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, decode(t, w)["providers"])
}

type stubAudit struct{ got audit.Filter }

func (s *stubAudit) List(ctx context.Context, f audit.Filter) ([]models.AuditLog, int64, error) {
	s.got = f
	return []models.AuditLog{{ID: 1, ProviderID: f.ProviderID, Action: "booking_created"}}, 1, nil
}

func TestAuditLogsHandler_AppliesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &stubAudit{}
	r := gin.New()
	r.GET("/api/providers/:providerId/audit-logs", NewAuditLogsHandler(reader).List)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/providers/3/audit-logs?action=booking_created&from=2026-10-01&to=2026-10-02&limit=500", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, uint(3), reader.got.ProviderID)
	assert.Equal(t, "booking_created", reader.got.Action)
	assert.Equal(t, 50, reader.got.Limit)
	require.NotNil(t, reader.got.To)
	assert.Equal(t, time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC), *reader.got.To)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(
		Check{Name: "db", Probe: func(context.Context) error { return nil }},
	).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
