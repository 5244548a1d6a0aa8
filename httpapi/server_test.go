package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cigarlounge/smokesim"
	"github.com/cigarlounge/smokesim/rand"
	"github.com/cigarlounge/smokesim/smoke"
)

func newTestServer() (*smokesim.Lounge, http.Handler) {
	lounge := smokesim.New(smoke.DefaultParams(), rand.New(rand.Xorshift, 42))
	var mu sync.Mutex
	return lounge, NewServer(lounge, &mu, nil).Router()
}

func TestHealth(t *testing.T) {
	_, router := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d.", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	lounge, router := newTestServer()
	lounge.SetNumSmokers(4)
	for i := 0; i < 100; i++ {
		lounge.Step(0.1)
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /status = %d.", rec.Code)
	}

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Mode != "manual" {
		t.Errorf("Mode = %q, expected manual.", resp.Mode)
	}
	if resp.Statistics.Particles == 0 {
		t.Errorf("Status reports an empty room after 10 s of smoking.")
	}
}

func TestPostFan(t *testing.T) {
	lounge, router := newTestServer()

	body, _ := json.Marshal(map[string]interface{}{"speed": 75.0})
	req := httptest.NewRequest(http.MethodPost, "/fan", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST /fan = %d.", rec.Code)
	}
	if lounge.Fan.TargetPercent != 75 {
		t.Errorf("Fan target = %g after POST, expected 75.",
			lounge.Fan.TargetPercent)
	}

	// An unknown mode is rejected.
	body, _ = json.Marshal(map[string]interface{}{"mode": "turbo"})
	req = httptest.NewRequest(http.MethodPost, "/fan", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /fan with a bad mode = %d, expected 400.", rec.Code)
	}
}

func TestSensorLifecycle(t *testing.T) {
	lounge, router := newTestServer()

	cfg := smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 15,
		LowHeight: 2, HighHeight: 16, Wall: smoke.WallSouth,
		TripPPM: 50, TripAQI: 100, TripDuration: 120,
	}
	body, _ := json.Marshal(cfg)
	req := httptest.NewRequest(http.MethodPost, "/sensors", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /sensors = %d: %s", rec.Code, rec.Body.String())
	}
	if lounge.Registry.Len() != 1 {
		t.Fatalf("Registry has %d pairs after POST.", lounge.Registry.Len())
	}

	req = httptest.NewRequest(http.MethodGet, "/sensors", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var readings []smoke.PairReadings
	if err := json.NewDecoder(rec.Body).Decode(&readings); err != nil {
		t.Fatal(err)
	}
	if len(readings) != 1 || readings[0].PairID != 0 {
		t.Errorf("GET /sensors returned %+v.", readings)
	}

	req = httptest.NewRequest(http.MethodDelete, "/sensors/0", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE /sensors/0 = %d.", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/sensors/0", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("DELETE of a missing pair = %d, expected 404.", rec.Code)
	}
}

func TestPostSensorRejectsBadGeometry(t *testing.T) {
	_, router := newTestServer()

	cfg := smoke.SensorPairConfig{
		PairID: 0, DistanceFromFan: 15,
		LowHeight: 16, HighHeight: 2, Wall: smoke.WallSouth,
	}
	body, _ := json.Marshal(cfg)
	req := httptest.NewRequest(http.MethodPost, "/sensors", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Inverted heights accepted: %d.", rec.Code)
	}
}
