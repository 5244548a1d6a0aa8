/*package httpapi exposes the running lounge over HTTP for dashboards
and the external shell. All handlers take the lounge lock, so requests
serialize against the driver's tick loop rather than racing it.
*/
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/cigarlounge/smokesim"
	"github.com/cigarlounge/smokesim/control"
	"github.com/cigarlounge/smokesim/smoke"
)

// Server serves lounge state. The mutex is shared with the driver loop.
type Server struct {
	lounge *smokesim.Lounge
	mu     *sync.Mutex
	logger *slog.Logger
}

func NewServer(lounge *smokesim.Lounge, mu *sync.Mutex, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{lounge: lounge, mu: mu, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.getHealth).Methods("GET")
	r.HandleFunc("/status", s.getStatus).Methods("GET")
	r.HandleFunc("/fan", s.getFan).Methods("GET")
	r.HandleFunc("/fan", s.postFan).Methods("POST")
	r.HandleFunc("/sensors", s.getSensors).Methods("GET")
	r.HandleFunc("/sensors", s.postSensor).Methods("POST")
	r.HandleFunc("/sensors/{pairId}", s.deleteSensor).Methods("DELETE")
	r.HandleFunc("/particles", s.getParticles).Methods("GET")

	return s.logging(r)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Time       float64          `json:"time"`
	Mode       string           `json:"mode"`
	Speed      float64          `json:"speed"`
	Statistics smoke.Statistics `json:"statistics"`
	Fan        smoke.Info       `json:"fan"`
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := statusResponse{
		Time:       s.lounge.Time,
		Mode:       string(s.lounge.Mode),
		Speed:      s.lounge.Speed,
		Statistics: s.lounge.Statistics(),
		Fan:        s.lounge.Fan.Info(),
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

type fanResponse struct {
	Fan  smoke.Info         `json:"fan"`
	PID  control.PIDStatus  `json:"pid"`
	Trip control.TripStatus `json:"trip"`
}

func (s *Server) getFan(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := fanResponse{
		Fan:  s.lounge.Fan.Info(),
		PID:  s.lounge.PID.Status(),
		Trip: s.lounge.Trip.Status(),
	}
	s.mu.Unlock()

	writeJSON(w, resp)
}

type fanCommand struct {
	Mode  *string  `json:"mode,omitempty"`
	Speed *float64 `json:"speed,omitempty"`
}

func (s *Server) postFan(w http.ResponseWriter, r *http.Request) {
	var cmd fanCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cmd.Mode != nil {
		if err := s.lounge.SetMode(control.Mode(*cmd.Mode)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if cmd.Speed != nil {
		s.lounge.SetManualSpeed(*cmd.Speed)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getSensors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	readings := s.lounge.Registry.Readings()
	s.mu.Unlock()

	writeJSON(w, readings)
}

func (s *Server) postSensor(w http.ResponseWriter, r *http.Request) {
	var cfg smoke.SensorPairConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, err := s.lounge.AddSensorPair(cfg)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) deleteSensor(w http.ResponseWriter, r *http.Request) {
	pairID, err := strconv.Atoi(mux.Vars(r)["pairId"])
	if err != nil {
		http.Error(w, "pairId must be an integer", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	removed := s.lounge.RemoveSensorPair(pairID)
	s.mu.Unlock()
	if !removed {
		http.Error(w, "no such sensor pair", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getParticles(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	xs := s.lounge.Particles()
	s.mu.Unlock()

	writeJSON(w, xs)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path)
	})
}
