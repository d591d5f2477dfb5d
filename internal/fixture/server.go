package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tidwall/gjson"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// maxRequestSize caps GraphQL request bodies.
const maxRequestSize = 64 * 1024

// Paths served by the fixture router.
const (
	GraphQLPath = "/"
	FactPath    = "/fact"
	HealthPath  = "/healthz"
)

// Server holds the seeded checklist and serves it over HTTP. It is safe for
// concurrent use.
type Server struct {
	mu      sync.Mutex
	snap    progress.Snapshot
	message string
	updates int

	logger *log.Logger
}

// NewServer returns a Server seeded with s.
func NewServer(s Seed) *Server {
	msg := s.Message
	if msg == "" {
		msg = DefaultMessage
	}
	return &Server{
		snap:    s.Snapshot(),
		message: msg,
		logger:  logging.New("fixture"),
	}
}

// Snapshot returns a copy of the served state.
func (s *Server) Snapshot() progress.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := progress.Snapshot{
		Phases: make([]progress.Phase, len(s.snap.Phases)),
		Tasks:  make([]progress.Task, len(s.snap.Tasks)),
	}
	copy(out.Phases, s.snap.Phases)
	copy(out.Tasks, s.snap.Tasks)
	return out
}

// Updates returns how many completion mutations were applied.
func (s *Server) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// Router returns the chi router serving the GraphQL endpoint, the fact
// endpoint and a health check.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post(GraphQLPath, s.handleGraphQL)
	r.Get(FactPath, s.handleFact)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

type graphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil || !gjson.ValidBytes(raw) {
		writeJSON(w, http.StatusBadRequest, graphQLResponse{Errors: []graphQLError{{Message: "request body is not valid JSON"}}})
		return
	}

	req := gjson.ParseBytes(raw)
	query := req.Get("query").String()

	switch {
	case strings.Contains(query, "updateTaskIsCompleted"):
		taskID := req.Get("variables.taskId").String()
		done := req.Get("variables.isCompleted")
		if taskID == "" || !done.IsBool() {
			writeJSON(w, http.StatusOK, graphQLResponse{Errors: []graphQLError{{Message: "taskId and isCompleted are required"}}})
			return
		}
		ack, err := s.update(taskID, done.Bool())
		if err != nil {
			writeJSON(w, http.StatusOK, graphQLResponse{Errors: []graphQLError{{Message: err.Error()}}})
			return
		}
		writeJSON(w, http.StatusOK, graphQLResponse{Data: map[string]any{"updateTaskIsCompleted": ack}})

	case strings.Contains(query, "returnAllPhases") || strings.Contains(query, "returnAllTasks"):
		snap := s.Snapshot()
		if snap.Phases == nil {
			snap.Phases = []progress.Phase{}
		}
		if snap.Tasks == nil {
			snap.Tasks = []progress.Task{}
		}
		writeJSON(w, http.StatusOK, graphQLResponse{Data: map[string]any{
			"returnAllPhases": snap.Phases,
			"returnAllTasks":  snap.Tasks,
		}})

	default:
		writeJSON(w, http.StatusOK, graphQLResponse{Errors: []graphQLError{{Message: "unsupported operation"}}})
	}
}

func (s *Server) update(taskID string, done bool) (progress.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Tasks {
		if s.snap.Tasks[i].TaskID == taskID {
			s.snap.Tasks[i].IsCompleted = done
			s.updates++
			return progress.Ack{PhaseID: s.snap.Tasks[i].PhaseID, IsCompleted: done}, nil
		}
	}
	return progress.Ack{}, fmt.Errorf("task %s not found", taskID)
}

func (s *Server) handleFact(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"text": msg, "source": "waypoint"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
