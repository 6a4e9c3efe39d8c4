// Package httpapi serves a local machine actor over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/internal/production"
	"github.com/comalice/statechart/mailbox"
)

// Sender enqueues events for the actor without waiting for space.
// *mailbox.Address satisfies it.
type Sender interface {
	TrySend(evt statechart.Event) error
}

// Target is the read side of the served machine. *Tracker satisfies it.
type Target interface {
	Snapshot() statechart.Snapshot
	Table() statechart.Table
}

// Options configures NewHandler. Sender and Target are required.
type Options struct {
	Sender Sender
	Target Target
	// Actors lists running actors for GET /actors.
	Actors func() []actor.ActorInfo
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Server implements the HTTP endpoints.
type Server struct {
	opts   Options
	logger *slog.Logger
}

// eventRequest is the body of POST /events.
type eventRequest struct {
	Type string         `mapstructure:"type"`
	Data map[string]any `mapstructure:"data"`
}

// NewHandler creates the router:
//
//	POST /events   enqueue {"type": "...", "data": {...}}
//	GET  /state    current snapshot
//	GET  /table    descriptor table (?format=json|yaml)
//	GET  /graph    chart graph with active states (?format=dot|mermaid)
//	GET  /actors   running actors
//	GET  /metrics  Prometheus exposition
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Post("/events", s.PostEvent)
	r.Get("/state", s.GetState)
	r.Get("/table", s.GetTable)
	r.Get("/graph", s.GetGraph)
	r.Get("/actors", s.GetActors)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// PostEvent handles POST /events.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostEvent: invalid request body", "err", err)
		return
	}
	var body eventRequest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &body,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err == nil {
		err = dec.Decode(raw)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid event: %v", err), http.StatusBadRequest)
		return
	}
	if body.Type == "" {
		http.Error(w, "Invalid event: type is required", http.StatusBadRequest)
		return
	}

	var data any
	if body.Data != nil {
		data = body.Data
	}
	err = s.opts.Sender.TrySend(statechart.NewEvent(body.Type, data))
	switch {
	case err == nil:
	case errors.Is(err, mailbox.ErrClosed):
		http.Error(w, "Actor stopped", http.StatusGone)
		return
	case errors.Is(err, mailbox.ErrFull):
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Mailbox full", http.StatusServiceUnavailable)
		return
	default:
		http.Error(w, fmt.Sprintf("Send error: %v", err), http.StatusInternalServerError)
		s.logger.Error("PostEvent: send failed", "event", body.Type, "err", err)
		return
	}
	s.logger.Debug("PostEvent: queued", "event", body.Type)
	writeJSON(w, http.StatusAccepted, map[string]string{"queued": body.Type})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Target.Snapshot())
}

// GetTable handles GET /table.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	format, err := production.ParseFormat(queryOr(r, "format", "json"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if format == production.FormatYAML {
		w.Header().Set("Content-Type", "text/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	if err := production.WriteTable(w, s.opts.Target.Table(), format); err != nil {
		s.logger.Error("GetTable: encode failed", "err", err)
	}
}

// GetGraph handles GET /graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	active := s.opts.Target.Snapshot().States
	table := s.opts.Target.Table()
	var out string
	switch queryOr(r, "format", "dot") {
	case "dot":
		out = production.ExportDOT(table, active)
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	case "mermaid":
		out = production.ExportMermaid(table, active)
		w.Header().Set("Content-Type", "text/plain")
	default:
		http.Error(w, "Unknown graph format", http.StatusBadRequest)
		return
	}
	w.Write([]byte(out))
}

// GetActors handles GET /actors.
func (s *Server) GetActors(w http.ResponseWriter, r *http.Request) {
	infos := []actor.ActorInfo{}
	if s.opts.Actors != nil {
		infos = s.opts.Actors()
	}
	writeJSON(w, http.StatusOK, infos)
}

func queryOr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
