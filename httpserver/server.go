// Package httpserver exposes derby tables over a JSON API and a WebSocket
// frame stream, for browser front ends.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hrc-derby/games/horse_racing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Server bundles the router and the table registry it serves.
type Server struct {
	r        *chi.Mux
	registry *horse_racing.Registry
	// races outlive the request that starts them
	baseCtx context.Context
}

func New(ctx context.Context, registry *horse_racing.Registry) *Server {
	s := &Server{r: chi.NewRouter(), registry: registry, baseCtx: ctx}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(requestLogger)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tables": s.registry.Stats()})
	})

	s.r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			g.Use(chimw.Timeout(10 * time.Second))
			g.Get("/catalog", s.handleCatalog)
			g.Get("/tables/{id}", s.handleTable)
			g.Post("/tables/{id}/horses", s.handleAddHorse)
			g.Post("/tables/{id}/bets", s.handleBet)
			g.Post("/tables/{id}/pick", s.handlePick)
			g.Post("/tables/{id}/race", s.handleStartRace)
			g.Post("/tables/{id}/reset", s.handleReset)
		})
		api.Get("/tables/{id}/stream", s.handleStream)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})

	return s
}

// Router exposes the router, for tests and for mounting under http.Server.
func (s *Server) Router() chi.Router { return s.r }

// Serve runs the HTTP server on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type addHorseReq struct {
	Name string `json:"name"`
}

type betReq struct {
	Name  string `json:"name"`
	Delta int64  `json:"delta"`
}

type pickReq struct {
	Index int `json:"index"`
}

type raceRes struct {
	RaceID string `json:"race_id"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	types := s.registry.Catalog().Types()
	out := make([]horse_racing.Descriptor, 0, len(types))
	for _, t := range types {
		out = append(out, horse_racing.DescriptorFor(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.table(r).Snapshot())
}

func (s *Server) handleAddHorse(w http.ResponseWriter, r *http.Request) {
	var req addHorseReq
	if !decode(w, r, &req) {
		return
	}
	t := s.table(r)
	if _, err := t.AddHorse(req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t.Snapshot())
}

func (s *Server) handleBet(w http.ResponseWriter, r *http.Request) {
	var req betReq
	if !decode(w, r, &req) {
		return
	}
	t := s.table(r)
	if _, err := t.AdjustBet(req.Name, req.Delta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot())
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req pickReq
	if !decode(w, r, &req) {
		return
	}
	t := s.table(r)
	if _, err := t.SelectHorse(req.Index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot())
}

// handleStartRace is idempotent while a race runs: a repeated start reports
// the running race instead of failing.
func (s *Server) handleStartRace(w http.ResponseWriter, r *http.Request) {
	t := s.table(r)
	id, err := t.Start(s.baseCtx)
	if errors.Is(err, horse_racing.ErrRaceInProgress) {
		id, err = t.Snapshot().RaceID, nil
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, raceRes{RaceID: id.String()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	t := s.table(r)
	t.Reset()
	writeJSON(w, http.StatusOK, t.Snapshot())
}

func (s *Server) table(r *http.Request) *horse_racing.Table {
	return s.registry.Get("http:" + chi.URLParam(r, "id"))
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Message: "invalid JSON body"})
		return false
	}
	return true
}

// errorStatus maps game errors onto HTTP statuses and stable error codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, horse_racing.ErrEmptyName):
		return http.StatusBadRequest, "empty_name"
	case errors.Is(err, horse_racing.ErrUnknownHorse):
		return http.StatusNotFound, "unknown_horse"
	case errors.Is(err, horse_racing.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, horse_racing.ErrRosterFull):
		return http.StatusConflict, "roster_full"
	case errors.Is(err, horse_racing.ErrNoTypesAvailable):
		return http.StatusConflict, "no_types_available"
	case errors.Is(err, horse_racing.ErrNotEnoughHorses):
		return http.StatusConflict, "not_enough_horses"
	case errors.Is(err, horse_racing.ErrNoBets):
		return http.StatusConflict, "no_bets"
	case errors.Is(err, horse_racing.ErrRaceInProgress):
		return http.StatusConflict, "race_in_progress"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("unhandled table error")
	}
	writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
