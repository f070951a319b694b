// Package api provides the HTTP API for hosting games.
// GET endpoints are public. Game intents are POSTed by whoever holds the
// game ID; save, delete and grant require the admin bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/persistence"
	"github.com/talgya/hexsettlers/internal/render"
	"github.com/talgya/hexsettlers/internal/world"
)

const (
	maxWatchers  = 16      // Websocket clients per game
	maxBodyBytes = 1 << 16 // Request body limit
)

// Server serves games over HTTP.
type Server struct {
	Games    *Registry
	DB       *persistence.DB // nil disables save, delete-from-disk and reload
	Addr     string
	AdminKey string        // Bearer token for admin endpoints. Empty = admin disabled.
	Defaults engine.Config // Applied to new games before request overrides

	CORSOrigins []string // Browser origins allowed besides the localhost dev servers

	limiter *RateLimiter
	started time.Time
	srv     *http.Server
}

// NewServer creates a server. createLimit bounds game creations per client
// per hour.
func NewServer(games *Registry, db *persistence.DB, addr, adminKey string, defaults engine.Config, createLimit int) *Server {
	return &Server{
		Games:    games,
		DB:       db,
		Addr:     addr,
		AdminKey: adminKey,
		Defaults: defaults,
		limiter:  NewRateLimiter(createLimit, time.Hour),
		started:  time.Now(),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(corsMiddleware(s.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/saved", s.handleSavedGames)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleListGames)
			r.Post("/", RateLimitMiddleware(s.limiter, s.handleCreateGame))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Get("/events", s.handleEvents)
				r.Get("/legal/settlements", s.handleLegalSettlements)
				r.Get("/legal/roads", s.handleLegalRoads)
				r.Get("/legal/cities", s.handleLegalCities)
				r.Get("/suggest/settlements", s.handleSuggestSettlements)
				r.Get("/stream", s.handleStream)
				r.Get("/board.svg", s.handleBoardSVG)

				r.Post("/settlements", s.handlePlaceSettlement)
				r.Post("/roads", s.handlePlaceRoad)
				r.Post("/cities", s.handleBuildCity)
				r.Post("/roll", s.handleRoll)
				r.Post("/end-turn", s.handleEndTurn)

				// Admin endpoints.
				r.Post("/save", s.adminOnly(s.handleSave))
				r.Post("/grant", s.adminOnly(s.handleGrant))
				r.Delete("/", s.adminOnly(s.handleDeleteGame))
			})
		})
	})
	return r
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start(ctx context.Context) {
	go s.limiter.RunCleanup(ctx)

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "", "persistence", s.DB != nil)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server, closing every stream.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, sess := range s.Games.List() {
		sess.Hub.CloseAll()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled (no SETTLERS_ADMIN_KEY set)")
			return
		}
		if !s.checkBearerToken(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessions := s.Games.List()
	watchers := lo.SumBy(sessions, func(sess *Session) int { return sess.Hub.Len() })
	writeJSON(w, map[string]any{
		"name":        "hexsettlers",
		"started":     humanize.Time(s.started),
		"uptime_secs": int(time.Since(s.started).Seconds()),
		"games":       len(sessions),
		"max_games":   s.Games.max,
		"watchers":    watchers,
		"persistence": s.DB != nil,
		"admin":       s.AdminKey != "",
	})
}

// gameSummary is one row of the live-games listing.
type gameSummary struct {
	ID       string   `json:"id"`
	Phase    string   `json:"phase"`
	Setup    string   `json:"setup"`
	Turn     int      `json:"turn"`
	Current  int      `json:"current"`
	Players  []string `json:"players"`
	Watchers int      `json:"watchers"`
	Idle     string   `json:"idle"`
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	out := lo.Map(s.Games.List(), func(sess *Session, _ int) gameSummary {
		var sum gameSummary
		sess.View(func(g *engine.Game) {
			sum = gameSummary{
				ID:      g.ID.String(),
				Phase:   g.Phase.String(),
				Setup:   g.Setup.String(),
				Turn:    g.Turn,
				Current: g.Current,
				Players: lo.Map(g.Players, func(p *engine.Player, _ int) string { return p.Name }),
			}
		})
		idle, _ := sess.Idle(now)
		sum.Watchers = sess.Hub.Len()
		sum.Idle = humanize.RelTime(now.Add(-idle), now, "ago", "from now")
		return sum
	})
	writeJSON(w, map[string]any{"games": out})
}

func (s *Server) handleSavedGames(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}
	games, err := s.DB.ListGames()
	if err != nil {
		slog.Error("list saved games", "error", err)
		writeError(w, http.StatusInternalServerError, "list saved games failed")
		return
	}
	writeJSON(w, map[string]any{"games": games})
}

// createRequest is the body of POST /games.
type createRequest struct {
	Players []string `json:"players"`
	Seed    int64    `json:"seed,omitempty"`
	Tokens  string   `json:"tokens,omitempty"` // spiral or shuffled
	Rotate  *bool    `json:"rotate,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg := s.Defaults
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.Tokens != "" {
		mode, err := world.ParseTokenMode(req.Tokens)
		if err != nil {
			writeGameError(w, err)
			return
		}
		cfg.Board.Tokens = mode
	}
	if req.Rotate != nil {
		cfg.Board.Rotate = *req.Rotate
	}
	names := lo.Map(req.Players, func(n string, _ int) string { return strings.TrimSpace(n) })
	if lo.Contains(names, "") {
		writeError(w, http.StatusBadRequest, "player names must not be empty")
		return
	}

	g, err := engine.NewGame(cfg, names, nil)
	if err != nil {
		writeGameError(w, err)
		return
	}
	sess, err := s.Games.Add(g)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sess.Snapshot())
}

// session resolves the {id} URL parameter, reloading a saved game into the
// registry when it is not in memory. It writes the error response itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return nil
	}
	if sess := s.Games.Get(id); sess != nil {
		return sess
	}
	if s.DB != nil {
		g, err := s.DB.LoadGame(id)
		if err == nil {
			sess, err := s.Games.Add(g)
			if err != nil {
				writeGameError(w, err)
				return nil
			}
			return sess
		}
		if !errors.Is(err, persistence.ErrNotFound) {
			slog.Error("reload game", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "load failed")
			return nil
		}
	}
	writeError(w, http.StatusNotFound, "game not found")
	return nil
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, sess.Snapshot())
}

// handleEvents lists a game's latest events, oldest first. A saved game that
// is not in memory is read from the store without being loaded.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	if sess := s.Games.Get(id); sess != nil {
		var events []engine.Event
		sess.View(func(g *engine.Game) {
			events = append([]engine.Event{}, g.RecentEvents(limit)...)
		})
		writeJSON(w, map[string]any{"events": events})
		return
	}
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	events, err := s.DB.RecentEvents(id, limit)
	if errors.Is(err, persistence.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err != nil {
		slog.Error("read saved events", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "read events failed")
		return
	}
	writeJSON(w, map[string]any{"events": events})
}

// targets is the response of the legal-target endpoints.
type targets[T any] struct {
	Player world.PlayerID `json:"player"`
	Items  []T            `json:"targets"`
}

func (s *Server) handleLegalSettlements(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var out targets[world.VertexKey]
	sess.View(func(g *engine.Game) {
		out.Player = g.CurrentPlayer().ID
		switch {
		case g.Phase == engine.PhaseSetup && g.Setup.PlacingSettlement():
			out.Items = g.Board.LegalSettlementVertices(out.Player, true)
		case g.Phase == engine.PhasePlaying:
			out.Items = g.Board.LegalSettlementVertices(out.Player, false)
		}
	})
	out.Items = nonNil(out.Items)
	writeJSON(w, out)
}

func (s *Server) handleLegalRoads(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var out targets[world.EdgeKey]
	sess.View(func(g *engine.Game) {
		out.Player = g.CurrentPlayer().ID
		switch g.Phase {
		case engine.PhaseSetup:
			out.Items = g.SetupRoadOptions()
		case engine.PhasePlaying:
			out.Items = g.Board.LegalRoadEdges(out.Player)
		}
	})
	out.Items = nonNil(out.Items)
	writeJSON(w, out)
}

func (s *Server) handleLegalCities(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var out targets[world.VertexKey]
	sess.View(func(g *engine.Game) {
		out.Player = g.CurrentPlayer().ID
		if g.Phase == engine.PhasePlaying {
			out.Items = g.Board.LegalCityVertices(out.Player)
		}
	})
	out.Items = nonNil(out.Items)
	writeJSON(w, out)
}

func (s *Server) handleSuggestSettlements(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var out targets[world.VertexScore]
	sess.View(func(g *engine.Game) {
		out.Player = g.CurrentPlayer().ID
		switch {
		case g.Phase == engine.PhaseSetup && g.Setup.PlacingSettlement():
			out.Items = world.RankSettlementVertices(g.Board, out.Player, true)
		case g.Phase == engine.PhasePlaying:
			out.Items = world.RankSettlementVertices(g.Board, out.Player, false)
		}
	})
	out.Items = nonNil(out.Items)
	writeJSON(w, out)
}

// handleBoardSVG draws the board. ?targets=settlements rings the corners the
// current player may settle.
func (s *Server) handleBoardSVG(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var buf bytes.Buffer
	sess.View(func(g *engine.Game) {
		colors := lo.SliceToMap(g.Players, func(p *engine.Player) (world.PlayerID, string) {
			return p.ID, p.Color.String()
		})
		opts := render.Options{
			Title:   fmt.Sprintf("game %s, turn %d", g.ID, g.Turn),
			Palette: func(id world.PlayerID) string { return colors[id] },
		}
		if r.URL.Query().Get("targets") == "settlements" {
			switch {
			case g.Phase == engine.PhaseSetup && g.Setup.PlacingSettlement():
				opts.Targets = g.Board.LegalSettlementVertices(g.CurrentPlayer().ID, true)
			case g.Phase == engine.PhasePlaying:
				opts.Targets = g.Board.LegalSettlementVertices(g.CurrentPlayer().ID, false)
			}
		}
		render.Board(&buf, g.Board, opts)
	})
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

// placeRequest addresses a vertex or edge by any of its encodings.
type placeRequest struct {
	Q   int `json:"q"`
	R   int `json:"r"`
	Dir int `json:"dir"`
}

func (s *Server) handlePlaceSettlement(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req placeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := world.NewVertexKey(req.Q, req.R, req.Dir)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.apply(w, sess, func(g *engine.Game) error {
		if g.Phase == engine.PhaseSetup {
			return g.SetupPlaceSettlement(v)
		}
		return g.BuildSettlement(v)
	})
}

func (s *Server) handlePlaceRoad(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req placeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	e, err := world.NewEdgeKey(req.Q, req.R, req.Dir)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.apply(w, sess, func(g *engine.Game) error {
		if g.Phase == engine.PhaseSetup {
			return g.SetupPlaceRoad(e)
		}
		return g.BuildRoad(e)
	})
}

func (s *Server) handleBuildCity(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req placeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := world.NewVertexKey(req.Q, req.R, req.Dir)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.apply(w, sess, func(g *engine.Game) error { return g.BuildCity(v) })
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var roll int
	snap, err := sess.Do(func(g *engine.Game) error {
		n, err := g.RollDice()
		roll = n
		return err
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, map[string]any{"roll": roll, "game": snap})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	s.apply(w, sess, (*engine.Game).EndTurn)
}

// apply runs a game intent and answers with the resulting snapshot.
func (s *Server) apply(w http.ResponseWriter, sess *Session, fn func(g *engine.Game) error) {
	snap, err := sess.Do(fn)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence disabled")
		return
	}
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var err error
	sess.View(func(g *engine.Game) { err = s.DB.SaveGame(g) })
	if err != nil {
		slog.Error("save game", "id", sess.ID(), "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	slog.Info("game saved by admin", "id", sess.ID())
	writeJSON(w, map[string]any{"saved": sess.ID().String()})
}

// grantRequest is the body of POST /games/{id}/grant.
type grantRequest struct {
	Player   world.PlayerID `json:"player"`
	Resource string         `json:"resource"`
	Quantity int            `json:"quantity"`
}

// InterventionResult is the response of moderator actions.
type InterventionResult struct {
	Success bool            `json:"success"`
	Details string          `json:"details"`
	Game    engine.Snapshot `json:"game"`
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	var req grantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var details string
	snap, err := sess.Do(func(g *engine.Game) error {
		d, err := g.GrantResources(req.Player, req.Resource, req.Quantity)
		details = d
		return err
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, InterventionResult{Success: true, Details: details, Game: snap})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	found := s.Games.Remove(id)
	if s.DB != nil {
		stored, err := s.DB.DeleteGame(id)
		if err != nil {
			slog.Error("delete game", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		found = found || stored
	}
	if !found {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	slog.Info("game deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleStream upgrades to a websocket that receives the game snapshot now
// and after every change. Client messages are ignored.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	if sess.Hub.Len() >= maxWatchers {
		writeError(w, http.StatusServiceUnavailable, "too many watchers")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	hello, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return
	}
	if err := conn.Write(context.Background(), websocket.MessageText, hello); err != nil {
		return
	}
	sess.Hub.Add(conn)
	defer sess.Hub.Remove(conn)
	slog.Debug("stream client connected", "id", sess.ID(), "watchers", sess.Hub.Len())

	for {
		if _, _, err := conn.Read(context.Background()); err != nil {
			return
		}
	}
}

// writeGameError maps engine and registry errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, world.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrIllegalMove),
		errors.Is(err, engine.ErrInsufficientResources),
		errors.Is(err, engine.ErrNoPiecesLeft):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrWrongPhase), errors.Is(err, engine.ErrGameOver):
		status = http.StatusConflict
	case errors.Is(err, ErrRegistryFull):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONStatus(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
