// Package persistence provides SQLite-based game storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexsettlers/internal/engine"
	"github.com/talgya/hexsettlers/internal/world"
)

// ErrNotFound is returned when a game is not stored.
var ErrNotFound = errors.New("game not found")

// DB wraps a SQLite connection for game persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; SQLite serializes anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		phase INTEGER NOT NULL,
		setup INTEGER NOT NULL,
		current INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		dice INTEGER NOT NULL,
		rolled INTEGER NOT NULL,
		winner INTEGER,
		last_q INTEGER,
		last_r INTEGER,
		last_dir INTEGER,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		game_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		resource INTEGER NOT NULL,
		token INTEGER,
		robber INTEGER NOT NULL,
		PRIMARY KEY (game_id, position)
	);

	CREATE TABLE IF NOT EXISTS ports (
		game_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		dir INTEGER NOT NULL,
		type INTEGER NOT NULL,
		PRIMARY KEY (game_id, position)
	);

	CREATE TABLE IF NOT EXISTS players (
		game_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		color INTEGER NOT NULL,
		resources_json TEXT NOT NULL,
		settlements INTEGER NOT NULL,
		cities INTEGER NOT NULL,
		roads INTEGER NOT NULL,
		victory_points INTEGER NOT NULL,
		PRIMARY KEY (game_id, id)
	);

	CREATE TABLE IF NOT EXISTS settlements (
		game_id TEXT NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		dir INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		city INTEGER NOT NULL,
		PRIMARY KEY (game_id, q, r, dir)
	);

	CREATE TABLE IF NOT EXISTS roads (
		game_id TEXT NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		dir INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		PRIMARY KEY (game_id, q, r, dir)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_game ON events(game_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type gameRow struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Phase     int    `db:"phase"`
	Setup     int    `db:"setup"`
	Current   int    `db:"current"`
	Turn      int    `db:"turn"`
	Dice      int    `db:"dice"`
	Rolled    bool   `db:"rolled"`
	Winner    *int   `db:"winner"`
	LastQ     *int   `db:"last_q"`
	LastR     *int   `db:"last_r"`
	LastDir   *int   `db:"last_dir"`
	UpdatedAt string `db:"updated_at"`
}

type tileRow struct {
	Position int  `db:"position"`
	Q        int  `db:"q"`
	R        int  `db:"r"`
	Resource int  `db:"resource"`
	Token    *int `db:"token"`
	Robber   bool `db:"robber"`
}

type portRow struct {
	Position int `db:"position"`
	Q        int `db:"q"`
	R        int `db:"r"`
	Dir      int `db:"dir"`
	Type     int `db:"type"`
}

type playerRow struct {
	ID            int    `db:"id"`
	Name          string `db:"name"`
	Color         int    `db:"color"`
	ResourcesJSON string `db:"resources_json"`
	Settlements   int    `db:"settlements"`
	Cities        int    `db:"cities"`
	Roads         int    `db:"roads"`
	VictoryPoints int    `db:"victory_points"`
}

type pieceRow struct {
	Q     int  `db:"q"`
	R     int  `db:"r"`
	Dir   int  `db:"dir"`
	Owner int  `db:"owner"`
	City  bool `db:"city"`
}

// gameTables lists every per-game table.
var gameTables = []string{"games", "tiles", "ports", "players", "settlements", "roads", "events"}

// SaveGame writes the complete state of g, replacing any earlier save.
func (db *DB) SaveGame(g *engine.Game) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := g.ID.String()
	if _, err := deleteGame(tx, id); err != nil {
		return err
	}

	row := gameRow{
		ID:        id,
		Seed:      g.Seed,
		Phase:     int(g.Phase),
		Setup:     int(g.Setup),
		Current:   g.Current,
		Turn:      g.Turn,
		Dice:      g.Dice,
		Rolled:    g.Rolled,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if g.Winner != nil {
		w := int(*g.Winner)
		row.Winner = &w
	}
	if v := g.LastSettlement; v != nil {
		q, r, d := v.Q, v.R, int(v.Dir)
		row.LastQ, row.LastR, row.LastDir = &q, &r, &d
	}
	if _, err := tx.NamedExec(`INSERT INTO games
		(id, seed, phase, setup, current, turn, dice, rolled, winner, last_q, last_r, last_dir, updated_at)
		VALUES (:id, :seed, :phase, :setup, :current, :turn, :dice, :rolled, :winner, :last_q, :last_r, :last_dir, :updated_at)`,
		row); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for i, c := range g.Board.Order {
		t := g.Board.Tiles[c]
		if _, err := tx.Exec(
			"INSERT INTO tiles (game_id, position, q, r, resource, token, robber) VALUES (?, ?, ?, ?, ?, ?, ?)",
			id, i, c.Q, c.R, int(t.Resource), t.Token, t.Robber,
		); err != nil {
			return fmt.Errorf("insert tile %v: %w", c, err)
		}
	}

	for i, p := range g.Board.Ports {
		if _, err := tx.Exec(
			"INSERT INTO ports (game_id, position, q, r, dir, type) VALUES (?, ?, ?, ?, ?, ?)",
			id, i, p.Coord.Q, p.Coord.R, int(p.Dir), int(p.Type),
		); err != nil {
			return fmt.Errorf("insert port %d: %w", i, err)
		}
	}

	for _, p := range g.Players {
		resJSON, err := json.Marshal(resourceNames(p.Resources))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO players
			(game_id, id, name, color, resources_json, settlements, cities, roads, victory_points)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, int(p.ID), p.Name, int(p.Color), string(resJSON),
			p.Settlements, p.Cities, p.Roads, p.VictoryPoints,
		); err != nil {
			return fmt.Errorf("insert player %d: %w", p.ID, err)
		}
	}

	for v, s := range g.Board.Settlements {
		if _, err := tx.Exec(
			"INSERT INTO settlements (game_id, q, r, dir, owner, city) VALUES (?, ?, ?, ?, ?, ?)",
			id, v.Q, v.R, int(v.Dir), int(s.Owner), s.City,
		); err != nil {
			return fmt.Errorf("insert settlement %v: %w", v, err)
		}
	}

	for e, r := range g.Board.Roads {
		if _, err := tx.Exec(
			"INSERT INTO roads (game_id, q, r, dir, owner) VALUES (?, ?, ?, ?, ?)",
			id, e.Q, e.R, int(e.Dir), int(r.Owner),
		); err != nil {
			return fmt.Errorf("insert road %v: %w", e, err)
		}
	}

	for _, e := range g.Events {
		if _, err := tx.Exec(
			"INSERT INTO events (game_id, turn, description, category) VALUES (?, ?, ?, ?)",
			id, e.Turn, e.Description, e.Category,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("game saved", "id", id, "turn", g.Turn, "events", len(g.Events))
	return nil
}

// deleteGame clears every row of game id and reports whether a games row
// existed.
func deleteGame(tx *sqlx.Tx, id string) (bool, error) {
	var found bool
	for _, table := range gameTables {
		col := "game_id"
		if table == "games" {
			col = "id"
		}
		res, err := tx.Exec("DELETE FROM "+table+" WHERE "+col+" = ?", id)
		if err != nil {
			return false, fmt.Errorf("clear %s: %w", table, err)
		}
		if table == "games" {
			n, err := res.RowsAffected()
			if err != nil {
				return false, fmt.Errorf("clear %s: %w", table, err)
			}
			found = n > 0
		}
	}
	return found, nil
}

// LoadGame restores a saved game. The returned game rolls from a fresh seed.
func (db *DB) LoadGame(id uuid.UUID) (*engine.Game, error) {
	key := id.String()

	var row gameRow
	if err := db.conn.Get(&row, "SELECT * FROM games WHERE id = ?", key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("load game: %w", err)
	}

	var tiles []tileRow
	if err := db.conn.Select(&tiles,
		"SELECT position, q, r, resource, token, robber FROM tiles WHERE game_id = ? ORDER BY position", key); err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	boardTiles := make([]*world.Tile, 0, len(tiles))
	for _, t := range tiles {
		tile := world.NewTile(world.TileCoord{Q: t.Q, R: t.R}, world.Resource(t.Resource), t.Token)
		tile.Robber = t.Robber
		boardTiles = append(boardTiles, tile)
	}
	board := world.NewBoard(boardTiles)

	var ports []portRow
	if err := db.conn.Select(&ports,
		"SELECT position, q, r, dir, type FROM ports WHERE game_id = ? ORDER BY position", key); err != nil {
		return nil, fmt.Errorf("load ports: %w", err)
	}
	for _, p := range ports {
		board.Ports = append(board.Ports, world.Port{
			Coord: world.TileCoord{Q: p.Q, R: p.R},
			Dir:   world.Direction(p.Dir),
			Type:  world.PortType(p.Type),
		})
	}

	var pieces []pieceRow
	if err := db.conn.Select(&pieces,
		"SELECT q, r, dir, owner, city FROM settlements WHERE game_id = ?", key); err != nil {
		return nil, fmt.Errorf("load settlements: %w", err)
	}
	for _, p := range pieces {
		v, err := world.NewVertexKey(p.Q, p.R, p.Dir)
		if err != nil {
			return nil, fmt.Errorf("settlement row: %w", err)
		}
		if err := world.VerifyVertex(v); err != nil {
			return nil, fmt.Errorf("settlement row: %w", err)
		}
		s := board.PlaceSettlement(v, world.PlayerID(p.Owner))
		s.City = p.City
	}

	pieces = nil
	if err := db.conn.Select(&pieces,
		"SELECT q, r, dir, owner FROM roads WHERE game_id = ?", key); err != nil {
		return nil, fmt.Errorf("load roads: %w", err)
	}
	for _, p := range pieces {
		e, err := world.NewEdgeKey(p.Q, p.R, p.Dir)
		if err != nil {
			return nil, fmt.Errorf("road row: %w", err)
		}
		if err := world.VerifyEdge(e); err != nil {
			return nil, fmt.Errorf("road row: %w", err)
		}
		board.PlaceRoad(e, world.PlayerID(p.Owner))
	}

	var players []playerRow
	if err := db.conn.Select(&players, `SELECT id, name, color, resources_json, settlements, cities, roads, victory_points
		FROM players WHERE game_id = ? ORDER BY id`, key); err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	seats := make([]*engine.Player, 0, len(players))
	for _, pr := range players {
		p := engine.NewPlayer(world.PlayerID(pr.ID), pr.Name, engine.Color(pr.Color))
		var named map[string]int
		if err := json.Unmarshal([]byte(pr.ResourcesJSON), &named); err != nil {
			return nil, fmt.Errorf("player %d resources: %w", pr.ID, err)
		}
		for name, n := range named {
			r, err := world.ParseResource(name)
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", pr.ID, err)
			}
			p.Resources[r] = n
		}
		p.Settlements, p.Cities, p.Roads = pr.Settlements, pr.Cities, pr.Roads
		p.VictoryPoints = pr.VictoryPoints
		seats = append(seats, p)
	}

	g := engine.Restore(id, row.Seed, board, seats)
	g.Phase = engine.Phase(row.Phase)
	g.Setup = engine.SetupPhase(row.Setup)
	g.Current = row.Current
	g.Turn = row.Turn
	g.Dice = row.Dice
	g.Rolled = row.Rolled
	if row.Winner != nil {
		w := world.PlayerID(*row.Winner)
		g.Winner = &w
	}
	if row.LastQ != nil && row.LastR != nil && row.LastDir != nil {
		v := world.VertexKey{Q: *row.LastQ, R: *row.LastR, Dir: world.Direction(*row.LastDir)}
		g.LastSettlement = &v
	}

	if err := db.conn.Select(&g.Events,
		"SELECT turn, description, category FROM events WHERE game_id = ? ORDER BY id", key); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	slog.Info("game loaded", "id", id, "phase", g.Phase, "turn", g.Turn)
	return g, nil
}

// GameSummary is one row of the saved-games listing.
type GameSummary struct {
	ID        string `json:"id"`
	Phase     string `json:"phase"`
	Turn      int    `json:"turn"`
	Players   int    `json:"players"`
	UpdatedAt string `json:"updated_at"`
}

// ListGames returns every saved game, most recently saved first.
func (db *DB) ListGames() ([]GameSummary, error) {
	var rows []struct {
		ID        string `db:"id"`
		Phase     int    `db:"phase"`
		Turn      int    `db:"turn"`
		Players   int    `db:"players"`
		UpdatedAt string `db:"updated_at"`
	}
	err := db.conn.Select(&rows, `SELECT g.id, g.phase, g.turn, g.updated_at,
		(SELECT COUNT(*) FROM players p WHERE p.game_id = g.id) AS players
		FROM games g ORDER BY g.updated_at DESC, g.id`)
	if err != nil {
		return nil, err
	}

	out := make([]GameSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, GameSummary{
			ID:        r.ID,
			Phase:     engine.Phase(r.Phase).String(),
			Turn:      r.Turn,
			Players:   r.Players,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out, nil
}

// DeleteGame removes a saved game and reports whether it was stored.
// Deleting a game that was never saved is not an error.
func (db *DB) DeleteGame(id uuid.UUID) (bool, error) {
	tx, err := db.conn.Beginx()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	found, err := deleteGame(tx, id.String())
	if err != nil {
		return false, err
	}
	return found, tx.Commit()
}

// SaveMeta stores a key-value pair in server metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// RecentEvents returns up to limit of the latest events of a saved game,
// oldest first.
func (db *DB) RecentEvents(id uuid.UUID, limit int) ([]engine.Event, error) {
	key := id.String()
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM games WHERE id = ?", key); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events WHERE game_id = ? ORDER BY id DESC LIMIT ?",
		key, limit,
	)
	if err != nil {
		return nil, err
	}
	return lo.Reverse(events), nil
}

func resourceNames(res map[world.Resource]int) map[string]int {
	out := make(map[string]int, len(res))
	for r, n := range res {
		out[r.String()] = n
	}
	return out
}
