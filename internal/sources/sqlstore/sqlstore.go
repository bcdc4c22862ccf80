// Package sqlstore reads catalogs and exception rules from a SQL database and
// persists resolved actions back to it. SQLite and PostgreSQL are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/agentstation/driftmap/pkg/catalogs"
	"github.com/agentstation/driftmap/pkg/errors"
	"github.com/agentstation/driftmap/pkg/exceptions"
	"github.com/agentstation/driftmap/pkg/logging"
)

// Drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		entity_type     TEXT NOT NULL,
		id              TEXT NOT NULL,
		name            TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		parent_id       TEXT,
		parent_name     TEXT NOT NULL DEFAULT '',
		raw_log         TEXT,
		status_variance TEXT NOT NULL DEFAULT '',
		event           TEXT NOT NULL DEFAULT '',
		a_priznak       TEXT NOT NULL DEFAULT '',
		action          INTEGER,
		position        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (entity_type, id)
	)`,
	`CREATE TABLE IF NOT EXISTS exception_rules (
		entity_type   TEXT NOT NULL,
		property_name TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		action        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS exception_rules_type_idx ON exception_rules (entity_type)`,
}

// Store is a SQL-backed catalog provider, rule provider and apply sink.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, errors.NewValidationError("driver", driver, "must be sqlite3 or postgres")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.NewProviderError(driver, "open", err)
	}
	if driver == DriverSQLite {
		// In-memory databases are per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.NewProviderError(driver, "ping", err)
	}
	return New(db, driver), nil
}

// New wraps an open database handle.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.NewProviderError(s.driver, "migrate", err)
		}
	}
	return nil
}

// ListEntities implements catalogs.Provider. Entities are returned in
// position order, then by ID.
func (s *Store) ListEntities(ctx context.Context, entityType catalogs.EntityType, filters catalogs.SearchFilters) ([]catalogs.Entity, error) {
	query, args := entitiesQuery(entityType, filters)
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, errors.NewProviderError(s.driver, "list_entities", err)
	}
	defer rows.Close()

	out := []catalogs.Entity{}
	for rows.Next() {
		var (
			e        catalogs.Entity
			t        string
			parentID sql.NullString
			rawLog   sql.NullString
		)
		if err := rows.Scan(&t, &e.ID, &e.Name, &e.Description, &parentID, &e.ParentName,
			&rawLog, &e.StatusVariance, &e.Event, &e.APriznak); err != nil {
			return nil, errors.NewProviderError(s.driver, "list_entities", err)
		}
		e.Type = catalogs.EntityType(t)
		if parentID.Valid {
			e.ParentID = &parentID.String
		}
		if rawLog.Valid {
			e.RawLog = &rawLog.String
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewProviderError(s.driver, "list_entities", err)
	}
	return out, nil
}

func entitiesQuery(entityType catalogs.EntityType, f catalogs.SearchFilters) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT entity_type, id, name, description, parent_id, parent_name,
		raw_log, status_variance, event, a_priznak
		FROM entities WHERE entity_type = ?`)
	args := []any{entityType.String()}

	if f.Search != "" {
		like := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		b.WriteString(` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(id) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	for _, c := range []struct{ column, value string }{
		{"status_variance", f.StatusVariance},
		{"event", f.Event},
		{"a_priznak", f.APriznak},
	} {
		if c.value != "" {
			b.WriteString(" AND LOWER(" + c.column + ") = LOWER(?)")
			args = append(args, c.value)
		}
	}
	b.WriteString(" ORDER BY position, id")
	return b.String(), args
}

// ListRules implements exceptions.RuleProvider. Rows with an unknown action
// code are skipped.
func (s *Store) ListRules(ctx context.Context, entityType catalogs.EntityType) ([]exceptions.Rule, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT property_name, description, action FROM exception_rules WHERE entity_type = ?`),
		entityType.String())
	if err != nil {
		return nil, errors.NewProviderError(s.driver, "list_rules", err)
	}
	defer rows.Close()

	out := []exceptions.Rule{}
	for rows.Next() {
		var (
			r    = exceptions.Rule{EntityType: entityType}
			code int64
		)
		if err := rows.Scan(&r.PropertyName, &r.Description, &code); err != nil {
			return nil, errors.NewProviderError(s.driver, "list_rules", err)
		}
		a, err := exceptions.ParseActionValue(code)
		if err != nil {
			logging.FromContext(ctx).Warn().
				Str("property", r.PropertyName).
				Int64("action", code).
				Msg("Skipping exception rule row")
			continue
		}
		r.Action = a
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewProviderError(s.driver, "list_rules", err)
	}
	return out, nil
}

// Apply implements engine.Sink with a single conditional update. It reports
// a change only when the stored action differed.
func (s *Store) Apply(ctx context.Context, entityType catalogs.EntityType, id string, action exceptions.Action) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE entities SET action = ? WHERE entity_type = ? AND id = ? AND (action IS NULL OR action <> ?)`),
		action.Code(), entityType.String(), id, action.Code())
	if err != nil {
		return false, errors.NewProviderError(s.driver, "apply", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewProviderError(s.driver, "apply", err)
	}
	return n > 0, nil
}

// StoredAction returns the persisted action of an entity; ok is false when
// none has been written.
func (s *Store) StoredAction(ctx context.Context, entityType catalogs.EntityType, id string) (action exceptions.Action, ok bool, err error) {
	var code sql.NullInt64
	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT action FROM entities WHERE entity_type = ? AND id = ?`),
		entityType.String(), id).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, errors.NewNotFoundError(entityType.String(), id)
	}
	if err != nil {
		return 0, false, errors.NewProviderError(s.driver, "stored_action", err)
	}
	if !code.Valid {
		return 0, false, nil
	}
	return exceptions.Action(code.Int64), true, nil
}

// InsertEntities upserts entities in one transaction. Position follows slice
// order, continuing after the rows already present.
func (s *Store) InsertEntities(ctx context.Context, entities ...catalogs.Entity) error {
	return s.tx(ctx, "insert_entities", func(tx *sql.Tx) error {
		var base int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) FROM entities`).Scan(&base); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO entities
			(entity_type, id, name, description, parent_id, parent_name, raw_log, status_variance, event, a_priznak, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (entity_type, id) DO UPDATE SET
				name = excluded.name, description = excluded.description,
				parent_id = excluded.parent_id, parent_name = excluded.parent_name,
				raw_log = excluded.raw_log, status_variance = excluded.status_variance,
				event = excluded.event, a_priznak = excluded.a_priznak`))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, e := range entities {
			if _, err := stmt.ExecContext(ctx, e.Type.String(), e.ID, e.Name, e.Description,
				nullString(e.ParentID), e.ParentName, nullString(e.RawLog),
				e.StatusVariance, e.Event, e.APriznak, base+int64(i)+1); err != nil {
				return err
			}
		}
		return nil
	})
}

// InsertRules appends exception rules in one transaction.
func (s *Store) InsertRules(ctx context.Context, rules ...exceptions.Rule) error {
	return s.tx(ctx, "insert_rules", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			`INSERT INTO exception_rules (entity_type, property_name, description, action) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range rules {
			if _, err := stmt.ExecContext(ctx, r.EntityType.String(), r.PropertyName, r.Description, r.Action.Code()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) tx(ctx context.Context, operation string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewProviderError(s.driver, operation, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return errors.NewProviderError(s.driver, operation, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewProviderError(s.driver, operation, err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
