package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
)

const (
	queryTimeout = 3 * time.Second
	pingTimeout  = 1 * time.Second

	pgUniqueViolation = "23505"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore and verifies connectivity.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return s, nil
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Migrate creates the funkos table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS funkos (
			id           UUID PRIMARY KEY,
			name         TEXT NOT NULL,
			model        TEXT NOT NULL,
			price        DOUBLE PRECISION NOT NULL,
			release_date DATE NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating funkos table: %w", err)
	}
	return nil
}

// FindAll returns every Funko ordered by id.
func (s *PostgresStore) FindAll(ctx context.Context) ([]model.Funko, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, model, price, release_date
		FROM funkos
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying funkos: %w", err)
	}
	defer rows.Close()

	return scanFunkos(rows)
}

// FindByName returns all Funkos with an exact name match, ordered by id.
func (s *PostgresStore) FindByName(ctx context.Context, name string) ([]model.Funko, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, model, price, release_date
		FROM funkos
		WHERE name = $1
		ORDER BY id ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying funkos by name: %w", err)
	}
	defer rows.Close()

	return scanFunkos(rows)
}

// FindByID retrieves a Funko by its id.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*model.Funko, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		f    model.Funko
		date time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, model, price, release_date
		FROM funkos
		WHERE id = $1
	`, id).Scan(&f.ID, &f.Name, &f.Model, &f.Price, &date)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying funko %s: %w", id, err)
	}

	f.ReleaseDate = model.Date{Time: date}
	return &f, nil
}

// Save persists a new Funko under its own id.
func (s *PostgresStore) Save(ctx context.Context, f *model.Funko) (*model.Funko, error) {
	if f == nil {
		return nil, ErrNilFunko
	}
	if f.ID == "" {
		return nil, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO funkos (id, name, model, price, release_date)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.Name, f.Model, f.Price, f.ReleaseDate.Time)

	if isUniqueViolation(err) {
		return nil, ErrAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("inserting funko %s: %w", f.ID, err)
	}

	stored := *f
	return &stored, nil
}

// Update replaces the Funko stored under id.
func (s *PostgresStore) Update(ctx context.Context, id string, f *model.Funko) (*model.Funko, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if f == nil {
		return nil, ErrNilFunko
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `
		UPDATE funkos
		SET name = $2, model = $3, price = $4, release_date = $5
		WHERE id = $1
	`, id, f.Name, f.Model, f.Price, f.ReleaseDate.Time)
	if err != nil {
		return nil, fmt.Errorf("updating funko %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	updated := *f
	updated.ID = id
	return &updated, nil
}

// Delete removes a Funko by id, reporting whether a row was removed.
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, ErrInvalidID
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM funkos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting funko %s: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanFunkos(rows pgx.Rows) ([]model.Funko, error) {
	out := make([]model.Funko, 0, 16)
	for rows.Next() {
		var (
			f    model.Funko
			date time.Time
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Model, &f.Price, &date); err != nil {
			return nil, fmt.Errorf("scanning funko row: %w", err)
		}
		f.ReleaseDate = model.Date{Time: date}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading funko rows: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
