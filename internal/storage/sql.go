package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/giannisanni/movieratings/internal/models"
)

const metadataTable = "movie_metadata"

// SQLStore persists metadata in SQLite or Postgres.
type SQLStore struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens a store. driver is "sqlite" (dsn is a file path) or
// "postgres" (dsn is a connection URL). The table is created if missing.
func OpenSQL(ctx context.Context, driver, dsn string, ttl time.Duration) (*SQLStore, error) {
	var sb sq.StatementBuilderType
	switch driver {
	case "sqlite":
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Question)
	case "postgres":
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s cache requires a dsn", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, sb: sb, ttl: ttl, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + metadataTable + ` (
		cache_key     TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		year          TEXT NOT NULL,
		cast_list     TEXT NOT NULL,
		url           TEXT NOT NULL,
		poster        TEXT NOT NULL,
		description   TEXT NOT NULL,
		streaming_url TEXT NOT NULL,
		stored_at     BIGINT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", metadataTable, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (models.MovieMetadata, bool, error) {
	query, args, err := s.sb.
		Select("name", "year", "cast_list", "url", "poster", "description", "streaming_url", "stored_at").
		From(metadataTable).
		Where(sq.Eq{"cache_key": key}).
		ToSql()
	if err != nil {
		return models.MovieMetadata{}, false, fmt.Errorf("build select: %w", err)
	}

	var (
		meta     models.MovieMetadata
		storedAt int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&meta.Name, &meta.Year, &meta.Cast, &meta.URL, &meta.Poster,
		&meta.Description, &meta.StreamingURL, &storedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MovieMetadata{}, false, nil
	}
	if err != nil {
		return models.MovieMetadata{}, false, fmt.Errorf("select metadata: %w", err)
	}

	if s.ttl > 0 && s.now().Sub(time.Unix(storedAt, 0)) > s.ttl {
		return models.MovieMetadata{}, false, nil
	}
	return meta, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, meta models.MovieMetadata) error {
	query, args, err := s.sb.
		Insert(metadataTable).
		Columns("cache_key", "name", "year", "cast_list", "url", "poster", "description", "streaming_url", "stored_at").
		Values(key, meta.Name, meta.Year, meta.Cast, meta.URL, meta.Poster, meta.Description, meta.StreamingURL, s.now().Unix()).
		Suffix(`ON CONFLICT (cache_key) DO UPDATE SET
			name = EXCLUDED.name,
			year = EXCLUDED.year,
			cast_list = EXCLUDED.cast_list,
			url = EXCLUDED.url,
			poster = EXCLUDED.poster,
			description = EXCLUDED.description,
			streaming_url = EXCLUDED.streaming_url,
			stored_at = EXCLUDED.stored_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert metadata: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
