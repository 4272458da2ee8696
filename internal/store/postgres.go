package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the production Postgres-backed implementation.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// ── Ingest ─────────────────────────────────────────────────────────────────

// StoreBroadcast persists one record's show, distributor and release inside
// a single transaction, in referential order. Any failure rolls the whole
// record back.
func (s *PostgresStore) StoreBroadcast(ctx context.Context, b Broadcast) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	showID, err := upsertShow(ctx, tx, b.Show)
	if err != nil {
		return fmt.Errorf("upsert show: %w", err)
	}

	var distributorID *uuid.UUID
	if b.Distributor != nil {
		id, err := upsertDistributor(ctx, tx, *b.Distributor)
		if err != nil {
			return fmt.Errorf("upsert distributor: %w", err)
		}
		distributorID = &id
	}

	if err := upsertRelease(ctx, tx, b.Release, showID, distributorID); err != nil {
		return fmt.Errorf("upsert release: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// upsertShow inserts or updates by provider_id and returns the surrogate id
// in the same statement, so there is no read-back race. The business key is
// never updated; only descriptive fields follow the latest import.
func upsertShow(ctx context.Context, tx pgx.Tx, in ShowInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
INSERT INTO tv_shows (id, provider_id, name, language, status, rating, summary, image, premiered)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (provider_id) DO UPDATE SET
  name = EXCLUDED.name,
  language = EXCLUDED.language,
  status = EXCLUDED.status,
  rating = EXCLUDED.rating,
  summary = EXCLUDED.summary,
  image = EXCLUDED.image,
  premiered = EXCLUDED.premiered,
  updated_at = now()
RETURNING id`,
		uuid.New(), in.ProviderID, in.Name, in.Language, in.Status,
		in.Rating, in.Summary, in.Image, in.Premiered,
	).Scan(&id)
	return id, err
}

func upsertDistributor(ctx context.Context, tx pgx.Tx, in DistributorInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
INSERT INTO distributors (id, name, country, kind)
VALUES ($1,$2,$3,$4)
ON CONFLICT (name, country) DO UPDATE SET
  kind = EXCLUDED.kind,
  updated_at = now()
RETURNING id`,
		uuid.New(), in.Name, in.Country, in.Kind,
	).Scan(&id)
	return id, err
}

func upsertRelease(ctx context.Context, tx pgx.Tx, in ReleaseInput, showID uuid.UUID, distributorID *uuid.UUID) error {
	_, err := tx.Exec(ctx, `
INSERT INTO releases (id, episode_id, tv_show_id, distributor_id, episode_name, airdate, airstamp, runtime, season, number)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (episode_id) DO UPDATE SET
  tv_show_id = EXCLUDED.tv_show_id,
  distributor_id = EXCLUDED.distributor_id,
  episode_name = EXCLUDED.episode_name,
  airdate = EXCLUDED.airdate,
  airstamp = EXCLUDED.airstamp,
  runtime = EXCLUDED.runtime,
  season = EXCLUDED.season,
  number = EXCLUDED.number,
  updated_at = now()`,
		uuid.New(), in.EpisodeID, showID, distributorID, in.EpisodeName,
		in.Airdate, in.Airstamp, in.Runtime, in.Season, in.Number,
	)
	return err
}

// ── Catalog ────────────────────────────────────────────────────────────────

const showColumns = `id, provider_id, name, language, status, rating, summary, image, premiered`

func (s *PostgresStore) ListShows(ctx context.Context, f ShowFilter) ([]Show, int, error) {
	where, args := buildShowFilter(f)

	var total int
	countQ := `SELECT count(*) FROM tv_shows` + where
	if err := s.db.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shows: %w", err)
	}

	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	listQ := `SELECT ` + showColumns + ` FROM tv_shows` + where +
		` ORDER BY name, id LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var out []Show
	for rows.Next() {
		var sh Show
		if err := scanShow(rows, &sh); err != nil {
			return nil, 0, fmt.Errorf("scan show: %w", err)
		}
		out = append(out, sh)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) GetShow(ctx context.Context, id uuid.UUID) (*ShowDetail, error) {
	var detail ShowDetail
	row := s.db.QueryRow(ctx, `SELECT `+showColumns+` FROM tv_shows WHERE id = $1`, id)
	if err := scanShow(row, &detail.Show); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get show: %w", err)
	}

	rows, err := s.db.Query(ctx, `
SELECT DISTINCT d.id, d.name, d.country, d.kind
FROM distributors d
JOIN releases r ON r.distributor_id = d.id
WHERE r.tv_show_id = $1
ORDER BY d.name, d.country`, id)
	if err != nil {
		return nil, fmt.Errorf("show distributors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d Distributor
		var kind *string
		if err := rows.Scan(&d.ID, &d.Name, &d.Country, &kind); err != nil {
			return nil, fmt.Errorf("scan distributor: %w", err)
		}
		if kind != nil {
			d.Kind = *kind
		}
		detail.Distributors = append(detail.Distributors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	relRows, err := s.db.Query(ctx, `
SELECT id, episode_id, tv_show_id, distributor_id, episode_name, airdate, airstamp, runtime, season, number
FROM releases
WHERE tv_show_id = $1
ORDER BY airstamp NULLS LAST, episode_id`, id)
	if err != nil {
		return nil, fmt.Errorf("show releases: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var rel Release
		var name *string
		if err := relRows.Scan(&rel.ID, &rel.EpisodeID, &rel.ShowID, &rel.DistributorID,
			&name, &rel.Airdate, &rel.Airstamp, &rel.Runtime, &rel.Season, &rel.Number); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		if name != nil {
			rel.EpisodeName = *name
		}
		detail.Releases = append(detail.Releases, rel)
	}
	return &detail, relRows.Err()
}

// ── helpers ────────────────────────────────────────────────────────────────

// buildShowFilter renders the WHERE clause for ListShows. Distributor and
// country filters match through the release history via EXISTS, which keeps
// the listing free of join duplicates.
func buildShowFilter(f ShowFilter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.PremieredFrom != nil {
		conds = append(conds, "premiered >= "+arg(*f.PremieredFrom))
	}
	if f.PremieredTo != nil {
		conds = append(conds, "premiered <= "+arg(*f.PremieredTo))
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*f.MinRating))
	}
	if f.Language != "" {
		conds = append(conds, "language = "+arg(f.Language))
	}
	if f.Distributor != "" || f.Country != "" {
		sub := `EXISTS (SELECT 1 FROM releases r JOIN distributors d ON d.id = r.distributor_id WHERE r.tv_show_id = tv_shows.id`
		if f.Distributor != "" {
			sub += " AND d.name = " + arg(f.Distributor)
		}
		if f.Country != "" {
			sub += " AND d.country = " + arg(f.Country)
		}
		conds = append(conds, sub+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShow(row rowScanner, sh *Show) error {
	var status, summary, image *string
	if err := row.Scan(&sh.ID, &sh.ProviderID, &sh.Name, &sh.Language,
		&status, &sh.Rating, &summary, &image, &sh.Premiered); err != nil {
		return err
	}
	if status != nil {
		sh.Status = *status
	}
	if summary != nil {
		sh.Summary = *summary
	}
	if image != nil {
		sh.Image = *image
	}
	return nil
}
