package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema statements are idempotent so EnsureSchema can run on every start.
// The unique indexes back the three upsert keys; ON CONFLICT relies on them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tv_shows (
		id          uuid PRIMARY KEY,
		provider_id bigint NOT NULL,
		name        text NOT NULL,
		language    text NOT NULL,
		status      text,
		rating      double precision,
		summary     text,
		image       text,
		premiered   date,
		created_at  timestamptz NOT NULL DEFAULT now(),
		updated_at  timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tv_shows_provider_id
		ON tv_shows (provider_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tv_shows_premiered
		ON tv_shows (premiered)`,
	`CREATE TABLE IF NOT EXISTS distributors (
		id         uuid PRIMARY KEY,
		name       text NOT NULL,
		country    text NOT NULL DEFAULT '',
		kind       text,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_distributors_name_country
		ON distributors (name, country)`,
	`CREATE TABLE IF NOT EXISTS releases (
		id             uuid PRIMARY KEY,
		episode_id     bigint NOT NULL,
		tv_show_id     uuid NOT NULL REFERENCES tv_shows (id),
		distributor_id uuid REFERENCES distributors (id),
		episode_name   text,
		airdate        date,
		airstamp       timestamptz,
		runtime        integer,
		season         integer,
		number         integer,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_releases_episode_id
		ON releases (episode_id)`,
	`CREATE INDEX IF NOT EXISTS idx_releases_tv_show_id
		ON releases (tv_show_id)`,
	`CREATE INDEX IF NOT EXISTS idx_releases_distributor_id
		ON releases (distributor_id)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
