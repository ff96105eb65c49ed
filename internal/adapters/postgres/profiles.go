package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"sitesmith/internal/domain"
)

const profileColumns = `
	king_url, king_name, king_domain, industry, profile_data, extracted_at, updated_at,
	completeness_score, is_active, extraction_version, COALESCE(extraction_id::text, '')`

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	var data []byte
	err := row.Scan(&p.KingURL, &p.KingName, &p.KingDomain, &p.Industry, &data, &p.ExtractedAt, &p.UpdatedAt,
		&p.CompletenessScore, &p.IsActive, &p.ExtractionVersion, &p.ExtractionID)
	p.ProfileData = data
	return p, err
}

// queryOne runs a single-row query; pgx.ErrNoRows maps to found=false.
func (db *DB) queryOne(ctx context.Context, sql string, args ...any) (domain.Profile, bool, error) {
	p, err := scanProfile(db.Pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, false, nil
	}
	if err != nil {
		return domain.Profile{}, false, err
	}
	return p, true, nil
}

func (db *DB) FindFresh(ctx context.Context, url string, maxAge time.Duration) (domain.Profile, bool, error) {
	cutoff := db.now().Add(-maxAge)
	return db.queryOne(ctx, `
		SELECT `+profileColumns+`
		FROM king_forensic_profiles
		WHERE king_url = $1 AND is_active AND extracted_at >= $2
		LIMIT 1
	`, url, cutoff)
}

func (db *DB) FindByURL(ctx context.Context, url string) (domain.Profile, bool, error) {
	return db.queryOne(ctx, `
		SELECT `+profileColumns+`
		FROM king_forensic_profiles
		WHERE king_url = $1 AND is_active
		LIMIT 1
	`, url)
}

func (db *DB) FindByNameLike(ctx context.Context, substr string) (domain.Profile, bool, error) {
	return db.queryOne(ctx, `
		SELECT `+profileColumns+`
		FROM king_forensic_profiles
		WHERE is_active AND king_name ILIKE '%' || $1::text || '%'
		ORDER BY extracted_at DESC
		LIMIT 1
	`, escapeLike(substr))
}

func (db *DB) ListActive(ctx context.Context) ([]domain.ProfileSummary, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT king_name, king_url, industry, extracted_at, completeness_score
		FROM king_forensic_profiles
		WHERE is_active
		ORDER BY extracted_at DESC, king_url
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ProfileSummary{}
	for rows.Next() {
		var s domain.ProfileSummary
		if err := rows.Scan(&s.Name, &s.URL, &s.Industry, &s.ExtractedAt, &s.Completeness); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Upsert replaces the row for p.KingURL. Concurrent upserts for the same URL
// resolve last-write-wins.
func (db *DB) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	data := string(p.ProfileData)
	if data == "" {
		data = "{}"
	}
	stored, _, err := db.queryOne(ctx, `
		INSERT INTO king_forensic_profiles (
			king_url, king_name, king_domain, industry, profile_data, extracted_at, updated_at,
			completeness_score, is_active, extraction_version, extraction_id
		)
		VALUES ($1, $2, $3, $4, $5::text::jsonb, $6, $6, $7, true, $8, NULLIF($9::text, '')::uuid)
		ON CONFLICT (king_url) DO UPDATE SET
			king_name          = EXCLUDED.king_name,
			king_domain        = EXCLUDED.king_domain,
			industry           = EXCLUDED.industry,
			profile_data       = EXCLUDED.profile_data,
			extracted_at       = EXCLUDED.extracted_at,
			updated_at         = EXCLUDED.updated_at,
			completeness_score = EXCLUDED.completeness_score,
			is_active          = true,
			extraction_version = EXCLUDED.extraction_version,
			extraction_id      = EXCLUDED.extraction_id
		RETURNING `+profileColumns,
		p.KingURL, p.KingName, p.KingDomain, p.Industry, data, db.now(),
		p.CompletenessScore, p.ExtractionVersion, p.ExtractionID)
	return stored, err
}

func (db *DB) Deactivate(ctx context.Context, url string) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE king_forensic_profiles SET is_active = false, updated_at = $2
		WHERE king_url = $1 AND is_active
	`, url, db.now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *DB) ListStale(ctx context.Context, olderThan time.Duration, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM king_forensic_profiles
		WHERE is_active AND extracted_at < $1
		ORDER BY extracted_at
		LIMIT $2
	`, db.now().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
