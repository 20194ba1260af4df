package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kajiplatform/matching-service/internal/geo"
	"github.com/kajiplatform/matching-service/internal/types"
)

const defaultListLimit = 200

// Postgres implements Repository on a pgx connection pool. Skill maps,
// experience records, and notification preferences are stored as JSONB blobs
// by the CRUD layer and parsed into typed structures here, at the boundary.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

const postingColumns = `id, poster_id, title, job_type, category, payment_amount,
	urgent, active, verified, expires_at, required_skills, latitude, longitude,
	is_remote, min_experience_years, province, district, city`

// GetPosting retrieves one posting by id.
func (p *Postgres) GetPosting(ctx context.Context, id uuid.UUID) (*types.Posting, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = $1`, id)

	posting, err := scanPosting(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("posting %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get posting %s: %w", id, err)
	}
	return posting, nil
}

// ListOpenPostings retrieves active, verified, non-expired postings, most
// recent first, with optional job-type filtering and id exclusion.
func (p *Postgres) ListOpenPostings(ctx context.Context, filters PostingFilters) ([]types.Posting, error) {
	if filters.Limit == 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT ` + postingColumns + ` FROM postings
		WHERE active = true AND verified = true
		  AND (expires_at IS NULL OR expires_at > NOW())`
	args := []any{}
	argNum := 1

	if filters.JobType != "" {
		query += fmt.Sprintf(" AND job_type = $%d", argNum)
		args = append(args, filters.JobType)
		argNum++
	}
	if filters.ExcludeID != uuid.Nil {
		query += fmt.Sprintf(" AND id <> $%d", argNum)
		args = append(args, filters.ExcludeID)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list postings: %w", err)
	}
	defer rows.Close()

	var postings []types.Posting
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan posting: %w", err)
		}
		postings = append(postings, *posting)
	}
	return postings, rows.Err()
}

const candidateColumns = `id, email, active, verified, skills, latitude, longitude,
	experience, province, district, city, notification_preference`

// GetCandidate retrieves one candidate by id.
func (p *Postgres) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)

	candidate, err := scanCandidate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("candidate %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get candidate %s: %w", id, err)
	}
	return candidate, nil
}

// ListEligibleCandidates retrieves active, verified candidates, capped and
// most recently updated first.
func (p *Postgres) ListEligibleCandidates(ctx context.Context, filters CandidateFilters) ([]types.Candidate, error) {
	if filters.Limit == 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE active = true AND verified = true`
	if filters.AlertsOnly {
		query += ` AND COALESCE((notification_preference->>'alerts_enabled')::boolean, true) = true`
	}
	query += ` ORDER BY updated_at DESC LIMIT $1`

	rows, err := p.pool.Query(ctx, query, filters.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	return collectCandidates(rows)
}

// ListCandidatesInBox retrieves alert-enabled candidates whose coordinates
// fall inside the bounding box. The box is a pre-filter; callers re-check the
// exact distance.
func (p *Postgres) ListCandidatesInBox(ctx context.Context, box geo.Box, limit int) ([]types.Candidate, error) {
	if limit == 0 {
		limit = defaultListLimit
	}

	rows, err := p.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE active = true AND verified = true
		   AND COALESCE((notification_preference->>'alerts_enabled')::boolean, true) = true
		   AND latitude IS NOT NULL AND longitude IS NOT NULL
		   AND latitude BETWEEN $1 AND $2
		   AND longitude BETWEEN $3 AND $4
		 LIMIT $5`,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates in box: %w", err)
	}
	defer rows.Close()

	return collectCandidates(rows)
}

// HasApplied reports whether an application record exists for the pair.
func (p *Postgres) HasApplied(ctx context.Context, candidateID, postingID uuid.UUID) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM applications WHERE candidate_id = $1 AND posting_id = $2
		 )`,
		candidateID, postingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return exists, nil
}

// scanPosting scans one posting row, parsing the skills blob.
func scanPosting(row pgx.Row) (*types.Posting, error) {
	var posting types.Posting
	var skillsRaw []byte
	var lat, lon *float64

	err := row.Scan(
		&posting.ID, &posting.PosterID, &posting.Title, &posting.JobType,
		&posting.Category, &posting.PaymentAmount, &posting.Urgent,
		&posting.Active, &posting.Verified, &posting.ExpiresAt,
		&skillsRaw, &lat, &lon, &posting.IsRemote,
		&posting.MinExperienceYears, &posting.Province, &posting.District,
		&posting.City,
	)
	if err != nil {
		return nil, err
	}

	posting.RequiredSkills, err = types.ParseSkillMap(skillsRaw)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", posting.ID, err)
	}
	posting.Location = locationFromColumns(lat, lon)
	return &posting, nil
}

// scanCandidate scans one candidate row, parsing the skills, experience, and
// preference blobs.
func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var candidate types.Candidate
	var skillsRaw, experienceRaw, prefRaw []byte
	var lat, lon *float64

	err := row.Scan(
		&candidate.ID, &candidate.Email, &candidate.Active, &candidate.Verified,
		&skillsRaw, &lat, &lon, &experienceRaw,
		&candidate.Province, &candidate.District, &candidate.City, &prefRaw,
	)
	if err != nil {
		return nil, err
	}

	candidate.Skills, err = types.ParseSkillMap(skillsRaw)
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate.ID, err)
	}
	candidate.Experience, err = parseExperience(experienceRaw)
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate.ID, err)
	}
	candidate.Preference, err = types.ParsePreference(prefRaw)
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate.ID, err)
	}
	candidate.Location = locationFromColumns(lat, lon)
	return &candidate, nil
}

func collectCandidates(rows pgx.Rows) ([]types.Candidate, error) {
	var candidates []types.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *candidate)
	}
	return candidates, rows.Err()
}

// parseExperience parses the experience JSONB array stored by the CRUD layer.
func parseExperience(raw []byte) ([]types.ExperienceRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []types.ExperienceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse experience records: %w", err)
	}
	for _, rec := range records {
		if rec.Years < 0 {
			return nil, fmt.Errorf("experience record %q has negative duration", rec.Title)
		}
	}
	return records, nil
}

func locationFromColumns(lat, lon *float64) types.Location {
	if lat == nil || lon == nil {
		return types.Location{}
	}
	return types.NewLocation(*lat, *lon)
}
