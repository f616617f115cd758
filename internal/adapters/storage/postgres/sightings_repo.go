package postgres

import (
	"context"
	"database/sql"
	"errors"

	"patitas-a-casa/internal/domain/sightings"
)

type SightingsRepo struct {
	db *sql.DB
}

func NewSightingsRepo(db *sql.DB) *SightingsRepo {
	return &SightingsRepo{db: db}
}

const sightingColumns = `
	id, sighted_at, reported_at,
	state, municipality, postal_code, neighborhood, street, exterior_number,
	photo_path, breed, sex, size, dominant_color, distinguishing_marks, identifier, condition, description,
	reporter_kind, individual_id, shelter_id, can_shelter`

func (r *SightingsRepo) Create(ctx context.Context, s sightings.Report) error {
	var individualID, shelterID sql.NullString
	switch s.Reporter.Kind {
	case sightings.ReporterIndividual:
		individualID = nullString(s.Reporter.ProfileID)
	case sightings.ReporterShelter:
		shelterID = nullString(s.Reporter.ProfileID)
	}

	q := `INSERT INTO sightings (` + sightingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.SightedAt, s.ReportedAt,
		s.Location.State, s.Location.Municipality, s.Location.PostalCode, s.Location.Neighborhood, s.Location.Street, s.Location.ExteriorNumber,
		s.PhotoPath, s.Breed, string(s.Sex), string(s.Size), s.DominantColor, s.DistinguishingMarks, s.Identifier, string(s.Condition), s.Description,
		string(s.Reporter.Kind), individualID, shelterID, s.CanShelter,
	)
	if foreignKeyViolation(err) {
		return notFound(string(s.Reporter.Kind), s.Reporter.ProfileID)
	}
	return err
}

func (r *SightingsRepo) GetByID(ctx context.Context, id string) (sightings.Report, error) {
	q := `SELECT ` + sightingColumns + ` FROM sightings WHERE id = $1`

	s, err := scanSighting(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return sightings.Report{}, notFound("sighting", id)
	}
	if err != nil {
		return sightings.Report{}, err
	}
	return s, nil
}

func (r *SightingsRepo) List(ctx context.Context, offset, limit int) ([]sightings.Report, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sightings`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + sightingColumns + ` FROM sightings ORDER BY reported_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]sightings.Report, 0)
	for rows.Next() {
		s, err := scanSighting(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanSighting(sc scanner) (sightings.Report, error) {
	var (
		s                     sightings.Report
		sex, size, cond, kind string
		individualID          sql.NullString
		shelterID             sql.NullString
	)
	err := sc.Scan(
		&s.ID, &s.SightedAt, &s.ReportedAt,
		&s.Location.State, &s.Location.Municipality, &s.Location.PostalCode, &s.Location.Neighborhood, &s.Location.Street, &s.Location.ExteriorNumber,
		&s.PhotoPath, &s.Breed, &sex, &size, &s.DominantColor, &s.DistinguishingMarks, &s.Identifier, &cond, &s.Description,
		&kind, &individualID, &shelterID, &s.CanShelter,
	)
	if err != nil {
		return sightings.Report{}, err
	}

	s.Sex = sightings.Sex(sex)
	s.Size = sightings.Size(size)
	s.Condition = sightings.Condition(cond)
	s.Reporter.Kind = sightings.ReporterKind(kind)
	switch s.Reporter.Kind {
	case sightings.ReporterIndividual:
		s.Reporter.ProfileID = individualID.String
	case sightings.ReporterShelter:
		s.Reporter.ProfileID = shelterID.String
	}
	return s, nil
}
