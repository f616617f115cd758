package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"patitas-a-casa/internal/domain/lostdogs"
)

type LostDogsRepo struct {
	db *sql.DB
}

func NewLostDogsRepo(db *sql.DB) *LostDogsRepo {
	return &LostDogsRepo{db: db}
}

const lostDogColumns = `
	id, owner_id, name, sex, age_years, age_months, size, breed, sterilized,
	colors, coat_pattern, distinguishing_marks, has_collar, collar_color, identifier,
	state, municipality, postal_code, neighborhood, street, exterior_number,
	lost_at, registered_at, status, updated_at`

func (r *LostDogsRepo) Create(ctx context.Context, reg lostdogs.Registration, photos []lostdogs.Photo) error {
	if len(photos) > lostdogs.MaxPhotos {
		return lostdogs.ErrTooManyPhotos
	}

	q := `INSERT INTO lost_dogs (` + lostDogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			reg.ID, reg.OwnerID, reg.Name, string(reg.Sex), reg.AgeYears, reg.AgeMonths, string(reg.Size), reg.Breed, reg.Sterilized,
			lostdogs.JoinColors(reg.Colors), string(reg.CoatPattern), reg.DistinguishingMarks, reg.HasCollar, reg.CollarColor, reg.Identifier,
			reg.Location.State, reg.Location.Municipality, reg.Location.PostalCode, reg.Location.Neighborhood, reg.Location.Street, reg.Location.ExteriorNumber,
			reg.LostAt, reg.RegisteredAt, string(reg.Status), reg.UpdatedAt,
		)
		if foreignKeyViolation(err) {
			return notFound("individual", reg.OwnerID)
		}
		if err != nil {
			return err
		}
		return insertPhotos(ctx, tx, reg.ID, photos)
	})
}

// Update no toca owner_id ni registered_at.
// Update no toca owner_id, registered_at ni status.
func (r *LostDogsRepo) Update(ctx context.Context, reg lostdogs.Registration, add []lostdogs.Photo, removeIDs []string) ([]lostdogs.Photo, error) {
	const q = `
		UPDATE lost_dogs SET
			name = $2, sex = $3, age_years = $4, age_months = $5, size = $6, breed = $7, sterilized = $8,
			colors = $9, coat_pattern = $10, distinguishing_marks = $11, has_collar = $12, collar_color = $13, identifier = $14,
			state = $15, municipality = $16, postal_code = $17, neighborhood = $18, street = $19, exterior_number = $20,
			lost_at = $21, updated_at = $22
		WHERE id = $1
	`

	var removed []lostdogs.Photo
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRegistration(ctx, tx, reg.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q,
			reg.ID, reg.Name, string(reg.Sex), reg.AgeYears, reg.AgeMonths, string(reg.Size), reg.Breed, reg.Sterilized,
			lostdogs.JoinColors(reg.Colors), string(reg.CoatPattern), reg.DistinguishingMarks, reg.HasCollar, reg.CollarColor, reg.Identifier,
			reg.Location.State, reg.Location.Municipality, reg.Location.PostalCode, reg.Location.Neighborhood, reg.Location.Street, reg.Location.ExteriorNumber,
			reg.LostAt, reg.UpdatedAt,
		); err != nil {
			return err
		}

		removed = make([]lostdogs.Photo, 0, len(removeIDs))
		for _, id := range removeIDs {
			p, err := deletePhoto(ctx, tx, reg.ID, id)
			if err != nil {
				return err
			}
			removed = append(removed, p)
		}
		return insertPhotos(ctx, tx, reg.ID, add)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *LostDogsRepo) SetStatus(ctx context.Context, id string, st lostdogs.Status, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lost_dogs SET status = $2, updated_at = $3 WHERE id = $1`, id, string(st), at)
	if err != nil {
		return err
	}
	return expectRow(res, "registration", id)
}

// Delete devuelve las fotos antes de que caigan en cascada.
func (r *LostDogsRepo) Delete(ctx context.Context, id string) ([]lostdogs.Photo, error) {
	var photos []lostdogs.Photo
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRegistration(ctx, tx, id); err != nil {
			return err
		}
		byReg, err := loadPhotos(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		photos = byReg[id]
		_, err = tx.ExecContext(ctx, `DELETE FROM lost_dogs WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *LostDogsRepo) GetByID(ctx context.Context, id string) (lostdogs.Registration, error) {
	q := `SELECT ` + lostDogColumns + ` FROM lost_dogs WHERE id = $1`

	reg, err := scanLostDog(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return lostdogs.Registration{}, notFound("registration", id)
	}
	if err != nil {
		return lostdogs.Registration{}, err
	}

	byReg, err := loadPhotos(ctx, r.db, []string{id})
	if err != nil {
		return lostdogs.Registration{}, err
	}
	reg.Photos = byReg[id]
	return reg, nil
}

func (r *LostDogsRepo) Search(ctx context.Context, f lostdogs.Filter, offset, limit int) ([]lostdogs.Registration, int, error) {
	var where strings.Builder
	where.WriteString(` WHERE status = 'active'`)

	args := make([]any, 0, 6)
	argN := 1

	contains := func(col, v string) {
		if strings.TrimSpace(v) == "" {
			return
		}
		where.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", col, argN))
		args = append(args, likeArg(strings.TrimSpace(v)))
		argN++
	}
	contains("state", f.State)
	contains("municipality", f.Municipality)
	contains("breed", f.Breed)
	if f.Size != "" {
		where.WriteString(fmt.Sprintf(" AND size = $%d", argN))
		args = append(args, string(f.Size))
		argN++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lost_dogs`+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM lost_dogs%s ORDER BY registered_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		lostDogColumns, where.String(), argN, argN+1)
	args = append(args, limit, offset)

	out, err := r.queryWithPhotos(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *LostDogsRepo) ListByOwner(ctx context.Context, ownerID string) ([]lostdogs.Registration, error) {
	q := `SELECT ` + lostDogColumns + ` FROM lost_dogs WHERE owner_id = $1 ORDER BY registered_at DESC, id DESC`
	return r.queryWithPhotos(ctx, q, ownerID)
}

func (r *LostDogsRepo) AddPhotos(ctx context.Context, regID string, photos []lostdogs.Photo, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRegistration(ctx, tx, regID); err != nil {
			return err
		}
		if err := insertPhotos(ctx, tx, regID, photos); err != nil {
			return err
		}
		return touch(ctx, tx, regID, at)
	})
}

func (r *LostDogsRepo) RemovePhoto(ctx context.Context, regID, photoID string, at time.Time) (lostdogs.Photo, error) {
	var removed lostdogs.Photo
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRegistration(ctx, tx, regID); err != nil {
			return err
		}
		p, err := deletePhoto(ctx, tx, regID, photoID)
		if err != nil {
			return err
		}
		removed = p
		return touch(ctx, tx, regID, at)
	})
	if err != nil {
		return lostdogs.Photo{}, err
	}
	return removed, nil
}

func (r *LostDogsRepo) SetPrimaryPhoto(ctx context.Context, regID, photoID string, at time.Time) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockRegistration(ctx, tx, regID); err != nil {
			return err
		}

		var exists bool
		const q = `SELECT EXISTS (SELECT 1 FROM lost_dog_photos WHERE id = $1 AND registration_id = $2)`
		if err := tx.QueryRowContext(ctx, q, photoID, regID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return notFound("photo", photoID)
		}

		// Primero se apaga la actual: el índice único parcial no admite dos.
		if _, err := tx.ExecContext(ctx, `UPDATE lost_dog_photos SET is_primary = FALSE WHERE registration_id = $1 AND is_primary`, regID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE lost_dog_photos SET is_primary = TRUE WHERE id = $1`, photoID); err != nil {
			return err
		}
		return touch(ctx, tx, regID, at)
	})
}

func (r *LostDogsRepo) PhotoPathsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	const q = `
		SELECT p.path
		FROM lost_dog_photos p
		JOIN lost_dogs d ON d.id = p.registration_id
		WHERE d.owner_id = $1
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, rows.Err()
}

func (r *LostDogsRepo) queryWithPhotos(ctx context.Context, q string, args ...any) ([]lostdogs.Registration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]lostdogs.Registration, 0)
	ids := make([]string, 0)
	for rows.Next() {
		reg, err := scanLostDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
		ids = append(ids, reg.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byReg, err := loadPhotos(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Photos = byReg[out[i].ID]
	}
	return out, nil
}

// -------------------------
// helpers de fotos (dentro de la transacción, registro bloqueado)
// -------------------------

func lockRegistration(ctx context.Context, tx *sql.Tx, regID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM lost_dogs WHERE id = $1 FOR UPDATE`, regID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("registration", regID)
	}
	return err
}

func touch(ctx context.Context, tx *sql.Tx, regID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `UPDATE lost_dogs SET updated_at = $2 WHERE id = $1`, regID, at)
	return err
}

// insertPhotos aplica la regla de principal foto por foto: una principal
// apaga a las demás; si no queda ninguna, la nueva pasa a serlo.
func insertPhotos(ctx context.Context, tx *sql.Tx, regID string, photos []lostdogs.Photo) error {
	if len(photos) == 0 {
		return nil
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lost_dog_photos WHERE registration_id = $1`, regID).Scan(&count); err != nil {
		return err
	}
	if count+len(photos) > lostdogs.MaxPhotos {
		return lostdogs.ErrTooManyPhotos
	}

	const insert = `
		INSERT INTO lost_dog_photos (id, registration_id, path, is_primary, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, p := range photos {
		if p.IsPrimary {
			if _, err := tx.ExecContext(ctx, `UPDATE lost_dog_photos SET is_primary = FALSE WHERE registration_id = $1 AND is_primary`, regID); err != nil {
				return err
			}
		} else {
			var has bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM lost_dog_photos WHERE registration_id = $1 AND is_primary)`, regID).Scan(&has); err != nil {
				return err
			}
			p.IsPrimary = !has
		}
		if _, err := tx.ExecContext(ctx, insert, p.ID, regID, p.Path, p.IsPrimary, p.UploadedAt); err != nil {
			return err
		}
	}
	return nil
}

// deletePhoto borra una foto del registro y, si era la principal, promueve
// la más reciente de las que quedan.
func deletePhoto(ctx context.Context, tx *sql.Tx, regID, photoID string) (lostdogs.Photo, error) {
	const q = `
		DELETE FROM lost_dog_photos
		WHERE id = $1 AND registration_id = $2
		RETURNING id, registration_id, path, is_primary, uploaded_at
	`
	var p lostdogs.Photo
	err := tx.QueryRowContext(ctx, q, photoID, regID).Scan(&p.ID, &p.RegistrationID, &p.Path, &p.IsPrimary, &p.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return lostdogs.Photo{}, notFound("photo", photoID)
	}
	if err != nil {
		return lostdogs.Photo{}, err
	}

	if p.IsPrimary {
		const promote = `
			UPDATE lost_dog_photos SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM lost_dog_photos
				WHERE registration_id = $1
				ORDER BY uploaded_at DESC, id DESC
				LIMIT 1
			)
		`
		if _, err := tx.ExecContext(ctx, promote, regID); err != nil {
			return lostdogs.Photo{}, err
		}
	}
	return p, nil
}

// loadPhotos devuelve las fotos por registro, principal primero y luego más nuevas.
func loadPhotos(ctx context.Context, q querier, regIDs []string) (map[string][]lostdogs.Photo, error) {
	out := make(map[string][]lostdogs.Photo, len(regIDs))
	if len(regIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT id, registration_id, path, is_primary, uploaded_at
		FROM lost_dog_photos
		WHERE registration_id IN (%s)
		ORDER BY is_primary DESC, uploaded_at DESC, id DESC
	`, placeholders(1, len(regIDs)))

	rows, err := q.QueryContext(ctx, query, anyArgs(regIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p lostdogs.Photo
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.Path, &p.IsPrimary, &p.UploadedAt); err != nil {
			return nil, err
		}
		out[p.RegistrationID] = append(out[p.RegistrationID], p)
	}
	return out, rows.Err()
}

func scanLostDog(sc scanner) (lostdogs.Registration, error) {
	var (
		reg                        lostdogs.Registration
		sex, size, colors, coat, st string
	)
	err := sc.Scan(
		&reg.ID, &reg.OwnerID, &reg.Name, &sex, &reg.AgeYears, &reg.AgeMonths, &size, &reg.Breed, &reg.Sterilized,
		&colors, &coat, &reg.DistinguishingMarks, &reg.HasCollar, &reg.CollarColor, &reg.Identifier,
		&reg.Location.State, &reg.Location.Municipality, &reg.Location.PostalCode, &reg.Location.Neighborhood, &reg.Location.Street, &reg.Location.ExteriorNumber,
		&reg.LostAt, &reg.RegisteredAt, &st, &reg.UpdatedAt,
	)
	if err != nil {
		return lostdogs.Registration{}, err
	}
	reg.Sex = lostdogs.Sex(sex)
	reg.Size = lostdogs.Size(size)
	reg.Colors = lostdogs.SplitColors(colors)
	reg.CoatPattern = lostdogs.CoatPattern(coat)
	reg.Status = lostdogs.Status(st)
	return reg, nil
}
