package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"patitas-a-casa/internal/domain/accounts"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

const shelterColumns = `
	id, identity_id, name, phone,
	state, municipality, postal_code, street, exterior_number, directions,
	responsible_first_name, responsible_last_name, responsible_email,
	current_capacity, max_capacity,
	facebook, instagram, twitter, website,
	image1, image2, image3, image4,
	registered_at, active`

func (r *AccountsRepo) CreateIdentity(ctx context.Context, id accounts.Identity) error {
	return mapIdentityErr(insertIdentity(ctx, r.db, id))
}

func (r *AccountsRepo) CreateIndividualAccount(ctx context.Context, id accounts.Identity, ind accounts.Individual) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertIdentity(ctx, tx, id); err != nil {
			return err
		}
		return insertIndividual(ctx, tx, ind)
	})
	return mapIdentityErr(err)
}

func (r *AccountsRepo) CreateShelterAccount(ctx context.Context, id accounts.Identity, sh accounts.Shelter) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertIdentity(ctx, tx, id); err != nil {
			return err
		}
		if err := insertShelter(ctx, tx, sh); err != nil {
			return err
		}
		return replaceServices(ctx, tx, sh.ID, sh.Services)
	})
	return mapIdentityErr(err)
}

func (r *AccountsRepo) GetIdentityByID(ctx context.Context, id string) (accounts.Identity, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM identities
		WHERE id = $1
	`
	return r.getIdentity(ctx, q, id)
}

func (r *AccountsRepo) GetIdentityByUsername(ctx context.Context, username string) (accounts.Identity, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM identities
		WHERE username = $1
	`
	return r.getIdentity(ctx, q, username)
}

func (r *AccountsRepo) getIdentity(ctx context.Context, q, arg string) (accounts.Identity, error) {
	var i accounts.Identity
	err := r.db.QueryRowContext(ctx, q, arg).Scan(&i.ID, &i.Username, &i.Email, &i.PasswordHash, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Identity{}, notFound("identity", arg)
	}
	if err != nil {
		return accounts.Identity{}, err
	}
	return i, nil
}

func (r *AccountsRepo) IdentityTaken(ctx context.Context, username, email string) (bool, bool, error) {
	const q = `
		SELECT
			EXISTS (SELECT 1 FROM identities WHERE username = $1),
			EXISTS (SELECT 1 FROM identities WHERE lower(email) = lower($2))
	`
	var u, e bool
	if err := r.db.QueryRowContext(ctx, q, username, email).Scan(&u, &e); err != nil {
		return false, false, err
	}
	return u, e, nil
}

// GetProfile resuelve la variante con un LEFT JOIN; si es albergue, carga
// además el detalle y sus servicios.
func (r *AccountsRepo) GetProfile(ctx context.Context, identityID string) (accounts.Profile, error) {
	const q = `
		SELECT
			i.id, i.first_name, i.last_name, i.phone, i.registered_at,
			s.id
		FROM identities idn
		LEFT JOIN individuals i ON i.identity_id = idn.id
		LEFT JOIN shelters s ON s.identity_id = idn.id
		WHERE idn.id = $1
	`
	var (
		indID, first, last, phone sql.NullString
		regAt                     sql.NullTime
		shelterID                 sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, identityID).Scan(&indID, &first, &last, &phone, &regAt, &shelterID)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Profile{}, notFound("identity", identityID)
	}
	if err != nil {
		return accounts.Profile{}, err
	}

	switch {
	case indID.Valid:
		return accounts.Profile{
			IdentityID: identityID,
			Kind:       accounts.KindIndividual,
			Individual: &accounts.Individual{
				ID:           indID.String,
				IdentityID:   identityID,
				FirstName:    first.String,
				LastName:     last.String,
				Phone:        phone.String,
				RegisteredAt: regAt.Time,
			},
		}, nil
	case shelterID.Valid:
		sh, err := r.GetShelter(ctx, shelterID.String)
		if err != nil {
			return accounts.Profile{}, err
		}
		return accounts.Profile{IdentityID: identityID, Kind: accounts.KindShelter, Shelter: &sh}, nil
	default:
		return accounts.NoProfile(identityID), nil
	}
}

func (r *AccountsRepo) CreateIndividual(ctx context.Context, ind accounts.Individual) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockProfileSlot(ctx, tx, ind.IdentityID); err != nil {
			return err
		}
		return mapIdentityErr(insertIndividual(ctx, tx, ind))
	})
}

func (r *AccountsRepo) CreateShelter(ctx context.Context, sh accounts.Shelter) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockProfileSlot(ctx, tx, sh.IdentityID); err != nil {
			return err
		}
		if err := insertShelter(ctx, tx, sh); err != nil {
			return mapIdentityErr(err)
		}
		return replaceServices(ctx, tx, sh.ID, sh.Services)
	})
}

func (r *AccountsRepo) UpdateIndividual(ctx context.Context, ind accounts.Individual) error {
	const q = `
		UPDATE individuals
		SET first_name = $2, last_name = $3, phone = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, ind.ID, ind.FirstName, ind.LastName, ind.Phone)
	if err != nil {
		return err
	}
	return expectRow(res, "individual", ind.ID)
}

func (r *AccountsRepo) UpdateShelter(ctx context.Context, sh accounts.Shelter) error {
	const q = `
		UPDATE shelters SET
			name = $2, phone = $3,
			state = $4, municipality = $5, postal_code = $6, street = $7, exterior_number = $8, directions = $9,
			responsible_first_name = $10, responsible_last_name = $11, responsible_email = $12,
			current_capacity = $13, max_capacity = $14,
			facebook = $15, instagram = $16, twitter = $17, website = $18,
			image1 = $19, image2 = $20, image3 = $21, image4 = $22,
			active = $23
		WHERE id = $1
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			sh.ID, sh.Name, sh.Phone,
			sh.Address.State, sh.Address.Municipality, sh.Address.PostalCode, sh.Address.Street, sh.Address.ExteriorNumber, sh.Directions,
			sh.Responsible.FirstName, sh.Responsible.LastName, sh.Responsible.Email,
			sh.CurrentCapacity, sh.MaxCapacity,
			sh.Social.Facebook, sh.Social.Instagram, sh.Social.Twitter, sh.Social.Website,
			sh.Images[0], sh.Images[1], sh.Images[2], sh.Images[3],
			sh.Active,
		)
		if err != nil {
			return err
		}
		if err := expectRow(res, "shelter", sh.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM shelter_services WHERE shelter_id = $1`, sh.ID); err != nil {
			return err
		}
		return replaceServices(ctx, tx, sh.ID, sh.Services)
	})
}

func (r *AccountsRepo) GetIndividual(ctx context.Context, id string) (accounts.Individual, error) {
	const q = `
		SELECT id, identity_id, first_name, last_name, phone, registered_at
		FROM individuals
		WHERE id = $1
	`
	var ind accounts.Individual
	err := r.db.QueryRowContext(ctx, q, id).Scan(&ind.ID, &ind.IdentityID, &ind.FirstName, &ind.LastName, &ind.Phone, &ind.RegisteredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Individual{}, notFound("individual", id)
	}
	if err != nil {
		return accounts.Individual{}, err
	}
	return ind, nil
}

func (r *AccountsRepo) GetShelter(ctx context.Context, id string) (accounts.Shelter, error) {
	q := `SELECT ` + shelterColumns + ` FROM shelters WHERE id = $1`

	sh, err := scanShelter(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Shelter{}, notFound("shelter", id)
	}
	if err != nil {
		return accounts.Shelter{}, err
	}

	svcs, err := loadShelterServices(ctx, r.db, []string{sh.ID})
	if err != nil {
		return accounts.Shelter{}, err
	}
	sh.Services = svcs[sh.ID]
	return sh, nil
}

func (r *AccountsRepo) ListActiveShelters(ctx context.Context, offset, limit int) ([]accounts.Shelter, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shelters WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + shelterColumns + ` FROM shelters WHERE active ORDER BY name ASC, id ASC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]accounts.Shelter, 0)
	ids := make([]string, 0)
	for rows.Next() {
		sh, err := scanShelter(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sh)
		ids = append(ids, sh.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	svcs, err := loadShelterServices(ctx, r.db, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].Services = svcs[out[i].ID]
	}
	return out, total, nil
}

func (r *AccountsRepo) ListServices(ctx context.Context) ([]accounts.ShelterService, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM services ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]accounts.ShelterService, 0)
	for rows.Next() {
		var sv accounts.ShelterService
		if err := rows.Scan(&sv.ID, &sv.Name, &sv.Description); err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (r *AccountsRepo) EnsureServices(ctx context.Context, svcs []accounts.ShelterService) error {
	const q = `
		INSERT INTO services (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, sv := range svcs {
			if _, err := tx.ExecContext(ctx, q, sv.ID, sv.Name, sv.Description); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteIdentity: el resto lo hacen las FKs (CASCADE en perfiles y perros,
// SET NULL en avistamientos).
func (r *AccountsRepo) DeleteIdentity(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res, "identity", id)
}

// -------------------------
// helpers
// -------------------------

func insertIdentity(ctx context.Context, q querier, id accounts.Identity) error {
	const stmt = `
		INSERT INTO identities (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, stmt, id.ID, id.Username, id.Email, id.PasswordHash, id.CreatedAt)
	return err
}

func insertIndividual(ctx context.Context, q querier, ind accounts.Individual) error {
	const stmt = `
		INSERT INTO individuals (id, identity_id, first_name, last_name, phone, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, stmt, ind.ID, ind.IdentityID, ind.FirstName, ind.LastName, ind.Phone, ind.RegisteredAt)
	return err
}

func insertShelter(ctx context.Context, q querier, sh accounts.Shelter) error {
	stmt := `INSERT INTO shelters (` + shelterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := q.ExecContext(ctx, stmt,
		sh.ID, sh.IdentityID, sh.Name, sh.Phone,
		sh.Address.State, sh.Address.Municipality, sh.Address.PostalCode, sh.Address.Street, sh.Address.ExteriorNumber, sh.Directions,
		sh.Responsible.FirstName, sh.Responsible.LastName, sh.Responsible.Email,
		sh.CurrentCapacity, sh.MaxCapacity,
		sh.Social.Facebook, sh.Social.Instagram, sh.Social.Twitter, sh.Social.Website,
		sh.Images[0], sh.Images[1], sh.Images[2], sh.Images[3],
		sh.RegisteredAt, sh.Active,
	)
	return err
}

// lockProfileSlot bloquea la identidad y verifica que no tenga perfil.
// Sin el lock, dos altas concurrentes (persona y albergue) pasarían ambas.
func lockProfileSlot(ctx context.Context, tx *sql.Tx, identityID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM identities WHERE id = $1 FOR UPDATE`, identityID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("identity", identityID)
	}
	if err != nil {
		return err
	}

	const q = `
		SELECT
			EXISTS (SELECT 1 FROM individuals WHERE identity_id = $1)
			OR EXISTS (SELECT 1 FROM shelters WHERE identity_id = $1)
	`
	var has bool
	if err := tx.QueryRowContext(ctx, q, identityID).Scan(&has); err != nil {
		return err
	}
	if has {
		return accounts.ErrProfileExists
	}
	return nil
}

func replaceServices(ctx context.Context, tx *sql.Tx, shelterID string, svcs []accounts.ShelterService) error {
	const q = `INSERT INTO shelter_services (shelter_id, service_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, sv := range svcs {
		if _, err := tx.ExecContext(ctx, q, shelterID, sv.ID); err != nil {
			if foreignKeyViolation(err) {
				return notFound("service", sv.ID)
			}
			return err
		}
	}
	return nil
}

func loadShelterServices(ctx context.Context, q querier, shelterIDs []string) (map[string][]accounts.ShelterService, error) {
	out := make(map[string][]accounts.ShelterService, len(shelterIDs))
	if len(shelterIDs) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`
		SELECT ss.shelter_id, sv.id, sv.name, sv.description
		FROM shelter_services ss
		JOIN services sv ON sv.id = ss.service_id
		WHERE ss.shelter_id IN (%s)
		ORDER BY sv.name ASC
	`, placeholders(1, len(shelterIDs)))

	rows, err := q.QueryContext(ctx, query, anyArgs(shelterIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var shelterID string
		var sv accounts.ShelterService
		if err := rows.Scan(&shelterID, &sv.ID, &sv.Name, &sv.Description); err != nil {
			return nil, err
		}
		out[shelterID] = append(out[shelterID], sv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShelter(s scanner) (accounts.Shelter, error) {
	var sh accounts.Shelter
	err := s.Scan(
		&sh.ID, &sh.IdentityID, &sh.Name, &sh.Phone,
		&sh.Address.State, &sh.Address.Municipality, &sh.Address.PostalCode, &sh.Address.Street, &sh.Address.ExteriorNumber, &sh.Directions,
		&sh.Responsible.FirstName, &sh.Responsible.LastName, &sh.Responsible.Email,
		&sh.CurrentCapacity, &sh.MaxCapacity,
		&sh.Social.Facebook, &sh.Social.Instagram, &sh.Social.Twitter, &sh.Social.Website,
		&sh.Images[0], &sh.Images[1], &sh.Images[2], &sh.Images[3],
		&sh.RegisteredAt, &sh.Active,
	)
	return sh, err
}

// mapIdentityErr traduce violaciones de unicidad a los errores del dominio.
func mapIdentityErr(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "identities_username_key":
		return accounts.ErrUsernameTaken
	case "identities_email_key":
		return accounts.ErrEmailTaken
	case "individuals_identity_id_key", "shelters_identity_id_key":
		return accounts.ErrProfileExists
	default:
		return err
	}
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}
