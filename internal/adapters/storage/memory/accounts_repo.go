package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/domain/sightings"
	"patitas-a-casa/internal/platform/paging"
)

type accountRepo struct{ s *Store }

func (r accountRepo) CreateIdentity(ctx context.Context, id accounts.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertIdentity(id)
}

func (r accountRepo) CreateIndividualAccount(ctx context.Context, id accounts.Identity, ind accounts.Individual) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.insertIdentity(id); err != nil {
		return err
	}
	r.s.individuals[ind.ID] = ind
	return nil
}

func (r accountRepo) CreateShelterAccount(ctx context.Context, id accounts.Identity, sh accounts.Shelter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkServices(sh.Services); err != nil {
		return err
	}
	if err := r.s.insertIdentity(id); err != nil {
		return err
	}
	r.s.shelters[sh.ID] = sh
	return nil
}

func (r accountRepo) GetIdentityByID(ctx context.Context, id string) (accounts.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.identities[id]
	if !ok {
		return accounts.Identity{}, notFound("identity", id)
	}
	return i, nil
}

func (r accountRepo) GetIdentityByUsername(ctx context.Context, username string) (accounts.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, i := range r.s.identities {
		if i.Username == username {
			return i, nil
		}
	}
	return accounts.Identity{}, notFound("identity", username)
}

func (r accountRepo) IdentityTaken(ctx context.Context, username, email string) (bool, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, e := r.s.taken(username, email)
	return u, e, nil
}

func (r accountRepo) GetProfile(ctx context.Context, identityID string) (accounts.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.identities[identityID]; !ok {
		return accounts.Profile{}, notFound("identity", identityID)
	}
	return r.s.profileOf(identityID), nil
}

func (r accountRepo) CreateIndividual(ctx context.Context, ind accounts.Individual) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.identities[ind.IdentityID]; !ok {
		return notFound("identity", ind.IdentityID)
	}
	if r.s.profileOf(ind.IdentityID).Kind != accounts.KindNone {
		return accounts.ErrProfileExists
	}
	r.s.individuals[ind.ID] = ind
	return nil
}

func (r accountRepo) CreateShelter(ctx context.Context, sh accounts.Shelter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.identities[sh.IdentityID]; !ok {
		return notFound("identity", sh.IdentityID)
	}
	if r.s.profileOf(sh.IdentityID).Kind != accounts.KindNone {
		return accounts.ErrProfileExists
	}
	if err := r.s.checkServices(sh.Services); err != nil {
		return err
	}
	r.s.shelters[sh.ID] = sh
	return nil
}

func (r accountRepo) UpdateIndividual(ctx context.Context, ind accounts.Individual) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.individuals[ind.ID]; !ok {
		return notFound("individual", ind.ID)
	}
	r.s.individuals[ind.ID] = ind
	return nil
}

func (r accountRepo) UpdateShelter(ctx context.Context, sh accounts.Shelter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shelters[sh.ID]; !ok {
		return notFound("shelter", sh.ID)
	}
	if err := r.s.checkServices(sh.Services); err != nil {
		return err
	}
	r.s.shelters[sh.ID] = sh
	return nil
}

func (r accountRepo) GetIndividual(ctx context.Context, id string) (accounts.Individual, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ind, ok := r.s.individuals[id]
	if !ok {
		return accounts.Individual{}, notFound("individual", id)
	}
	return ind, nil
}

func (r accountRepo) GetShelter(ctx context.Context, id string) (accounts.Shelter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sh, ok := r.s.shelters[id]
	if !ok {
		return accounts.Shelter{}, notFound("shelter", id)
	}
	return sh, nil
}

func (r accountRepo) ListActiveShelters(ctx context.Context, offset, limit int) ([]accounts.Shelter, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]accounts.Shelter, 0)
	for _, sh := range r.s.shelters {
		if sh.Active {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paging.Window(out, offset, limit), len(out), nil
}

func (r accountRepo) ListServices(ctx context.Context) ([]accounts.ShelterService, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]accounts.ShelterService, 0, len(r.s.services))
	for _, sv := range r.s.services {
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r accountRepo) EnsureServices(ctx context.Context, svcs []accounts.ShelterService) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byName := make(map[string]struct{}, len(r.s.services))
	for _, sv := range r.s.services {
		byName[sv.Name] = struct{}{}
	}
	for _, sv := range svcs {
		if _, ok := byName[sv.Name]; ok {
			continue
		}
		r.s.services[sv.ID] = sv
		byName[sv.Name] = struct{}{}
	}
	return nil
}

// DeleteIdentity replica las FKs: perros y fotos en cascada, avistamientos
// con la referencia al perfil en null.
func (r accountRepo) DeleteIdentity(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.identities[id]; !ok {
		return notFound("identity", id)
	}

	p := r.s.profileOf(id)
	switch p.Kind {
	case accounts.KindIndividual:
		indID := p.Individual.ID
		for dogID, reg := range r.s.dogs {
			if reg.OwnerID == indID {
				delete(r.s.dogs, dogID)
				delete(r.s.photos, dogID)
			}
		}
		r.s.nullifyReporter(sightings.ReporterIndividual, indID)
		delete(r.s.individuals, indID)
	case accounts.KindShelter:
		r.s.nullifyReporter(sightings.ReporterShelter, p.Shelter.ID)
		delete(r.s.shelters, p.Shelter.ID)
	}

	delete(r.s.identities, id)
	return nil
}

// -------------------------
// helpers (lock tomado por el caller)
// -------------------------

func (s *Store) insertIdentity(id accounts.Identity) error {
	if strings.TrimSpace(id.ID) == "" {
		return errors.New("identity id required")
	}
	u, e := s.taken(id.Username, id.Email)
	if u {
		return accounts.ErrUsernameTaken
	}
	if e {
		return accounts.ErrEmailTaken
	}
	s.identities[id.ID] = id
	return nil
}

func (s *Store) taken(username, email string) (bool, bool) {
	var u, e bool
	for _, i := range s.identities {
		if username != "" && i.Username == username {
			u = true
		}
		if email != "" && strings.EqualFold(i.Email, email) {
			e = true
		}
	}
	return u, e
}

func (s *Store) profileOf(identityID string) accounts.Profile {
	for _, ind := range s.individuals {
		if ind.IdentityID == identityID {
			ind := ind
			return accounts.Profile{IdentityID: identityID, Kind: accounts.KindIndividual, Individual: &ind}
		}
	}
	for _, sh := range s.shelters {
		if sh.IdentityID == identityID {
			sh := sh
			return accounts.Profile{IdentityID: identityID, Kind: accounts.KindShelter, Shelter: &sh}
		}
	}
	return accounts.NoProfile(identityID)
}

func (s *Store) checkServices(svcs []accounts.ShelterService) error {
	for _, sv := range svcs {
		if _, ok := s.services[sv.ID]; !ok {
			return notFound("service", sv.ID)
		}
	}
	return nil
}

func (s *Store) nullifyReporter(kind sightings.ReporterKind, profileID string) {
	for id, rep := range s.sightings {
		if rep.Reporter.Kind == kind && rep.Reporter.ProfileID == profileID {
			rep.Reporter.ProfileID = ""
			s.sightings[id] = rep
		}
	}
}
