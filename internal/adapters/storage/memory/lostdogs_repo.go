package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"patitas-a-casa/internal/domain/lostdogs"
	"patitas-a-casa/internal/platform/paging"
)

type lostDogRepo struct{ s *Store }

func (r lostDogRepo) Create(ctx context.Context, reg lostdogs.Registration, photos []lostdogs.Photo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(reg.ID) == "" {
		return errors.New("registration id required")
	}
	if _, exists := r.s.dogs[reg.ID]; exists {
		return errors.New("registration already exists")
	}
	if _, ok := r.s.individuals[reg.OwnerID]; !ok {
		return notFound("individual", reg.OwnerID)
	}
	if len(photos) > lostdogs.MaxPhotos {
		return lostdogs.ErrTooManyPhotos
	}

	set := make([]lostdogs.Photo, 0, len(photos))
	for _, p := range photos {
		p.RegistrationID = reg.ID
		set = lostdogs.AddPhoto(set, p)
	}

	reg.Photos = nil
	r.s.dogs[reg.ID] = reg
	r.s.photos[reg.ID] = set
	return nil
}

// Update arma el set nuevo completo antes de escribir nada.
func (r lostDogRepo) Update(ctx context.Context, reg lostdogs.Registration, add []lostdogs.Photo, removeIDs []string) ([]lostdogs.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.dogs[reg.ID]
	if !ok {
		return nil, notFound("registration", reg.ID)
	}

	set := append([]lostdogs.Photo(nil), r.s.photos[reg.ID]...)
	removed := make([]lostdogs.Photo, 0, len(removeIDs))
	for _, id := range removeIDs {
		var p lostdogs.Photo
		var found bool
		if set, p, found = lostdogs.RemovePhoto(set, id); !found {
			return nil, notFound("photo", id)
		}
		removed = append(removed, p)
	}
	for _, p := range add {
		p.RegistrationID = reg.ID
		set = lostdogs.AddPhoto(set, p)
	}
	if len(set) > lostdogs.MaxPhotos {
		return nil, lostdogs.ErrTooManyPhotos
	}

	// Dueño, alta y estado no cambian por update; el estado solo lo mueve SetStatus.
	reg.OwnerID = cur.OwnerID
	reg.RegisteredAt = cur.RegisteredAt
	reg.Status = cur.Status
	reg.Photos = nil
	r.s.dogs[reg.ID] = reg
	r.s.photos[reg.ID] = set
	return removed, nil
}

func (r lostDogRepo) SetStatus(ctx context.Context, id string, st lostdogs.Status, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reg, ok := r.s.dogs[id]
	if !ok {
		return notFound("registration", id)
	}
	reg.Status = st
	reg.UpdatedAt = at
	r.s.dogs[id] = reg
	return nil
}

func (r lostDogRepo) Delete(ctx context.Context, id string) ([]lostdogs.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.dogs[id]; !ok {
		return nil, notFound("registration", id)
	}
	photos := r.s.photos[id]
	delete(r.s.dogs, id)
	delete(r.s.photos, id)
	return photos, nil
}

func (r lostDogRepo) GetByID(ctx context.Context, id string) (lostdogs.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reg, ok := r.s.dogs[id]
	if !ok {
		return lostdogs.Registration{}, notFound("registration", id)
	}
	return r.s.withPhotos(reg), nil
}

func (r lostDogRepo) Search(ctx context.Context, f lostdogs.Filter, offset, limit int) ([]lostdogs.Registration, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]lostdogs.Registration, 0)
	for _, reg := range r.s.dogs {
		if reg.Status != lostdogs.StatusActive {
			continue
		}
		if !containsFold(reg.Location.State, f.State) ||
			!containsFold(reg.Location.Municipality, f.Municipality) ||
			!containsFold(reg.Breed, f.Breed) {
			continue
		}
		if f.Size != "" && reg.Size != f.Size {
			continue
		}
		out = append(out, reg)
	}
	sortNewest(out)

	page := paging.Window(out, offset, limit)
	for i := range page {
		page[i] = r.s.withPhotos(page[i])
	}
	return page, len(out), nil
}

func (r lostDogRepo) ListByOwner(ctx context.Context, ownerID string) ([]lostdogs.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]lostdogs.Registration, 0)
	for _, reg := range r.s.dogs {
		if reg.OwnerID == ownerID {
			out = append(out, r.s.withPhotos(reg))
		}
	}
	sortNewest(out)
	return out, nil
}

func (r lostDogRepo) AddPhotos(ctx context.Context, regID string, photos []lostdogs.Photo, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reg, ok := r.s.dogs[regID]
	if !ok {
		return notFound("registration", regID)
	}
	set := append([]lostdogs.Photo(nil), r.s.photos[regID]...)
	if len(set)+len(photos) > lostdogs.MaxPhotos {
		return lostdogs.ErrTooManyPhotos
	}
	for _, p := range photos {
		p.RegistrationID = regID
		set = lostdogs.AddPhoto(set, p)
	}

	reg.UpdatedAt = at
	r.s.dogs[regID] = reg
	r.s.photos[regID] = set
	return nil
}

func (r lostDogRepo) RemovePhoto(ctx context.Context, regID, photoID string, at time.Time) (lostdogs.Photo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reg, ok := r.s.dogs[regID]
	if !ok {
		return lostdogs.Photo{}, notFound("registration", regID)
	}
	set, removed, found := lostdogs.RemovePhoto(append([]lostdogs.Photo(nil), r.s.photos[regID]...), photoID)
	if !found {
		return lostdogs.Photo{}, notFound("photo", photoID)
	}

	reg.UpdatedAt = at
	r.s.dogs[regID] = reg
	r.s.photos[regID] = set
	return removed, nil
}

func (r lostDogRepo) SetPrimaryPhoto(ctx context.Context, regID, photoID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reg, ok := r.s.dogs[regID]
	if !ok {
		return notFound("registration", regID)
	}
	set, found := lostdogs.SetPrimary(append([]lostdogs.Photo(nil), r.s.photos[regID]...), photoID)
	if !found {
		return notFound("photo", photoID)
	}

	reg.UpdatedAt = at
	r.s.dogs[regID] = reg
	r.s.photos[regID] = set
	return nil
}

func (r lostDogRepo) PhotoPathsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]string, 0)
	for id, reg := range r.s.dogs {
		if reg.OwnerID != ownerID {
			continue
		}
		for _, p := range r.s.photos[id] {
			out = append(out, p.Path)
		}
	}
	return out, nil
}

// withPhotos copia el set para que el caller no comparta el slice del store.
func (s *Store) withPhotos(reg lostdogs.Registration) lostdogs.Registration {
	reg.Photos = lostdogs.OrderPhotos(s.photos[reg.ID])
	return reg
}

func containsFold(field, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(q))
}

func sortNewest(items []lostdogs.Registration) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].RegisteredAt.Equal(items[j].RegisteredAt) {
			return items[i].RegisteredAt.After(items[j].RegisteredAt)
		}
		return items[i].ID > items[j].ID
	})
}
