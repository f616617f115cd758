package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"patitas-a-casa/internal/domain/sightings"
	"patitas-a-casa/internal/platform/paging"
)

type sightingRepo struct{ s *Store }

func (r sightingRepo) Create(ctx context.Context, rep sightings.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(rep.ID) == "" {
		return errors.New("sighting id required")
	}
	if _, exists := r.s.sightings[rep.ID]; exists {
		return errors.New("sighting already exists")
	}
	r.s.sightings[rep.ID] = rep
	return nil
}

func (r sightingRepo) GetByID(ctx context.Context, id string) (sightings.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rep, ok := r.s.sightings[id]
	if !ok {
		return sightings.Report{}, notFound("sighting", id)
	}
	return rep, nil
}

func (r sightingRepo) List(ctx context.Context, offset, limit int) ([]sightings.Report, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]sightings.Report, 0, len(r.s.sightings))
	for _, rep := range r.s.sightings {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReportedAt.Equal(out[j].ReportedAt) {
			return out[i].ReportedAt.After(out[j].ReportedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paging.Window(out, offset, limit), len(out), nil
}
