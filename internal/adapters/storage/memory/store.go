package memory

import (
	"fmt"
	"sync"

	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/domain/lostdogs"
	"patitas-a-casa/internal/domain/sightings"
	"patitas-a-casa/internal/platform/apperr"
)

// Store guarda todo bajo un solo lock: la baja de cuenta (cascada de perros,
// null en avistamientos) y los lotes de fotos quedan atómicos igual que en
// una transacción de Postgres.
type Store struct {
	mu sync.RWMutex

	identities  map[string]accounts.Identity
	individuals map[string]accounts.Individual // por ID de perfil
	shelters    map[string]accounts.Shelter    // por ID de perfil
	services    map[string]accounts.ShelterService

	sightings map[string]sightings.Report

	dogs   map[string]lostdogs.Registration // sin Photos; las fotos viven aparte
	photos map[string][]lostdogs.Photo      // por ID de registro
}

func NewStore() *Store {
	return &Store{
		identities:  make(map[string]accounts.Identity),
		individuals: make(map[string]accounts.Individual),
		shelters:    make(map[string]accounts.Shelter),
		services:    make(map[string]accounts.ShelterService),
		sightings:   make(map[string]sightings.Report),
		dogs:        make(map[string]lostdogs.Registration),
		photos:      make(map[string][]lostdogs.Photo),
	}
}

func (s *Store) Accounts() accounts.Repository   { return accountRepo{s} }
func (s *Store) Sightings() sightings.Repository { return sightingRepo{s} }
func (s *Store) LostDogs() lostdogs.Repository   { return lostDogRepo{s} }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
}
