package accounts

import (
	"context"
	"errors"
)

var (
	// ErrUsernameTaken / ErrEmailTaken los devuelve el repo si la unicidad falla al insertar.
	ErrUsernameTaken = errors.New("username taken")
	ErrEmailTaken    = errors.New("email taken")

	// ErrProfileExists: la identidad ya tiene un perfil (de cualquier tipo) al insertar.
	ErrProfileExists = errors.New("profile already exists")
)

type Repository interface {
	// Registro: identidad + perfil (+ servicios) en una sola transacción.
	CreateIdentity(ctx context.Context, id Identity) error
	CreateIndividualAccount(ctx context.Context, id Identity, ind Individual) error
	CreateShelterAccount(ctx context.Context, id Identity, sh Shelter) error

	GetIdentityByID(ctx context.Context, id string) (Identity, error)
	GetIdentityByUsername(ctx context.Context, username string) (Identity, error)
	IdentityTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)

	// GetProfile resuelve la variante en una sola lectura.
	GetProfile(ctx context.Context, identityID string) (Profile, error)

	// Alta de perfil para una identidad existente. ErrProfileExists si ya hay uno.
	CreateIndividual(ctx context.Context, ind Individual) error
	CreateShelter(ctx context.Context, sh Shelter) error

	UpdateIndividual(ctx context.Context, ind Individual) error
	// UpdateShelter reemplaza también el set de servicios.
	UpdateShelter(ctx context.Context, sh Shelter) error

	GetIndividual(ctx context.Context, id string) (Individual, error)
	GetShelter(ctx context.Context, id string) (Shelter, error)
	ListActiveShelters(ctx context.Context, offset, limit int) ([]Shelter, int, error)

	ListServices(ctx context.Context) ([]ShelterService, error)
	// EnsureServices inserta los servicios cuyo nombre no exista todavía.
	EnsureServices(ctx context.Context, svcs []ShelterService) error

	// DeleteIdentity borra identidad + perfil; los registros de perros caen en
	// cascada y las referencias de avistamientos quedan en null.
	DeleteIdentity(ctx context.Context, id string) error
}
