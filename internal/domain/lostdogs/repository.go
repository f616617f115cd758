package lostdogs

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyPhotos lo devuelve el repo si el set superaría MaxPhotos.
var ErrTooManyPhotos = errors.New("too many photos")

// Filter de la búsqueda pública. Campo vacío = sin restricción.
type Filter struct {
	State        string
	Municipality string
	Breed        string
	Size         Size
}

type Repository interface {
	// Create guarda el registro y sus fotos en una transacción.
	Create(ctx context.Context, reg Registration, photos []Photo) error
	// Update guarda campos, agrega y quita fotos en una transacción.
	Update(ctx context.Context, reg Registration, add []Photo, removeIDs []string) (removed []Photo, err error)
	SetStatus(ctx context.Context, id string, st Status, at time.Time) error
	// Delete borra en cascada y devuelve las fotos borradas (para limpiar blobs).
	Delete(ctx context.Context, id string) ([]Photo, error)

	GetByID(ctx context.Context, id string) (Registration, error)
	// Search devuelve solo activos, más recientes primero.
	Search(ctx context.Context, f Filter, offset, limit int) ([]Registration, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Registration, error)

	// Operaciones de fotos: cada una bloquea el registro mientras aplica la regla de principal.
	AddPhotos(ctx context.Context, regID string, photos []Photo, at time.Time) error
	RemovePhoto(ctx context.Context, regID, photoID string, at time.Time) (Photo, error)
	SetPrimaryPhoto(ctx context.Context, regID, photoID string, at time.Time) error

	PhotoPathsByOwner(ctx context.Context, ownerID string) ([]string, error)
}
