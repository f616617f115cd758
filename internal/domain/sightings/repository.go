package sightings

import "context"

type Repository interface {
	Create(ctx context.Context, r Report) error
	GetByID(ctx context.Context, id string) (Report, error)
	// List ordena por ReportedAt desc.
	List(ctx context.Context, offset, limit int) ([]Report, int, error)
}
