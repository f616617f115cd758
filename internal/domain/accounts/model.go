package accounts

import (
	"strings"
	"time"
)

// Identity es la cuenta base con credenciales. Tiene a lo más un perfil.
type Identity struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ProfileKind indica qué tipo de perfil tiene una identidad.
// @Enum none, individual, shelter
type ProfileKind string

const (
	KindNone       ProfileKind = "none"
	KindIndividual ProfileKind = "individual"
	KindShelter    ProfileKind = "shelter"
)

// Profile es la variante de perfil de una identidad; se resuelve con una sola
// consulta al repositorio. Solo uno de Individual/Shelter está poblado, según Kind.
type Profile struct {
	IdentityID string
	Kind       ProfileKind
	Individual *Individual
	Shelter    *Shelter
}

func NoProfile(identityID string) Profile {
	return Profile{IdentityID: identityID, Kind: KindNone}
}

// ProfileID devuelve el ID del perfil concreto, o "" si no hay perfil.
func (p Profile) ProfileID() string {
	switch p.Kind {
	case KindIndividual:
		if p.Individual != nil {
			return p.Individual.ID
		}
	case KindShelter:
		if p.Shelter != nil {
			return p.Shelter.ID
		}
	}
	return ""
}

// Individual es una persona física.
type Individual struct {
	ID           string
	IdentityID   string
	FirstName    string
	LastName     string
	Phone        string
	RegisteredAt time.Time
}

func (i Individual) DisplayName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

type Address struct {
	State          string
	Municipality   string
	PostalCode     string
	Street         string
	ExteriorNumber string
}

type Responsible struct {
	FirstName string
	LastName  string
	Email     string
}

type Social struct {
	Facebook  string
	Instagram string
	Twitter   string
	Website   string
}

// MaxShelterImages es la cantidad de slots de imagen de un albergue.
const MaxShelterImages = 4

// Shelter es un albergue. Active=false lo oculta de los listados públicos.
type Shelter struct {
	ID         string
	IdentityID string

	Name  string
	Phone string

	Address    Address
	Directions string

	Responsible Responsible

	CurrentCapacity int
	MaxCapacity     int
	Services        []ShelterService

	Social Social

	// Paths relativos en media; "" = slot vacío.
	Images [MaxShelterImages]string

	RegisteredAt time.Time
	Active       bool
}

func (s Shelter) ServiceIDs() []string {
	out := make([]string, 0, len(s.Services))
	for _, sv := range s.Services {
		out = append(out, sv.ID)
	}
	return out
}

// ShelterService es el vocabulario compartido de servicios de albergue.
type ShelterService struct {
	ID          string
	Name        string
	Description string
}

// DefaultServiceNames es el catálogo inicial.
var DefaultServiceNames = []string{
	"Vacunación",
	"Esterilización",
	"Adopción",
	"Rescate",
	"Hogar Temporal",
	"Atención Veterinaria",
	"Alimentación",
	"Otros",
}
