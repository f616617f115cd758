package lostdogs

import "time"

// Sex del perro perdido.
// @Enum M, H
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "H"
)

// Size del perro perdido.
// @Enum P, M, G
type Size string

const (
	SizeSmall  Size = "P"
	SizeMedium Size = "M"
	SizeLarge  Size = "G"
)

// Status del registro. Solo active aparece en la búsqueda pública.
// @Enum active, found, closed
type Status string

const (
	StatusActive Status = "active"
	StatusFound  Status = "found"
	// StatusClosed existe pero ninguna acción expuesta lleva a él.
	StatusClosed Status = "closed"
)

// CoatPattern es el tipo de pelaje.
type CoatPattern string

const (
	CoatWire      CoatPattern = "alambre"
	CoatShort     CoatPattern = "corto"
	CoatDouble    CoatPattern = "doble_capa"
	CoatHard      CoatPattern = "duro"
	CoatWoolly    CoatPattern = "lanoso"
	CoatLong      CoatPattern = "largo"
	CoatNewGrowth CoatPattern = "pelaje_nuevo"
	CoatHairless  CoatPattern = "sin_pelo"
)

type Location struct {
	State          string
	Municipality   string
	PostalCode     string
	Neighborhood   string
	Street         string
	ExteriorNumber string
}

// Registration es el reporte de un perro perdido hecho por su dueño.
// OwnerID es el ID del perfil de persona.
type Registration struct {
	ID      string
	OwnerID string

	Name       string
	Sex        Sex
	AgeYears   int
	AgeMonths  int
	Size       Size
	Breed      string
	Sterilized bool

	Colors              []Color
	CoatPattern         CoatPattern
	DistinguishingMarks string

	HasCollar   bool
	CollarColor string
	Identifier  string

	Location Location
	LostAt   time.Time

	RegisteredAt time.Time
	Status       Status
	UpdatedAt    time.Time

	// Photos viene ordenado: principal primero, luego más nuevas primero.
	Photos []Photo
}

// Photo pertenece a un registro; a lo más una por registro es principal.
type Photo struct {
	ID             string
	RegistrationID string
	Path           string
	IsPrimary      bool
	UploadedAt     time.Time
}

// MaxPhotos es el tope de fotos por registro.
const MaxPhotos = 4

var sexLabels = map[Sex]string{
	SexMale:   "Macho",
	SexFemale: "Hembra",
}

var sizeLabels = map[Size]string{
	SizeSmall:  "Pequeño",
	SizeMedium: "Mediano",
	SizeLarge:  "Grande",
}

var statusLabels = map[Status]string{
	StatusActive: "Activo",
	StatusFound:  "Encontrado",
	StatusClosed: "Cerrado",
}

var coatLabels = map[CoatPattern]string{
	CoatWire:      "Alambre",
	CoatShort:     "Corto",
	CoatDouble:    "Doble capa",
	CoatHard:      "Duro",
	CoatWoolly:    "Lanoso",
	CoatLong:      "Largo",
	CoatNewGrowth: "Pelaje nuevo",
	CoatHairless:  "Sin pelo",
}

func (s Sex) Label() string         { return sexLabels[s] }
func (s Size) Label() string        { return sizeLabels[s] }
func (s Status) Label() string      { return statusLabels[s] }
func (c CoatPattern) Label() string { return coatLabels[c] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}
