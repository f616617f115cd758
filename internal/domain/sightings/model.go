package sightings

import "time"

// ReporterKind es la procedencia del reporte.
// @Enum anonymous, individual, shelter
type ReporterKind string

const (
	ReporterAnonymous  ReporterKind = "anonymous"
	ReporterIndividual ReporterKind = "individual"
	ReporterShelter    ReporterKind = "shelter"
)

// Reporter es la unión etiquetada de procedencia. Kind nunca cambia;
// ProfileID se limpia si se borra la cuenta que reportó.
type Reporter struct {
	Kind      ReporterKind
	ProfileID string
}

func Anonymous() Reporter { return Reporter{Kind: ReporterAnonymous} }

func (r Reporter) IsAnonymous() bool { return r.Kind == ReporterAnonymous }

// Sex del perro avistado.
// @Enum M, H, D
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "H"
	SexUnknown Sex = "D"
)

// Size del perro avistado.
// @Enum P, M, G, Gi
type Size string

const (
	SizeSmall  Size = "P"
	SizeMedium Size = "M"
	SizeLarge  Size = "G"
	SizeGiant  Size = "Gi"
)

// Condition es el estado físico observado.
// @Enum S, H, D, E, Ag, As
type Condition string

const (
	ConditionHealthy      Condition = "S"
	ConditionInjured      Condition = "H"
	ConditionMalnourished Condition = "D"
	ConditionSick         Condition = "E"
	ConditionAggressive   Condition = "Ag"
	ConditionFrightened   Condition = "As"
)

type Location struct {
	State          string
	Municipality   string
	PostalCode     string
	Neighborhood   string
	Street         string
	ExteriorNumber string
}

// Report es un avistamiento. Se crea una vez y no se edita.
type Report struct {
	ID         string
	SightedAt  time.Time
	ReportedAt time.Time

	Location Location

	PhotoPath           string
	Breed               string
	Sex                 Sex
	Size                Size
	DominantColor       string
	DistinguishingMarks string
	Identifier          string
	Condition           Condition
	Description         string

	Reporter Reporter
	// CanShelter solo lo puede marcar una persona.
	CanShelter bool
}

// Label es el tipo de reportante para mostrar.
func (r Report) Label() string {
	switch r.Reporter.Kind {
	case ReporterAnonymous:
		return "Anónimo"
	case ReporterIndividual:
		return "Persona"
	case ReporterShelter:
		return "Albergue"
	default:
		return unknownName
	}
}

const unknownName = "Desconocido"

var sexLabels = map[Sex]string{
	SexMale:    "Macho",
	SexFemale:  "Hembra",
	SexUnknown: "Desconocido",
}

var sizeLabels = map[Size]string{
	SizeSmall:  "Pequeño",
	SizeMedium: "Mediano",
	SizeLarge:  "Grande",
	SizeGiant:  "Gigante",
}

var conditionLabels = map[Condition]string{
	ConditionHealthy:      "Saludable",
	ConditionInjured:      "Herido",
	ConditionMalnourished: "Desnutrido",
	ConditionSick:         "Enfermo",
	ConditionAggressive:   "Agresivo",
	ConditionFrightened:   "Asustado",
}

func (s Sex) Label() string       { return sexLabels[s] }
func (s Size) Label() string      { return sizeLabels[s] }
func (c Condition) Label() string { return conditionLabels[c] }
