package sightings

import (
	"context"
	"errors"
	"strings"
	"time"

	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/logger"
	"patitas-a-casa/internal/platform/media"
	"patitas-a-casa/internal/platform/metrics"
	"patitas-a-casa/internal/platform/paging"
	"patitas-a-casa/internal/platform/validation"

	"github.com/google/uuid"
)

const (
	PageSize = 10
	// RecentSize es el feed de la portada.
	RecentSize = 10

	mediaPrefix = "sightings"
)

const (
	msgNoKind       = "No se pudo determinar tu tipo de usuario. Por favor, completa tu perfil."
	msgOnlyPersons  = "No tienes permiso para acceder a esta página. Esta función es solo para personas físicas."
	msgOnlyShelters = "No tienes permiso para acceder a esta página. Esta función es solo para albergues."
	msgBadDateTime  = "Introduce una fecha/hora válida."
)

// ProfileReader es lo que este módulo necesita de accounts.
type ProfileReader interface {
	GetProfile(ctx context.Context, identityID string) (accounts.Profile, error)
	GetIndividual(ctx context.Context, id string) (accounts.Individual, error)
	GetShelter(ctx context.Context, id string) (accounts.Shelter, error)
}

type Service struct {
	repo     Repository
	profiles ProfileReader
	media    *media.Storage
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileReader, store *media.Storage, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = media.NewStorage(nil, "")
	}
	return &Service{
		repo:     repo,
		profiles: profiles,
		media:    store,
		log:      log.With(map[string]any{"module": "sightings"}),
		now:      time.Now,
	}
}

type LocationInput struct {
	State          string `json:"state" validate:"required,max=100"`
	Municipality   string `json:"municipality" validate:"required,max=100"`
	PostalCode     string `json:"postal_code" validate:"required,len=5,numeric"`
	Neighborhood   string `json:"neighborhood" validate:"required,max=100"`
	Street         string `json:"street" validate:"required,max=200"`
	ExteriorNumber string `json:"exterior_number" validate:"required,max=20"`
}

// ReportInput son los campos que cualquier variante puede escribir.
// La procedencia nunca viene del cliente.
type ReportInput struct {
	// SightedAt acepta RFC3339 o "YYYY-MM-DDTHH:MM"; vacío = ahora.
	SightedAt           string        `json:"sighted_at"`
	Location            LocationInput `json:"location"`
	Breed               string        `json:"breed" validate:"max=100"`
	Sex                 Sex           `json:"sex" validate:"omitempty,oneof=M H D"`
	Size                Size          `json:"size" validate:"required,oneof=P M G Gi"`
	DominantColor       string        `json:"dominant_color" validate:"required,max=50"`
	DistinguishingMarks string        `json:"distinguishing_marks"`
	Identifier          string        `json:"identifier" validate:"max=200"`
	Condition           Condition     `json:"condition" validate:"omitempty,oneof=S H D E Ag As"`
	Description         string        `json:"description" validate:"required"`

	// Solo se respeta en la variante de persona.
	CanShelter bool `json:"can_shelter"`
}

// View es un reporte con los campos derivados para lectura.
type View struct {
	Report
	Label        string
	ReporterName string
	PhotoURL     string
}

// Route decide la variante de formulario según la identidad (vacía = anónimo).
// Una identidad sin perfil no se degrada a anónimo.
func (s *Service) Route(ctx context.Context, identityID string) (ReporterKind, error) {
	if strings.TrimSpace(identityID) == "" {
		return ReporterAnonymous, nil
	}

	p, err := s.profiles.GetProfile(ctx, identityID)
	if err != nil {
		return "", err
	}
	switch p.Kind {
	case accounts.KindIndividual:
		return ReporterIndividual, nil
	case accounts.KindShelter:
		return ReporterShelter, nil
	default:
		return "", &apperr.ProfileRequiredError{Message: msgNoKind, Redirect: accounts.HomeRedirect}
	}
}

// Submit crea el reporte por la variante que corresponde a la identidad.
func (s *Service) Submit(ctx context.Context, identityID string, in ReportInput, photo *media.Upload) (View, error) {
	kind, err := s.Route(ctx, identityID)
	if err != nil {
		return View{}, err
	}
	switch kind {
	case ReporterIndividual:
		return s.CreateByIndividual(ctx, identityID, in, photo)
	case ReporterShelter:
		return s.CreateByShelter(ctx, identityID, in, photo)
	default:
		return s.CreateAnonymous(ctx, in, photo)
	}
}

func (s *Service) CreateAnonymous(ctx context.Context, in ReportInput, photo *media.Upload) (View, error) {
	in.CanShelter = false
	return s.create(ctx, Anonymous(), in, photo)
}

func (s *Service) CreateByIndividual(ctx context.Context, identityID string, in ReportInput, photo *media.Upload) (View, error) {
	p, err := s.requireKind(ctx, identityID, accounts.KindIndividual, msgOnlyPersons)
	if err != nil {
		return View{}, err
	}
	return s.create(ctx, Reporter{Kind: ReporterIndividual, ProfileID: p.ProfileID()}, in, photo)
}

func (s *Service) CreateByShelter(ctx context.Context, identityID string, in ReportInput, photo *media.Upload) (View, error) {
	p, err := s.requireKind(ctx, identityID, accounts.KindShelter, msgOnlyShelters)
	if err != nil {
		return View{}, err
	}
	in.CanShelter = false
	return s.create(ctx, Reporter{Kind: ReporterShelter, ProfileID: p.ProfileID()}, in, photo)
}

func (s *Service) requireKind(ctx context.Context, identityID string, want accounts.ProfileKind, msg string) (accounts.Profile, error) {
	if strings.TrimSpace(identityID) == "" {
		return accounts.Profile{}, apperr.ErrUnauthorized
	}
	p, err := s.profiles.GetProfile(ctx, identityID)
	if err != nil {
		return accounts.Profile{}, err
	}
	if p.Kind != want || p.ProfileID() == "" {
		return accounts.Profile{}, &apperr.ProfileRequiredError{Message: msg, Redirect: accounts.HomeRedirect}
	}
	return p, nil
}

func (s *Service) create(ctx context.Context, rep Reporter, in ReportInput, photo *media.Upload) (View, error) {
	v := validation.Struct(in, nil)

	now := s.now()
	sightedAt := now
	if raw := strings.TrimSpace(in.SightedAt); raw != "" {
		t, ok := parseDateTime(raw)
		if !ok {
			v.Add("sighted_at", msgBadDateTime)
		}
		sightedAt = t
	}
	if photo != nil {
		if err := media.ValidateImage(*photo); err != nil {
			v.Add("photo", media.ImageMessage(err))
		}
	}
	if err := v.OrNil(); err != nil {
		return View{}, err
	}

	r := Report{
		ID:         uuid.NewString(),
		SightedAt:  sightedAt,
		ReportedAt: now,
		Location: Location{
			State:          strings.TrimSpace(in.Location.State),
			Municipality:   strings.TrimSpace(in.Location.Municipality),
			PostalCode:     strings.TrimSpace(in.Location.PostalCode),
			Neighborhood:   strings.TrimSpace(in.Location.Neighborhood),
			Street:         strings.TrimSpace(in.Location.Street),
			ExteriorNumber: strings.TrimSpace(in.Location.ExteriorNumber),
		},
		Breed:               strings.TrimSpace(in.Breed),
		Sex:                 in.Sex,
		Size:                in.Size,
		DominantColor:       strings.TrimSpace(in.DominantColor),
		DistinguishingMarks: strings.TrimSpace(in.DistinguishingMarks),
		Identifier:          strings.TrimSpace(in.Identifier),
		Condition:           in.Condition,
		Description:         strings.TrimSpace(in.Description),
		Reporter:            rep,
		CanShelter:          in.CanShelter && rep.Kind == ReporterIndividual,
	}
	if r.Sex == "" {
		r.Sex = SexUnknown
	}
	if r.Condition == "" {
		r.Condition = ConditionHealthy
	}

	if photo != nil {
		rel, err := s.media.Save(ctx, mediaPrefix, *photo)
		if err != nil {
			return View{}, err
		}
		metrics.PhotosStored.WithLabelValues(mediaPrefix).Inc()
		r.PhotoPath = rel
	}

	if err := s.repo.Create(ctx, r); err != nil {
		_ = s.media.Remove(r.PhotoPath)
		return View{}, err
	}

	metrics.SightingsCreated.WithLabelValues(string(rep.Kind)).Inc()
	s.log.Info("sighting reported", map[string]any{
		"sighting_id": r.ID,
		"reporter":    string(rep.Kind),
		"state":       r.Location.State,
	})
	return s.view(ctx, r), nil
}

// List devuelve los reportes del más reciente al más antiguo.
func (s *Service) List(ctx context.Context, page int) (paging.Page[View], error) {
	req := paging.New(page, PageSize)
	items, total, err := s.repo.List(ctx, req.Offset(), req.Limit())
	if err != nil {
		return paging.Page[View]{}, err
	}
	return paging.Build(req, s.views(ctx, items), total), nil
}

// Recent es el feed corto de la portada.
func (s *Service) Recent(ctx context.Context, n int) ([]View, error) {
	if n <= 0 || n > RecentSize {
		n = RecentSize
	}
	items, _, err := s.repo.List(ctx, 0, n)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items), nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, r), nil
}

func (s *Service) views(ctx context.Context, items []Report) []View {
	out := make([]View, 0, len(items))
	for _, r := range items {
		out = append(out, s.view(ctx, r))
	}
	return out
}

func (s *Service) view(ctx context.Context, r Report) View {
	return View{
		Report:       r,
		Label:        r.Label(),
		ReporterName: s.reporterName(ctx, r.Reporter),
		PhotoURL:     s.media.URL(r.PhotoPath),
	}
}

// reporterName nunca falla: una referencia perdida se muestra como "Desconocido".
func (s *Service) reporterName(ctx context.Context, rep Reporter) string {
	switch {
	case rep.IsAnonymous():
		return "Anónimo"
	case rep.ProfileID == "":
		return unknownName
	case rep.Kind == ReporterIndividual:
		ind, err := s.profiles.GetIndividual(ctx, rep.ProfileID)
		if err != nil {
			s.logMissing(rep, err)
			return unknownName
		}
		return ind.DisplayName()
	case rep.Kind == ReporterShelter:
		sh, err := s.profiles.GetShelter(ctx, rep.ProfileID)
		if err != nil {
			s.logMissing(rep, err)
			return unknownName
		}
		return sh.Name
	default:
		return unknownName
	}
}

func (s *Service) logMissing(rep Reporter, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		return
	}
	s.log.Warn("reporter lookup failed", map[string]any{"kind": string(rep.Kind), "profile_id": rep.ProfileID, "error": err})
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
