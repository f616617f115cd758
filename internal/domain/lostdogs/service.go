package lostdogs

import (
	"context"
	"errors"
	"fmt"
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
	// PageSize de la búsqueda pública.
	PageSize = 12

	// MineRedirect es la lista del dueño, destino de los rechazos por permiso.
	MineRedirect = "/me/lost-dogs"

	mediaPrefix = "lost_dogs"
)

const (
	msgProfileRequired = "Debes completar tu perfil de usuario para registrar un perro perdido."
	msgCannotEdit      = "No tienes permiso para editar este registro."
	msgCannotDelete    = "No tienes permiso para eliminar este registro."
	msgCannotAct       = "No tienes permiso para realizar esta acción."
	msgNoValidProfile  = "No tienes un perfil de usuario válido."
	msgCollarColor     = "Por favor, indica el color del collar."
	msgBadDate         = "Introduce una fecha válida."
	msgBadTime         = "Introduce una hora válida."
	msgBadDateTime     = "Introduce una fecha/hora válida."
	msgTooManyPhotos   = "Puedes subir como máximo 4 fotos."
	msgBadPrimary      = "Escoja una opción válida."
	msgUnknownPhoto    = "La foto no pertenece a este registro."
)

// ProfileReader es lo que este módulo necesita de accounts.
type ProfileReader interface {
	GetProfile(ctx context.Context, identityID string) (accounts.Profile, error)
	GetIndividual(ctx context.Context, id string) (accounts.Individual, error)
}

type Service struct {
	repo     Repository
	profiles ProfileReader
	media    *media.Storage
	log      logger.Logger
	now      func() time.Time
	// loc es la zona en la que se interpretan fecha y hora de extravío.
	loc *time.Location
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
		log:      log.With(map[string]any{"module": "lostdogs"}),
		now:      time.Now,
		loc:      time.UTC,
	}
}

// SetLocation fija la zona horaria del formulario (APP_TZ).
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// -------------------------
// Inputs
// -------------------------

type LocationInput struct {
	State          string `json:"state" validate:"required,max=100"`
	Municipality   string `json:"municipality" validate:"required,max=100"`
	PostalCode     string `json:"postal_code" validate:"required,len=5,numeric"`
	Neighborhood   string `json:"neighborhood" validate:"required,max=100"`
	Street         string `json:"street" validate:"required,max=200"`
	ExteriorNumber string `json:"exterior_number" validate:"required,max=20"`
}

// RegistrationInput es el formulario de alta y edición.
// La fecha de pérdida llega como lost_date + lost_time (se combinan solo si
// vienen las dos) o directamente como lost_at en RFC3339.
type RegistrationInput struct {
	Name                string        `json:"name" validate:"required,max=100"`
	Sex                 Sex           `json:"sex" validate:"required,oneof=M H"`
	AgeYears            int           `json:"age_years" validate:"gte=0"`
	AgeMonths           int           `json:"age_months" validate:"gte=0"`
	Size                Size          `json:"size" validate:"required,oneof=P M G"`
	Breed               string        `json:"breed" validate:"required,max=100"`
	Sterilized          bool          `json:"sterilized"`
	Colors              []string      `json:"colors"`
	CoatPattern         CoatPattern   `json:"coat_pattern" validate:"required,oneof=alambre corto doble_capa duro lanoso largo pelaje_nuevo sin_pelo"`
	DistinguishingMarks string        `json:"distinguishing_marks"`
	HasCollar           bool          `json:"has_collar"`
	CollarColor         string        `json:"collar_color" validate:"max=50"`
	Identifier          string        `json:"identifier" validate:"max=200"`
	Location            LocationInput `json:"location"`

	LostDate string `json:"lost_date"`
	LostTime string `json:"lost_time"`
	LostAt   string `json:"lost_at"`
}

// InputFrom arma el formulario con el estado actual; un PATCH decodifica encima.
func InputFrom(reg Registration) RegistrationInput {
	colors := make([]string, 0, len(reg.Colors))
	for _, c := range reg.Colors {
		colors = append(colors, string(c))
	}
	return RegistrationInput{
		Name:                reg.Name,
		Sex:                 reg.Sex,
		AgeYears:            reg.AgeYears,
		AgeMonths:           reg.AgeMonths,
		Size:                reg.Size,
		Breed:               reg.Breed,
		Sterilized:          reg.Sterilized,
		Colors:              colors,
		CoatPattern:         reg.CoatPattern,
		DistinguishingMarks: reg.DistinguishingMarks,
		HasCollar:           reg.HasCollar,
		CollarColor:         reg.CollarColor,
		Identifier:          reg.Identifier,
		Location: LocationInput{
			State:          reg.Location.State,
			Municipality:   reg.Location.Municipality,
			PostalCode:     reg.Location.PostalCode,
			Neighborhood:   reg.Location.Neighborhood,
			Street:         reg.Location.Street,
			ExteriorNumber: reg.Location.ExteriorNumber,
		},
	}
}

// PhotoBatch son las fotos nuevas de un request.
type PhotoBatch struct {
	Files []media.Upload
	// Primary es el índice en Files a marcar como principal.
	Primary *int
}

func (b PhotoBatch) Empty() bool { return len(b.Files) == 0 }

// -------------------------
// Vistas
// -------------------------

type PhotoView struct {
	Photo
	URL string
}

// View es un registro con los campos derivados para lectura.
type View struct {
	Registration
	Gallery         []PhotoView
	FormattedAge    string
	TimeSinceLost   string
	PrimaryPhotoURL string
	OwnerName       string
	IsOwner         bool
}

// Result acompaña una escritura con el mensaje para el usuario.
type Result struct {
	View    View
	Message string
}

// -------------------------
// Alta / edición / baja
// -------------------------

func (s *Service) Create(ctx context.Context, identityID string, in RegistrationInput, batch PhotoBatch) (Result, error) {
	owner, err := s.requireIndividual(ctx, identityID)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	v := validation.Struct(in, nil)
	colors, lostAt := validateRegistration(in, now, s.loc, v)
	validateBatch(batch, 0, v)
	if err := v.OrNil(); err != nil {
		s.logRejected(batch, v)
		return Result{}, err
	}

	reg := Registration{
		ID:           uuid.NewString(),
		OwnerID:      owner.ID,
		LostAt:       lostAt,
		RegisteredAt: now,
		Status:       StatusActive,
		UpdatedAt:    now,
	}
	applyInput(&reg, in, colors)

	photos, err := s.storeBatch(ctx, reg.ID, batch, now)
	if err != nil {
		return Result{}, err
	}
	if err := s.repo.Create(ctx, reg, photos); err != nil {
		s.media.RemoveAll(photoPaths(photos))
		return Result{}, mapPhotoErr(err)
	}

	metrics.LostDogsCreated.Inc()
	s.log.Info("lost dog registered", map[string]any{
		"registration_id": reg.ID,
		"owner_id":        owner.ID,
		"photos":          len(photos),
	})

	view, err := s.Get(ctx, identityID, reg.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		View:    view,
		Message: fmt.Sprintf("¡Hemos registrado a %s! Esperamos que pronto puedas reencontrarte con tu mascota.", reg.Name),
	}, nil
}

// Update reemplaza los campos del registro y aplica el lote de fotos
// (altas y bajas) en la misma transacción.
func (s *Service) Update(ctx context.Context, identityID, id string, in RegistrationInput, batch PhotoBatch, removePhotoIDs []string) (Result, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotEdit, MineRedirect)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	v := validation.Struct(in, nil)
	colors, lostAt := validateRegistration(in, cur.LostAt, s.loc, v)

	remove := dedupe(removePhotoIDs)
	for _, pid := range remove {
		if !hasPhoto(cur.Photos, pid) {
			v.Add("remove_photos", msgUnknownPhoto)
		}
	}
	validateBatch(batch, len(cur.Photos)-len(remove), v)
	if err := v.OrNil(); err != nil {
		s.logRejected(batch, v)
		return Result{}, err
	}

	next := cur
	next.LostAt = lostAt
	next.UpdatedAt = now
	applyInput(&next, in, colors)

	photos, err := s.storeBatch(ctx, next.ID, batch, now)
	if err != nil {
		return Result{}, err
	}
	removed, err := s.repo.Update(ctx, next, photos, remove)
	if err != nil {
		s.media.RemoveAll(photoPaths(photos))
		return Result{}, mapPhotoErr(err)
	}
	s.media.RemoveAll(photoPaths(removed))

	s.log.Info("lost dog updated", map[string]any{
		"registration_id": next.ID,
		"photos_added":    len(photos),
		"photos_removed":  len(removed),
	})

	view, err := s.Get(ctx, identityID, next.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		View:    view,
		Message: fmt.Sprintf("La información de %s ha sido actualizada correctamente.", next.Name),
	}, nil
}

// Delete borra el registro y sus fotos; los blobs se quitan después, sin fallar.
func (s *Service) Delete(ctx context.Context, identityID, id string) (string, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotDelete, MineRedirect)
	if err != nil {
		return "", err
	}

	photos, err := s.repo.Delete(ctx, cur.ID)
	if err != nil {
		return "", err
	}
	s.media.RemoveAll(photoPaths(photos))

	s.log.Info("lost dog deleted", map[string]any{"registration_id": cur.ID, "photos": len(photos)})
	return fmt.Sprintf("El registro de %s ha sido eliminado correctamente.", cur.Name), nil
}

// MarkFound es una asignación: repetirla deja found y vuelve a tocar UpdatedAt.
func (s *Service) MarkFound(ctx context.Context, identityID, id string) (Result, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotAct, "/lost-dogs/"+id)
	if err != nil {
		return Result{}, err
	}

	if err := s.repo.SetStatus(ctx, cur.ID, StatusFound, s.now()); err != nil {
		return Result{}, err
	}
	if cur.Status != StatusFound {
		metrics.LostDogsFound.Inc()
	}
	s.log.Info("lost dog found", map[string]any{"registration_id": cur.ID, "previous_status": string(cur.Status)})

	view, err := s.Get(ctx, identityID, cur.ID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		View:    view,
		Message: fmt.Sprintf("¡Qué alegría! Has marcado a %s como encontrado. Nos alegramos mucho por ti y por él.", cur.Name),
	}, nil
}

// -------------------------
// Fotos
// -------------------------

func (s *Service) AddPhotos(ctx context.Context, identityID, id string, batch PhotoBatch) (View, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotEdit, MineRedirect)
	if err != nil {
		return View{}, err
	}

	v := apperr.NewValidation()
	if batch.Empty() {
		v.Add("photos", "Este campo es obligatorio.")
	}
	validateBatch(batch, len(cur.Photos), v)
	if err := v.OrNil(); err != nil {
		s.logRejected(batch, v)
		return View{}, err
	}

	now := s.now()
	photos, err := s.storeBatch(ctx, cur.ID, batch, now)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.AddPhotos(ctx, cur.ID, photos, now); err != nil {
		s.media.RemoveAll(photoPaths(photos))
		return View{}, mapPhotoErr(err)
	}
	return s.Get(ctx, identityID, cur.ID)
}

// RemovePhoto quita una foto; si era la principal el repo promueve a la más nueva.
func (s *Service) RemovePhoto(ctx context.Context, identityID, id, photoID string) (View, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotEdit, MineRedirect)
	if err != nil {
		return View{}, err
	}

	removed, err := s.repo.RemovePhoto(ctx, cur.ID, photoID, s.now())
	if err != nil {
		return View{}, err
	}
	_ = s.media.Remove(removed.Path)
	return s.Get(ctx, identityID, cur.ID)
}

// SetPrimaryPhoto desmarca y marca bajo el lock del registro.
func (s *Service) SetPrimaryPhoto(ctx context.Context, identityID, id, photoID string) (View, error) {
	cur, err := s.owned(ctx, identityID, id, msgCannotEdit, MineRedirect)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.SetPrimaryPhoto(ctx, cur.ID, photoID, s.now()); err != nil {
		return View{}, err
	}
	return s.Get(ctx, identityID, cur.ID)
}

// -------------------------
// Lectura
// -------------------------

// Search es la búsqueda pública: solo activos, más recientes primero.
func (s *Service) Search(ctx context.Context, f Filter, page int) (paging.Page[View], error) {
	f.State = strings.TrimSpace(f.State)
	f.Municipality = strings.TrimSpace(f.Municipality)
	f.Breed = strings.TrimSpace(f.Breed)

	req := paging.New(page, PageSize)
	items, total, err := s.repo.Search(ctx, f, req.Offset(), req.Limit())
	if err != nil {
		return paging.Page[View]{}, err
	}
	return paging.Build(req, s.views(ctx, items, ""), total), nil
}

// ListMine devuelve todos los registros del caller, de cualquier estado.
// Sin perfil de persona la lista está vacía.
func (s *Service) ListMine(ctx context.Context, identityID string) ([]View, error) {
	ownerID, err := s.viewerOwnerID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if ownerID == "" {
		if strings.TrimSpace(identityID) == "" {
			return nil, apperr.ErrUnauthorized
		}
		return []View{}, nil
	}

	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, items, ownerID), nil
}

// Get devuelve el detalle en cualquier estado; IsOwner según el viewer.
func (s *Service) Get(ctx context.Context, viewerIdentityID, id string) (View, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	ownerID, err := s.viewerOwnerID(ctx, viewerIdentityID)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, reg, ownerID), nil
}

// OnAccountDelete junta los blobs del dueño antes del borrado en cascada y
// los quita después. Se registra con accounts.Service.OnDelete.
func (s *Service) OnAccountDelete(ctx context.Context, p accounts.Profile) (func(), error) {
	if p.Kind != accounts.KindIndividual || p.Individual == nil {
		return nil, nil
	}
	paths, err := s.repo.PhotoPathsByOwner(ctx, p.Individual.ID)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return func() { s.media.RemoveAll(paths) }, nil
}

// -------------------------
// helpers
// -------------------------

func (s *Service) requireIndividual(ctx context.Context, identityID string) (accounts.Individual, error) {
	if strings.TrimSpace(identityID) == "" {
		return accounts.Individual{}, apperr.ErrUnauthorized
	}
	p, err := s.profiles.GetProfile(ctx, identityID)
	if err != nil {
		return accounts.Individual{}, err
	}
	if p.Kind != accounts.KindIndividual || p.Individual == nil {
		return accounts.Individual{}, &apperr.ProfileRequiredError{Message: msgProfileRequired, Redirect: accounts.ChoiceRedirect}
	}
	return *p.Individual, nil
}

// owned carga el registro y exige que el caller sea su dueño.
// Primero 404, luego permiso.
func (s *Service) owned(ctx context.Context, identityID, id, msg, redirect string) (Registration, error) {
	if strings.TrimSpace(identityID) == "" {
		return Registration{}, apperr.ErrUnauthorized
	}
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Registration{}, err
	}

	p, err := s.profiles.GetProfile(ctx, identityID)
	if err != nil {
		return Registration{}, err
	}
	if p.Kind != accounts.KindIndividual || p.Individual == nil {
		if msg == msgCannotAct {
			msg = msgNoValidProfile
		}
		return Registration{}, &apperr.ForbiddenError{Message: msg, Redirect: redirect}
	}
	if p.Individual.ID != reg.OwnerID {
		return Registration{}, &apperr.ForbiddenError{Message: msg, Redirect: redirect}
	}
	return reg, nil
}

// viewerOwnerID: "" si no hay viewer o no es persona.
func (s *Service) viewerOwnerID(ctx context.Context, identityID string) (string, error) {
	if strings.TrimSpace(identityID) == "" {
		return "", nil
	}
	p, err := s.profiles.GetProfile(ctx, identityID)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			return "", nil
		}
		return "", err
	}
	if p.Kind != accounts.KindIndividual || p.Individual == nil {
		return "", nil
	}
	return p.Individual.ID, nil
}

// storeBatch escribe los blobs y arma las filas. Los UploadedAt se separan
// por microsegundos para que el orden del lote sea estable.
func (s *Service) storeBatch(ctx context.Context, regID string, batch PhotoBatch, now time.Time) ([]Photo, error) {
	photos := make([]Photo, 0, len(batch.Files))
	for i, u := range batch.Files {
		rel, err := s.media.Save(ctx, mediaPrefix, u)
		if err != nil {
			s.media.RemoveAll(photoPaths(photos))
			return nil, err
		}
		metrics.PhotosStored.WithLabelValues(mediaPrefix).Inc()
		photos = append(photos, Photo{
			ID:             uuid.NewString(),
			RegistrationID: regID,
			Path:           rel,
			IsPrimary:      batch.Primary != nil && *batch.Primary == i,
			UploadedAt:     now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	return photos, nil
}

func (s *Service) logRejected(batch PhotoBatch, v *apperr.ValidationError) {
	if batch.Empty() {
		return
	}
	s.log.Warn("photo batch rejected", map[string]any{"photos": len(batch.Files), "fields": len(v.Fields)})
}

func (s *Service) views(ctx context.Context, items []Registration, viewerOwnerID string) []View {
	out := make([]View, 0, len(items))
	for _, r := range items {
		out = append(out, s.view(ctx, r, viewerOwnerID))
	}
	return out
}

func (s *Service) view(ctx context.Context, reg Registration, viewerOwnerID string) View {
	reg.Photos = OrderPhotos(reg.Photos)

	gallery := make([]PhotoView, 0, len(reg.Photos))
	for _, p := range reg.Photos {
		gallery = append(gallery, PhotoView{Photo: p, URL: s.media.URL(p.Path)})
	}

	var primaryURL string
	if p, ok := PrimaryPhoto(reg.Photos); ok {
		primaryURL = s.media.URL(p.Path)
	}

	return View{
		Registration:    reg,
		Gallery:         gallery,
		FormattedAge:    FormatAge(reg.AgeYears, reg.AgeMonths),
		TimeSinceLost:   TimeSince(s.now(), reg.LostAt),
		PrimaryPhotoURL: primaryURL,
		OwnerName:       s.ownerName(ctx, reg.OwnerID),
		IsOwner:         viewerOwnerID != "" && viewerOwnerID == reg.OwnerID,
	}
}

func (s *Service) ownerName(ctx context.Context, ownerID string) string {
	ind, err := s.profiles.GetIndividual(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Warn("owner lookup failed", map[string]any{"owner_id": ownerID, "error": err})
		}
		return ""
	}
	return ind.DisplayName()
}

// validateRegistration corre las reglas de formulario que no caben en tags.
// fallback es el LostAt cuando no llega una fecha completa; loc es la zona del formulario.
func validateRegistration(in RegistrationInput, fallback time.Time, loc *time.Location, v *apperr.ValidationError) ([]Color, time.Time) {
	colors, msg := ParseColors(in.Colors)
	if msg != "" {
		v.Add("colors", msg)
	}
	if in.HasCollar && strings.TrimSpace(in.CollarColor) == "" {
		v.Add("collar_color", msgCollarColor)
	}

	lostAt := fallback
	if raw := strings.TrimSpace(in.LostAt); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			v.Add("lost_at", msgBadDateTime)
		}
		lostAt = t
	}

	date, clock := strings.TrimSpace(in.LostDate), strings.TrimSpace(in.LostTime)
	var d, c time.Time
	var err error
	if date != "" {
		if d, err = time.Parse("2006-01-02", date); err != nil {
			v.Add("lost_date", msgBadDate)
		}
	}
	if clock != "" {
		if c, err = parseClock(clock); err != nil {
			v.Add("lost_time", msgBadTime)
		}
	}
	// Solo se combina si vienen las dos mitades.
	if date != "" && clock != "" && !v.Has("lost_date") && !v.Has("lost_time") {
		lostAt = time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc)
	}
	return colors, lostAt
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

// validateBatch revisa cada foto y el tope total (existing = fotos que quedan).
func validateBatch(batch PhotoBatch, existing int, v *apperr.ValidationError) {
	for i, u := range batch.Files {
		if err := media.ValidateImage(u); err != nil {
			v.Add(fmt.Sprintf("photos.%d", i), media.ImageMessage(err))
		}
	}
	if existing+len(batch.Files) > MaxPhotos {
		v.Add("photos", msgTooManyPhotos)
	}
	if batch.Primary != nil && (*batch.Primary < 0 || *batch.Primary >= len(batch.Files)) {
		v.Add("primary_photo", msgBadPrimary)
	}
}

func applyInput(reg *Registration, in RegistrationInput, colors []Color) {
	reg.Name = strings.TrimSpace(in.Name)
	reg.Sex = in.Sex
	reg.AgeYears = in.AgeYears
	reg.AgeMonths = in.AgeMonths
	reg.Size = in.Size
	reg.Breed = strings.TrimSpace(in.Breed)
	reg.Sterilized = in.Sterilized
	reg.Colors = colors
	reg.CoatPattern = in.CoatPattern
	reg.DistinguishingMarks = strings.TrimSpace(in.DistinguishingMarks)
	reg.HasCollar = in.HasCollar
	reg.CollarColor = strings.TrimSpace(in.CollarColor)
	if !reg.HasCollar {
		reg.CollarColor = ""
	}
	reg.Identifier = strings.TrimSpace(in.Identifier)
	reg.Location = Location{
		State:          strings.TrimSpace(in.Location.State),
		Municipality:   strings.TrimSpace(in.Location.Municipality),
		PostalCode:     strings.TrimSpace(in.Location.PostalCode),
		Neighborhood:   strings.TrimSpace(in.Location.Neighborhood),
		Street:         strings.TrimSpace(in.Location.Street),
		ExteriorNumber: strings.TrimSpace(in.Location.ExteriorNumber),
	}
}

func mapPhotoErr(err error) error {
	if errors.Is(err, ErrTooManyPhotos) {
		return apperr.Field("photos", msgTooManyPhotos)
	}
	return err
}

func photoPaths(photos []Photo) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		out = append(out, p.Path)
	}
	return out
}

func hasPhoto(set []Photo, id string) bool {
	for _, p := range set {
		if p.ID == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
