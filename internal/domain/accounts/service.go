package accounts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/logger"
	"patitas-a-casa/internal/platform/media"
	"patitas-a-casa/internal/platform/metrics"
	"patitas-a-casa/internal/platform/paging"
	"patitas-a-casa/internal/platform/validation"
	"patitas-a-casa/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ShelterPageSize es el tamaño de página del listado público de albergues.
	ShelterPageSize = 10

	// HomeRedirect es el destino neutral cuando falta perfil o permiso.
	HomeRedirect = "/"
	// ChoiceRedirect lleva al selector de tipo de perfil.
	ChoiceRedirect = "/me/profile/choice"

	shelterMediaPrefix = "shelters"
)

const (
	msgUsernameTaken   = "Este nombre de usuario ya está en uso."
	msgEmailTaken      = "Este correo electrónico ya está registrado. Por favor, utiliza otro."
	msgCapacity        = "La capacidad máxima no puede ser menor que la capacidad actual."
	msgBadCredentials  = "Usuario o contraseña incorrectos."
	msgAccountGone     = "La cuenta ya no existe."
	msgUnknownService  = "Escoja una opción válida."
	msgHasIndividual   = "Ya tienes un perfil de persona registrado."
	msgHasShelter      = "Ya tienes un perfil de albergue registrado."
	msgShelterNotBoth  = "Ya tienes un perfil de albergue y no puedes tener ambos tipos de perfil."
	msgPersonNotBoth   = "Ya tienes un perfil de persona y no puedes tener ambos tipos de perfil."
	msgNoIndividual    = "No tienes un perfil de persona para editar."
	msgNoShelter       = "No tienes un perfil de albergue para editar."
	msgProfileRequired = "No tienes un perfil completo. Por favor, crea uno."
)

// AccountCleanup corre antes de borrar una cuenta. La función devuelta se
// ejecuta solo si el borrado tuvo éxito (p.ej. quitar blobs de media).
type AccountCleanup func(ctx context.Context, p Profile) (after func(), err error)

type Service struct {
	repo    Repository
	tokens  auth.TokenIssuer
	media   *media.Storage
	log     logger.Logger
	cleanup []AccountCleanup
	now     func() time.Time

	// bcryptCost se baja en tests.
	bcryptCost int
}

func NewService(repo Repository, tokens auth.TokenIssuer, store *media.Storage, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = media.NewStorage(nil, "")
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		media:      store,
		log:        log.With(map[string]any{"module": "accounts"}),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// OnDelete registra limpiezas de otros módulos (perros perdidos, etc.).
func (s *Service) OnDelete(fn AccountCleanup) {
	s.cleanup = append(s.cleanup, fn)
}

// -------------------------
// Inputs
// -------------------------

type Credentials struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type IndividualInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=15,phone"`
}

type AddressInput struct {
	State          string `json:"state" validate:"required,max=100"`
	Municipality   string `json:"municipality" validate:"required,max=100"`
	PostalCode     string `json:"postal_code" validate:"required,len=5,numeric"`
	Street         string `json:"street" validate:"required,max=200"`
	ExteriorNumber string `json:"exterior_number" validate:"required,max=20"`
}

type ResponsibleInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
}

type SocialInput struct {
	Facebook  string `json:"facebook" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	Twitter   string `json:"twitter" validate:"omitempty,url"`
	Website   string `json:"website" validate:"omitempty,url"`
}

type ShelterInput struct {
	Name            string           `json:"name" validate:"required,max=200"`
	Phone           string           `json:"phone" validate:"required,max=15,phone"`
	Address         AddressInput     `json:"address"`
	Directions      string           `json:"directions"`
	Responsible     ResponsibleInput `json:"responsible"`
	CurrentCapacity int              `json:"current_capacity" validate:"gte=0"`
	MaxCapacity     int              `json:"max_capacity" validate:"gte=1"`
	ServiceIDs      []string         `json:"service_ids"`
	Social          SocialInput      `json:"social"`
}

// ShelterUpdate agrega a ShelterInput lo que solo aplica al editar.
type ShelterUpdate struct {
	Shelter ShelterInput
	Active  *bool
	// RemoveImages son slots 1..4 a vaciar.
	RemoveImages []int
}

type RegisterIndividualInput struct {
	Credentials
	IndividualInput
}

type RegisterShelterInput struct {
	Credentials
	ShelterInput
}

// ShelterImages son los archivos opcionales por slot (image1..image4).
type ShelterImages [MaxShelterImages]*media.Upload

// -------------------------
// Results
// -------------------------

type AuthResult struct {
	Identity Identity
	Profile  Profile
	Token    string
}

// ProfileResult: AlreadyExists=true es informativo (mismo tipo ya creado), no error.
type ProfileResult struct {
	Profile       Profile
	AlreadyExists bool
	Message       string
}

type ProfileChoice struct {
	Kind    ProfileKind
	Options []ProfileKind
}

// -------------------------
// Registro y login
// -------------------------

func (s *Service) RegisterIdentity(ctx context.Context, in Credentials) (AuthResult, error) {
	v := validation.Struct(in, nil)
	id, err := s.newIdentity(ctx, in, v)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.repo.CreateIdentity(ctx, id); err != nil {
		return AuthResult{}, mapUniqueErr(err)
	}

	metrics.Accounts.WithLabelValues(string(KindNone)).Inc()
	s.log.Info("identity registered", map[string]any{"identity_id": id.ID})
	return s.authenticated(ctx, id, NoProfile(id.ID))
}

func (s *Service) RegisterIndividual(ctx context.Context, in RegisterIndividualInput) (AuthResult, error) {
	v := validation.Struct(in.Credentials, nil)
	validation.Struct(in.IndividualInput, v)

	id, err := s.newIdentity(ctx, in.Credentials, v)
	if err != nil {
		return AuthResult{}, err
	}

	ind := s.newIndividual(id.ID, in.IndividualInput)
	if err := s.repo.CreateIndividualAccount(ctx, id, ind); err != nil {
		return AuthResult{}, mapUniqueErr(err)
	}

	metrics.Accounts.WithLabelValues(string(KindIndividual)).Inc()
	s.log.Info("individual registered", map[string]any{"identity_id": id.ID, "individual_id": ind.ID})
	return s.authenticated(ctx, id, Profile{IdentityID: id.ID, Kind: KindIndividual, Individual: &ind})
}

// RegisterShelter crea identidad, albergue y servicios en una sola transacción.
func (s *Service) RegisterShelter(ctx context.Context, in RegisterShelterInput, images ShelterImages) (AuthResult, error) {
	v := validation.Struct(in.Credentials, nil)
	services := s.validateShelter(ctx, in.ShelterInput, v)
	validateImages(images, v)

	id, err := s.newIdentity(ctx, in.Credentials, v)
	if err != nil {
		return AuthResult{}, err
	}

	sh := s.newShelter(id.ID, in.ShelterInput, services)
	saved, err := s.saveImages(ctx, &sh, images)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.repo.CreateShelterAccount(ctx, id, sh); err != nil {
		s.media.RemoveAll(saved)
		return AuthResult{}, mapUniqueErr(err)
	}

	metrics.Accounts.WithLabelValues(string(KindShelter)).Inc()
	s.log.Info("shelter registered", map[string]any{"identity_id": id.ID, "shelter_id": sh.ID, "services": len(sh.Services)})
	return s.authenticated(ctx, id, Profile{IdentityID: id.ID, Kind: KindShelter, Shelter: &sh})
}

func (s *Service) Login(ctx context.Context, username, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%s: %w", msgBadCredentials, apperr.ErrUnauthorized)
	}

	id, err := s.repo.GetIdentityByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("%s: %w", msgBadCredentials, apperr.ErrUnauthorized)
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(id.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, fmt.Errorf("%s: %w", msgBadCredentials, apperr.ErrUnauthorized)
	}

	p, err := s.repo.GetProfile(ctx, id.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return s.authenticated(ctx, id, p)
}

func (s *Service) newIdentity(ctx context.Context, in Credentials, v *apperr.ValidationError) (Identity, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Duplicados antes de crear nada.
	if username != "" || email != "" {
		uTaken, eTaken, err := s.repo.IdentityTaken(ctx, username, email)
		if err != nil {
			return Identity{}, err
		}
		if uTaken {
			v.Add("username", msgUsernameTaken)
		}
		if eTaken {
			v.Add("email", msgEmailTaken)
		}
	}
	if err := v.OrNil(); err != nil {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	return Identity{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}, nil
}

func (s *Service) authenticated(ctx context.Context, id Identity, p Profile) (AuthResult, error) {
	if s.tokens == nil {
		return AuthResult{Identity: id, Profile: p}, nil
	}
	tok, err := s.tokens.Issue(ctx, auth.Claims{UserID: id.ID, Username: id.Username, Email: id.Email})
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Identity: id, Profile: p, Token: tok}, nil
}

func mapUniqueErr(err error) error {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return apperr.Field("username", msgUsernameTaken)
	case errors.Is(err, ErrEmailTaken):
		return apperr.Field("email", msgEmailTaken)
	default:
		return err
	}
}

// -------------------------
// Perfil
// -------------------------

func (s *Service) GetProfile(ctx context.Context, identityID string) (Profile, error) {
	if strings.TrimSpace(identityID) == "" {
		return Profile{}, apperr.ErrUnauthorized
	}
	p, err := s.repo.GetProfile(ctx, identityID)
	if errors.Is(err, apperr.ErrNotFound) {
		// Token válido de una identidad que ya no existe.
		return Profile{}, fmt.Errorf("%s: %w", msgAccountGone, apperr.ErrUnauthorized)
	}
	return p, err
}

// RequireProfile es GetProfile pero sin perfil devuelve ProfileRequiredError.
func (s *Service) RequireProfile(ctx context.Context, identityID string) (Profile, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return Profile{}, err
	}
	if p.Kind == KindNone {
		return Profile{}, &apperr.ProfileRequiredError{Message: msgProfileRequired, Redirect: ChoiceRedirect}
	}
	return p, nil
}

// ProfileChoice es el selector de una sola vez: solo ofrece opciones si no hay perfil.
func (s *Service) ProfileChoice(ctx context.Context, identityID string) (ProfileChoice, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return ProfileChoice{}, err
	}
	out := ProfileChoice{Kind: p.Kind, Options: []ProfileKind{}}
	if p.Kind == KindNone {
		out.Options = []ProfileKind{KindIndividual, KindShelter}
	}
	return out, nil
}

func (s *Service) CreateIndividualProfile(ctx context.Context, identityID string, in IndividualInput) (ProfileResult, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return ProfileResult{}, err
	}
	if res, done, err := profileGate(p, KindIndividual); done {
		return res, err
	}

	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return ProfileResult{}, err
	}

	ind := s.newIndividual(identityID, in)
	if err := s.repo.CreateIndividual(ctx, ind); err != nil {
		if errors.Is(err, ErrProfileExists) {
			return s.recheckGate(ctx, identityID, KindIndividual)
		}
		return ProfileResult{}, err
	}

	s.log.Info("individual profile created", map[string]any{"identity_id": identityID, "individual_id": ind.ID})
	return ProfileResult{Profile: Profile{IdentityID: identityID, Kind: KindIndividual, Individual: &ind}}, nil
}

func (s *Service) CreateShelterProfile(ctx context.Context, identityID string, in ShelterInput, images ShelterImages) (ProfileResult, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return ProfileResult{}, err
	}
	if res, done, err := profileGate(p, KindShelter); done {
		return res, err
	}

	v := apperr.NewValidation()
	services := s.validateShelter(ctx, in, v)
	validateImages(images, v)
	if err := v.OrNil(); err != nil {
		return ProfileResult{}, err
	}

	sh := s.newShelter(identityID, in, services)
	saved, err := s.saveImages(ctx, &sh, images)
	if err != nil {
		return ProfileResult{}, err
	}
	if err := s.repo.CreateShelter(ctx, sh); err != nil {
		s.media.RemoveAll(saved)
		if errors.Is(err, ErrProfileExists) {
			return s.recheckGate(ctx, identityID, KindShelter)
		}
		return ProfileResult{}, err
	}

	s.log.Info("shelter profile created", map[string]any{"identity_id": identityID, "shelter_id": sh.ID})
	return ProfileResult{Profile: Profile{IdentityID: identityID, Kind: KindShelter, Shelter: &sh}}, nil
}

// profileGate aplica la exclusividad: otro tipo => conflicto; mismo tipo => informativo.
func profileGate(p Profile, want ProfileKind) (ProfileResult, bool, error) {
	switch {
	case p.Kind == KindNone:
		return ProfileResult{}, false, nil
	case p.Kind == want && want == KindIndividual:
		return ProfileResult{Profile: p, AlreadyExists: true, Message: msgHasIndividual}, true, nil
	case p.Kind == want:
		return ProfileResult{Profile: p, AlreadyExists: true, Message: msgHasShelter}, true, nil
	case p.Kind == KindShelter:
		return ProfileResult{}, true, fmt.Errorf("%s: %w", msgShelterNotBoth, apperr.ErrConflict)
	default:
		return ProfileResult{}, true, fmt.Errorf("%s: %w", msgPersonNotBoth, apperr.ErrConflict)
	}
}

// recheckGate resuelve la carrera en la que otro request creó el perfil primero.
func (s *Service) recheckGate(ctx context.Context, identityID string, want ProfileKind) (ProfileResult, error) {
	p, err := s.repo.GetProfile(ctx, identityID)
	if err != nil {
		return ProfileResult{}, err
	}
	if res, done, err := profileGate(p, want); done {
		return res, err
	}
	return ProfileResult{}, fmt.Errorf("profile exists: %w", apperr.ErrConflict)
}

func (s *Service) UpdateIndividual(ctx context.Context, identityID string, in IndividualInput) (Individual, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return Individual{}, err
	}
	if p.Kind != KindIndividual || p.Individual == nil {
		return Individual{}, &apperr.ForbiddenError{Message: msgNoIndividual, Redirect: HomeRedirect}
	}
	if err := validation.Struct(in, nil).OrNil(); err != nil {
		return Individual{}, err
	}

	ind := *p.Individual
	ind.FirstName = strings.TrimSpace(in.FirstName)
	ind.LastName = strings.TrimSpace(in.LastName)
	ind.Phone = strings.TrimSpace(in.Phone)

	if err := s.repo.UpdateIndividual(ctx, ind); err != nil {
		return Individual{}, err
	}
	return ind, nil
}

func (s *Service) UpdateShelter(ctx context.Context, identityID string, in ShelterUpdate, images ShelterImages) (Shelter, error) {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return Shelter{}, err
	}
	if p.Kind != KindShelter || p.Shelter == nil {
		return Shelter{}, &apperr.ForbiddenError{Message: msgNoShelter, Redirect: HomeRedirect}
	}

	v := apperr.NewValidation()
	services := s.validateShelter(ctx, in.Shelter, v)
	validateImages(images, v)
	for _, slot := range in.RemoveImages {
		if slot < 1 || slot > MaxShelterImages {
			v.Add("remove_images", "Escoja una opción válida.")
		}
	}
	if err := v.OrNil(); err != nil {
		return Shelter{}, err
	}

	cur := *p.Shelter
	next := s.newShelter(identityID, in.Shelter, services)
	next.ID = cur.ID
	next.RegisteredAt = cur.RegisteredAt
	next.Images = cur.Images
	next.Active = cur.Active
	if in.Active != nil {
		next.Active = *in.Active
	}

	// Blobs a borrar solo si el update se guarda.
	var stale []string
	for _, slot := range in.RemoveImages {
		if next.Images[slot-1] != "" {
			stale = append(stale, next.Images[slot-1])
			next.Images[slot-1] = ""
		}
	}
	for i, u := range images {
		if u != nil && next.Images[i] != "" {
			stale = append(stale, next.Images[i])
		}
	}

	saved, err := s.saveImages(ctx, &next, images)
	if err != nil {
		return Shelter{}, err
	}
	if err := s.repo.UpdateShelter(ctx, next); err != nil {
		s.media.RemoveAll(saved)
		return Shelter{}, err
	}
	s.media.RemoveAll(stale)

	s.log.Info("shelter updated", map[string]any{"shelter_id": next.ID, "active": next.Active})
	return next, nil
}

func (s *Service) newIndividual(identityID string, in IndividualInput) Individual {
	return Individual{
		ID:           uuid.NewString(),
		IdentityID:   identityID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		RegisteredAt: s.now(),
	}
}

func (s *Service) newShelter(identityID string, in ShelterInput, services []ShelterService) Shelter {
	return Shelter{
		ID:         uuid.NewString(),
		IdentityID: identityID,
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Address: Address{
			State:          strings.TrimSpace(in.Address.State),
			Municipality:   strings.TrimSpace(in.Address.Municipality),
			PostalCode:     strings.TrimSpace(in.Address.PostalCode),
			Street:         strings.TrimSpace(in.Address.Street),
			ExteriorNumber: strings.TrimSpace(in.Address.ExteriorNumber),
		},
		Directions: strings.TrimSpace(in.Directions),
		Responsible: Responsible{
			FirstName: strings.TrimSpace(in.Responsible.FirstName),
			LastName:  strings.TrimSpace(in.Responsible.LastName),
			Email:     strings.TrimSpace(in.Responsible.Email),
		},
		CurrentCapacity: in.CurrentCapacity,
		MaxCapacity:     in.MaxCapacity,
		Services:        services,
		Social: Social{
			Facebook:  strings.TrimSpace(in.Social.Facebook),
			Instagram: strings.TrimSpace(in.Social.Instagram),
			Twitter:   strings.TrimSpace(in.Social.Twitter),
			Website:   strings.TrimSpace(in.Social.Website),
		},
		RegisteredAt: s.now(),
		Active:       true,
	}
}

// validateShelter corre tags + reglas cruzadas y resuelve los servicios elegidos.
func (s *Service) validateShelter(ctx context.Context, in ShelterInput, v *apperr.ValidationError) []ShelterService {
	validation.Struct(in, v)

	if in.MaxCapacity < in.CurrentCapacity {
		v.Add("max_capacity", msgCapacity)
	}

	if len(in.ServiceIDs) == 0 {
		return []ShelterService{}
	}
	all, err := s.repo.ListServices(ctx)
	if err != nil {
		v.Add("service_ids", msgUnknownService)
		return nil
	}
	byID := make(map[string]ShelterService, len(all))
	for _, sv := range all {
		byID[sv.ID] = sv
	}

	seen := map[string]struct{}{}
	out := make([]ShelterService, 0, len(in.ServiceIDs))
	for _, id := range in.ServiceIDs {
		sv, ok := byID[strings.TrimSpace(id)]
		if !ok {
			v.Add("service_ids", msgUnknownService)
			continue
		}
		if _, dup := seen[sv.ID]; dup {
			continue
		}
		seen[sv.ID] = struct{}{}
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func validateImages(images ShelterImages, v *apperr.ValidationError) {
	for i, u := range images {
		if u == nil {
			continue
		}
		if err := media.ValidateImage(*u); err != nil {
			v.Add(fmt.Sprintf("image%d", i+1), media.ImageMessage(err))
		}
	}
}

// saveImages escribe los uploads en sus slots y devuelve los paths nuevos.
func (s *Service) saveImages(ctx context.Context, sh *Shelter, images ShelterImages) ([]string, error) {
	saved := make([]string, 0, MaxShelterImages)
	for i, u := range images {
		if u == nil {
			continue
		}
		rel, err := s.media.Save(ctx, shelterMediaPrefix, *u)
		if err != nil {
			s.media.RemoveAll(saved)
			return nil, err
		}
		metrics.PhotosStored.WithLabelValues(shelterMediaPrefix).Inc()
		sh.Images[i] = rel
		saved = append(saved, rel)
	}
	return saved, nil
}

// ImageURL expone la URL pública de un path de media.
func (s *Service) ImageURL(rel string) string {
	return s.media.URL(rel)
}

// -------------------------
// Albergues públicos y servicios
// -------------------------

func (s *Service) ListActiveShelters(ctx context.Context, page int) (paging.Page[Shelter], error) {
	req := paging.New(page, ShelterPageSize)
	items, total, err := s.repo.ListActiveShelters(ctx, req.Offset(), req.Limit())
	if err != nil {
		return paging.Page[Shelter]{}, err
	}
	return paging.Build(req, items, total), nil
}

// GetActiveShelter: un albergue inactivo se trata como inexistente.
func (s *Service) GetActiveShelter(ctx context.Context, id string) (Shelter, error) {
	sh, err := s.repo.GetShelter(ctx, id)
	if err != nil {
		return Shelter{}, err
	}
	if !sh.Active {
		return Shelter{}, fmt.Errorf("shelter %s: %w", id, apperr.ErrNotFound)
	}
	return sh, nil
}

func (s *Service) GetIndividual(ctx context.Context, id string) (Individual, error) {
	return s.repo.GetIndividual(ctx, id)
}

// GetShelter no filtra por activo (lo usan otros módulos para nombres).
func (s *Service) GetShelter(ctx context.Context, id string) (Shelter, error) {
	return s.repo.GetShelter(ctx, id)
}

func (s *Service) ListServices(ctx context.Context) ([]ShelterService, error) {
	return s.repo.ListServices(ctx)
}

// EnsureDefaultServices siembra el catálogo inicial; es idempotente.
func (s *Service) EnsureDefaultServices(ctx context.Context) error {
	svcs := make([]ShelterService, 0, len(DefaultServiceNames))
	for _, name := range DefaultServiceNames {
		svcs = append(svcs, ShelterService{ID: uuid.NewString(), Name: name})
	}
	return s.repo.EnsureServices(ctx, svcs)
}

// -------------------------
// Baja de cuenta
// -------------------------

func (s *Service) DeleteAccount(ctx context.Context, identityID string) error {
	p, err := s.GetProfile(ctx, identityID)
	if err != nil {
		return err
	}

	afters := make([]func(), 0, len(s.cleanup)+1)
	for _, fn := range s.cleanup {
		after, err := fn(ctx, p)
		if err != nil {
			return err
		}
		if after != nil {
			afters = append(afters, after)
		}
	}
	if p.Kind == KindShelter && p.Shelter != nil {
		imgs := p.Shelter.Images
		afters = append(afters, func() { s.media.RemoveAll(imgs[:]) })
	}

	if err := s.repo.DeleteIdentity(ctx, identityID); err != nil {
		return err
	}
	for _, fn := range afters {
		fn()
	}

	s.log.Info("account deleted", map[string]any{"identity_id": identityID, "kind": string(p.Kind)})
	return nil
}
