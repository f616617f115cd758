package accounts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"patitas-a-casa/internal/middleware"
	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/httpx"
	"patitas-a-casa/internal/platform/paging"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerIdentityHandler(svc))
		ar.Post("/register/individual", registerIndividualHandler(svc))
		ar.Post("/register/shelter", registerShelterHandler(svc))
		ar.Post("/login", loginHandler(svc))
	})

	r.Route("/me/profile", func(pr chi.Router) {
		pr.Get("/", getProfileHandler(svc))
		pr.Get("/choice", profileChoiceHandler(svc))
		pr.Post("/individual", createIndividualProfileHandler(svc))
		pr.Post("/shelter", createShelterProfileHandler(svc))
		pr.Patch("/individual", updateIndividualHandler(svc))
		pr.Patch("/shelter", updateShelterHandler(svc))
	})
	r.Delete("/me", deleteAccountHandler(svc))

	r.Get("/shelters", listSheltersHandler(svc))
	r.Get("/shelters/{shelterID}", getShelterHandler(svc))
	r.Get("/services", listServicesHandler(svc))
}

// -------------------------
// DTOs
// -------------------------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type identityResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	Token    string           `json:"token,omitempty"`
	Identity identityResponse `json:"identity"`
	Profile  profileResponse  `json:"profile"`
	Message  string           `json:"message,omitempty"`
}

type individualResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	Phone        string    `json:"phone"`
	RegisteredAt time.Time `json:"registered_at"`
}

type serviceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type shelterResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Phone           string            `json:"phone"`
	Address         AddressInput      `json:"address"`
	Directions      string            `json:"directions,omitempty"`
	Responsible     ResponsibleInput  `json:"responsible"`
	CurrentCapacity int               `json:"current_capacity"`
	MaxCapacity     int               `json:"max_capacity"`
	Services        []serviceResponse `json:"services"`
	Social          SocialInput       `json:"social"`
	Images          []string          `json:"images"`
	RegisteredAt    time.Time         `json:"registered_at"`
	Active          bool              `json:"active"`
}

type profileResponse struct {
	Kind       ProfileKind         `json:"kind"`
	Individual *individualResponse `json:"individual,omitempty"`
	Shelter    *shelterResponse    `json:"shelter,omitempty"`
}

type profileResultResponse struct {
	Profile       profileResponse `json:"profile"`
	AlreadyExists bool            `json:"already_exists"`
	Message       string          `json:"message,omitempty"`
}

type choiceResponse struct {
	Kind    ProfileKind   `json:"kind"`
	Options []ProfileKind `json:"options"`
}

// shelterPatch es el cuerpo de PATCH /me/profile/shelter; se decodifica
// sobre el estado actual, así que los campos ausentes no cambian.
type shelterPatch struct {
	ShelterInput
	Active       *bool `json:"active"`
	RemoveImages []int `json:"remove_images"`
}

// -------------------------
// Registro / login
// -------------------------

// @Summary Registrar identidad sin perfil
// @Tags auth
// @Accept json
// @Produce json
// @Param body body Credentials true "Credenciales"
// @Success 201 {object} authResponse
// @Failure 400 {object} apperr.Response
// @Router /auth/register [post]
func registerIdentityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in Credentials
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.RegisterIdentity(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAuthResponse(svc, res, "¡Registro exitoso! Bienvenido a Patitas a Casa."))
	}
}

// @Summary Registrar persona (identidad + perfil)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body RegisterIndividualInput true "Datos de registro"
// @Success 201 {object} authResponse
// @Failure 400 {object} apperr.Response
// @Router /auth/register/individual [post]
func registerIndividualHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in RegisterIndividualInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.RegisterIndividual(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAuthResponse(svc, res, "¡Registro exitoso! Bienvenido a Patitas a Casa."))
	}
}

// @Summary Registrar albergue (identidad + albergue + servicios)
// @Description JSON, o multipart con parte "data" (JSON) e imágenes image1..image4.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param body body RegisterShelterInput true "Datos de registro"
// @Success 201 {object} authResponse
// @Failure 400 {object} apperr.Response
// @Router /auth/register/shelter [post]
func registerShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := httpx.ReadForm(w, r, "images")
		if err != nil {
			writeError(w, err)
			return
		}

		var in RegisterShelterInput
		if err := form.Decode(&in); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.RegisterShelter(r.Context(), in, shelterImages(form))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAuthResponse(svc, res, "¡Registro exitoso! Tu albergue ha sido registrado en Patitas a Casa."))
	}
}

// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 401 {object} apperr.Response
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAuthResponse(svc, res, ""))
	}
}

// -------------------------
// Perfil
// -------------------------

// @Summary Mi perfil
// @Tags profile
// @Produce json
// @Success 200 {object} profileResponse
// @Failure 401 {object} apperr.Response
// @Router /me/profile [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		p, err := svc.GetProfile(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(svc, p))
	}
}

// @Summary Selector de tipo de perfil
// @Tags profile
// @Produce json
// @Success 200 {object} choiceResponse
// @Router /me/profile/choice [get]
func profileChoiceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		c, err := svc.ProfileChoice(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, choiceResponse{Kind: c.Kind, Options: c.Options})
	}
}

// @Summary Crear perfil de persona
// @Tags profile
// @Accept json
// @Produce json
// @Param body body IndividualInput true "Perfil"
// @Success 201 {object} profileResultResponse
// @Success 200 {object} profileResultResponse "ya existía un perfil de persona"
// @Failure 409 {object} apperr.Response
// @Router /me/profile/individual [post]
func createIndividualProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		var in IndividualInput
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.CreateIndividualProfile(r.Context(), uid, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeProfileResult(w, svc, res, "Perfil de persona creado exitosamente.")
	}
}

// @Summary Crear perfil de albergue
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Param body body ShelterInput true "Perfil"
// @Success 201 {object} profileResultResponse
// @Success 200 {object} profileResultResponse "ya existía un perfil de albergue"
// @Failure 409 {object} apperr.Response
// @Router /me/profile/shelter [post]
func createShelterProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		form, err := httpx.ReadForm(w, r, "images")
		if err != nil {
			writeError(w, err)
			return
		}
		var in ShelterInput
		if err := form.Decode(&in); err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.CreateShelterProfile(r.Context(), uid, in, shelterImages(form))
		if err != nil {
			writeError(w, err)
			return
		}
		writeProfileResult(w, svc, res, "Perfil de albergue creado exitosamente.")
	}
}

// @Summary Editar perfil de persona
// @Tags profile
// @Accept json
// @Produce json
// @Param body body IndividualInput true "Campos a cambiar"
// @Success 200 {object} individualResponse
// @Failure 403 {object} apperr.Response
// @Router /me/profile/individual [patch]
func updateIndividualHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		p, err := svc.GetProfile(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		// PATCH: se decodifica sobre el estado actual.
		var in IndividualInput
		if p.Individual != nil {
			in = IndividualInput{FirstName: p.Individual.FirstName, LastName: p.Individual.LastName, Phone: p.Individual.Phone}
		}
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		ind, err := svc.UpdateIndividual(r.Context(), uid, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIndividualResponse(ind))
	}
}

// @Summary Editar perfil de albergue
// @Description JSON o multipart ("data" + image1..image4). "active" oculta/muestra el albergue.
// @Tags profile
// @Accept json,mpfd
// @Produce json
// @Param body body shelterPatch true "Campos a cambiar"
// @Success 200 {object} shelterResponse
// @Failure 403 {object} apperr.Response
// @Router /me/profile/shelter [patch]
func updateShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		p, err := svc.GetProfile(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}

		form, err := httpx.ReadForm(w, r, "images")
		if err != nil {
			writeError(w, err)
			return
		}

		var patch shelterPatch
		if p.Shelter != nil {
			patch.ShelterInput = toShelterInput(*p.Shelter)
		}
		if err := form.Decode(&patch); err != nil {
			writeError(w, err)
			return
		}

		sh, err := svc.UpdateShelter(r.Context(), uid, ShelterUpdate{
			Shelter:      patch.ShelterInput,
			Active:       patch.Active,
			RemoveImages: patch.RemoveImages,
		}, shelterImages(form))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(svc, sh))
	}
}

// @Summary Borrar mi cuenta
// @Description Borra identidad y perfil; los perros registrados se borran y los avistamientos quedan sin reportante.
// @Tags profile
// @Success 204
// @Router /me [delete]
func deleteAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		if err := svc.DeleteAccount(r.Context(), uid); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// -------------------------
// Públicos
// -------------------------

// @Summary Albergues activos
// @Tags shelters
// @Produce json
// @Param page query int false "Página (1..n), 10 por página"
// @Success 200 {object} paging.Page[shelterResponse]
// @Router /shelters [get]
func listSheltersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := paging.PageParam(r)
		p, err := svc.ListActiveShelters(r.Context(), page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paging.Map(p, func(sh Shelter) shelterResponse {
			return toShelterResponse(svc, sh)
		}))
	}
}

// @Summary Detalle de albergue activo
// @Tags shelters
// @Produce json
// @Param shelterID path string true "Shelter ID"
// @Success 200 {object} shelterResponse
// @Failure 404 {object} apperr.Response
// @Router /shelters/{shelterID} [get]
func getShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh, err := svc.GetActiveShelter(r.Context(), chi.URLParam(r, "shelterID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toShelterResponse(svc, sh))
	}
}

// @Summary Catálogo de servicios
// @Tags shelters
// @Produce json
// @Success 200 {array} serviceResponse
// @Router /services [get]
func listServicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListServices(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toServiceResponses(items))
	}
}

// -------------------------
// Helpers
// -------------------------

func identityID(r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return "", false
	}
	return claims.UserID, true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json (%v): %w", err, apperr.ErrValidation)
	}
	return nil
}

func shelterImages(f httpx.Form) ShelterImages {
	var out ShelterImages
	for i := range out {
		out[i] = f.File(fmt.Sprintf("image%d", i+1))
	}
	return out
}

func writeProfileResult(w http.ResponseWriter, svc *Service, res ProfileResult, created string) {
	status := http.StatusCreated
	msg := created
	if res.AlreadyExists {
		status = http.StatusOK
		msg = res.Message
	}
	writeJSON(w, status, profileResultResponse{
		Profile:       toProfileResponse(svc, res.Profile),
		AlreadyExists: res.AlreadyExists,
		Message:       msg,
	})
}

func toAuthResponse(svc *Service, res AuthResult, msg string) authResponse {
	return authResponse{
		Token: res.Token,
		Identity: identityResponse{
			ID:        res.Identity.ID,
			Username:  res.Identity.Username,
			Email:     res.Identity.Email,
			CreatedAt: res.Identity.CreatedAt,
		},
		Profile: toProfileResponse(svc, res.Profile),
		Message: msg,
	}
}

func toProfileResponse(svc *Service, p Profile) profileResponse {
	out := profileResponse{Kind: p.Kind}
	if out.Kind == "" {
		out.Kind = KindNone
	}
	if p.Individual != nil {
		ir := toIndividualResponse(*p.Individual)
		out.Individual = &ir
	}
	if p.Shelter != nil {
		sr := toShelterResponse(svc, *p.Shelter)
		out.Shelter = &sr
	}
	return out
}

func toIndividualResponse(i Individual) individualResponse {
	return individualResponse{
		ID:           i.ID,
		FirstName:    i.FirstName,
		LastName:     i.LastName,
		DisplayName:  i.DisplayName(),
		Phone:        i.Phone,
		RegisteredAt: i.RegisteredAt,
	}
}

func toShelterInput(sh Shelter) ShelterInput {
	return ShelterInput{
		Name:  sh.Name,
		Phone: sh.Phone,
		Address: AddressInput{
			State:          sh.Address.State,
			Municipality:   sh.Address.Municipality,
			PostalCode:     sh.Address.PostalCode,
			Street:         sh.Address.Street,
			ExteriorNumber: sh.Address.ExteriorNumber,
		},
		Directions: sh.Directions,
		Responsible: ResponsibleInput{
			FirstName: sh.Responsible.FirstName,
			LastName:  sh.Responsible.LastName,
			Email:     sh.Responsible.Email,
		},
		CurrentCapacity: sh.CurrentCapacity,
		MaxCapacity:     sh.MaxCapacity,
		ServiceIDs:      sh.ServiceIDs(),
		Social: SocialInput{
			Facebook:  sh.Social.Facebook,
			Instagram: sh.Social.Instagram,
			Twitter:   sh.Social.Twitter,
			Website:   sh.Social.Website,
		},
	}
}

func toShelterResponse(svc *Service, sh Shelter) shelterResponse {
	in := toShelterInput(sh)

	images := make([]string, 0, MaxShelterImages)
	for _, rel := range sh.Images {
		if rel != "" {
			images = append(images, svc.ImageURL(rel))
		}
	}

	return shelterResponse{
		ID:              sh.ID,
		Name:            sh.Name,
		Phone:           sh.Phone,
		Address:         in.Address,
		Directions:      sh.Directions,
		Responsible:     in.Responsible,
		CurrentCapacity: sh.CurrentCapacity,
		MaxCapacity:     sh.MaxCapacity,
		Services:        toServiceResponses(sh.Services),
		Social:          in.Social,
		Images:          images,
		RegisteredAt:    sh.RegisteredAt,
		Active:          sh.Active,
	}
}

func toServiceResponses(items []ShelterService) []serviceResponse {
	out := make([]serviceResponse, 0, len(items))
	for _, sv := range items {
		out = append(out, serviceResponse{ID: sv.ID, Name: sv.Name, Description: sv.Description})
	}
	return out
}

func writeError(w http.ResponseWriter, err error) {
	status, body := apperr.Status(err)
	writeJSON(w, status, body)
}

// writeJSON está duplicado en cada módulo de dominio (accounts/sightings/lostdogs),
// igual que el resto de helpers de respuesta.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
