package lostdogs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"patitas-a-casa/internal/middleware"
	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/httpx"
	"patitas-a-casa/internal/platform/paging"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/lost-dogs", func(lr chi.Router) {
		lr.Get("/", searchHandler(svc))
		lr.Post("/", createHandler(svc))

		lr.Route("/{dogID}", func(dr chi.Router) {
			dr.Get("/", getHandler(svc))
			dr.Patch("/", updateHandler(svc))
			dr.Delete("/", deleteHandler(svc))
			dr.Post("/found", markFoundHandler(svc))

			dr.Post("/photos", addPhotosHandler(svc))
			dr.Delete("/photos/{photoID}", removePhotoHandler(svc))
			dr.Post("/photos/{photoID}/primary", setPrimaryHandler(svc))
		})
	})

	r.Get("/me/lost-dogs", listMineHandler(svc))
}

// -------------------------
// DTOs
// -------------------------

// registrationRequest es el cuerpo de alta; en multipart va en la parte "data".
type registrationRequest struct {
	RegistrationInput
	// PrimaryPhoto es el índice (0..n-1) de la foto del lote a marcar como principal.
	PrimaryPhoto *int `json:"primary_photo,omitempty"`
}

type registrationPatch struct {
	RegistrationInput
	PrimaryPhoto *int     `json:"primary_photo,omitempty"`
	RemovePhotos []string `json:"remove_photos,omitempty"`
}

type labeled struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type locationResponse struct {
	State          string `json:"state"`
	Municipality   string `json:"municipality"`
	PostalCode     string `json:"postal_code"`
	Neighborhood   string `json:"neighborhood"`
	Street         string `json:"street"`
	ExteriorNumber string `json:"exterior_number"`
}

type photoResponse struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	IsPrimary  bool      `json:"is_primary"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// summaryResponse es la forma de los listados.
type summaryResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Breed           string    `json:"breed"`
	Sex             labeled   `json:"sex"`
	Size            labeled   `json:"size"`
	FormattedAge    string    `json:"formatted_age"`
	State           string    `json:"state"`
	Municipality    string    `json:"municipality"`
	LostAt          time.Time `json:"lost_at"`
	TimeSinceLost   string    `json:"time_since_lost"`
	RegisteredAt    time.Time `json:"registered_at"`
	Status          labeled   `json:"status"`
	PrimaryPhotoURL *string   `json:"primary_photo_url"`
}

type detailResponse struct {
	summaryResponse
	AgeYears            int              `json:"age_years"`
	AgeMonths           int              `json:"age_months"`
	Sterilized          bool             `json:"sterilized"`
	Colors              []labeled        `json:"colors"`
	ColorsRaw           string           `json:"colors_raw"`
	CoatPattern         labeled          `json:"coat_pattern"`
	DistinguishingMarks string           `json:"distinguishing_marks"`
	HasCollar           bool             `json:"has_collar"`
	CollarColor         string           `json:"collar_color"`
	Identifier          string           `json:"identifier"`
	Location            locationResponse `json:"location"`
	UpdatedAt           time.Time        `json:"updated_at"`
	OwnerName           string           `json:"owner_name"`
	IsOwner             bool             `json:"is_owner"`
	Photos              []photoResponse  `json:"photos"`
}

type resultResponse struct {
	Registration detailResponse `json:"registration"`
	Message      string         `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// -------------------------
// Handlers
// -------------------------

// @Summary Buscar perros perdidos
// @Description Solo registros activos, más recientes primero, 12 por página.
// @Tags lost-dogs
// @Produce json
// @Param state query string false "Entidad federativa (contiene)"
// @Param municipality query string false "Municipio/alcaldía (contiene)"
// @Param breed query string false "Raza (contiene)"
// @Param size query string false "Tamaño exacto" Enums(P, M, G)
// @Param page query int false "Página (1..n)"
// @Success 200 {object} paging.Page[summaryResponse]
// @Router /lost-dogs [get]
func searchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := paging.PageParam(r)

		p, err := svc.Search(r.Context(), Filter{
			State:        q.Get("state"),
			Municipality: q.Get("municipality"),
			Breed:        q.Get("breed"),
			Size:         Size(strings.TrimSpace(q.Get("size"))),
		}, page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paging.Map(p, toSummaryResponse))
	}
}

// @Summary Registrar perro perdido
// @Description JSON, o multipart con parte "data" (JSON), archivos "photos" (máx. 4) y "primary_photo" (índice).
// @Tags lost-dogs
// @Accept json,mpfd
// @Produce json
// @Param body body registrationRequest true "Registro"
// @Success 201 {object} resultResponse
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /lost-dogs [post]
func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}

		form, err := httpx.ReadForm(w, r, "photos")
		if err != nil {
			writeError(w, err)
			return
		}
		var req registrationRequest
		if err := form.Decode(&req); err != nil {
			writeError(w, err)
			return
		}
		batch, err := photoBatch(form, req.PrimaryPhoto)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.Create(r.Context(), uid, req.RegistrationInput, batch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resultResponse{Registration: toDetailResponse(res.View), Message: res.Message})
	}
}

// @Summary Detalle de perro perdido
// @Tags lost-dogs
// @Produce json
// @Param dogID path string true "Registration ID"
// @Success 200 {object} detailResponse
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := identityID(r)
		v, err := svc.Get(r.Context(), uid, chi.URLParam(r, "dogID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(v))
	}
}

// @Summary Editar perro perdido (solo dueño)
// @Description Los campos omitidos conservan su valor. Acepta fotos nuevas y remove_photos.
// @Tags lost-dogs
// @Accept json,mpfd
// @Produce json
// @Param dogID path string true "Registration ID"
// @Param body body registrationPatch true "Campos a cambiar"
// @Success 200 {object} resultResponse
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID} [patch]
func updateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		id := chi.URLParam(r, "dogID")

		cur, err := svc.Get(r.Context(), uid, id)
		if err != nil {
			writeError(w, err)
			return
		}

		form, err := httpx.ReadForm(w, r, "photos")
		if err != nil {
			writeError(w, err)
			return
		}
		patch := registrationPatch{RegistrationInput: InputFrom(cur.Registration)}
		if err := form.Decode(&patch); err != nil {
			writeError(w, err)
			return
		}
		batch, err := photoBatch(form, patch.PrimaryPhoto)
		if err != nil {
			writeError(w, err)
			return
		}

		res, err := svc.Update(r.Context(), uid, id, patch.RegistrationInput, batch, patch.RemovePhotos)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resultResponse{Registration: toDetailResponse(res.View), Message: res.Message})
	}
}

// @Summary Eliminar perro perdido (solo dueño)
// @Tags lost-dogs
// @Produce json
// @Param dogID path string true "Registration ID"
// @Success 200 {object} messageResponse
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID} [delete]
func deleteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		msg, err := svc.Delete(r.Context(), uid, chi.URLParam(r, "dogID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg})
	}
}

// @Summary Marcar como encontrado (solo dueño)
// @Tags lost-dogs
// @Produce json
// @Param dogID path string true "Registration ID"
// @Success 200 {object} resultResponse
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID}/found [post]
func markFoundHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		res, err := svc.MarkFound(r.Context(), uid, chi.URLParam(r, "dogID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resultResponse{Registration: toDetailResponse(res.View), Message: res.Message})
	}
}

// @Summary Agregar fotos (solo dueño)
// @Tags lost-dogs
// @Accept mpfd
// @Produce json
// @Param dogID path string true "Registration ID"
// @Param photos formData file true "Fotos (máx. 4 en total)"
// @Param primary_photo formData int false "Índice de la foto principal"
// @Success 201 {object} detailResponse
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /lost-dogs/{dogID}/photos [post]
func addPhotosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		form, err := httpx.ReadForm(w, r, "photos")
		if err != nil {
			writeError(w, err)
			return
		}
		batch, err := photoBatch(form, nil)
		if err != nil {
			writeError(w, err)
			return
		}

		v, err := svc.AddPhotos(r.Context(), uid, chi.URLParam(r, "dogID"), batch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDetailResponse(v))
	}
}

// @Summary Quitar foto (solo dueño)
// @Tags lost-dogs
// @Produce json
// @Param dogID path string true "Registration ID"
// @Param photoID path string true "Photo ID"
// @Success 200 {object} detailResponse
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID}/photos/{photoID} [delete]
func removePhotoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		v, err := svc.RemovePhoto(r.Context(), uid, chi.URLParam(r, "dogID"), chi.URLParam(r, "photoID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(v))
	}
}

// @Summary Marcar foto principal (solo dueño)
// @Tags lost-dogs
// @Produce json
// @Param dogID path string true "Registration ID"
// @Param photoID path string true "Photo ID"
// @Success 200 {object} detailResponse
// @Failure 403 {object} apperr.Response
// @Failure 404 {object} apperr.Response
// @Router /lost-dogs/{dogID}/photos/{photoID}/primary [post]
func setPrimaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		v, err := svc.SetPrimaryPhoto(r.Context(), uid, chi.URLParam(r, "dogID"), chi.URLParam(r, "photoID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(v))
	}
}

// @Summary Mis perros perdidos
// @Description Todos los estados, más recientes primero. Sin perfil de persona: lista vacía.
// @Tags lost-dogs
// @Produce json
// @Success 200 {array} summaryResponse
// @Failure 401 {object} apperr.Response
// @Router /me/lost-dogs [get]
func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := identityID(r)
		if !ok {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		items, err := svc.ListMine(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]summaryResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toSummaryResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// -------------------------
// helpers
// -------------------------

func identityID(r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return "", false
	}
	id := strings.TrimSpace(claims.UserID)
	return id, id != ""
}

// photoBatch toma los archivos "photos"; el índice principal puede venir en el
// JSON o como campo de texto del multipart.
func photoBatch(f httpx.Form, primary *int) (PhotoBatch, error) {
	b := PhotoBatch{Files: f.Files["photos"], Primary: primary}
	if raw := strings.TrimSpace(f.Values["primary_photo"]); raw != "" && primary == nil {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return PhotoBatch{}, apperr.Field("primary_photo", msgBadPrimary)
		}
		b.Primary = &n
	}
	return b, nil
}

func toSummaryResponse(v View) summaryResponse {
	var primary *string
	if v.PrimaryPhotoURL != "" {
		u := v.PrimaryPhotoURL
		primary = &u
	}
	return summaryResponse{
		ID:              v.ID,
		Name:            v.Name,
		Breed:           v.Breed,
		Sex:             labeled{Value: string(v.Sex), Label: v.Sex.Label()},
		Size:            labeled{Value: string(v.Size), Label: v.Size.Label()},
		FormattedAge:    v.FormattedAge,
		State:           v.Location.State,
		Municipality:    v.Location.Municipality,
		LostAt:          v.LostAt,
		TimeSinceLost:   v.TimeSinceLost,
		RegisteredAt:    v.RegisteredAt,
		Status:          labeled{Value: string(v.Status), Label: v.Status.Label()},
		PrimaryPhotoURL: primary,
	}
}

func toDetailResponse(v View) detailResponse {
	colors := make([]labeled, 0, len(v.Colors))
	for _, c := range v.Colors {
		colors = append(colors, labeled{Value: string(c), Label: c.Label()})
	}
	photos := make([]photoResponse, 0, len(v.Gallery))
	for _, p := range v.Gallery {
		photos = append(photos, photoResponse{ID: p.ID, URL: p.URL, IsPrimary: p.IsPrimary, UploadedAt: p.UploadedAt})
	}

	return detailResponse{
		summaryResponse:     toSummaryResponse(v),
		AgeYears:            v.AgeYears,
		AgeMonths:           v.AgeMonths,
		Sterilized:          v.Sterilized,
		Colors:              colors,
		ColorsRaw:           JoinColors(v.Colors),
		CoatPattern:         labeled{Value: string(v.CoatPattern), Label: v.CoatPattern.Label()},
		DistinguishingMarks: v.DistinguishingMarks,
		HasCollar:           v.HasCollar,
		CollarColor:         v.CollarColor,
		Identifier:          v.Identifier,
		Location: locationResponse{
			State:          v.Location.State,
			Municipality:   v.Location.Municipality,
			PostalCode:     v.Location.PostalCode,
			Neighborhood:   v.Location.Neighborhood,
			Street:         v.Location.Street,
			ExteriorNumber: v.Location.ExteriorNumber,
		},
		UpdatedAt: v.UpdatedAt,
		OwnerName: v.OwnerName,
		IsOwner:   v.IsOwner,
		Photos:    photos,
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := apperr.Status(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
