package sightings

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"patitas-a-casa/internal/middleware"
	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/httpx"
	"patitas-a-casa/internal/platform/media"
	"patitas-a-casa/internal/platform/paging"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/sightings", func(sr chi.Router) {
		sr.Get("/", listHandler(svc))
		sr.Get("/recent", recentHandler(svc))
		sr.Get("/report", routeHandler(svc))

		// Auto: la variante la decide la identidad.
		sr.Post("/", submitHandler(svc))
		sr.Post("/anonymous", createAnonymousHandler(svc))
		sr.Post("/individual", createIndividualHandler(svc))
		sr.Post("/shelter", createShelterHandler(svc))

		sr.Get("/{sightingID}", getHandler(svc))
	})
}

type locationResponse struct {
	State          string `json:"state"`
	Municipality   string `json:"municipality"`
	PostalCode     string `json:"postal_code"`
	Neighborhood   string `json:"neighborhood"`
	Street         string `json:"street"`
	ExteriorNumber string `json:"exterior_number"`
}

type reportResponse struct {
	ID                  string           `json:"id"`
	SightedAt           time.Time        `json:"sighted_at"`
	ReportedAt          time.Time        `json:"reported_at"`
	Location            locationResponse `json:"location"`
	PhotoURL            *string          `json:"photo_url"`
	Breed               string           `json:"breed"`
	Sex                 Sex              `json:"sex"`
	SexLabel            string           `json:"sex_label"`
	Size                Size             `json:"size"`
	SizeLabel           string           `json:"size_label"`
	DominantColor       string           `json:"dominant_color"`
	DistinguishingMarks string           `json:"distinguishing_marks"`
	Identifier          string           `json:"identifier"`
	Condition           Condition        `json:"condition"`
	ConditionLabel      string           `json:"condition_label"`
	Description         string           `json:"description"`
	IsAnonymous         bool             `json:"is_anonymous"`
	ReporterKind        ReporterKind     `json:"reporter_kind"`
	ReporterLabel       string           `json:"reporter_label"`
	ReporterName        string           `json:"reporter_name"`
	CanShelter          bool             `json:"can_shelter"`
}

type createdResponse struct {
	Report  reportResponse `json:"report"`
	Message string         `json:"message"`
}

type routeResponse struct {
	Variant  ReporterKind `json:"variant"`
	Endpoint string       `json:"endpoint"`
}

// @Summary Variante de reporte para el caller
// @Description Anónimo si no hay sesión; persona o albergue según el perfil. Sin perfil: 403 profile_required.
// @Tags sightings
// @Produce json
// @Success 200 {object} routeResponse
// @Failure 403 {object} apperr.Response
// @Router /sightings/report [get]
func routeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := svc.Route(r.Context(), identityID(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, routeResponse{Variant: kind, Endpoint: "/sightings/" + string(kind)})
	}
}

// @Summary Reportar avistamiento (variante automática)
// @Tags sightings
// @Accept json,mpfd
// @Produce json
// @Param body body ReportInput true "Reporte"
// @Success 201 {object} createdResponse
// @Failure 400 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /sightings [post]
func submitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, photo, err := readReport(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := svc.Submit(r.Context(), identityID(r), in, photo)
		writeCreated(w, v, err)
	}
}

// @Summary Reportar avistamiento anónimo
// @Tags sightings
// @Accept json,mpfd
// @Produce json
// @Param body body ReportInput true "Reporte"
// @Success 201 {object} createdResponse
// @Failure 400 {object} apperr.Response
// @Router /sightings/anonymous [post]
func createAnonymousHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, photo, err := readReport(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := svc.CreateAnonymous(r.Context(), in, photo)
		writeCreated(w, v, err)
	}
}

// @Summary Reportar avistamiento como persona
// @Tags sightings
// @Accept json,mpfd
// @Produce json
// @Param body body ReportInput true "Reporte"
// @Success 201 {object} createdResponse
// @Failure 401 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /sightings/individual [post]
func createIndividualHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := identityID(r)
		if uid == "" {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		in, photo, err := readReport(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := svc.CreateByIndividual(r.Context(), uid, in, photo)
		writeCreated(w, v, err)
	}
}

// @Summary Reportar avistamiento como albergue
// @Tags sightings
// @Accept json,mpfd
// @Produce json
// @Param body body ReportInput true "Reporte"
// @Success 201 {object} createdResponse
// @Failure 401 {object} apperr.Response
// @Failure 403 {object} apperr.Response
// @Router /sightings/shelter [post]
func createShelterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := identityID(r)
		if uid == "" {
			writeError(w, apperr.ErrUnauthorized)
			return
		}
		in, photo, err := readReport(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := svc.CreateByShelter(r.Context(), uid, in, photo)
		writeCreated(w, v, err)
	}
}

// @Summary Listar avistamientos
// @Tags sightings
// @Produce json
// @Param page query int false "Página (1..n), 10 por página"
// @Success 200 {object} paging.Page[reportResponse]
// @Router /sightings [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := paging.PageParam(r)
		p, err := svc.List(r.Context(), page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paging.Map(p, toReportResponse))
	}
}

// @Summary Avistamientos recientes
// @Tags sightings
// @Produce json
// @Param limit query int false "Máximo 10"
// @Success 200 {array} reportResponse
// @Router /sightings/recent [get]
func recentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.Recent(r.Context(), n)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]reportResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toReportResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Detalle de avistamiento
// @Tags sightings
// @Produce json
// @Param sightingID path string true "Sighting ID"
// @Success 200 {object} reportResponse
// @Failure 404 {object} apperr.Response
// @Router /sightings/{sightingID} [get]
func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.Get(r.Context(), chi.URLParam(r, "sightingID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toReportResponse(v))
	}
}

// readReport ignora campos extra (p.ej. un "reporter" enviado por el cliente).
func readReport(w http.ResponseWriter, r *http.Request) (ReportInput, *media.Upload, error) {
	form, err := httpx.ReadForm(w, r, "photo")
	if err != nil {
		return ReportInput{}, nil, err
	}
	var in ReportInput
	if err := form.DecodeLoose(&in); err != nil {
		return ReportInput{}, nil, err
	}
	return in, form.File("photo"), nil
}

func identityID(r *http.Request) string {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		return ""
	}
	return strings.TrimSpace(claims.UserID)
}

func writeCreated(w http.ResponseWriter, v View, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	msg := "¡Reporte enviado con éxito!"
	switch v.Reporter.Kind {
	case ReporterIndividual:
		msg = "¡Gracias por reportar este avistamiento! Tu ayuda es invaluable para reunir a las mascotas con sus familias."
	case ReporterShelter:
		msg = "¡Gracias por reportar este avistamiento! Su colaboración es fundamental para nuestra misión."
	}
	writeJSON(w, http.StatusCreated, createdResponse{Report: toReportResponse(v), Message: msg})
}

func toReportResponse(v View) reportResponse {
	var photo *string
	if v.PhotoURL != "" {
		u := v.PhotoURL
		photo = &u
	}
	return reportResponse{
		ID:         v.ID,
		SightedAt:  v.SightedAt,
		ReportedAt: v.ReportedAt,
		Location: locationResponse{
			State:          v.Location.State,
			Municipality:   v.Location.Municipality,
			PostalCode:     v.Location.PostalCode,
			Neighborhood:   v.Location.Neighborhood,
			Street:         v.Location.Street,
			ExteriorNumber: v.Location.ExteriorNumber,
		},
		PhotoURL:            photo,
		Breed:               v.Breed,
		Sex:                 v.Sex,
		SexLabel:            v.Sex.Label(),
		Size:                v.Size,
		SizeLabel:           v.Size.Label(),
		DominantColor:       v.DominantColor,
		DistinguishingMarks: v.DistinguishingMarks,
		Identifier:          v.Identifier,
		Condition:           v.Condition,
		ConditionLabel:      v.Condition.Label(),
		Description:         v.Description,
		IsAnonymous:         v.Reporter.IsAnonymous(),
		ReporterKind:        v.Reporter.Kind,
		ReporterLabel:       v.Label,
		ReporterName:        v.ReporterName,
		CanShelter:          v.CanShelter,
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
