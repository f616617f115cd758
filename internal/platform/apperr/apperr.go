package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Tipos de error de la aplicación. Los servicios envuelven estos sentinels
// (fmt.Errorf("...: %w", ErrX)) y los handlers los traducen a HTTP.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrProfileRequired = errors.New("profile required")
	ErrConflict        = errors.New("conflict")
)

// ValidationError junta mensajes por campo. Siempre es ErrValidation para errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Field crea un ValidationError de un solo campo.
func Field(name, msg string) *ValidationError {
	v := NewValidation()
	v.Add(name, msg)
	return v
}

// Add registra el primer mensaje de un campo; los siguientes se ignoran.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string]string{}
	}
	if _, ok := v.Fields[field]; ok {
		return
	}
	v.Fields[field] = msg
}

func (v *ValidationError) Has(field string) bool {
	_, ok := v.Fields[field]
	return ok
}

func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil devuelve nil si no hay campos, para poder hacer `return v.OrNil()`.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProfileRequiredError indica a dónde mandar al cliente para completar su perfil.
type ProfileRequiredError struct {
	Message  string
	Redirect string
}

func (e *ProfileRequiredError) Error() string {
	return "profile required: " + e.Message
}

func (e *ProfileRequiredError) Is(target error) bool {
	return target == ErrProfileRequired
}

// ForbiddenError es un rechazo por rol o por dueño, con la ruta segura a la que volver.
type ForbiddenError struct {
	Message  string
	Redirect string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Message
}

func (e *ForbiddenError) Is(target error) bool {
	return target == ErrForbidden
}

// Response es el cuerpo JSON de error que devuelven todos los handlers.
type Response struct {
	Error    string            `json:"error"`
	Message  string            `json:"message,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// Status traduce un error a código HTTP + cuerpo.
func Status(err error) (int, Response) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, Response{
			Error:   "validation_error",
			Message: "Revisa los campos marcados.",
			Fields:  ve.Fields,
		}
	}

	var pr *ProfileRequiredError
	if errors.As(err, &pr) {
		return http.StatusForbidden, Response{
			Error:    "profile_required",
			Message:  pr.Message,
			Redirect: pr.Redirect,
		}
	}

	var fe *ForbiddenError
	if errors.As(err, &fe) {
		return http.StatusForbidden, Response{
			Error:    "forbidden",
			Message:  fe.Message,
			Redirect: fe.Redirect,
		}
	}

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, Response{Error: "validation_error", Message: err.Error()}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, Response{Error: "unauthorized", Message: wrappedMessage(err, ErrUnauthorized)}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, Response{Error: "forbidden", Message: "No tienes permiso para realizar esta acción."}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, Response{Error: "not_found"}
	case errors.Is(err, ErrProfileRequired):
		return http.StatusForbidden, Response{Error: "profile_required", Redirect: "/"}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, Response{Error: "conflict", Message: wrappedMessage(err, ErrConflict)}
	default:
		return http.StatusInternalServerError, Response{Error: "internal_error"}
	}
}

// wrappedMessage quita el sufijo ": <kind>" para devolver solo el mensaje útil.
// Un sentinel sin envolver no trae mensaje.
func wrappedMessage(err, kind error) string {
	if err == kind {
		return ""
	}
	return strings.TrimSuffix(err.Error(), ": "+kind.Error())
}
