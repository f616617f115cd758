// Package validation envuelve go-playground/validator para devolver errores
// por campo (apperr.ValidationError) con los nombres JSON y mensajes en español.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"patitas-a-casa/internal/platform/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())

		// Reportar errores con el nombre del tag json (lo que ve el cliente).
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
	})
	return v
}

// Struct valida los tags `validate` de s y agrega los errores a out.
// Devuelve out para encadenar reglas propias de cada formulario.
func Struct(s any, out *apperr.ValidationError) *apperr.ValidationError {
	if out == nil {
		out = apperr.NewValidation()
	}

	err := instance().Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Add("__all__", err.Error())
		return out
	}

	for _, fe := range verrs {
		out.Add(fieldName(fe), message(fe))
	}
	return out
}

// IsPhone: solo dígitos y al menos 10 (números de México).
func IsPhone(s string) bool {
	if len(s) < 10 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// PhoneMessage devuelve el mensaje según cuál regla falla.
func PhoneMessage(s string) string {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return "El número de teléfono solo debe contener dígitos."
		}
	}
	return "El número de teléfono debe tener al menos 10 dígitos."
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	// Quitar el nombre del struct raíz: "createRequest.address.state" -> "address.state"
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "email":
		return "Introduce una dirección de correo electrónico válida."
	case "url":
		return "Introduce una URL válida."
	case "max":
		return fmt.Sprintf("Asegúrate de que este valor tenga como máximo %s caracteres.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Asegúrate de que este valor tenga al menos %s caracteres.", fe.Param())
		}
		return fmt.Sprintf("Asegúrate de que este valor sea mayor o igual a %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Asegúrate de que este valor sea mayor o igual a %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Asegúrate de que este valor sea menor o igual a %s.", fe.Param())
	case "len":
		return fmt.Sprintf("Este valor debe tener %s caracteres.", fe.Param())
	case "numeric":
		return "Este valor solo debe contener dígitos."
	case "oneof":
		return "Escoja una opción válida."
	case "phone":
		s, _ := fe.Value().(string)
		return PhoneMessage(s)
	case "eqfield":
		return "Las contraseñas no coinciden."
	default:
		return "Valor inválido."
	}
}
