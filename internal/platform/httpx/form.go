// Package httpx lee cuerpos JSON o multipart (parte "data" + archivos).
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/media"
)

const (
	// MaxBodyBytes cubre 4 fotos de 10MB más el JSON.
	MaxBodyBytes = 48 << 20

	multipartMemory = 16 << 20

	msgBodyTooLarge = "Los archivos exceden el tamaño máximo permitido (10MB por imagen)."
)

// maxBody es MaxBodyBytes; los tests lo bajan.
var maxBody int64 = MaxBodyBytes

// Form es el cuerpo de un request de escritura ya leído.
type Form struct {
	Data   []byte
	Files  map[string][]media.Upload
	Values map[string]string
}

// ReadForm acepta application/json o multipart/form-data. En multipart el
// JSON va en el campo "data"; los demás campos de texto quedan en Values.
// Un cuerpo que pasa el límite se reporta como error del campo fileField.
func ReadForm(w http.ResponseWriter, r *http.Request, fileField string) (Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return Form{}, bodyError(err, fileField, "read body")
		}
		return Form{Data: bytes.TrimSpace(b), Files: map[string][]media.Upload{}, Values: map[string]string{}}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return Form{}, bodyError(err, fileField, "invalid multipart body")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f := Form{Files: map[string][]media.Upload{}, Values: map[string]string{}}
	for k, vs := range r.MultipartForm.Value {
		if len(vs) == 0 {
			continue
		}
		if k == "data" {
			f.Data = []byte(strings.TrimSpace(vs[0]))
			continue
		}
		f.Values[k] = vs[0]
	}

	for k, hs := range r.MultipartForm.File {
		for _, h := range hs {
			u, err := readUpload(h)
			if err != nil {
				return Form{}, err
			}
			f.Files[k] = append(f.Files[k], u)
		}
	}
	return f, nil
}

func bodyError(err error, fileField, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Field(fileField, msgBodyTooLarge)
	}
	return fmt.Errorf("%s: %w", msg, apperr.ErrValidation)
}

// readUpload no carga más de MaxImageBytes+1: un archivo más grande se
// rechaza después por tamaño usando h.Size.
func readUpload(h *multipart.FileHeader) (media.Upload, error) {
	src, err := h.Open()
	if err != nil {
		return media.Upload{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	b, err := io.ReadAll(io.LimitReader(src, media.MaxImageBytes+1))
	if err != nil {
		return media.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	return media.Upload{Filename: h.Filename, Size: h.Size, Content: b}, nil
}

// Decode aplica el JSON sobre dst. Cuerpo vacío no es error (deja dst igual),
// lo que permite PATCH parcial decodificando sobre el estado actual.
func (f Form) Decode(dst any) error {
	if len(f.Data) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(f.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json (%v): %w", err, apperr.ErrValidation)
	}
	return nil
}

// DecodeLoose es Decode ignorando campos desconocidos.
func (f Form) DecodeLoose(dst any) error {
	if len(f.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Data, dst); err != nil {
		return fmt.Errorf("invalid json (%v): %w", err, apperr.ErrValidation)
	}
	return nil
}

// File devuelve el primer archivo del campo, o nil.
func (f Form) File(name string) *media.Upload {
	fs := f.Files[name]
	if len(fs) == 0 {
		return nil
	}
	u := fs[0]
	return &u
}
