package httpx

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"patitas-a-casa/internal/platform/apperr"
)

type payload struct {
	Name  string `json:"name"`
	Breed string `json:"breed"`
}

func TestReadForm_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Firulais"}`))
	req.Header.Set("Content-Type", "application/json")

	f, err := ReadForm(httptest.NewRecorder(), req, "photos")
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}

	// Decode sobre valores existentes: solo pisa lo presente.
	p := payload{Name: "x", Breed: "Mestizo"}
	if err := f.Decode(&p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Name != "Firulais" || p.Breed != "Mestizo" {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestReadForm_MultipartWithFiles(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("data", `{"name":"Luna"}`)
	_ = mw.WriteField("primary_photo", "1")
	for _, name := range []string{"a.jpg", "b.png"} {
		fw, _ := mw.CreateFormFile("photos", name)
		_, _ = fw.Write([]byte("img"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	f, err := ReadForm(httptest.NewRecorder(), req, "photos")
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}

	var p payload
	if err := f.Decode(&p); err != nil || p.Name != "Luna" {
		t.Fatalf("Decode: %v %+v", err, p)
	}
	if len(f.Files["photos"]) != 2 || f.Files["photos"][1].Filename != "b.png" {
		t.Fatalf("unexpected files %+v", f.Files)
	}
	if f.Values["primary_photo"] != "1" {
		t.Fatalf("expected primary_photo value")
	}
	if f.File("missing") != nil {
		t.Fatalf("expected nil for missing file")
	}
}

func TestDecode_UnknownFieldIsValidationError(t *testing.T) {
	f := Form{Data: []byte(`{"nope":1}`)}
	var p payload
	if err := f.Decode(&p); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReadForm_OversizedBodyIsPhotosFieldError(t *testing.T) {
	prev := maxBody
	maxBody = 1 << 10
	t.Cleanup(func() { maxBody = prev })

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("data", `{"name":"Luna"}`)
	fw, _ := mw.CreateFormFile("photos", "big.jpg")
	_, _ = fw.Write(bytes.Repeat([]byte("x"), 4<<10))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err := ReadForm(httptest.NewRecorder(), req, "photos")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected field validation error, got %v", err)
	}
	if ve.Fields["photos"] != msgBodyTooLarge {
		t.Fatalf("unexpected fields %#v", ve.Fields)
	}
}

func TestReadForm_BrokenMultipartIsValidationError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")

	_, err := ReadForm(httptest.NewRecorder(), req, "photos")
	var ve *apperr.ValidationError
	if errors.As(err, &ve) || !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected plain validation error, got %v", err)
	}
}
