package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"patitas-a-casa/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	ts := newServer(t)

	for _, path := range []string{"/health", "/metrics"} {
		st, body := doReq(t, ts.URL, "GET", path, "", nil)
		if st != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d body=%s", path, st, string(body))
		}
	}
}

func TestHTTP_SightingVariantFollowsIdentity(t *testing.T) {
	ts := newServer(t)

	// 1) Anónimo: el "reporter" del cliente se ignora.
	{
		payload := sightingPayload()
		payload["reporter"] = "shelter"
		payload["can_shelter"] = true

		st, body := doReq(t, ts.URL, "POST", "/sightings", "", payload)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 anonymous sighting, got %d body=%s", st, string(body))
		}
		rep := decodeReport(t, body)
		if rep.ReporterKind != "anonymous" || !rep.IsAnonymous || rep.CanShelter {
			t.Fatalf("unexpected anonymous report: %+v", rep)
		}
	}

	// 2) Identidad sin perfil: no se degrada a anónimo.
	{
		token, _ := registerIdentity(t, ts.URL, "sinperfil")
		st, body := doReq(t, ts.URL, "GET", "/sightings/report", token, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for identity without profile, got %d body=%s", st, string(body))
		}
		var resp struct {
			Error    string `json:"error"`
			Redirect string `json:"redirect"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Error != "profile_required" || resp.Redirect != "/" {
			t.Fatalf("unexpected error body=%s", string(body))
		}
	}

	// 3) Persona: procedencia del servidor, can_shelter respetado.
	{
		token, _ := registerIndividual(t, ts.URL, "ana")
		payload := sightingPayload()
		payload["can_shelter"] = true

		st, body := doReq(t, ts.URL, "POST", "/sightings", token, payload)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 individual sighting, got %d body=%s", st, string(body))
		}
		rep := decodeReport(t, body)
		if rep.ReporterKind != "individual" || rep.ReporterName != "Ana López" || !rep.CanShelter {
			t.Fatalf("unexpected individual report: %+v", rep)
		}
	}

	// 4) Albergue: no puede usar la variante de persona.
	{
		token := registerShelter(t, ts.URL, "huellitas")

		st, body := doReq(t, ts.URL, "POST", "/sightings/individual", token, sightingPayload())
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 shelter on individual variant, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "POST", "/sightings", token, sightingPayload())
		if st != http.StatusCreated {
			t.Fatalf("expected 201 shelter sighting, got %d body=%s", st, string(body))
		}
		if rep := decodeReport(t, body); rep.ReporterKind != "shelter" || rep.ReporterName != "Huellitas" {
			t.Fatalf("unexpected shelter report: %+v", rep)
		}
	}

	// 5) Listado: más recientes primero.
	{
		st, body := doReq(t, ts.URL, "GET", "/sightings", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		var page struct {
			Items []reportResp `json:"items"`
			Total int          `json:"total"`
		}
		_ = json.Unmarshal(body, &page)
		if page.Total != 3 || len(page.Items) != 3 {
			t.Fatalf("expected 3 sightings, got %d body=%s", page.Total, string(body))
		}
	}
}

func TestHTTP_LostDogLifecycle(t *testing.T) {
	ts := newServer(t)

	owner, _ := registerIndividual(t, ts.URL, "ana")
	other, _ := registerIndividual(t, ts.URL, "luis")
	shelter := registerShelter(t, ts.URL, "huellitas")

	// Sin sesión => 401; albergue => 403.
	if st, _ := doReq(t, ts.URL, "POST", "/lost-dogs", "", lostDogPayload()); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/lost-dogs", shelter, lostDogPayload()); st != http.StatusForbidden {
		t.Fatalf("expected 403 for shelter, got %d", st)
	}

	dogID := createLostDog(t, ts.URL, owner)

	// Visible en la búsqueda.
	if total := searchTotal(t, ts.URL, "?state=jal&size=G"); total != 1 {
		t.Fatalf("expected 1 search result, got %d", total)
	}

	// Otra persona no puede editar ni marcar.
	{
		st, body := doReq(t, ts.URL, "PATCH", "/lost-dogs/"+dogID, other, map[string]any{"name": "Otro"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 patch by non-owner, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "POST", "/lost-dogs/"+dogID+"/found", other, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 found by non-owner, got %d", st)
		}
	}

	// El dueño edita parcial: los demás campos se conservan.
	{
		st, body := doReq(t, ts.URL, "PATCH", "/lost-dogs/"+dogID, owner, map[string]any{"name": "Firu"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch by owner, got %d body=%s", st, string(body))
		}
		reg := decodeRegistration(t, body)
		if reg.Name != "Firu" || reg.Breed != "Labrador" {
			t.Fatalf("unexpected patched registration: %+v", reg)
		}
	}

	// Encontrado: sale de la búsqueda pero el detalle sigue.
	{
		st, body := doReq(t, ts.URL, "POST", "/lost-dogs/"+dogID+"/found", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 found, got %d body=%s", st, string(body))
		}
		if total := searchTotal(t, ts.URL, ""); total != 0 {
			t.Fatalf("found registration still searchable, total=%d", total)
		}

		st, body = doReq(t, ts.URL, "GET", "/lost-dogs/"+dogID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 detail, got %d", st)
		}
		var reg regResp
		_ = json.Unmarshal(body, &reg)
		if reg.Status.Value != "found" || reg.IsOwner {
			t.Fatalf("unexpected detail: %+v", reg)
		}
	}

	// Mis registros.
	{
		st, body := doReq(t, ts.URL, "GET", "/me/lost-dogs", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 mine, got %d", st)
		}
		var mine []regResp
		_ = json.Unmarshal(body, &mine)
		if len(mine) != 1 || mine[0].ID != dogID {
			t.Fatalf("unexpected mine body=%s", string(body))
		}
	}
}

func TestHTTP_LostDogMultipartPhotos(t *testing.T) {
	ts := newServer(t)
	owner, _ := registerIndividual(t, ts.URL, "ana")

	data, _ := json.Marshal(lostDogPayload())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("data", string(data))
	_ = mw.WriteField("primary_photo", "1")
	for _, name := range []string{"a.jpg", "b.png"} {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write([]byte("img"))
	}
	_ = mw.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/lost-dogs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+owner)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 multipart create, got %d body=%s", res.StatusCode, string(body))
	}

	reg := decodeRegistration(t, body)
	if len(reg.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(reg.Photos))
	}
	primaries := 0
	for _, p := range reg.Photos {
		if p.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 || !reg.Photos[0].IsPrimary {
		t.Fatalf("expected exactly one primary listed first: %+v", reg.Photos)
	}
	if reg.PrimaryPhotoURL == nil || *reg.PrimaryPhotoURL != reg.Photos[0].URL {
		t.Fatalf("primary url mismatch: %+v", reg)
	}

	// Quitar la principal promueve a la otra.
	{
		st, body := doReq(t, ts.URL, "DELETE", "/lost-dogs/"+reg.ID+"/photos/"+reg.Photos[0].ID, owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 remove photo, got %d body=%s", st, string(body))
		}
		var after regResp
		_ = json.Unmarshal(body, &after)
		if len(after.Photos) != 1 || !after.Photos[0].IsPrimary {
			t.Fatalf("remaining photo not promoted: %+v", after.Photos)
		}
	}
}

func TestHTTP_DeleteAccountCascades(t *testing.T) {
	ts := newServer(t)
	owner, _ := registerIndividual(t, ts.URL, "ana")

	dogID := createLostDog(t, ts.URL, owner)

	st, body := doReq(t, ts.URL, "POST", "/sightings", owner, sightingPayload())
	if st != http.StatusCreated {
		t.Fatalf("expected 201 sighting, got %d body=%s", st, string(body))
	}
	sightingID := decodeReport(t, body).ID

	if st, body := doReq(t, ts.URL, "DELETE", "/me", owner, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204 delete account, got %d body=%s", st, string(body))
	}

	// Registro de perro en cascada.
	if st, _ := doReq(t, ts.URL, "GET", "/lost-dogs/"+dogID, "", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for cascaded registration, got %d", st)
	}

	// El avistamiento sobrevive con el tipo de reportante y sin perfil.
	st, body = doReq(t, ts.URL, "GET", "/sightings/"+sightingID, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 sighting, got %d", st)
	}
	var rep reportResp
	_ = json.Unmarshal(body, &rep)
	if rep.ReporterKind != "individual" || rep.ReporterName != "Desconocido" {
		t.Fatalf("unexpected orphaned sighting: %+v", rep)
	}

	// El token ya no representa a nadie.
	if st, _ := doReq(t, ts.URL, "GET", "/me/profile", owner, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 after delete, got %d", st)
	}
}

// -------------------------
// helpers
// -------------------------

type reportResp struct {
	ID           string `json:"id"`
	IsAnonymous  bool   `json:"is_anonymous"`
	ReporterKind string `json:"reporter_kind"`
	ReporterName string `json:"reporter_name"`
	CanShelter   bool   `json:"can_shelter"`
}

type regResp struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Breed  string `json:"breed"`
	Status struct {
		Value string `json:"value"`
	} `json:"status"`
	IsOwner         bool    `json:"is_owner"`
	PrimaryPhotoURL *string `json:"primary_photo_url"`
	Photos          []struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"photos"`
}

func sightingPayload() map[string]any {
	return map[string]any{
		"location": map[string]any{
			"state":           "Jalisco",
			"municipality":    "Guadalajara",
			"postal_code":     "44100",
			"neighborhood":    "Centro",
			"street":          "Juárez",
			"exterior_number": "12",
		},
		"size":           "M",
		"dominant_color": "café",
		"description":    "Perro asustado cerca del parque",
	}
}

func lostDogPayload() map[string]any {
	return map[string]any{
		"name":         "Firulais",
		"sex":          "M",
		"age_years":    3,
		"size":         "G",
		"breed":        "Labrador",
		"colors":       []string{"negro"},
		"coat_pattern": "corto",
		"location": map[string]any{
			"state":           "Jalisco",
			"municipality":    "Zapopan",
			"postal_code":     "45000",
			"neighborhood":    "Centro",
			"street":          "Hidalgo",
			"exterior_number": "5",
		},
		"lost_date": "2025-03-01",
		"lost_time": "18:30",
	}
}

func credentials(username string) map[string]any {
	return map[string]any{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secreto123",
		"password_confirm": "secreto123",
	}
}

func registerIdentity(t *testing.T, baseURL, username string) (string, string) {
	t.Helper()
	return register(t, baseURL, "/auth/register", credentials(username))
}

func registerIndividual(t *testing.T, baseURL, username string) (string, string) {
	t.Helper()

	payload := credentials(username)
	payload["first_name"] = "Ana"
	payload["last_name"] = "López"
	payload["phone"] = "3312345678"
	return register(t, baseURL, "/auth/register/individual", payload)
}

func registerShelter(t *testing.T, baseURL, username string) string {
	t.Helper()

	payload := credentials(username)
	payload["name"] = "Huellitas"
	payload["phone"] = "3312345678"
	payload["address"] = map[string]any{
		"state":           "Jalisco",
		"municipality":    "Zapopan",
		"postal_code":     "45000",
		"street":          "Av. Patria",
		"exterior_number": "100",
	}
	payload["responsible"] = map[string]any{
		"first_name": "Luis",
		"last_name":  "Pérez",
		"email":      "luis@example.com",
	}
	payload["current_capacity"] = 2
	payload["max_capacity"] = 10

	token, _ := register(t, baseURL, "/auth/register/shelter", payload)
	return token
}

func register(t *testing.T, baseURL, path string, payload map[string]any) (string, string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		Token    string `json:"token"`
		Identity struct {
			ID string `json:"id"`
		} `json:"identity"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Token == "" || resp.Identity.ID == "" {
		t.Fatalf("%s: missing token/identity body=%s", path, string(body))
	}
	return resp.Token, resp.Identity.ID
}

func createLostDog(t *testing.T, baseURL, token string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/lost-dogs", token, lostDogPayload())
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create lost dog, got %d body=%s", st, string(body))
	}
	reg := decodeRegistration(t, body)
	if reg.ID == "" {
		t.Fatalf("create lost dog: missing id body=%s", string(body))
	}
	return reg.ID
}

func searchTotal(t *testing.T, baseURL, query string) int {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/lost-dogs"+query, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
	}
	var page struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(body, &page)
	return page.Total
}

func decodeReport(t *testing.T, body []byte) reportResp {
	t.Helper()

	var resp struct {
		Report reportResp `json:"report"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode report: %v body=%s", err, string(body))
	}
	return resp.Report
}

func decodeRegistration(t *testing.T, body []byte) regResp {
	t.Helper()

	var resp struct {
		Registration regResp `json:"registration"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode registration: %v body=%s", err, string(body))
	}
	return resp.Registration
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
