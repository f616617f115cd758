package accounts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"patitas-a-casa/internal/adapters/auth/jwtauth"
	"patitas-a-casa/internal/adapters/storage/memory"
	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/platform/apperr"
	"patitas-a-casa/internal/platform/media"

	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc   *accounts.Service
	store *memory.Store
	jwt   *jwtauth.Manager
	fs    afero.Fs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	fs := afero.NewMemMapFs()
	jwt := jwtauth.NewManager(jwtauth.Config{Secret: "test-secret-test-secret-32bytes!", TTL: time.Hour})

	svc := accounts.NewService(store.Accounts(), jwt, media.NewStorage(fs, "/media/"), nil)
	accounts.SetBcryptCost(svc, bcrypt.MinCost)
	accounts.SetNow(svc, func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) })

	if err := svc.EnsureDefaultServices(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultServices: %v", err)
	}
	return &fixture{svc: svc, store: store, jwt: jwt, fs: fs}
}

func creds(user string) accounts.Credentials {
	return accounts.Credentials{
		Username:        user,
		Email:           user + "@example.com",
		Password:        "supersecreta",
		PasswordConfirm: "supersecreta",
	}
}

func person() accounts.IndividualInput {
	return accounts.IndividualInput{FirstName: "Ana", LastName: "López", Phone: "5512345678"}
}

func shelterInput(t *testing.T, svc *accounts.Service) accounts.ShelterInput {
	t.Helper()
	svcs, err := svc.ListServices(context.Background())
	if err != nil || len(svcs) == 0 {
		t.Fatalf("ListServices: %v", err)
	}
	return accounts.ShelterInput{
		Name:  "Huellitas",
		Phone: "3312345678",
		Address: accounts.AddressInput{
			State: "Jalisco", Municipality: "Zapopan", PostalCode: "45100", Street: "Av. Patria", ExteriorNumber: "100",
		},
		Responsible:     accounts.ResponsibleInput{FirstName: "Rosa", LastName: "Díaz", Email: "rosa@example.com"},
		CurrentCapacity: 5,
		MaxCapacity:     20,
		ServiceIDs:      []string{svcs[0].ID, svcs[1].ID},
	}
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Fields
}

func TestRegisterIndividual_IssuesTokenAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterIndividual(ctx, accounts.RegisterIndividualInput{Credentials: creds("ana"), IndividualInput: person()})
	if err != nil {
		t.Fatalf("RegisterIndividual: %v", err)
	}
	if res.Token == "" || res.Profile.Kind != accounts.KindIndividual {
		t.Fatalf("unexpected result %+v", res)
	}

	claims, err := f.jwt.Verify(ctx, res.Token)
	if err != nil || claims.UserID != res.Identity.ID {
		t.Fatalf("token should authenticate the new identity: %v", err)
	}

	login, err := f.svc.Login(ctx, "ana", "supersecreta")
	if err != nil || login.Profile.ProfileID() != res.Profile.ProfileID() {
		t.Fatalf("Login: %v", err)
	}
	_, err = f.svc.Login(ctx, "ana", "incorrecta")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("bad password: %v", err)
	}
	if _, body := apperr.Status(err); body.Message != "Usuario o contraseña incorrectos." {
		t.Fatalf("login message = %q", body.Message)
	}
}

func TestRegister_DuplicatesAndFieldRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.RegisterIdentity(ctx, creds("ana")); err != nil {
		t.Fatalf("RegisterIdentity: %v", err)
	}

	c := creds("ana")
	c.Email = "ANA@example.com"
	got := fields(t, mustErr(f.svc.RegisterIndividual(ctx, accounts.RegisterIndividualInput{Credentials: c, IndividualInput: person()})))
	if got["username"] == "" || got["email"] == "" {
		t.Fatalf("expected username and email errors, got %v", got)
	}

	tests := []struct {
		name  string
		edit  func(*accounts.RegisterIndividualInput)
		field string
	}{
		{"short password", func(in *accounts.RegisterIndividualInput) { in.Password, in.PasswordConfirm = "corta", "corta" }, "password"},
		{"confirm mismatch", func(in *accounts.RegisterIndividualInput) { in.PasswordConfirm = "otracosa1" }, "password_confirm"},
		{"phone letters", func(in *accounts.RegisterIndividualInput) { in.Phone = "55-1234-5678" }, "phone"},
		{"phone short", func(in *accounts.RegisterIndividualInput) { in.Phone = "551234" }, "phone"},
		{"bad email", func(in *accounts.RegisterIndividualInput) { in.Email = "no-es-correo" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := accounts.RegisterIndividualInput{Credentials: creds("nuevo"), IndividualInput: person()}
			tt.edit(&in)
			got := fields(t, mustErr(f.svc.RegisterIndividual(ctx, in)))
			if _, ok := got[tt.field]; !ok {
				t.Fatalf("expected %s error, got %v", tt.field, got)
			}
		})
	}
}

func TestRegisterShelter_OneStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := accounts.RegisterShelterInput{Credentials: creds("huellitas"), ShelterInput: shelterInput(t, f.svc)}
	var images accounts.ShelterImages
	images[0] = &media.Upload{Filename: "fachada.png", Content: []byte("png")}

	res, err := f.svc.RegisterShelter(ctx, in, images)
	if err != nil {
		t.Fatalf("RegisterShelter: %v", err)
	}
	sh := res.Profile.Shelter
	if sh == nil || !sh.Active || len(sh.Services) != 2 || sh.Images[0] == "" {
		t.Fatalf("unexpected shelter %+v", sh)
	}
	if ok, _ := afero.Exists(f.fs, sh.Images[0]); !ok {
		t.Fatalf("image should be stored")
	}

	bad := accounts.RegisterShelterInput{Credentials: creds("otro"), ShelterInput: shelterInput(t, f.svc)}
	bad.CurrentCapacity = 30
	if _, ok := fields(t, mustErr(f.svc.RegisterShelter(ctx, bad, accounts.ShelterImages{})))["max_capacity"]; !ok {
		t.Fatalf("expected capacity error")
	}
	if _, err := f.store.Accounts().GetIdentityByUsername(ctx, "otro"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("rejected registration must not create the identity")
	}
}

func TestProfileCompletion_Exclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterIdentity(ctx, creds("sinperfil"))
	if err != nil {
		t.Fatalf("RegisterIdentity: %v", err)
	}
	uid := res.Identity.ID

	choice, err := f.svc.ProfileChoice(ctx, uid)
	if err != nil || choice.Kind != accounts.KindNone || len(choice.Options) != 2 {
		t.Fatalf("chooser should offer both kinds: %+v %v", choice, err)
	}
	var pr *apperr.ProfileRequiredError
	if _, err := f.svc.RequireProfile(ctx, uid); !errors.As(err, &pr) || pr.Redirect != accounts.ChoiceRedirect {
		t.Fatalf("RequireProfile: %v", err)
	}

	first, err := f.svc.CreateIndividualProfile(ctx, uid, person())
	if err != nil || first.AlreadyExists {
		t.Fatalf("first create: %+v %v", first, err)
	}

	again, err := f.svc.CreateIndividualProfile(ctx, uid, person())
	if err != nil || !again.AlreadyExists || again.Message == "" {
		t.Fatalf("same kind should be informational: %+v %v", again, err)
	}
	if again.Profile.ProfileID() != first.Profile.ProfileID() {
		t.Fatalf("same kind must not create a second profile")
	}

	_, err = f.svc.CreateShelterProfile(ctx, uid, shelterInput(t, f.svc), accounts.ShelterImages{})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("other kind should conflict, got %v", err)
	}

	choice, _ = f.svc.ProfileChoice(ctx, uid)
	if len(choice.Options) != 0 {
		t.Fatalf("chooser must be one-time")
	}
}

func TestUpdateShelter_RulesAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterShelter(ctx, accounts.RegisterShelterInput{Credentials: creds("alb"), ShelterInput: shelterInput(t, f.svc)}, accounts.ShelterImages{})
	if err != nil {
		t.Fatalf("RegisterShelter: %v", err)
	}
	uid := res.Identity.ID
	shID := res.Profile.ProfileID()

	in := shelterInput(t, f.svc)
	in.MaxCapacity = 2
	_, err = f.svc.UpdateShelter(ctx, uid, accounts.ShelterUpdate{Shelter: in}, accounts.ShelterImages{})
	if _, ok := fields(t, err)["max_capacity"]; !ok {
		t.Fatalf("expected capacity error")
	}

	off := false
	in = shelterInput(t, f.svc)
	in.ServiceIDs = in.ServiceIDs[:1]
	sh, err := f.svc.UpdateShelter(ctx, uid, accounts.ShelterUpdate{Shelter: in, Active: &off}, accounts.ShelterImages{})
	if err != nil {
		t.Fatalf("UpdateShelter: %v", err)
	}
	if sh.Active || len(sh.Services) != 1 {
		t.Fatalf("unexpected shelter %+v", sh)
	}

	if _, err := f.svc.GetActiveShelter(ctx, shID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("inactive shelter should be hidden: %v", err)
	}
	page, err := f.svc.ListActiveShelters(ctx, 1)
	if err != nil || page.Total != 0 {
		t.Fatalf("inactive shelter listed: %+v %v", page, err)
	}

	// Una persona no puede editar un albergue.
	ind, err := f.svc.RegisterIndividual(ctx, accounts.RegisterIndividualInput{Credentials: creds("per"), IndividualInput: person()})
	if err != nil {
		t.Fatalf("RegisterIndividual: %v", err)
	}
	if _, err := f.svc.UpdateShelter(ctx, ind.Identity.ID, accounts.ShelterUpdate{Shelter: in}, accounts.ShelterImages{}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteAccount_RunsCleanupAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.RegisterIndividual(ctx, accounts.RegisterIndividualInput{Credentials: creds("ana"), IndividualInput: person()})
	if err != nil {
		t.Fatalf("RegisterIndividual: %v", err)
	}

	var order []string
	f.svc.OnDelete(func(ctx context.Context, p accounts.Profile) (func(), error) {
		order = append(order, "before:"+string(p.Kind))
		return func() { order = append(order, "after") }, nil
	})

	if err := f.svc.DeleteAccount(ctx, res.Identity.ID); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if len(order) != 2 || order[0] != "before:individual" || order[1] != "after" {
		t.Fatalf("unexpected hook order %v", order)
	}
	if _, err := f.svc.GetProfile(ctx, res.Identity.ID); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("deleted identity should no longer authenticate: %v", err)
	}

	f.svc.OnDelete(func(ctx context.Context, p accounts.Profile) (func(), error) {
		return nil, errors.New("boom")
	})
	other, _ := f.svc.RegisterIdentity(ctx, creds("luis"))
	if err := f.svc.DeleteAccount(ctx, other.Identity.ID); err == nil {
		t.Fatalf("failing hook must abort the delete")
	}
	if _, err := f.svc.GetProfile(ctx, other.Identity.ID); err != nil {
		t.Fatalf("identity should survive an aborted delete: %v", err)
	}
}

func mustErr[T any](_ T, err error) error { return err }
