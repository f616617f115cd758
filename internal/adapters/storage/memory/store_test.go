package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"patitas-a-casa/internal/domain/accounts"
	"patitas-a-casa/internal/domain/lostdogs"
	"patitas-a-casa/internal/domain/sightings"
	"patitas-a-casa/internal/platform/apperr"
)

var t0 = time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

func seedIndividual(t *testing.T, s *Store, n string) accounts.Individual {
	t.Helper()
	ind := accounts.Individual{ID: "ind-" + n, IdentityID: "id-" + n, FirstName: n}
	err := s.Accounts().CreateIndividualAccount(context.Background(),
		accounts.Identity{ID: "id-" + n, Username: n, Email: n + "@example.com"}, ind)
	if err != nil {
		t.Fatalf("seed %s: %v", n, err)
	}
	return ind
}

func photo(id string, i int) lostdogs.Photo {
	return lostdogs.Photo{ID: id, Path: "lost_dogs/" + id + ".jpg", UploadedAt: t0.Add(time.Duration(i) * time.Second)}
}

func TestAccounts_UniqueAndExclusiveProfile(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedIndividual(t, s, "ana")

	err := s.Accounts().CreateIdentity(ctx, accounts.Identity{ID: "x", Username: "ana", Email: "otra@example.com"})
	if !errors.Is(err, accounts.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
	err = s.Accounts().CreateIdentity(ctx, accounts.Identity{ID: "x", Username: "otra", Email: "ANA@example.com"})
	if !errors.Is(err, accounts.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	err = s.Accounts().CreateShelter(ctx, accounts.Shelter{ID: "sh-1", IdentityID: "id-ana", Name: "Dup"})
	if !errors.Is(err, accounts.ErrProfileExists) {
		t.Fatalf("expected profile exists, got %v", err)
	}

	p, err := s.Accounts().GetProfile(ctx, "id-ana")
	if err != nil || p.Kind != accounts.KindIndividual || p.ProfileID() != "ind-ana" {
		t.Fatalf("unexpected profile %+v %v", p, err)
	}
	if _, err := s.Accounts().GetProfile(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown identity: %v", err)
	}
}

func TestAccounts_ListActiveShelters(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	for i, name := range []string{"Zeta", "Alfa", "Beta"} {
		id := fmt.Sprintf("id-%d", i)
		sh := accounts.Shelter{ID: fmt.Sprintf("sh-%d", i), IdentityID: id, Name: name, Active: name != "Beta"}
		if err := s.Accounts().CreateShelterAccount(ctx, accounts.Identity{ID: id, Username: id, Email: id + "@x.mx"}, sh); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, total, err := s.Accounts().ListActiveShelters(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || items[0].Name != "Alfa" || items[1].Name != "Zeta" {
		t.Fatalf("unexpected shelters %+v", items)
	}
}

func TestAccounts_ShelterUnknownServiceRollsBack(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	sh := accounts.Shelter{ID: "sh", IdentityID: "id", Services: []accounts.ShelterService{{ID: "missing"}}}
	err := s.Accounts().CreateShelterAccount(ctx, accounts.Identity{ID: "id", Username: "u", Email: "u@x.mx"}, sh)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Accounts().GetIdentityByID(ctx, "id"); err == nil {
		t.Fatalf("identity must not be created when the shelter fails")
	}
}

func TestDeleteIdentity_CascadesAndNullifies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := seedIndividual(t, s, "ana")
	luis := seedIndividual(t, s, "luis")

	if err := s.LostDogs().Create(ctx, lostdogs.Registration{ID: "dog-1", OwnerID: ana.ID, Status: lostdogs.StatusActive}, []lostdogs.Photo{photo("p1", 0)}); err != nil {
		t.Fatalf("create dog: %v", err)
	}
	if err := s.LostDogs().Create(ctx, lostdogs.Registration{ID: "dog-2", OwnerID: luis.ID, Status: lostdogs.StatusActive}, nil); err != nil {
		t.Fatalf("create dog: %v", err)
	}
	rep := sightings.Report{ID: "s-1", ReportedAt: t0, Reporter: sightings.Reporter{Kind: sightings.ReporterIndividual, ProfileID: ana.ID}}
	if err := s.Sightings().Create(ctx, rep); err != nil {
		t.Fatalf("create sighting: %v", err)
	}

	if err := s.Accounts().DeleteIdentity(ctx, "id-ana"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.LostDogs().GetByID(ctx, "dog-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("dog-1 should cascade, got %v", err)
	}
	if _, err := s.LostDogs().GetByID(ctx, "dog-2"); err != nil {
		t.Fatalf("dog-2 must survive: %v", err)
	}
	got, err := s.Sightings().GetByID(ctx, "s-1")
	if err != nil {
		t.Fatalf("sighting must be kept: %v", err)
	}
	if got.Reporter.ProfileID != "" || got.Reporter.Kind != sightings.ReporterIndividual {
		t.Fatalf("reporter ref should be cleared, got %+v", got.Reporter)
	}
	if _, err := s.Accounts().GetIndividual(ctx, ana.ID); err == nil {
		t.Fatalf("individual should be gone")
	}
}

func TestLostDogs_PrimaryRuleAndLimit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := seedIndividual(t, s, "ana")
	repo := s.LostDogs()

	if err := repo.Create(ctx, lostdogs.Registration{ID: "d", OwnerID: ana.ID}, []lostdogs.Photo{photo("a", 0), photo("b", 1)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	reg, _ := repo.GetByID(ctx, "d")
	if reg.Photos[0].ID != "a" || !reg.Photos[0].IsPrimary {
		t.Fatalf("first photo should be primary: %+v", reg.Photos)
	}

	p := photo("c", 2)
	p.IsPrimary = true
	if err := repo.AddPhotos(ctx, "d", []lostdogs.Photo{p}, t0); err != nil {
		t.Fatalf("add: %v", err)
	}
	reg, _ = repo.GetByID(ctx, "d")
	if reg.Photos[0].ID != "c" || primaries(reg.Photos) != 1 {
		t.Fatalf("new primary should win: %+v", reg.Photos)
	}

	err := repo.AddPhotos(ctx, "d", []lostdogs.Photo{photo("x", 3), photo("y", 4)}, t0)
	if !errors.Is(err, lostdogs.ErrTooManyPhotos) {
		t.Fatalf("expected limit error, got %v", err)
	}
	reg, _ = repo.GetByID(ctx, "d")
	if len(reg.Photos) != 3 {
		t.Fatalf("failed batch must not write: %d photos", len(reg.Photos))
	}

	removed, err := repo.RemovePhoto(ctx, "d", "c", t0)
	if err != nil || removed.Path == "" {
		t.Fatalf("remove: %v", err)
	}
	reg, _ = repo.GetByID(ctx, "d")
	if reg.Photos[0].ID != "b" || !reg.Photos[0].IsPrimary {
		t.Fatalf("newest remaining should be promoted: %+v", reg.Photos)
	}

	if err := repo.SetPrimaryPhoto(ctx, "d", "zzz", t0); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown photo: %v", err)
	}
}

func TestLostDogs_UpdateKeepsStoredStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := seedIndividual(t, s, "ana")
	repo := s.LostDogs()

	if err := repo.Create(ctx, lostdogs.Registration{ID: "d", OwnerID: ana.ID, Name: "Firu", Status: lostdogs.StatusActive}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	stale, _ := repo.GetByID(ctx, "d")

	if err := repo.SetStatus(ctx, "d", lostdogs.StatusFound, t0); err != nil {
		t.Fatalf("status: %v", err)
	}
	stale.Name = "Firulais"
	if _, err := repo.Update(ctx, stale, nil, nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	reg, _ := repo.GetByID(ctx, "d")
	if reg.Status != lostdogs.StatusFound {
		t.Fatalf("edit must not revert found, got %s", reg.Status)
	}
	if reg.Name != "Firulais" {
		t.Fatalf("edit not applied: %q", reg.Name)
	}
	items, total, _ := repo.Search(ctx, lostdogs.Filter{}, 0, 12)
	if total != 0 || len(items) != 0 {
		t.Fatalf("found dog back in search: %+v", items)
	}
}

func TestLostDogs_ConcurrentPhotoOpsKeepOnePrimary(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := seedIndividual(t, s, "ana")
	repo := s.LostDogs()

	if err := repo.Create(ctx, lostdogs.Registration{ID: "d", OwnerID: ana.ID}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := photo(fmt.Sprintf("p%d", i), i)
			p.IsPrimary = i%2 == 0
			_ = repo.AddPhotos(ctx, "d", []lostdogs.Photo{p}, t0)
		}(i)
	}
	wg.Wait()

	reg, _ := repo.GetByID(ctx, "d")
	if len(reg.Photos) != lostdogs.MaxPhotos {
		t.Fatalf("expected the limit to cap at %d, got %d", lostdogs.MaxPhotos, len(reg.Photos))
	}
	if primaries(reg.Photos) != 1 {
		t.Fatalf("expected exactly one primary, got %d", primaries(reg.Photos))
	}
}

func TestLostDogs_SearchActiveOnly(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ana := seedIndividual(t, s, "ana")
	repo := s.LostDogs()

	mk := func(id, state, breed string, size lostdogs.Size, st lostdogs.Status, min int) {
		reg := lostdogs.Registration{
			ID: id, OwnerID: ana.ID, Breed: breed, Size: size, Status: st,
			Location:     lostdogs.Location{State: state},
			RegisteredAt: t0.Add(time.Duration(min) * time.Minute),
		}
		if err := repo.Create(ctx, reg, nil); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	mk("a", "Jalisco", "Labrador", lostdogs.SizeLarge, lostdogs.StatusActive, 1)
	mk("b", "Ciudad de México", "labrador retriever", lostdogs.SizeLarge, lostdogs.StatusActive, 2)
	mk("c", "Jalisco", "Labrador", lostdogs.SizeLarge, lostdogs.StatusFound, 3)
	mk("d", "Jalisco", "Pug", lostdogs.SizeSmall, lostdogs.StatusActive, 4)

	items, total, err := repo.Search(ctx, lostdogs.Filter{Breed: "LABRADOR", Size: lostdogs.SizeLarge}, 0, 12)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("unexpected results %+v", items)
	}

	_, total, _ = repo.Search(ctx, lostdogs.Filter{State: "jal"}, 0, 12)
	if total != 2 {
		t.Fatalf("state filter: got %d", total)
	}

	mine, _ := repo.ListByOwner(ctx, ana.ID)
	if len(mine) != 4 || mine[0].ID != "d" {
		t.Fatalf("ListByOwner should include every status, newest first")
	}
}

func primaries(set []lostdogs.Photo) int {
	n := 0
	for _, p := range set {
		if p.IsPrimary {
			n++
		}
	}
	return n
}
