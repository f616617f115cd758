package lostdogs

import "sort"

// Reglas de foto principal sobre el set de un registro. El storage in-memory
// las aplica tal cual; Postgres las replica en SQL dentro de la transacción.

// AddPhoto guarda p en el set: si viene marcada como principal desmarca a las
// demás; si el set queda sin principal (primera foto), p pasa a serlo.
func AddPhoto(set []Photo, p Photo) []Photo {
	if p.IsPrimary {
		for i := range set {
			set[i].IsPrimary = false
		}
	}
	set = append(set, p)
	if !hasPrimary(set) {
		set[len(set)-1].IsPrimary = true
	}
	return set
}

// RemovePhoto quita la foto; si era la principal promueve a la más nueva restante.
func RemovePhoto(set []Photo, photoID string) ([]Photo, Photo, bool) {
	idx := -1
	for i, p := range set {
		if p.ID == photoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return set, Photo{}, false
	}

	removed := set[idx]
	out := make([]Photo, 0, len(set)-1)
	out = append(out, set[:idx]...)
	out = append(out, set[idx+1:]...)

	if removed.IsPrimary && len(out) > 0 {
		newest := 0
		for i := range out {
			if out[i].UploadedAt.After(out[newest].UploadedAt) {
				newest = i
			}
		}
		out[newest].IsPrimary = true
	}
	return out, removed, true
}

// SetPrimary deja exactamente una principal: photoID.
func SetPrimary(set []Photo, photoID string) ([]Photo, bool) {
	found := false
	for i := range set {
		if set[i].ID == photoID {
			found = true
		}
	}
	if !found {
		return set, false
	}
	for i := range set {
		set[i].IsPrimary = set[i].ID == photoID
	}
	return set, true
}

// OrderPhotos devuelve una copia: principal primero, luego más nuevas primero.
func OrderPhotos(set []Photo) []Photo {
	out := append([]Photo(nil), set...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// PrimaryPhoto: la marcada, si no la primera subida, si no ninguna.
func PrimaryPhoto(set []Photo) (Photo, bool) {
	if len(set) == 0 {
		return Photo{}, false
	}
	earliest := 0
	for i, p := range set {
		if p.IsPrimary {
			return p, true
		}
		if p.UploadedAt.Before(set[earliest].UploadedAt) {
			earliest = i
		}
	}
	return set[earliest], true
}

func hasPrimary(set []Photo) bool {
	for _, p := range set {
		if p.IsPrimary {
			return true
		}
	}
	return false
}
