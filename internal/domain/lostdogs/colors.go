package lostdogs

import (
	"strings"
)

// Color es una etiqueta del vocabulario fijo de colores.
type Color string

const (
	ColorUnique     Color = "unico"
	ColorBlue       Color = "azul"
	ColorWhite      Color = "blanco"
	ColorBrown      Color = "cafe"
	ColorPoodle     Color = "caniche"
	ColorCarbonated Color = "carbonatado"
	ColorChocolate  Color = "chocolate"
	ColorYellow     Color = "amarillo"
	ColorGolden     Color = "dorado"
	ColorBlack      Color = "negro"
)

// Alias en inglés aceptado para ColorUnique.
const colorUniqueAlias = "unique"

var colorLabels = map[Color]string{
	ColorUnique:     "Color único",
	ColorBlue:       "Azul",
	ColorWhite:      "Blanco",
	ColorBrown:      "Café",
	ColorPoodle:     "Caniche",
	ColorCarbonated: "Carbonatado",
	ColorChocolate:  "Chocolate",
	ColorYellow:     "Amarillo",
	ColorGolden:     "Dorado",
	ColorBlack:      "Negro",
}

func (c Color) Label() string { return colorLabels[c] }

const (
	msgColorsRequired = "Este campo es obligatorio."
	msgColorInvalid   = "Escoja una opción válida."
	msgColorUnique    = `No puedes seleccionar "Color único" junto con otros colores.`
)

// ParseColors normaliza la lista del cliente: minúsculas, alias "unique",
// sin duplicados y conservando el orden. Devuelve el mensaje de error del campo.
func ParseColors(in []string) ([]Color, string) {
	out := make([]Color, 0, len(in))
	seen := map[Color]struct{}{}

	for _, raw := range in {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if s == colorUniqueAlias {
			s = string(ColorUnique)
		}
		c := Color(s)
		if _, ok := colorLabels[c]; !ok {
			return nil, msgColorInvalid
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, msgColorsRequired
	}
	if _, ok := seen[ColorUnique]; ok && len(out) > 1 {
		return nil, msgColorUnique
	}
	return out, ""
}

// JoinColors es la forma persistida: "azul,negro".
func JoinColors(cs []Color) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

// SplitColors lee la forma persistida.
func SplitColors(s string) []Color {
	out := make([]Color, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, Color(p))
		}
	}
	return out
}
