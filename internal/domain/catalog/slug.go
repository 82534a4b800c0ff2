// Package catalog contiene la lógica pura de la jerarquía de categorías: slugs, ciclos y árbol.
// Todas las funciones trabajan sobre un snapshot plano del proveedor y no tocan almacenamiento.
package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxSlugLength longitud máxima de la base del slug (sin sufijo numérico).
	MaxSlugLength = 80
	// MaxStoredSlugLength longitud máxima de un slug completo, base más "-N" (columna VARCHAR(100)).
	MaxStoredSlugLength = 100
	// PlaceholderSlug base usada cuando el nombre no produce ningún carácter válido.
	PlaceholderSlug = "categoria"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	// Letras que NFD no descompone.
	ligatures = strings.NewReplacer(
		"ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
		"ø", "o", "Ø", "o", "đ", "d", "Đ", "d", "ł", "l", "Ł", "l",
	)
)

// NormalizeSlug convierte un nombre en un slug base: sin diacríticos, minúsculas,
// separadores colapsados en un solo guion y sin guiones en los extremos.
// "Eletrônicos & Informática" -> "eletronicos-informatica". Puede devolver "".
func NormalizeSlug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, ligatures.Replace(name))
	if err != nil {
		folded = name
	}
	s := strings.ToLower(folded)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		cutOnBoundary := s[MaxSlugLength] == '-'
		s = s[:MaxSlugLength]
		if !cutOnBoundary {
			if i := strings.LastIndexByte(s, '-'); i > 0 {
				s = s[:i]
			}
		}
		s = strings.Trim(s, "-")
	}
	return s
}

// IsValidSlug indica si s ya está normalizado (útil para slugs explícitos).
// Acepta el largo de un slug asignado con sufijo, no solo el de la base.
func IsValidSlug(s string) bool {
	return len(s) <= MaxStoredSlugLength && validSlug.MatchString(s)
}

// SlugAllocator deriva slugs únicos por proveedor a partir de un snapshot.
// Es puro: la reserva real ocurre cuando el caso de uso persiste el resultado.
type SlugAllocator struct{}

// NewSlugAllocator construye el asignador.
func NewSlugAllocator() *SlugAllocator {
	return &SlugAllocator{}
}

// Allocate prueba base, base-1, base-2, ... contra los slugs de ownerID en el snapshot,
// ignorando la categoría excludeID (actualización en sitio). Nunca devuelve "".
func (a *SlugAllocator) Allocate(name, ownerID, excludeID string, categories []*entity.Category) string {
	base := NormalizeSlug(name)
	if base == "" {
		base = PlaceholderSlug
	}
	taken := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c == nil || c.OwnerID != ownerID || (excludeID != "" && c.ID == excludeID) {
			continue
		}
		taken[c.Slug] = struct{}{}
	}
	if _, used := taken[base]; !used {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, used := taken[candidate]; !used {
			return candidate
		}
	}
}
