package orgs

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugBase = 40

// Slugify normaliza el nombre a [a-z0-9-]. Los acentos se pierden ("Clínica" -> "clinica").
func Slugify(name string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	dash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > maxSlugBase {
		s = strings.TrimRight(s[:maxSlugBase], "-")
	}
	if s == "" {
		s = "clinic"
	}
	return s
}

// GenerateSlug agrega un sufijo aleatorio corto para que el slug sea único globalmente.
func GenerateSlug(name string) string {
	var buf [3]byte
	_, _ = rand.Read(buf[:])
	return Slugify(name) + "-" + hex.EncodeToString(buf[:])
}
