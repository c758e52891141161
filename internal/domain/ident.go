package domain

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace is the fixed namespace for deterministic fallback IDs. The same
// IDSpec always hashes to the same canonical ID across runs and processes,
// with no persisted counter or coordinator.
var idNamespace = uuid.MustParse("5a1ad0b2-49c6-4bb1-9b92-21cfae5d3e0c")

// Slugify normalizes a name and maps every run of non-alphanumeric characters
// to a single hyphen: "Ligue 1" -> "ligue-1", "São Paulo FC" -> "sao-paulo-fc".
func Slugify(s string) string {
	s = NormalizeName(s)
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			if b.Len() > 0 {
				pendingSep = true
			}
			continue
		}
		if pendingSep {
			b.WriteByte('-')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// slugFor builds the compound region-name slug for a spec, or "" when the
// spec lacks a usable name.
func slugFor(spec IDSpec) string {
	name := Slugify(spec.Name)
	if name == "" {
		return ""
	}
	region := Slugify(spec.Region)
	if region == "" {
		return name
	}
	return region + "-" + name
}

// FallbackID derives the deterministic hash identifier for a spec.
func FallbackID(spec IDSpec) string {
	key := string(spec.Kind) + "|" + NormalizeName(spec.Region) + "|" + NormalizeName(spec.Name)
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// AssignID derives a canonical ID for a spec. It prefers the human-readable
// compound slug; when the slug is empty or already claimed by a different
// entity in existing, it falls back to FallbackID. Collisions never append
// suffixes, so assignment stays reproducible across repeated runs.
//
// existing maps already-assigned IDs to the spec that owns them; passing the
// same spec again returns the same ID.
func AssignID(spec IDSpec, existing map[string]IDSpec) string {
	slug := slugFor(spec)
	if slug == "" {
		return FallbackID(spec)
	}
	if owner, taken := existing[slug]; taken && owner != spec {
		return FallbackID(spec)
	}
	return slug
}
