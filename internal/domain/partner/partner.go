package partner

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// Kind is the direction of the relationship.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

// IsValid reports whether k is a known partner kind.
func (k Kind) IsValid() bool {
	return k == KindCustomer || k == KindSupplier
}

// DefaultExternalID is the shared fallback partner for a direction.
func (k Kind) DefaultExternalID() string {
	return "default-" + string(k)
}

// Partner is a customer or supplier a debt can be attached to.
type Partner struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ref identifies a counterparty as supplied by a caller.
type Ref struct {
	ExternalID string `json:"external_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// IsZero reports whether the ref carries nothing to resolve.
func (r Ref) IsZero() bool {
	return strings.TrimSpace(r.ExternalID) == "" && strings.TrimSpace(r.Name) == ""
}

// NormalizeName trims the name and composes it to NFC, so precomposed and
// combining-mark spellings of the same name are stored alike.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// SameName compares names case-insensitively after NormalizeName.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}

// NormalizePhone strips everything but digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug reduces a display name to lowercase ASCII words joined by dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(name))) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == 'đ':
			b.WriteRune('d')
			dash = false
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteRune('-')
				dash = true
			}
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "partner"
	}
	return s
}

// SyntheticExternalID builds auto-<kind>-<slug>, with a -n suffix from the
// second attempt onward.
func SyntheticExternalID(kind Kind, name string, attempt int) string {
	base := fmt.Sprintf("auto-%s-%s", kind, Slug(name))
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

// ErrPartnerNotFound is returned for a missing partner.
func ErrPartnerNotFound(kind Kind, externalID string) error {
	return shared.NewNotFoundError("partner", string(kind)+"/"+externalID)
}

// ErrDuplicatePartner is returned when (kind, external id) already exists.
func ErrDuplicatePartner(kind Kind, externalID string) error {
	return shared.NewConflictError("partner already exists", "kind", kind, "external_id", externalID)
}
