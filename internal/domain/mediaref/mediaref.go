// Package mediaref converts between media identifiers and the reference
// strings that posts carry, and repairs the drifted forms found in older data.
package mediaref

import (
	"errors"
	"net/url"
	"strings"
)

// Prefix is the path segment every canonical reference starts with.
const Prefix = "/media/"

// IDLength is the length of a media identifier (hex encoded ObjectID).
const IDLength = 24

// ErrMalformed is returned by Canonicalize when no identifier can be extracted.
var ErrMalformed = errors.New("malformed media reference")

// ErrPending is returned by Canonicalize for an empty reference.
var ErrPending = errors.New("media reference is pending")

// Kind discriminates the three states a reference can be in.
type Kind uint8

const (
	KindPending Kind = iota
	KindResolved
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindPending:
		return "pending"
	case KindResolved:
		return "resolved"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Defect is a bit set describing why a resolved reference is not canonical.
type Defect uint8

const (
	DefectAbsoluteURL Defect = 1 << iota
	DefectDuplicatedSegment
	DefectBareID
	DefectNonCanonicalCase
)

// None reports whether the set is empty.
func (d Defect) None() bool { return d == 0 }

// Has reports whether every bit of other is set in d.
func (d Defect) Has(other Defect) bool { return d&other == other }

func (d Defect) String() string {
	if d == 0 {
		return "none"
	}
	var parts []string
	if d.Has(DefectAbsoluteURL) {
		parts = append(parts, "absolute_url")
	}
	if d.Has(DefectDuplicatedSegment) {
		parts = append(parts, "duplicated_segment")
	}
	if d.Has(DefectBareID) {
		parts = append(parts, "bare_id")
	}
	if d.Has(DefectNonCanonicalCase) {
		parts = append(parts, "non_canonical_case")
	}
	return strings.Join(parts, "|")
}

// Ref is a decoded media reference. The zero value is Pending.
type Ref struct {
	kind    Kind
	id      string
	defects Defect
	raw     string
}

// Resolved builds a canonical reference for id. The id is not validated.
func Resolved(id string) Ref {
	id = strings.ToLower(id)
	return Ref{kind: KindResolved, id: id, raw: Prefix + id}
}

// Pending is the reference of a post waiting for a new image.
func Pending() Ref { return Ref{kind: KindPending} }

// Malformed wraps a string from which no identifier can be extracted.
func Malformed(raw string) Ref { return Ref{kind: KindMalformed, raw: raw} }

func (r Ref) Kind() Kind { return r.kind }
func (r Ref) ID() string { return r.id }
func (r Ref) Defects() Defect { return r.defects }
func (r Ref) Raw() string { return r.raw }
func (r Ref) IsResolved() bool { return r.kind == KindResolved }
func (r Ref) IsPending() bool { return r.kind == KindPending }
func (r Ref) IsMalformed() bool { return r.kind == KindMalformed }

// NeedsRepair reports whether a resolved reference was decoded from a
// non-canonical string.
func (r Ref) NeedsRepair() bool {
	return r.kind == KindResolved && (!r.defects.None() || r.raw != Encode(r.id))
}

// Canonical returns the canonical string for a resolved reference.
func (r Ref) Canonical() (string, bool) {
	if r.kind != KindResolved {
		return "", false
	}
	return Encode(r.id), true
}

func (r Ref) String() string {
	if c, ok := r.Canonical(); ok {
		return c
	}
	return r.raw
}

// MarshalText keeps the stored string so cached payloads decode to the same Ref.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.raw), nil
}

func (r *Ref) UnmarshalText(text []byte) error {
	*r = Decode(string(text))
	return nil
}

// Encode returns the canonical reference for a media identifier.
func Encode(id string) string {
	return Prefix + strings.ToLower(id)
}

// ValidID reports whether s has the identifier shape: 24 hex characters.
func ValidID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Decode parses a stored or client supplied reference string.
func Decode(raw string) Ref {
	if raw == "" {
		return Pending()
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Malformed(raw)
		}
		inner := decodePath(u.Path)
		if inner.kind != KindResolved {
			return Malformed(raw)
		}
		inner.defects |= DefectAbsoluteURL
		inner.raw = raw
		return inner
	}

	ref := decodePath(raw)
	if ref.kind == KindMalformed {
		return Malformed(raw)
	}
	return ref
}

func decodePath(p string) Ref {
	first := strings.Index(p, Prefix)
	if first < 0 {
		if strings.Contains(p, "/") || !ValidID(p) {
			return Malformed(p)
		}
		return resolve(p, p, DefectBareID)
	}

	last := strings.LastIndex(p, Prefix)
	var defects Defect
	if first != last || first != 0 {
		defects |= DefectDuplicatedSegment
	}
	id := p[last+len(Prefix):]
	if !ValidID(id) {
		return Malformed(p)
	}
	return resolve(p, id, defects)
}

func resolve(raw, id string, defects Defect) Ref {
	lower := strings.ToLower(id)
	if lower != id {
		defects |= DefectNonCanonicalCase
	}
	return Ref{kind: KindResolved, id: lower, defects: defects, raw: raw}
}

// Canonicalize decodes raw and returns its canonical form.
func Canonicalize(raw string) (string, error) {
	ref := Decode(raw)
	switch ref.kind {
	case KindResolved:
		c, _ := ref.Canonical()
		return c, nil
	case KindPending:
		return "", ErrPending
	default:
		return "", ErrMalformed
	}
}
