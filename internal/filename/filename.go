// Package filename encodes and decodes a document's logical identity
// (creation time, slug, extension) into and from a single remote filename.
package filename

import (
	"fmt"
	"strings"
	"time"
)

// stripped is the set of characters removed during slugification.
const stripped = `*+~[]{}()¿?'"¡!:@`

// stampLayout is the UTC timestamp prefix, e.g. 2024-01-02-03-04-05.
const stampLayout = "2006-01-02-15-04-05"

// Info is the identity decoded from a filename. CreatedAt is nil when the
// name carries no timestamp prefix.
type Info struct {
	Name      string
	Slug      string
	Ext       string
	CreatedAt *time.Time
}

// Slugify lowercases, trims, strips special characters, and turns spaces
// into hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(stripped, r):
		case r == ' ':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Timestamp renders at as the zero-padded UTC filename prefix.
func Timestamp(at time.Time) string {
	return at.UTC().Format(stampLayout)
}

// Encode slugifies slugSource and, unless timestamped is false, prefixes
// the UTC timestamp of at.
func Encode(slugSource string, at time.Time, timestamped bool) string {
	name := Slugify(slugSource)
	if !timestamped {
		return name
	}
	return Timestamp(at) + "-" + name
}

// Decode splits a filename into slug, extension, and creation time. A stem
// of at least seven hyphen-separated segments whose first segment is a
// four-digit "20xx" year is treated as timestamped: the first six segments
// become the creation time, the rest the slug. A slug that itself starts
// with such a prefix is indistinguishable from a timestamped name; the
// heuristic is kept as is.
func Decode(name string) Info {
	stem, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		stem, ext = name[:i], name[i+1:]
	}

	info := Info{Name: name, Slug: stem, Ext: ext}

	parts := strings.Split(stem, "-")
	if len(parts) >= 7 && len(parts[0]) == 4 && strings.HasPrefix(parts[0], "20") {
		info.Slug = strings.Join(parts[6:], "-")
		iso := fmt.Sprintf("%s-%s-%sT%s:%s:%sZ",
			parts[0], parts[1], parts[2], parts[3], parts[4], parts[5])
		if t, err := time.Parse(time.RFC3339, iso); err == nil {
			info.CreatedAt = &t
		}
	}
	return info
}
