package navtree

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var lower = cases.Lower(language.Und)

// Slug turns a heading into a fragment id: "Mask with alternative" => "mask-with-alternative"
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	folded = lower.String(folded)

	var (
		b    strings.Builder
		dash bool
	)
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

// uniqueSlugs hands out slugs, suffixing repeated ones with -1, -2, ...
// until the result is unused. Values are the next suffix to try per slug.
type uniqueSlugs map[string]int

func (u uniqueSlugs) next(title string) string {
	base := Slug(title)
	if base == "" {
		base = "section"
	}
	for n := u[base]; ; n++ {
		s := base
		if n > 0 {
			s += "-" + strconv.Itoa(n)
		}
		if _, taken := u[s]; !taken {
			u[s] = 0
			u[base] = n + 1
			return s
		}
	}
}
