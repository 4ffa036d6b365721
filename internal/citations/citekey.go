// Package citations builds pandoc-style citekeys and BibTeX entries from
// Zotero items.
package citations

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

var yearPattern = regexp.MustCompile(`\b(1[5-9]|20)\d{2}\b`)

// Citekey returns a citekey such as "smith2020", "smithJones2021" or
// "smithEtAl2020" for item. Keys already in taken get a letter suffix
// ("smith2020a"); the chosen key is added to taken.
func Citekey(item *models.Item, taken map[string]bool) string {
	base := sanitizeCitekey(authorPart(citedCreators(item.Creators)) + Year(item.Field("date")))

	key := base
	for i := 0; taken[key]; i++ {
		key = base + suffix(i)
	}
	taken[key] = true
	return key
}

// suffix yields a, b, ..., z, then z1, z2, ...
func suffix(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return "z" + strconv.Itoa(i-25)
}

// Year extracts a four-digit year from a Zotero date such as "2020-01-15",
// "January 2020" or "ca. 1850".
func Year(date string) string {
	return yearPattern.FindString(date)
}

// citedCreators returns the authors, falling back to every creator when an
// item only has editors or other roles.
func citedCreators(creators []models.Creator) []models.Creator {
	var authors []models.Creator
	for _, c := range creators {
		if c.CreatorType == "" || c.CreatorType == "author" {
			authors = append(authors, c)
		}
	}
	if len(authors) == 0 {
		return creators
	}
	return authors
}

func authorPart(creators []models.Creator) string {
	switch len(creators) {
	case 0:
		return ""
	case 1:
		return camelName(creators[0])
	case 2:
		return camelName(creators[0]) + capitalize(camelName(creators[1]))
	default:
		return camelName(creators[0]) + "EtAl"
	}
}

// camelName turns a family name into a key fragment: "von Neumann" becomes
// "vonNeumann". Single-field names use their last word.
func camelName(c models.Creator) string {
	family := c.LastName
	if family == "" && c.Name != "" {
		words := strings.Fields(c.Name)
		family = words[len(words)-1]
	}
	if family == "" {
		family = c.FirstName
	}

	words := strings.Fields(family)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(capitalize(strings.ToLower(w)))
	}
	return b.String()
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// sanitizeCitekey keeps letters, digits and underscores, and never returns a
// key that is empty or starts with a digit.
func sanitizeCitekey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	switch {
	case s == "":
		return "unknown"
	case unicode.IsDigit(rune(s[0])):
		return "ref" + s
	default:
		return s
	}
}
