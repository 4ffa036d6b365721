package citations

import (
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero-mcp/internal/format"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// Zotero item types with a direct BibTeX counterpart. Everything else is misc.
var entryTypes = map[string]string{
	"journalArticle":   "article",
	"magazineArticle":  "article",
	"newspaperArticle": "article",
	"book":             "book",
	"bookSection":      "incollection",
	"conferencePaper":  "inproceedings",
	"thesis":           "phdthesis",
	"report":           "techreport",
	"manuscript":       "unpublished",
	"preprint":         "unpublished",
}

// Zotero fields whose value becomes the BibTeX container field.
var containerFields = map[string]struct{ zotero, bibtex string }{
	"article":       {"publicationTitle", "journal"},
	"incollection":  {"bookTitle", "booktitle"},
	"inproceedings": {"proceedingsTitle", "booktitle"},
	"phdthesis":     {"university", "school"},
	"techreport":    {"institution", "institution"},
}

// BibTeXEntry renders item as one BibTeX entry under citekey.
func BibTeXEntry(item *models.Item, citekey string) string {
	entryType, ok := entryTypes[item.ItemType]
	if !ok {
		entryType = "misc"
	}

	var fields [][2]string
	add := func(name, value string, escape bool) {
		if value == "" {
			return
		}
		if escape {
			value = escapeBibTeX(value)
		}
		fields = append(fields, [2]string{name, value})
	}

	add("title", item.Title, true)
	add("author", bibTeXNames(item.Creators, "author"), false)
	add("editor", bibTeXNames(item.Creators, "editor"), false)

	if container, ok := containerFields[entryType]; ok {
		value := item.Field(container.zotero)
		if value == "" && entryType == "inproceedings" {
			value = item.Field("publicationTitle")
		}
		if value == "" && entryType == "techreport" {
			value = item.Field("publisher")
		}
		add(container.bibtex, value, true)
	}

	add("year", Year(item.Field("date")), false)
	add("volume", item.Field("volume"), false)
	add("number", item.Field("issue"), false)
	add("pages", bibTeXPages(item.Field("pages")), false)
	if entryType != "techreport" && entryType != "phdthesis" {
		add("publisher", item.Field("publisher"), true)
	}
	add("address", item.Field("place"), true)
	add("doi", item.Field("DOI"), false)
	add("isbn", item.Field("ISBN"), false)
	add("issn", item.Field("ISSN"), false)
	add("url", item.Field("url"), false)
	add("abstract", item.Field("abstractNote"), true)
	if len(item.Tags) > 0 {
		add("keywords", strings.Join(item.Tags, ", "), true)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s", entryType, citekey)
	for _, f := range fields {
		fmt.Fprintf(&b, ",\n  %s = {%s}", f[0], f[1])
	}
	b.WriteString("\n}\n")
	return b.String()
}

// BibTeX renders items as a .bib document with collision-free citekeys, in
// the order given.
func BibTeX(items []models.Item) string {
	taken := make(map[string]bool, len(items))
	var b strings.Builder
	b.WriteString("% Exported from Zotero by zotero-mcp\n")
	for i := range items {
		b.WriteString("\n")
		b.WriteString(BibTeXEntry(&items[i], Citekey(&items[i], taken)))
	}
	return b.String()
}

// bibTeXNames joins creators of one role as "Last, First and Last, First".
// Single-field names are braced so BibTeX does not split them.
func bibTeXNames(creators []models.Creator, role string) string {
	var names []string
	for _, c := range creators {
		creatorType := c.CreatorType
		if creatorType == "" {
			creatorType = "author"
		}
		if creatorType != role {
			continue
		}
		if c.Name != "" {
			names = append(names, "{"+escapeBibTeX(c.Name)+"}")
			continue
		}
		if name := format.CreatorName(c); name != "" {
			names = append(names, escapeBibTeX(name))
		}
	}
	return strings.Join(names, " and ")
}

// bibTeXPages turns "123-130" and "123–130" into "123--130".
func bibTeXPages(pages string) string {
	pages = strings.ReplaceAll(pages, "–", "-")
	parts := strings.FieldsFunc(pages, func(r rune) bool { return r == '-' })
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, "--")
}

var bibTeXEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"%", `\%`,
	"&", `\&`,
	"_", `\_`,
	"$", `\$`,
	"#", `\#`,
)

func escapeBibTeX(s string) string {
	return bibTeXEscaper.Replace(s)
}
