// Package format renders normalized Zotero records as the plain text returned
// by tools and resources. Every function is pure: same input, same output.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// NoItemsFound is returned by Items for an empty result.
const NoItemsFound = "No items found matching your query."

// SnippetLength is the maximum number of runes of abstract shown per search hit.
const SnippetLength = 300

// publicationFields are checked in order; the first present one is shown as Publication.
var publicationFields = []string{
	"publicationTitle",
	"bookTitle",
	"proceedingsTitle",
	"websiteTitle",
	"blogTitle",
	"forumTitle",
	"programTitle",
	"university",
	"publisher",
}

// Item renders the full metadata block for one item. Absent fields are omitted.
func Item(item *models.Item) string {
	var b strings.Builder
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}

	line("Item Key", item.Key)
	line("Title", item.Title)
	line("Item Type", item.ItemType)
	line("Creators", Creators(item.Creators))
	line("Date", item.Field("date"))
	line("Publication", publication(item))
	line("Volume", item.Field("volume"))
	line("Issue", item.Field("issue"))
	line("Pages", item.Field("pages"))
	line("DOI", item.Field("DOI"))
	line("ISBN", item.Field("ISBN"))
	line("ISSN", item.Field("ISSN"))
	line("URL", item.Field("url"))
	if item.IsAttachment() {
		line("Parent Item", item.ParentKey)
		line("Content Type", item.ContentType)
		line("Filename", item.Filename)
	}
	if abstract := item.Field("abstractNote"); abstract != "" {
		fmt.Fprintf(&b, "\nAbstract:\n%s\n", abstract)
	}
	if note := item.Field("note"); note != "" {
		fmt.Fprintf(&b, "\nNote:\n%s\n", NoteText(note))
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(item.Tags, ", "))
	}
	if item.NumChildren > 0 {
		fmt.Fprintf(&b, "Children: %d\n", item.NumChildren)
	}
	if item.AttachmentKey != "" {
		att := item.AttachmentKey
		if item.AttachmentType != "" {
			att += " (" + item.AttachmentType + ")"
		}
		line("Best Attachment", att)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Items renders a numbered search result list.
func Items(result *models.SearchResult, query string) string {
	if result == nil || len(result.Items) == 0 {
		return NoItemsFound
	}

	var b strings.Builder
	if result.Total > len(result.Items) {
		fmt.Fprintf(&b, "Found %d items matching %q (showing %d):\n\n", result.Total, query, len(result.Items))
	} else {
		fmt.Fprintf(&b, "Found %d items matching %q:\n\n", len(result.Items), query)
	}

	for i := range result.Items {
		item := &result.Items[i]
		title := item.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, item.Key, title)
		fmt.Fprintf(&b, "   Type: %s\n", item.ItemType)
		if creators := Creators(item.Creators); creators != "" {
			fmt.Fprintf(&b, "   Creators: %s\n", creators)
		}
		if date := item.Field("date"); date != "" {
			fmt.Fprintf(&b, "   Date: %s\n", date)
		}
		if abstract := item.Field("abstractNote"); abstract != "" {
			fmt.Fprintf(&b, "   Abstract: %s\n", Truncate(abstract, SnippetLength))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Fulltext renders indexed text with a short header. The text itself is
// passed through verbatim.
func Fulltext(ft *models.Fulltext) string {
	var b strings.Builder
	if ft.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", ft.Title)
	}
	if ft.ParentKey != "" {
		fmt.Fprintf(&b, "Item Key: %s\n", ft.ParentKey)
	}
	fmt.Fprintf(&b, "Attachment Item Key: %s\n", ft.ItemKey)
	switch {
	case ft.TotalPages > 0:
		fmt.Fprintf(&b, "Indexed Pages: %d of %d\n", ft.IndexedPages, ft.TotalPages)
	case ft.TotalChars > 0:
		fmt.Fprintf(&b, "Indexed Characters: %d of %d\n", ft.IndexedChars, ft.TotalChars)
	}
	b.WriteString("\n")
	b.WriteString(ft.Content)
	return b.String()
}

// Collections renders a collection listing.
func Collections(cols []models.Collection) string {
	if len(cols) == 0 {
		return "No collections found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d collections:\n\n", len(cols))
	for i, col := range cols {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, col.Key, col.Name)
		if col.NumItems > 0 {
			fmt.Fprintf(&b, " (%d items)", col.NumItems)
		}
		if col.ParentCollection != "" {
			fmt.Fprintf(&b, " in %s", col.ParentCollection)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Creators renders creators as "Last, First" joined by " and ". Roles other
// than author are annotated, e.g. "Smith, Jane (editor)".
func Creators(creators []models.Creator) string {
	names := make([]string, 0, len(creators))
	for _, c := range creators {
		name := CreatorName(c)
		if name == "" {
			continue
		}
		if c.CreatorType != "" && c.CreatorType != "author" {
			name += " (" + c.CreatorType + ")"
		}
		names = append(names, name)
	}
	return strings.Join(names, " and ")
}

// CreatorName renders one creator as "Last, First", or the single-field name.
func CreatorName(c models.Creator) string {
	switch {
	case c.Name != "":
		return c.Name
	case c.LastName != "" && c.FirstName != "":
		return c.LastName + ", " + c.FirstName
	default:
		return c.LastName + c.FirstName
	}
}

// NoteText converts the HTML Zotero stores for notes into Markdown. Input
// that cannot be parsed is returned unchanged.
func NoteText(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(md)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}

func publication(item *models.Item) string {
	for _, f := range publicationFields {
		if v := item.Field(f); v != "" {
			return v
		}
	}
	return ""
}
