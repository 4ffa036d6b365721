package models

import "fmt"

// Mode selects which Zotero API a library is reached through.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// LibraryType is the kind of library a LibraryReference points at.
type LibraryType string

const (
	LibraryTypeUser  LibraryType = "user"
	LibraryTypeGroup LibraryType = "group"
)

// LocalLibraryID is the id the local API uses for "the current user".
const LocalLibraryID = "0"

// LibraryReference identifies the Zotero library every request targets.
type LibraryReference struct {
	Mode        Mode        `json:"mode"`
	LibraryID   string      `json:"library_id,omitempty"`
	LibraryType LibraryType `json:"library_type,omitempty"`
	APIKey      string      `json:"-"`
}

// Prefix returns the API path prefix for the library, e.g. "/users/12345".
func (r LibraryReference) Prefix() string {
	if r.LibraryType == LibraryTypeGroup {
		return fmt.Sprintf("/groups/%s", r.LibraryID)
	}
	return fmt.Sprintf("/users/%s", r.LibraryID)
}

// Search defaults and bounds.
const (
	DefaultSearchLimit = 25
	MaxSearchLimit     = 100
	QModeTitleCreator  = "titleCreatorYear"
	QModeEverything    = "everything"
)

// SearchQuery describes a quick search against a library.
type SearchQuery struct {
	Query    string // Free text, must not be empty
	QMode    string // titleCreatorYear (default) or everything
	Tag      string // Optional tag filter, supports Zotero's boolean syntax ("a || b", "-c")
	ItemType string // Optional item type filter (default "-attachment")
	Limit    int    // Max results (default 25, bounded to MaxSearchLimit)
}

// Creator is one entry of an item's creators list. Zotero stores either a
// two-field name (FirstName/LastName) or a single-field Name.
type Creator struct {
	CreatorType string `json:"creator_type,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Item is a normalized Zotero record. Which keys appear in Fields depends on
// ItemType, so consumers read fields by name and treat absence uniformly.
type Item struct {
	Key         string            `json:"key"`
	Version     int               `json:"version,omitempty"`
	ItemType    string            `json:"item_type"`
	Title       string            `json:"title,omitempty"`
	Creators    []Creator         `json:"creators,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	ParentKey   string            `json:"parent_key,omitempty"`
	NumChildren int               `json:"num_children,omitempty"`

	// Best attachment advertised by the backend for regular items.
	AttachmentKey  string `json:"attachment_key,omitempty"`
	AttachmentType string `json:"attachment_type,omitempty"`

	// Attachment-only fields.
	ContentType string `json:"content_type,omitempty"`
	Filename    string `json:"filename,omitempty"`
	LinkMode    string `json:"link_mode,omitempty"`
}

// Field returns the named field, or "" when the item does not carry it.
func (i *Item) Field(name string) string {
	if i.Fields == nil {
		return ""
	}
	return i.Fields[name]
}

// IsAttachment reports whether the item is itself an attachment.
func (i *Item) IsAttachment() bool {
	return i.ItemType == "attachment"
}

// SearchResult is one bounded page set of search hits, in backend relevance order.
type SearchResult struct {
	Items []Item `json:"items"`
	Total int    `json:"total"` // Total matches reported by the backend (0 if unknown)
}

// Fulltext is the extracted text Zotero indexed for an attachment.
type Fulltext struct {
	ItemKey      string `json:"item_key"` // Attachment key the text belongs to
	ParentKey    string `json:"parent_key,omitempty"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content"`
	IndexedPages int    `json:"indexed_pages,omitempty"`
	TotalPages   int    `json:"total_pages,omitempty"`
	IndexedChars int    `json:"indexed_chars,omitempty"`
	TotalChars   int    `json:"total_chars,omitempty"`
}

// Collection is a Zotero collection with basic hierarchy information.
type Collection struct {
	Key              string `json:"key"`
	Name             string `json:"name"`
	ParentCollection string `json:"parent_collection,omitempty"` // Empty if top-level
	NumItems         int    `json:"num_items,omitempty"`
}

// CollectionQuery contains parameters for listing collections.
type CollectionQuery struct {
	TopLevelOnly     bool   // List only top-level collections (no parent)
	ParentCollection string // List subcollections of this collection key
	Limit            int    // Max results (default 100)
}
