// Package zoterotest provides an in-memory zotero.Backend for tests.
package zoterotest

import (
	"context"
	"strings"
	"sync"

	"github.com/Epistemic-Technology/zotero-mcp/internal/zotero"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// Backend serves a fixed library from memory. Search matches the query
// case-insensitively against titles, in insertion order.
type Backend struct {
	LibraryMode models.Mode

	// Err, when set, is returned by every method.
	Err error

	mu          sync.Mutex
	order       []string
	items       map[string]*models.Item
	fulltext    map[string]*models.Fulltext
	collections []models.Collection
	calls       map[string]int
	lastQuery   models.SearchQuery
}

var _ zotero.Backend = (*Backend)(nil)

// New returns an empty backend in remote mode.
func New() *Backend {
	return &Backend{
		LibraryMode: models.ModeRemote,
		items:       map[string]*models.Item{},
		fulltext:    map[string]*models.Fulltext{},
		calls:       map[string]int{},
	}
}

// AddItem stores item; later adds with the same key replace it.
func (b *Backend) AddItem(item models.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[item.Key]; !ok {
		b.order = append(b.order, item.Key)
	}
	b.items[item.Key] = &item
}

// AddFulltext makes ft available for key, which may be a parent or attachment key.
func (b *Backend) AddFulltext(key string, ft models.Fulltext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fulltext[key] = &ft
}

// AddCollection appends a collection.
func (b *Backend) AddCollection(c models.Collection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections = append(b.collections, c)
}

// Calls reports how many times the named method ran.
func (b *Backend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

// LastQuery returns the most recent search query.
func (b *Backend) LastQuery() models.SearchQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery
}

func (b *Backend) Mode() models.Mode { return b.LibraryMode }

func (b *Backend) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Search"]++
	b.lastQuery = q
	if err := b.check(ctx); err != nil {
		return nil, err
	}

	needle := strings.ToLower(q.Query)
	result := &models.SearchResult{}
	for _, key := range b.order {
		item := b.items[key]
		if item.IsAttachment() || !strings.Contains(strings.ToLower(item.Title), needle) {
			continue
		}
		if q.Tag != "" && !hasTag(item, q.Tag) {
			continue
		}
		result.Total++
		if q.Limit <= 0 || len(result.Items) < q.Limit {
			result.Items = append(result.Items, *item)
		}
	}
	return result, nil
}

func (b *Backend) Item(ctx context.Context, key string) (*models.Item, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Item"]++
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	item, ok := b.items[key]
	if !ok {
		return nil, &zotero.Error{Kind: zotero.KindNotFound, Op: "item", Key: key, Status: 404}
	}
	cp := *item
	return &cp, nil
}

func (b *Backend) Fulltext(ctx context.Context, key string) (*models.Fulltext, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Fulltext"]++
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	if b.LibraryMode == models.ModeLocal {
		return nil, &zotero.Error{Kind: zotero.KindNotSupported, Op: "fulltext", Key: key, Status: 501, Err: zotero.ErrFulltextUnavailable}
	}
	if ft, ok := b.fulltext[key]; ok {
		cp := *ft
		return &cp, nil
	}
	item, ok := b.items[key]
	switch {
	case !ok:
		return nil, &zotero.Error{Kind: zotero.KindNotFound, Op: "fulltext", Key: key, Status: 404}
	case item.AttachmentKey == "" && !item.IsAttachment():
		return nil, &zotero.Error{Kind: zotero.KindNotFound, Op: "fulltext", Key: key, Err: zotero.ErrNoAttachment}
	default:
		return nil, &zotero.Error{Kind: zotero.KindNotFound, Op: "fulltext", Key: key, Status: 404, Err: zotero.ErrNoFulltext}
	}
}

func (b *Backend) Collections(ctx context.Context, q models.CollectionQuery) ([]models.Collection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["Collections"]++
	if err := b.check(ctx); err != nil {
		return nil, err
	}
	var out []models.Collection
	for _, c := range b.collections {
		switch {
		case q.ParentCollection != "" && c.ParentCollection != q.ParentCollection:
			continue
		case q.ParentCollection == "" && q.TopLevelOnly && c.ParentCollection != "":
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (b *Backend) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &zotero.Error{Kind: zotero.KindCanceled, Err: err}
	}
	return b.Err
}

func hasTag(item *models.Item, tag string) bool {
	for _, t := range item.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
