package zotero

import (
	"fmt"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// Data keys that are decoded into dedicated Item fields rather than Fields.
var structuralKeys = map[string]bool{
	"key":          true,
	"version":      true,
	"itemType":     true,
	"title":        true,
	"creators":     true,
	"tags":         true,
	"collections":  true,
	"relations":    true,
	"parentItem":   true,
	"contentType":  true,
	"filename":     true,
	"linkMode":     true,
	"dateAdded":    true,
	"dateModified": true,
	"md5":          true,
	"mtime":        true,
	"charset":      true,
	"deleted":      true,
}

// Some item types keep their display title under another name.
var titleFields = []string{"title", "caseName", "nameOfAct", "subject"}

func decodeItems(body []byte) ([]models.Item, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: items list is not valid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of items", ErrMalformedResponse)
	}
	entries := root.Array()
	items := make([]models.Item, 0, len(entries))
	for _, entry := range entries {
		item, err := itemFromJSON(entry)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func decodeItem(body []byte) (*models.Item, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: item is not valid JSON", ErrMalformedResponse)
	}
	return itemFromJSON(gjson.ParseBytes(body))
}

func itemFromJSON(entry gjson.Result) (*models.Item, error) {
	if !entry.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object for an item", ErrMalformedResponse)
	}
	data := entry.Get("data")
	key := entry.Get("key").String()
	if key == "" {
		key = data.Get("key").String()
	}
	if key == "" {
		return nil, fmt.Errorf("%w: item without key", ErrMalformedResponse)
	}

	item := &models.Item{
		Key:         key,
		Version:     int(entry.Get("version").Int()),
		ItemType:    data.Get("itemType").String(),
		ParentKey:   data.Get("parentItem").String(),
		NumChildren: int(entry.Get("meta.numChildren").Int()),
		ContentType: data.Get("contentType").String(),
		Filename:    data.Get("filename").String(),
		LinkMode:    data.Get("linkMode").String(),
		Fields:      map[string]string{},
	}

	for _, name := range titleFields {
		if title := strings.TrimSpace(data.Get(name).String()); title != "" {
			item.Title = title
			break
		}
	}

	data.Get("creators").ForEach(func(_, c gjson.Result) bool {
		item.Creators = append(item.Creators, models.Creator{
			CreatorType: c.Get("creatorType").String(),
			FirstName:   strings.TrimSpace(c.Get("firstName").String()),
			LastName:    strings.TrimSpace(c.Get("lastName").String()),
			Name:        strings.TrimSpace(c.Get("name").String()),
		})
		return true
	})

	data.Get("tags").ForEach(func(_, t gjson.Result) bool {
		if tag := strings.TrimSpace(t.Get("tag").String()); tag != "" {
			item.Tags = append(item.Tags, tag)
		}
		return true
	})

	data.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if structuralKeys[name] || v.Type != gjson.String {
			return true
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			item.Fields[name] = s
		}
		return true
	})

	if href := entry.Get("links.attachment.href").String(); href != "" {
		item.AttachmentKey = path.Base(href)
		item.AttachmentType = entry.Get("links.attachment.attachmentType").String()
	}

	return item, nil
}

func decodeFulltext(body []byte) (*models.Fulltext, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: full text is not valid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	content := root.Get("content")
	if !content.Exists() {
		return nil, fmt.Errorf("%w: full text response has no content", ErrMalformedResponse)
	}
	return &models.Fulltext{
		Content:      content.String(),
		IndexedPages: int(root.Get("indexedPages").Int()),
		TotalPages:   int(root.Get("totalPages").Int()),
		IndexedChars: int(root.Get("indexedChars").Int()),
		TotalChars:   int(root.Get("totalChars").Int()),
	}, nil
}

func decodeCollections(body []byte) ([]models.Collection, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: collections list is not valid JSON", ErrMalformedResponse)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of collections", ErrMalformedResponse)
	}
	var cols []models.Collection
	for _, entry := range root.Array() {
		col := models.Collection{
			Key:      entry.Get("key").String(),
			Name:     entry.Get("data.name").String(),
			NumItems: int(entry.Get("meta.numItems").Int()),
		}
		if col.Key == "" {
			col.Key = entry.Get("data.key").String()
		}
		// parentCollection is false for top-level collections.
		if parent := entry.Get("data.parentCollection"); parent.Type == gjson.String {
			col.ParentCollection = parent.String()
		}
		cols = append(cols, col)
	}
	return cols, nil
}
