package zotero

import (
	"context"
	"errors"

	"github.com/Epistemic-Technology/zotero-mcp/models"
)

// attachmentTarget is the attachment whose indexed text answers a fulltext request.
type attachmentTarget struct {
	Key       string
	ParentKey string
	Title     string
}

// resolveAttachment picks the attachment to read for item. An attachment is
// used directly; a regular item uses the best attachment Zotero advertises in
// its links, which is how the lookup stays at two requests.
func resolveAttachment(requestedKey string, item *models.Item) (attachmentTarget, error) {
	if item.IsAttachment() {
		return attachmentTarget{Key: item.Key, ParentKey: item.ParentKey, Title: item.Title}, nil
	}
	if item.AttachmentKey != "" {
		return attachmentTarget{Key: item.AttachmentKey, ParentKey: item.Key, Title: item.Title}, nil
	}
	return attachmentTarget{}, &Error{Kind: KindNotFound, Op: "fulltext", Key: requestedKey, Err: ErrNoAttachment}
}

// fulltext resolves key to an attachment and fetches its text. reclassify
// decides what an HTTP failure of the fulltext endpoint itself means, which
// differs between the web API and the desktop one.
func (c *apiClient) fulltext(ctx context.Context, key string, reclassify func(*Error) error) (*models.Fulltext, error) {
	item, err := c.item(ctx, "fulltext", key)
	if err != nil {
		return nil, err
	}

	target, err := resolveAttachment(key, item)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Item %s resolved to attachment %s", key, target.Key)

	ft, err := c.fulltextContent(ctx, key, target)
	if err != nil {
		var zerr *Error
		if errors.As(err, &zerr) && zerr.Status != 0 {
			return nil, reclassify(zerr)
		}
		return nil, err
	}
	return ft, nil
}
