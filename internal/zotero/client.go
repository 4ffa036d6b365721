package zotero

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Epistemic-Technology/zotero-mcp/internal/config"
	"github.com/Epistemic-Technology/zotero-mcp/internal/logger"
	"github.com/Epistemic-Technology/zotero-mcp/models"
)

const (
	apiVersion = "3"

	// defaultPageSize bounds each search request; Zotero itself allows 100.
	defaultPageSize = 50

	// Full text of a long book can run to tens of megabytes.
	maxResponseBytes = 64 << 20
)

// UserAgent is sent with every request. Set at startup from the build version.
var UserAgent = "zotero-mcp/dev"

// apiClient is the HTTP plumbing shared by the remote and local backends.
// It is immutable after construction; the limiter is safe for concurrent use.
type apiClient struct {
	baseURL  string
	library  models.LibraryReference
	http     *http.Client
	limiter  *rate.Limiter
	pageSize int
	log      logger.Logger

	// hint is appended to network failures, e.g. how to enable the local API.
	hint string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func newAPIClient(cfg *config.Config, log logger.Logger) *apiClient {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond*2))
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &apiClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		library:  cfg.Library,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  limiter,
		pageSize: defaultPageSize,
		log:      log,
	}
}

// libraryURL builds an absolute URL for a path below the library prefix.
func (c *apiClient) libraryURL(path string, params url.Values) string {
	u := c.baseURL + c.library.Prefix() + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// get performs one GET against the backend and classifies the outcome.
// It never retries: a 429 is returned to the caller as KindRateLimited.
func (c *apiClient) get(ctx context.Context, op, key, rawURL string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Kind: KindCanceled, Op: op, Key: key, Err: fmt.Errorf("waiting for request slot: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Key: key, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Zotero-API-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.library.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.library.APIKey)
	}

	c.log.Debug("GET %s", rawURL)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classifyRequestError(ctx, op, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.classifyRequestError(ctx, op, key, fmt.Errorf("reading response: %w", err))
	}
	c.log.Debug("GET %s -> %d (%d bytes, %v)", rawURL, resp.StatusCode, len(body), time.Since(start))

	if backoff := resp.Header.Get("Backoff"); backoff != "" {
		c.log.Warn("Zotero asked clients to back off for %ss", backoff)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
	}
	zerr := classifyStatus(op, key, resp.StatusCode, resp.Header, body)
	if resp.StatusCode == http.StatusForbidden && c.hint != "" {
		zerr.Err = errors.New(c.hint)
	}
	return nil, zerr
}

func (c *apiClient) classifyRequestError(ctx context.Context, op, key string, err error) error {
	if ctx.Err() != nil {
		return &Error{Kind: KindCanceled, Op: op, Key: key, Err: ctx.Err()}
	}
	// The client's own timeout is a transport failure; only the caller's
	// context makes a request Canceled.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		err = fmt.Errorf("request timed out after %v: %w", c.http.Timeout, err)
	}
	if c.hint != "" {
		err = fmt.Errorf("%w (%s)", err, c.hint)
	}
	return &Error{Kind: KindTransport, Op: op, Key: key, Err: err}
}

func classifyStatus(op, key string, status int, header http.Header, body []byte) *Error {
	e := &Error{Op: op, Key: key, Status: status}
	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Err = errors.New("not found")
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.RetryAfter = parseRetryAfter(header.Get("Retry-After"))
		e.Err = errors.New("too many requests")
	case http.StatusNotImplemented:
		e.Kind = KindNotSupported
		e.Err = errors.New("endpoint not implemented by this Zotero version")
	case http.StatusForbidden:
		e.Kind = KindTransport
		e.Err = errors.New("access denied, check that the API key can read this library")
	default:
		e.Kind = KindTransport
		e.Err = fmt.Errorf("HTTP %d: %s", status, snippet(body))
	}
	return e
}

// parseRetryAfter accepts the delay-seconds form Zotero sends. HTTP dates are
// rare enough here that they are treated as "unknown".
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}

// nextLink extracts the rel="next" target from a Link header. Links that leave
// the configured API root are ignored so credentials never travel elsewhere.
func (c *apiClient) nextLink(header http.Header) string {
	for _, link := range header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}
			target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
			for _, attr := range segments[1:] {
				if strings.TrimSpace(attr) == `rel="next"` && strings.HasPrefix(target, c.baseURL+"/") {
					return target
				}
			}
		}
	}
	return ""
}

func totalResults(header http.Header) int {
	n, err := strconv.Atoi(header.Get("Total-Results"))
	if err != nil {
		return 0
	}
	return n
}

// search runs a quick search and follows continuation links until limit items
// are collected or the backend has no further pages.
func (c *apiClient) search(ctx context.Context, q models.SearchQuery) (*models.SearchResult, error) {
	limit := ClampLimit(q.Limit)

	params := url.Values{}
	params.Set("q", q.Query)
	qmode := q.QMode
	if qmode == "" {
		qmode = models.QModeTitleCreator
	}
	params.Set("qmode", qmode)
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	itemType := q.ItemType
	if itemType == "" {
		itemType = "-attachment"
	}
	params.Set("itemType", itemType)
	params.Set("limit", strconv.Itoa(min(limit, c.pageSize)))
	params.Set("start", "0")

	resp, err := c.get(ctx, "search", "", c.libraryURL("/items", params))
	if err != nil {
		return nil, err
	}

	result := &models.SearchResult{Total: totalResults(resp.header)}
	for page := 1; ; page++ {
		items, err := decodeItems(resp.body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: "search", Err: err}
		}
		for _, item := range items {
			if len(result.Items) == limit {
				break
			}
			result.Items = append(result.Items, item)
		}
		if len(result.Items) >= limit || len(items) == 0 {
			break
		}
		next := c.nextLink(resp.header)
		if next == "" {
			break
		}
		c.log.Debug("Fetching search page %d", page+1)
		resp, err = c.get(ctx, "search", "", next)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *apiClient) item(ctx context.Context, op, key string) (*models.Item, error) {
	resp, err := c.get(ctx, op, key, c.libraryURL("/items/"+url.PathEscape(key), nil))
	if err != nil {
		return nil, err
	}
	item, err := decodeItem(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Key: key, Err: err}
	}
	return item, nil
}

// fulltextContent fetches the indexed text of an attachment.
func (c *apiClient) fulltextContent(ctx context.Context, requestedKey string, target attachmentTarget) (*models.Fulltext, error) {
	path := "/items/" + url.PathEscape(target.Key) + "/fulltext"
	resp, err := c.get(ctx, "fulltext", requestedKey, c.libraryURL(path, nil))
	if err != nil {
		return nil, err
	}
	ft, err := decodeFulltext(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "fulltext", Key: requestedKey, Err: err}
	}
	ft.ItemKey = target.Key
	ft.ParentKey = target.ParentKey
	ft.Title = target.Title
	return ft, nil
}

func (c *apiClient) collections(ctx context.Context, q models.CollectionQuery) ([]models.Collection, error) {
	path := "/collections"
	switch {
	case q.ParentCollection != "":
		path = "/collections/" + url.PathEscape(q.ParentCollection) + "/collections"
	case q.TopLevelOnly:
		path = "/collections/top"
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(clampCollectionLimit(q.Limit)))
	params.Set("sort", "title")

	resp, err := c.get(ctx, "collections", q.ParentCollection, c.libraryURL(path, params))
	if err != nil {
		return nil, err
	}
	cols, err := decodeCollections(resp.body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: "collections", Key: q.ParentCollection, Err: err}
	}
	return cols, nil
}

// ClampLimit applies the search default and upper bound.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultSearchLimit
	}
	return min(limit, models.MaxSearchLimit)
}

func clampCollectionLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
