// Package api implements the client for the zeitgeist content-sharing
// service: domain operations over HTTP plus the discriminated error
// taxonomy decoded from failure responses.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const authHeader = "X-API-Auth"

// Credential identifies a zeitgeist account. Its absence on a Client means
// anonymous requests.
type Credential struct {
	Email  string
	Secret string
}

// VoteResult reports the outcome of an upvote toggle.
type VoteResult struct {
	ID      int64 `json:"id"`
	Upvotes int   `json:"upvotes"`
}

// Client issues operations against one zeitgeist installation. A nil
// credential makes all requests anonymous. Client is safe for concurrent
// use; it holds no per-request state.
type Client struct {
	baseURL string
	cred    *Credential
	httpc   *http.Client
}

// NewClient builds a Client for the given base URL. A trailing slash on the
// base URL is tolerated. Pass httpc as nil to use a default client with a
// 30 second timeout; timeouts surface as ConnectionError like any other
// transport failure.
func NewClient(baseURL string, cred *Credential, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		cred:    cred,
		httpc:   httpc,
	}
}

// CheckAuth probes /api_secret and reports whether the server echoes back
// exactly the credential this client was built with. Any transport or
// decode failure counts as not authenticated; CheckAuth never returns an
// error.
func (c *Client) CheckAuth(ctx context.Context) bool {
	if c.cred == nil {
		return false
	}

	body, err := c.get(ctx, "/api_secret")
	if err != nil {
		return false
	}

	var v struct {
		Email  string `json:"email"`
		Secret string `json:"api_secret"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return false
	}
	return v.Email == c.cred.Email && v.Secret == c.cred.Secret
}

// CreateFromUpload submits new content read from r, shared tags as a
// comma-joined string, and the announce flag. Returns one Item per item
// payload in the response, all sharing the response's tag list.
func (c *Client) CreateFromUpload(ctx context.Context, filename string, r io.Reader, tags string, announce bool) ([]Item, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image_upload", filename)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	if err := w.WriteField("tags", tags); err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	if err := w.WriteField("announce", strconv.FormatBool(announce)); err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	if err := w.Close(); err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}

	body, err := c.post(ctx, "/new", w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	return decodeItems(body)
}

// CreateFromURLs submits one or more remote URLs for server-side fetching,
// with a shared comma-joined tag string and the announce flag.
func (c *Client) CreateFromURLs(ctx context.Context, urls []string, tags string, announce bool) ([]Item, error) {
	values := url.Values{}
	for _, u := range urls {
		values.Add("remote_url", u)
	}
	values.Set("tags", tags)
	values.Set("announce", strconv.FormatBool(announce))

	body, err := c.postForm(ctx, "/new", values)
	if err != nil {
		return nil, err
	}
	return decodeItems(body)
}

// Item fetches a single item with its tags.
func (c *Client) Item(ctx context.Context, id int64) (*Item, error) {
	body, err := c.get(ctx, "/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

// UpdateTags adds and removes tags on an item. Both arguments are
// comma-joined tag lists; either may be empty. Returns the updated item.
func (c *Client) UpdateTags(ctx context.Context, id int64, addTags, delTags string) (*Item, error) {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))
	values.Set("add_tags", addTags)
	values.Set("del_tags", delTags)

	body, err := c.postForm(ctx, "/update", values)
	if err != nil {
		return nil, err
	}
	return decodeItem(body)
}

// Delete removes an item and returns the confirmed id.
func (c *Client) Delete(ctx context.Context, id int64) (int64, error) {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))

	body, err := c.postForm(ctx, "/delete", values)
	if err != nil {
		return 0, err
	}

	var v struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return 0, &ConnectionError{Message: fmt.Sprintf("malformed response: %s", err)}
	}
	if v.ID == 0 {
		return 0, &GenericError{Message: "delete response missing id"}
	}
	return v.ID, nil
}

// Upvote toggles an upvote on an item. With remove set, a previously cast
// upvote is withdrawn. Returns the item id and its new upvote count.
func (c *Client) Upvote(ctx context.Context, id int64, remove bool) (*VoteResult, error) {
	values := url.Values{}
	values.Set("id", strconv.FormatInt(id, 10))
	values.Set("remove", strconv.FormatBool(remove))

	body, err := c.postForm(ctx, "/upvote", values)
	if err != nil {
		return nil, err
	}

	var v VoteResult
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("malformed response: %s", err)}
	}
	if v.ID == 0 {
		return nil, &GenericError{Message: "upvote response missing id"}
	}
	return &v, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	return c.do(req)
}

func (c *Client) postForm(ctx context.Context, path string, values url.Values) ([]byte, error) {
	body := strings.NewReader(values.Encode())
	return c.post(ctx, path, "application/x-www-form-urlencoded", body)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

// do executes the request and returns the raw success body. A structured
// failure payload (HTTP 500) is decoded through the error factory and
// surfaced as-is; every other failure becomes ConnectionError.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.cred != nil {
		req.Header.Set(authHeader, c.cred.Email+"|"+c.cred.Secret)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Message: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusInternalServerError:
		var p errorPayload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, &ConnectionError{Message: fmt.Sprintf("malformed error response: %s", err)}
		}
		return nil, decodeErrorPayload(&p)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &ConnectionError{Message: fmt.Sprintf("unexpected status %s", resp.Status)}
	}
	return body, nil
}

// decodeItem decodes a single-item response ({"item": ..., "tags": [...]}).
func decodeItem(body []byte) (*Item, error) {
	var v struct {
		Item *itemPayload `json:"item"`
		Tags []tagPayload `json:"tags"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("malformed response: %s", err)}
	}
	if v.Item == nil {
		return nil, &GenericError{Message: "response missing item"}
	}
	item, err := itemFromPayload(v.Item, v.Tags)
	if err != nil {
		return nil, &GenericError{Message: err.Error()}
	}
	return item, nil
}

// decodeItems decodes a multi-item response ({"items": [...], "tags": [...]}).
// All returned items share the response's tag list.
func decodeItems(body []byte) ([]Item, error) {
	var v struct {
		Items []itemPayload `json:"items"`
		Tags  []tagPayload  `json:"tags"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &ConnectionError{Message: fmt.Sprintf("malformed response: %s", err)}
	}
	if len(v.Items) == 0 {
		return nil, &GenericError{Message: "response missing items"}
	}

	items := make([]Item, 0, len(v.Items))
	for i := range v.Items {
		item, err := itemFromPayload(&v.Items[i], v.Tags)
		if err != nil {
			return nil, &GenericError{Message: err.Error()}
		}
		items = append(items, *item)
	}
	return items, nil
}
