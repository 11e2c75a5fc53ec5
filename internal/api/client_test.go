package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckAuth(t *testing.T) {
	t.Run("server echoes credential", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api_secret", r.URL.Path)
			assert.Equal(t, "a@b.c|s3cret", r.Header.Get("X-API-Auth"))
			w.Write([]byte(`{"email":"a@b.c","api_secret":"s3cret"}`))
		})

		c := NewClient(srv.URL, &Credential{Email: "a@b.c", Secret: "s3cret"}, nil)
		assert.True(t, c.CheckAuth(context.Background()))
	})

	t.Run("mismatched echo fails closed", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email":"a@b.c","api_secret":"other"}`))
		})

		c := NewClient(srv.URL, &Credential{Email: "a@b.c", Secret: "s3cret"}, nil)
		assert.False(t, c.CheckAuth(context.Background()))
	})

	t.Run("transport failure fails closed", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", &Credential{Email: "a@b.c", Secret: "s"}, nil)
		assert.False(t, c.CheckAuth(context.Background()))
	})

	t.Run("anonymous client is never authenticated", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", nil, nil)
		assert.False(t, c.CheckAuth(context.Background()))
	})
}

func TestCreateFromURLs(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/new", r.URL.Path)
		assert.Equal(t, []string{"http://x/1.jpg", "http://x/2.jpg"}, r.Form["remote_url"])
		assert.Equal(t, "cat, dog", r.Form.Get("tags"))
		assert.Equal(t, "false", r.Form.Get("announce"))
		// anonymous request carries no auth header
		assert.Empty(t, r.Header.Get("X-API-Auth"))

		w.Write([]byte(`{
			"items":[
				{"id":10,"type":"image","mimetype":"image/jpeg","size":100,"upvote_count":0},
				{"id":11,"type":"image","mimetype":"image/jpeg","size":200,"upvote_count":0}
			],
			"tags":[{"tagname":"cat"},{"tagname":"dog"}]
		}`))
	})

	c := NewClient(srv.URL+"/", nil, nil) // trailing slash is trimmed
	items, err := c.CreateFromURLs(context.Background(), []string{"http://x/1.jpg", "http://x/2.jpg"}, "cat, dog", false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(10), items[0].ID)
	assert.Equal(t, int64(11), items[1].ID)
	// every item shares the response tag list
	require.Len(t, items[0].Tags, 2)
	assert.Equal(t, "cat", items[0].Tags[0].Name)
	assert.Equal(t, items[0].Tags, items[1].Tags)
}

func TestCreateFromUpload(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		file, header, err := r.FormFile("image_upload")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pic.png", header.Filename)
		assert.Equal(t, "cat", r.FormValue("tags"))
		assert.Equal(t, "true", r.FormValue("announce"))

		w.Write([]byte(`{"items":[{"id":5,"type":"image","mimetype":"image/png","size":3}],"tags":[{"tagname":"cat"}]}`))
	})

	c := NewClient(srv.URL, nil, nil)
	items, err := c.CreateFromUpload(context.Background(), "pic.png", strings.NewReader("png"), "cat", true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].ID)
}

func TestItem(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/123", r.URL.Path)
			w.Write([]byte(`{
				"item":{"id":123,"type":"image","title":"a cat","source":"http://src","mimetype":"image/png","size":512,"upvote_count":3},
				"tags":[{"tagname":"cat"}]
			}`))
		})

		c := NewClient(srv.URL, nil, nil)
		item, err := c.Item(context.Background(), 123)
		require.NoError(t, err)
		assert.Equal(t, int64(123), item.ID)
		assert.Equal(t, "a cat", item.Title)
		assert.Equal(t, "http://src", item.Source)
		assert.Equal(t, int64(512), item.Size)
		assert.Equal(t, 3, item.Upvotes)
	})

	t.Run("missing required field maps to generic", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"item":{"id":123},"tags":[]}`)) // no type
		})

		c := NewClient(srv.URL, nil, nil)
		_, err := c.Item(context.Background(), 123)

		var gen *GenericError
		require.ErrorAs(t, err, &gen)
	})
}

func TestUpdateTags(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/update", r.URL.Path)
		assert.Equal(t, "9", r.Form.Get("id"))
		assert.Equal(t, "foo,baz", r.Form.Get("add_tags"))
		assert.Equal(t, "bar", r.Form.Get("del_tags"))

		w.Write([]byte(`{"item":{"id":9,"type":"image"},"tags":[{"tagname":"foo"},{"tagname":"baz"}]}`))
	})

	c := NewClient(srv.URL, nil, nil)
	item, err := c.UpdateTags(context.Background(), 9, "foo,baz", "bar")
	require.NoError(t, err)
	assert.Equal(t, int64(9), item.ID)
	require.Len(t, item.Tags, 2)
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/delete", r.URL.Path)
		assert.Equal(t, "4", r.Form.Get("id"))
		w.Write([]byte(`{"id":4}`))
	})

	c := NewClient(srv.URL, nil, nil)
	id, err := c.Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestUpvote(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/upvote", r.URL.Path)
		assert.Equal(t, "7", r.Form.Get("id"))
		assert.Equal(t, "true", r.Form.Get("remove"))
		w.Write([]byte(`{"id":7,"upvotes":2}`))
	})

	c := NewClient(srv.URL, &Credential{Email: "a@b.c", Secret: "s"}, nil)
	res, err := c.Upvote(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.ID)
	assert.Equal(t, 2, res.Upvotes)
}

func TestDo_FailureMapping(t *testing.T) {
	t.Run("structured 500 decodes through the factory", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"type":"DuplicateError","message":"dup","id":21}`))
		})

		c := NewClient(srv.URL, nil, nil)
		_, err := c.Item(context.Background(), 1)

		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, int64(21), dup.ID)
	})

	t.Run("malformed 500 body becomes connection error", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>so broken</html>`))
		})

		c := NewClient(srv.URL, nil, nil)
		_, err := c.Item(context.Background(), 1)

		var conn *ConnectionError
		require.ErrorAs(t, err, &conn)
	})

	t.Run("other statuses become connection errors", func(t *testing.T) {
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		c := NewClient(srv.URL, nil, nil)
		_, err := c.Item(context.Background(), 1)

		var conn *ConnectionError
		require.ErrorAs(t, err, &conn)
	})

	t.Run("refused connection becomes connection error", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", nil, nil)
		_, err := c.Item(context.Background(), 1)

		var conn *ConnectionError
		require.ErrorAs(t, err, &conn)
	})
}
