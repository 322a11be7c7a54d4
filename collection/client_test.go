package collection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRecordEncodesEmptyTags(t *testing.T) {
	b, err := json.Marshal(UploadRecord{Name: "T", URL: "U"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"T","url":"U","tags":[]}`, string(b))
}

func TestCreatePostsJSON(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"T","url":"U","tags":[]}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()), WithToken("secret"))
	err := c.Create(context.Background(), UploadRecord{Name: "T", URL: "U", Tags: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCreateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Create(context.Background(), UploadRecord{Name: "T"})
	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "boom", se.Body)
}

func TestCreateTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url).Create(context.Background(), UploadRecord{Name: "T"})
	assert.Error(t, err)
}

func TestListAndGet(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "go", r.URL.Query().Get("tag"))
		w.Write([]byte(`[{"id":"a","name":"A","url":"https://a.test","tags":["go"]}]`))
	})
	mux.HandleFunc("/items/a", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"a","name":"A","url":"https://a.test","description":"d","tags":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	list, err := c.List(context.Background(), "go")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, []string{"go"}, list[0].Tags)

	a, err := c.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "d", a.Description)

	_, err = c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddReturnsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"","url":"https://a.test","tags":["go"]}`, string(body))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"a1","name":"https://a.test","url":"https://a.test","tags":["go"]}`))
	}))
	defer srv.Close()

	a, err := NewClient(srv.URL).Add(context.Background(), UploadRecord{URL: "https://a.test", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "https://a.test", a.Name)
}

func TestSearchSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "go blog", r.URL.Query().Get("q"))
		assert.False(t, r.URL.Query().Has("tag"))
		w.Write([]byte(`[{"id":"a","name":"The Go Blog","url":"https://go.dev/blog/","tags":[]}]`))
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL).Search(context.Background(), "go blog", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "The Go Blog", list[0].Name)
}

func TestDelete(t *testing.T) {
	var deleted []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Path != "/items/a" {
			http.Error(w, `{"message":"article not found"}`, http.StatusNotFound)
			return
		}
		deleted = append(deleted, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("secret"))
	require.NoError(t, c.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"/items/a"}, deleted)

	err := c.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
