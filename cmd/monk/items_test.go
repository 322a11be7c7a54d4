package main

import (
	"bytes"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/monk"
	"github.com/eringen/monk/collection"
)

func newCollectionServer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	store, err := monk.NewStore(filepath.Join(dir, "monk.db"))
	require.NoError(t, err)

	app := monk.New(monk.Config{
		AdminPassword: "pw",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		APIToken:      "secret",
		LogLevel:      "off",
	}, monk.WithStore(store), monk.WithStaticDir(dir))
	require.NoError(t, app.Init())
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv.URL
}

func TestItemCommands(t *testing.T) {
	server := newCollectionServer(t)
	flags := []string{"-server", server, "-token", "secret"}
	run := func(cmd func([]string, io.Writer) error, args ...string) string {
		t.Helper()
		var out bytes.Buffer
		require.NoError(t, cmd(append(append([]string{}, flags...), args...), &out))
		return out.String()
	}

	out := run(runAdd, "-name", "The Go Blog", "-tags", "Go, blog", "https://go.dev/blog/")
	id, name, ok := strings.Cut(strings.TrimSpace(out), "\t")
	require.True(t, ok, out)
	assert.Equal(t, "The Go Blog", name)
	run(runAdd, "https://doc.rust-lang.org/book/")

	out = run(runGet, id)
	assert.Contains(t, out, "url:     https://go.dev/blog/")
	assert.Contains(t, out, "tags:    go, blog")

	out = run(runList, "-tag", "blog")
	assert.Contains(t, out, id)
	assert.NotContains(t, out, "rust-lang")

	out = run(runSearch, "rust")
	assert.Contains(t, out, "https://doc.rust-lang.org/book/")
	assert.NotContains(t, out, "go.dev")

	out = run(runDelete, id)
	assert.Equal(t, "deleted "+id+"\n", out)

	var buf bytes.Buffer
	err := runGet(append(flags, id), &buf)
	assert.ErrorIs(t, err, collection.ErrNotFound)
}

func TestItemCommandsRequireArguments(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, runGet(nil, &out), "article id")
	assert.ErrorContains(t, runAdd(nil, &out), "URL")
	assert.ErrorContains(t, runDelete(nil, &out), "article id")
	assert.ErrorContains(t, runSearch([]string{" "}, &out), "query")
}

func TestDeleteWithoutTokenFails(t *testing.T) {
	server := newCollectionServer(t)
	var out bytes.Buffer
	require.NoError(t, runAdd([]string{"-server", server, "-token", "secret", "https://a.test"}, &out))
	id, _, _ := strings.Cut(out.String(), "\t")

	err := runDelete([]string{"-server", server, "-token", "", id}, &out)
	var se *collection.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.Code)
}
