package page

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sharectl/internal/share"
)

type fakeFetcher struct {
	pages map[string][]byte
	paths []string
}

func (f *fakeFetcher) Get(_ context.Context, path string) ([]byte, error) {
	f.paths = append(f.paths, path)
	body, ok := f.pages[path]
	if !ok {
		return nil, errors.New("404")
	}
	return body, nil
}

func newFetcher(t *testing.T) *fakeFetcher {
	t.Helper()
	files, err := os.ReadFile("testdata/files.html")
	require.NoError(t, err)
	shared, err := os.ReadFile("testdata/shared_files.html")
	require.NoError(t, err)
	return &fakeFetcher{pages: map[string][]byte{"/files": files, "/shared-files": shared}}
}

func TestSession_CSRF(t *testing.T) {
	ctx := context.Background()
	f := newFetcher(t)
	s := NewSession(f, "_csrf", "_csrf_header")

	_, _, err := s.CSRF(ctx)
	assert.ErrorIs(t, err, share.ErrMissingCSRF, "no page loaded yet")

	_, err = s.Load(ctx, "/files")
	require.NoError(t, err)

	header, token, err := s.CSRF(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X-CSRF-TOKEN", header)
	assert.Equal(t, "c5f1e0d2-token", token)

	_, err = s.Load(ctx, "/shared-files")
	require.NoError(t, err)

	_, token, err = s.CSRF(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token, "token follows the current page")
	assert.Equal(t, []string{"/files", "/shared-files"}, f.paths)
}

func TestSession_CSRF_MissingMeta(t *testing.T) {
	s := NewSession(newFetcher(t), "csrf_token", "csrf_header")
	_, err := s.Load(context.Background(), "/files")
	require.NoError(t, err)

	_, _, err = s.CSRF(context.Background())
	assert.ErrorIs(t, err, share.ErrMissingCSRF)
}

func TestSession_LoadError(t *testing.T) {
	s := NewSession(newFetcher(t), "_csrf", "_csrf_header")

	_, err := s.Load(context.Background(), "/nope")
	assert.Error(t, err)
	assert.Nil(t, s.Current())
}
