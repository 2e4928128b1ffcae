package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v60/github"
	"github.com/kwanter/formfix/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ref
		wantErr bool
	}{
		{
			name:  "with_ref",
			input: "github:kwanter/sakip@main:resources/views/sakip/indicators/create.blade.php",
			want:  Ref{Owner: "kwanter", Repo: "sakip", Ref: "main", Path: "resources/views/sakip/indicators/create.blade.php"},
		},
		{
			name:  "default_branch",
			input: "github:kwanter/sakip:create.blade.php",
			want:  Ref{Owner: "kwanter", Repo: "sakip", Path: "create.blade.php"},
		},
		{
			name:  "glob_path",
			input: "github:kwanter/sakip@v1.2.0:resources/**/*.blade.php",
			want:  Ref{Owner: "kwanter", Repo: "sakip", Ref: "v1.2.0", Path: "resources/**/*.blade.php"},
		},
		{name: "missing_scheme", input: "kwanter/sakip:create.blade.php", wantErr: true},
		{name: "missing_path", input: "github:kwanter/sakip@main", wantErr: true},
		{name: "missing_owner", input: "github:sakip:create.blade.php", wantErr: true},
		{name: "too_many_segments", input: "github:a/b/c:create.blade.php", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String(), "references round trip")
		})
	}
}

func newTestSource(t *testing.T, mux *http.ServeMux) *Source {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return NewWithClient(client)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestSource_Read(t *testing.T) {
	const form = "<select id=\"category\">\r\n</select>\r\n"

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/kwanter/sakip/contents/resources/views/create.blade.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"path":     "resources/views/create.blade.php",
			"content":  base64.StdEncoding.EncodeToString([]byte(form)),
		})
	})
	mux.HandleFunc("/repos/kwanter/sakip/contents/missing.blade.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(t, w, map[string]any{"message": "Not Found"})
	})
	mux.HandleFunc("/repos/kwanter/sakip/contents/broken.blade.php", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(t, w, map[string]any{"message": "boom"})
	})

	src := newTestSource(t, mux)
	ctx := context.Background()

	t.Run("reads_file", func(t *testing.T) {
		identity := "github:kwanter/sakip@main:resources/views/create.blade.php"
		doc, err := src.Read(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, form, doc.Text())
		assert.Equal(t, identity, doc.Identity())
		assert.Equal(t, "\r\n", doc.Terminator())
	})

	t.Run("not_found_is_source_not_found", func(t *testing.T) {
		_, err := src.Read(ctx, "github:kwanter/sakip:missing.blade.php")
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrSourceNotFound))
	})

	t.Run("server_error_is_not_source_not_found", func(t *testing.T) {
		_, err := src.Read(ctx, "github:kwanter/sakip:broken.blade.php")
		require.Error(t, err)
		assert.False(t, errors.Is(err, store.ErrSourceNotFound))
		assert.Contains(t, err.Error(), "getting file content")
	})

	t.Run("invalid_reference", func(t *testing.T) {
		_, err := src.Read(ctx, "github:nope")
		require.Error(t, err)
	})
}

func TestSource_Glob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/kwanter/sakip/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		writeJSON(t, w, map[string]any{
			"sha": "abc123",
			"tree": []map[string]any{
				{"path": "resources/views/sakip", "type": "tree"},
				{"path": "resources/views/sakip/indicators/edit.blade.php", "type": "blob"},
				{"path": "resources/views/sakip/indicators/create.blade.php", "type": "blob"},
				{"path": "resources/views/sakip/indicators/create.blade.php.backup", "type": "blob"},
				{"path": "app/Http/Controllers/IndicatorController.php", "type": "blob"},
			},
		})
	})

	src := newTestSource(t, mux)

	ref, err := ParseRef("github:kwanter/sakip@main:resources/**/*.blade.php")
	require.NoError(t, err)

	got, err := src.Glob(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"github:kwanter/sakip@main:resources/views/sakip/indicators/create.blade.php",
		"github:kwanter/sakip@main:resources/views/sakip/indicators/edit.blade.php",
	}, got)
}
