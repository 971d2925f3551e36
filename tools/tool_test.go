package tools_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/ptitest"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.zip" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	sum := sha256.Sum256([]byte("payload"))
	good := hex.EncodeToString(sum[:])

	tests := []struct {
		name    string
		path    string
		sha256  string
		wantErr string
	}{
		{name: "No checksum", path: "/pjeoffice-pro.zip"},
		{name: "Matching checksum", path: "/pjeoffice-pro.zip", sha256: good},
		{name: "Checksum mismatch", path: "/pjeoffice-pro.zip", sha256: "00", wantErr: "checksum mismatch"},
		{name: "Not found", path: "/missing.zip", wantErr: "failed to download PJe Office Pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := ptitest.UseMemFs(t)

			err := tools.Fetch(context.Background(), "PJe Office Pro", srv.URL+tt.path, "/tmp/nested/pjeoffice-pro.zip", tt.sha256)
			if tt.wantErr != "" {
				assert.ErrorContains(err, tt.wantErr)
				return
			}
			require.NoError(err)
			contents, err := afero.ReadFile(fs, "/tmp/nested/pjeoffice-pro.zip")
			require.NoError(err)
			assert.Equal("payload", string(contents))
		})
	}
}

func TestFetchInterrupted(t *testing.T) {
	assert := assert.New(t)

	fs := ptitest.UseMemFs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tools.Fetch(ctx, "SafeSign", srv.URL+"/safesign.zip", "/tmp/safesign.zip", "")
	assert.ErrorIs(err, context.Canceled)
	exists, _ := afero.Exists(fs, "/tmp/safesign.zip")
	assert.False(exists)
}
