package file_test

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/ptitest"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPathExist(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/file", []byte("x"), 0o644))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "Path does not exist", path: "/tmp/nonexistent", want: false},
		{name: "Path exists", path: "/tmp/file", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := file.IsPathExist(tt.path)
			assert.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestIsFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(fs.MkdirAll("/opt/dir", 0o755))
	require.NoError(afero.WriteFile(fs, "/opt/file", []byte("x"), 0o644))

	isFile, err := file.IsFile("/opt/file")
	require.NoError(err)
	assert.True(isFile)

	isFile, err = file.IsFile("/opt/dir")
	require.NoError(err)
	assert.False(isFile)

	isFile, err = file.IsFile("/opt/missing")
	require.NoError(err)
	assert.False(isFile)
}

func TestCopyFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/src", []byte("test"), 0o644))

	err := file.CopyFile("/tmp/src", "/tmp/dest")
	require.NoError(err)

	contents, err := afero.ReadFile(fs, "/tmp/dest")
	require.NoError(err)
	assert.Equal("test", string(contents))

	err = file.CopyFile("/tmp", "/tmp/dest2")
	assert.ErrorContains(err, "is not a regular file")
}

func TestDownloadFile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	tests := []struct {
		name         string
		urlPath      string
		status       int
		body         string
		wantContents string
		wantErr      bool
	}{
		{
			name:         "Successful request",
			urlPath:      "/success.txt",
			status:       http.StatusOK,
			body:         "200 OK",
			wantContents: "200 OK",
			wantErr:      false,
		},
		{
			name:    "Unsuccessful request",
			urlPath: "/fail.txt",
			status:  http.StatusNotFound,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := ptitest.UseMemFs(t)
			require.NoError(fs.MkdirAll("/tmp", 0o755))

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.urlPath {
					t.Errorf("Request URL = %v, want %v", r.URL.Path, tt.urlPath)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := file.DownloadFile(context.Background(), srv.URL+tt.urlPath, "/tmp/download")
			if tt.wantErr {
				require.Error(err)
				exists, _ := afero.Exists(fs, "/tmp/download")
				assert.False(exists)
				return
			}
			require.NoError(err)
			contents, err := afero.ReadFile(fs, "/tmp/download")
			require.NoError(err)
			assert.Equal(tt.wantContents, string(contents))
		})
	}
}

func TestDownloadFileOnce(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/token_debs/libssl.deb", []byte("cached"), 0o644))

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	require.NoError(file.DownloadFileOnce(context.Background(), srv.URL+"/libssl.deb", "/tmp/token_debs/libssl.deb"))
	require.NoError(file.DownloadFileOnce(context.Background(), srv.URL+"/libtiff.deb", "/tmp/token_debs/libtiff.deb"))

	assert.Equal(1, requests)
	cached, _ := afero.ReadFile(fs, "/tmp/token_debs/libssl.deb")
	assert.Equal("cached", string(cached))
	fresh, _ := afero.ReadFile(fs, "/tmp/token_debs/libtiff.deb")
	assert.Equal("fresh", string(fresh))
}

func TestDownloadFileCancelled(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(fs.MkdirAll("/tmp", 0o755))

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("fresh"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := file.DownloadFile(ctx, srv.URL+"/safesign.zip", "/tmp/safesign.zip")
	require.ErrorIs(err, context.Canceled)
	assert.Equal(0, requests)
	exists, _ := afero.Exists(fs, "/tmp/safesign.zip")
	assert.False(exists)
}

func TestDownloadFileInterruptedMidTransfer(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(fs.MkdirAll("/tmp", 0o755))

	flushed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1048576")
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		close(flushed)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-flushed
		cancel()
	}()

	err := file.DownloadFile(ctx, srv.URL+"/pjeoffice-pro.zip", "/tmp/pjeoffice-pro.zip")
	require.Error(err)
	exists, _ := afero.Exists(fs, "/tmp/pjeoffice-pro.zip")
	assert.False(exists, "partial download must be removed")
}

func TestVerifySHA256(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/safesign.zip", []byte("payload"), 0o644))
	sum := sha256.Sum256([]byte("payload"))
	good := hex.EncodeToString(sum[:])

	assert.NoError(file.VerifySHA256("/tmp/safesign.zip", ""))
	assert.NoError(file.VerifySHA256("/tmp/safesign.zip", good))

	err := file.VerifySHA256("/tmp/safesign.zip", "deadbeef")
	var mismatch *errors.ChecksumMismatchError
	require.True(stderrors.As(err, &mismatch))
	assert.Equal(good, mismatch.Got)
}

func TestRequireContentType(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	w, err := zw.Create("safesign.deb")
	require.NoError(err)
	_, err = w.Write([]byte("!<arch>\n"))
	require.NoError(err)
	require.NoError(zw.Close())

	require.NoError(afero.WriteFile(fs, "/tmp/safesign.zip", buf.Bytes(), 0o644))
	require.NoError(afero.WriteFile(fs, "/tmp/error.html", []byte("<html><body>Not found</body></html>"), 0o644))

	assert.NoError(file.RequireContentType("/tmp/safesign.zip", "application/zip"))

	err = file.RequireContentType("/tmp/error.html", "application/zip")
	var unexpected *errors.UnexpectedContentError
	require.True(stderrors.As(err, &unexpected))
	assert.Contains(unexpected.Got, "text/html")
}

func TestGlob(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	for _, name := range []string{"b.deb", "a.deb", "notes.txt"} {
		require.NoError(afero.WriteFile(fs, "/tmp/token_debs/"+name, []byte{}, 0o644))
	}

	got, err := file.Glob("/tmp/token_debs/*.deb")
	require.NoError(err)
	assert.Equal([]string{"/tmp/token_debs/a.deb", "/tmp/token_debs/b.deb"}, got)

	got, err = file.Glob("/tmp/empty/*.deb")
	require.NoError(err)
	assert.Empty(got)
}

func TestFindFirst(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/home/alice/.local/share/pjeoffice-pro/pjeoffice-pro/bin/pjeoffice-pro.sh", []byte("#!/bin/sh"), 0o644))
	require.NoError(fs.MkdirAll("/home/alice/empty", 0o755))

	got, err := file.FindFirst("/home/alice/.local/share/pjeoffice-pro", "pjeoffice-pro.sh")
	require.NoError(err)
	assert.Equal("/home/alice/.local/share/pjeoffice-pro/pjeoffice-pro/bin/pjeoffice-pro.sh", got)

	got, err = file.FindFirst("/home/alice/empty", "pjeoffice-pro.sh")
	require.NoError(err)
	assert.Equal("", got)
}

func TestMkdirAllOwned(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	mem := afero.NewMemMapFs()
	require.NoError(mem.MkdirAll("/home/alice", 0o755))
	ownerFs := ptitest.NewOwnerFs(mem)
	file.AppFs = ownerFs
	t.Cleanup(ptitest.ResetAppFs)

	alice := file.Owner{Uid: 1000, Gid: 1000}
	require.NoError(file.MkdirAllOwned("/home/alice/.local/share/pjeoffice-pro", 0o755, alice))

	for _, dir := range []string{"/home/alice/.local", "/home/alice/.local/share", "/home/alice/.local/share/pjeoffice-pro"} {
		owner, ok := ownerFs.OwnerOf(dir)
		assert.True(ok, "%s was not chowned", dir)
		assert.Equal(alice, owner)
	}
	_, ok := ownerFs.OwnerOf("/home/alice")
	assert.False(ok, "pre-existing directory must keep its owner")
}

func TestWriteOwned(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	ownerFs := ptitest.NewOwnerFs(afero.NewMemMapFs())
	file.AppFs = ownerFs
	t.Cleanup(ptitest.ResetAppFs)

	alice := file.Owner{Uid: 1000, Gid: 1001}
	require.NoError(file.WriteOwned("/home/alice/Desktop/x.desktop", []byte("[Desktop Entry]\n"), 0o755, alice))

	owner, ok := ownerFs.OwnerOf("/home/alice/Desktop/x.desktop")
	require.True(ok)
	assert.Equal(alice, owner)

	info, err := ownerFs.Stat("/home/alice/Desktop/x.desktop")
	require.NoError(err)
	assert.Equal("-rwxr-xr-x", info.Mode().Perm().String())
}

func TestRemoveIfExists(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	fs := ptitest.UseMemFs(t)
	require.NoError(afero.WriteFile(fs, "/tmp/safesign_pkg/a.deb", []byte{}, 0o644))

	require.NoError(file.RemoveIfExists("/tmp/safesign_pkg"))
	exists, _ := afero.Exists(fs, "/tmp/safesign_pkg")
	assert.False(exists)

	assert.NoError(file.RemoveIfExists("/tmp/safesign_pkg"))
}
