package file

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/spf13/afero"
)

var AppFs = afero.NewOsFs()

// Owner is the uid/gid pair handed user-facing files.
type Owner struct {
	Uid int
	Gid int
}

func IsPathExist(path string) (bool, error) {
	return afero.Exists(AppFs, path)
}

func IsFile(path string) (bool, error) {
	info, err := AppFs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf(errors.FileStatErrorTpl, path, err)
	}
	return info.Mode().IsRegular(), nil
}

func Create(path string) (afero.File, error) {
	slog.Debug("Creating file: " + path)
	fh, err := AppFs.Create(path)
	if err != nil {
		return nil, fmt.Errorf(errors.FileCreateErrorTpl, path, err)
	}
	slog.Debug("File created")
	return fh, nil
}

func Open(path string) (afero.File, error) {
	fh, err := AppFs.Open(path)
	if err != nil {
		return nil, err
	}
	return fh, nil
}

func CopyFile(src, dest string) error {
	slog.Debug("Copying file from " + src + " to " + dest)

	sourceFileStat, err := AppFs.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat file %s during copy: %w", src, err)
	}

	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	sourceFh, err := Open(src)
	if err != nil {
		return fmt.Errorf("failed to open copy source file '%s': %w", src, err)
	}
	defer sourceFh.Close()

	destinationFh, err := Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create copy destination file '%s': %w", dest, err)
	}
	defer destinationFh.Close()

	_, err = io.Copy(destinationFh, sourceFh)
	if err != nil {
		return fmt.Errorf(errors.FileCopyErrorTpl, src, dest, err)
	}

	slog.Debug("Copy complete")

	return nil
}

// DownloadFile fetches url into filepath. A transfer cut short, including by
// ctx being cancelled, leaves no partial file behind.
func DownloadFile(ctx context.Context, url string, filepath string) error {
	slog.Debug("Downloading file from " + url + " to " + filepath)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf(errors.RequestFailedErrorTpl, url, err)
	}
	client := &http.Client{}

	resp, err := client.Do(request)
	if err != nil {
		return fmt.Errorf(errors.RequestFailedErrorTpl, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file with status '%s'", resp.Status)
	}

	newFh, err := Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to save download to file '%s': %w", filepath, err)
	}
	_, err = io.Copy(newFh, resp.Body)
	newFh.Close()
	if err != nil {
		if rmErr := AppFs.Remove(filepath); rmErr != nil {
			slog.Debug("Could not remove partial download: " + rmErr.Error())
		}
		return fmt.Errorf(errors.RequestCopyFailedErrorTpl, filepath, err)
	}

	slog.Debug("Download complete")

	return nil
}

// DownloadFileOnce skips the request when filepath is already present.
func DownloadFileOnce(ctx context.Context, url string, filepath string) error {
	exists, err := IsFile(filepath)
	if err != nil {
		return err
	}
	if exists {
		slog.Info("Already downloaded: " + filepath)
		return nil
	}
	return DownloadFile(ctx, url, filepath)
}

// VerifySHA256 is a no-op when want is empty.
func VerifySHA256(path, want string) error {
	if want == "" {
		return nil
	}

	fh, err := Open(path)
	if err != nil {
		return fmt.Errorf(errors.FileOpenErrorTpl, path, err)
	}
	defer fh.Close()

	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return fmt.Errorf("failed to hash %s: %w", path, err)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, want) {
		return &errors.ChecksumMismatchError{Path: path, Want: want, Got: got}
	}

	slog.Debug("Checksum verified for " + path)
	return nil
}

// RequireContentType sniffs path and fails unless it matches mime.
func RequireContentType(path, mime string) error {
	fh, err := Open(path)
	if err != nil {
		return fmt.Errorf(errors.FileOpenErrorTpl, path, err)
	}
	defer fh.Close()

	detected, err := mimetype.DetectReader(fh)
	if err != nil {
		return fmt.Errorf("failed to detect content type of %s: %w", path, err)
	}
	if !detected.Is(mime) {
		return &errors.UnexpectedContentError{Path: path, Want: mime, Got: detected.String()}
	}
	return nil
}

// Glob matches pattern against AppFs in lexical order.
func Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(AppFs, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
	}
	return matches, nil
}

var errFound = fmt.Errorf("found")

// FindFirst walks root and returns the first regular file called name, or ""
// when there is none.
func FindFirst(root, name string) (string, error) {
	var found string
	err := afero.Walk(AppFs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk directory '%s': %w", root, err)
		}
		if !info.IsDir() && info.Name() == name {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && err != errFound {
		return "", err
	}
	return found, nil
}

// MkdirAllOwned creates path and every missing parent, handing the newly
// created directories to owner.
func MkdirAllOwned(path string, perm os.FileMode, owner Owner) error {
	path = filepath.Clean(path)

	var missing []string
	for p := path; ; p = filepath.Dir(p) {
		exists, err := IsPathExist(p)
		if err != nil {
			return fmt.Errorf(errors.FileStatErrorTpl, p, err)
		}
		if exists {
			break
		}
		missing = append(missing, p)
		if p == filepath.Dir(p) {
			break
		}
	}

	if err := AppFs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf(errors.DirCreateErrorTpl, path, err)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := AppFs.Chown(missing[i], owner.Uid, owner.Gid); err != nil {
			return fmt.Errorf(errors.FileChownErrorTpl, missing[i], owner.Uid, owner.Gid, err)
		}
	}

	return nil
}

// WriteOwned writes contents to path, then applies owner and perm.
func WriteOwned(path string, contents []byte, perm os.FileMode, owner Owner) error {
	if err := afero.WriteFile(AppFs, path, contents, perm); err != nil {
		return fmt.Errorf(errors.FileCreateErrorTpl, path, err)
	}
	return SetOwnerAndMode(path, perm, owner)
}

func SetOwnerAndMode(path string, perm os.FileMode, owner Owner) error {
	if err := AppFs.Chown(path, owner.Uid, owner.Gid); err != nil {
		return fmt.Errorf(errors.FileChownErrorTpl, path, owner.Uid, owner.Gid, err)
	}
	if err := AppFs.Chmod(path, perm); err != nil {
		return fmt.Errorf(errors.FileChmodErrorTpl, path, perm.String(), err)
	}
	return nil
}

// RemoveIfExists deletes path recursively; a missing path is not an error.
func RemoveIfExists(path string) error {
	exists, err := IsPathExist(path)
	if err != nil {
		return fmt.Errorf(errors.FileStatErrorTpl, path, err)
	}
	if !exists {
		slog.Debug("Nothing to remove at " + path)
		return nil
	}
	if err := AppFs.RemoveAll(path); err != nil {
		return fmt.Errorf(errors.FileRemoveErrorTpl, path, err)
	}
	slog.Debug("Removed " + path)
	return nil
}
