package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/pterm/pterm"
)

// Fetch downloads url to dest unless dest already exists, then checks it
// against sha256 when one is pinned.
func Fetch(ctx context.Context, what, url, dest, sha256 string) error {
	if err := file.AppFs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf(errors.DirCreateErrorTpl, filepath.Dir(dest), err)
	}

	s, _ := pterm.DefaultSpinner.Start("Downloading " + what + "...")
	if err := file.DownloadFileOnce(ctx, url, dest); err != nil {
		s.Fail("Download failed.")
		return fmt.Errorf(errors.ToolDownloadFailedErrorTpl, what, err)
	}
	s.Success("Download complete.")

	if err := file.VerifySHA256(dest, sha256); err != nil {
		return err
	}
	slog.Debug(what + " saved to " + dest)

	return nil
}

// WarnUnlessContentType logs when path does not look like mime.
func WarnUnlessContentType(path, mime string) {
	if err := file.RequireContentType(path, mime); err != nil {
		slog.Warn(err.Error())
	}
}
