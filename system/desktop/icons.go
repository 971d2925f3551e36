package desktop

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
)

const HicolorTheme = "/usr/share/icons/hicolor"

var DefaultIconDirs = []string{
	HicolorTheme + "/48x48/apps",
	HicolorTheme + "/64x64/apps",
	HicolorTheme + "/128x128/apps",
	HicolorTheme + "/256x256/apps",
	"/usr/share/pixmaps",
}

// ProvisionIcon copies src into every dir as name. Each directory is tried
// independently; the returned paths are the copies that succeeded and the
// error aggregates the ones that did not.
func ProvisionIcon(src, name string, dirs []string) ([]string, error) {
	var result *multierror.Error
	var delivered []string

	for _, dir := range dirs {
		dest := filepath.Join(dir, name)
		if err := copyIcon(src, dir, dest); err != nil {
			slog.Warn(fmt.Sprintf("Could not copy icon to %s: %s", dir, err))
			result = multierror.Append(result, err)
			continue
		}
		slog.Info("Icon copied to " + dest)
		delivered = append(delivered, dest)
	}

	return delivered, result.ErrorOrNil()
}

func copyIcon(src, dir, dest string) error {
	if err := file.AppFs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(errors.DirCreateErrorTpl, dir, err)
	}
	if err := file.CopyFile(src, dest); err != nil {
		return err
	}
	if err := file.AppFs.Chmod(dest, 0o644); err != nil {
		return fmt.Errorf(errors.FileChmodErrorTpl, dest, "0644", err)
	}
	return nil
}

// RefreshIconCache rebuilds the icon cache of theme when the tool is present.
func RefreshIconCache(theme string) {
	if !command.Available("gtk-update-icon-cache") {
		slog.Debug("gtk-update-icon-cache not found, skipping")
		return
	}
	slog.Info("Updating icon cache")
	cmd := command.NewShellCommand("gtk-update-icon-cache", []string{theme}, nil, true)
	_ = command.Tolerate(cmd.Run(), "gtk-update-icon-cache")
}
