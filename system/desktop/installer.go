package desktop

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
)

const launcherMode = 0o755

// ResolveDesktopDir asks xdg-user-dir for the user's Desktop and falls back
// to HOME/Desktop when it fails or prints something unusable.
func ResolveDesktopDir(u *system.Identity) string {
	fallback := filepath.Join(u.HomeDir, "Desktop")

	cmd := command.NewUserCommand(u.Credential(), "xdg-user-dir", []string{"DESKTOP"})
	if err := cmd.Run(); err != nil {
		slog.Debug("xdg-user-dir failed, using " + fallback + ": " + err.Error())
		return fallback
	}

	dir := strings.TrimSpace(cmd.Output())
	if dir == "" || !filepath.IsAbs(dir) {
		slog.Debug(fmt.Sprintf("xdg-user-dir returned %q, using %s", dir, fallback))
		return fallback
	}
	return dir
}

// Installer places launchers on the user's Desktop and in their
// application menu, owned by that user.
type Installer struct {
	User       *system.Identity
	DesktopDir string
	MenuDir    string
}

func NewInstaller(u *system.Identity) *Installer {
	return &Installer{
		User:       u,
		DesktopDir: ResolveDesktopDir(u),
		MenuDir:    filepath.Join(u.HomeDir, ".local", "share", "applications"),
	}
}

// Install writes entry as fileName and returns the Desktop copy's path.
func (i *Installer) Install(entry *Entry, fileName string) (string, error) {
	owner := i.User.Owner()

	if err := file.MkdirAllOwned(i.DesktopDir, launcherMode, owner); err != nil {
		return "", err
	}
	desktopFile := filepath.Join(i.DesktopDir, fileName)
	slog.Info("Writing " + desktopFile)
	if err := file.WriteOwned(desktopFile, []byte(entry.Render()), launcherMode, owner); err != nil {
		return "", err
	}
	i.trust(desktopFile)

	if err := file.MkdirAllOwned(i.MenuDir, launcherMode, owner); err != nil {
		return "", err
	}
	menuFile := filepath.Join(i.MenuDir, fileName)
	if err := file.CopyFile(desktopFile, menuFile); err != nil {
		return "", fmt.Errorf(errors.FileCopyErrorTpl, desktopFile, menuFile, err)
	}
	if err := file.SetOwnerAndMode(menuFile, launcherMode, owner); err != nil {
		return "", err
	}

	i.updateDatabase()

	return desktopFile, nil
}

// trust marks path as trusted so GNOME launches it without a prompt.
func (i *Installer) trust(path string) {
	if !command.Available("gio") {
		return
	}
	cmd := command.NewUserCommand(i.User.Credential(), "gio", []string{"set", path, "metadata::trusted", "true"})
	_ = command.Tolerate(cmd.Run(), "marking "+path+" as trusted")
}

func (i *Installer) updateDatabase() {
	if !command.Available("update-desktop-database") {
		slog.Debug("update-desktop-database not found, skipping")
		return
	}
	cmd := command.NewShellCommand("update-desktop-database", []string{i.MenuDir}, nil, true)
	_ = command.Tolerate(cmd.Run(), "update-desktop-database")
}
