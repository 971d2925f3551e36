package pjeoffice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/config"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/desktop"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools"
)

const (
	LauncherName = "pjeoffice-pro.sh"
	IconName     = "pje-office.png"
	ShortcutName = "pjeoffice-pro.desktop"
)

type Manager struct {
	Config *config.Config
	User   *system.Identity
}

// Installation records where the client's launcher and icon ended up.
type Installation struct {
	Dir      string
	Launcher string
	Icon     string
}

func NewManager(cfg *config.Config, u *system.Identity) *Manager {
	return &Manager{Config: cfg, User: u}
}

func (m *Manager) DestDir() string {
	return filepath.Join(m.User.HomeDir, ".local", "share", "pjeoffice-pro")
}

// Install unpacks the client into the user's data directory. Everything it
// creates belongs to the user.
func (m *Manager) Install(ctx context.Context) (*Installation, error) {
	dest := m.DestDir()
	owner := m.User.Owner()

	if err := file.MkdirAllOwned(dest, 0o755, owner); err != nil {
		return nil, err
	}

	zip := m.Config.PJeOfficeZip()
	if err := tools.Fetch(ctx, "PJe Office Pro", m.Config.PJeOfficeURL, zip, m.Config.ChecksumFor(m.Config.PJeOfficeURL)); err != nil {
		return nil, err
	}
	if err := file.RequireContentType(zip, "application/zip"); err != nil {
		return nil, err
	}

	slog.Info("Extracting PJe Office Pro to " + dest)
	cmd := command.NewUserCommand(m.User.Credential(), "unzip", []string{"-o", zip, "-d", dest})
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(errors.ToolExtractFailedErrorTpl, zip, dest, err)
	}

	launcher, err := m.findLauncher(dest)
	if err != nil {
		return nil, err
	}

	icon := filepath.Join(dest, IconName)
	if err := tools.Fetch(ctx, "PJe Office icon", m.Config.PJeIconURL, icon, m.Config.ChecksumFor(m.Config.PJeIconURL)); err != nil {
		return nil, err
	}
	tools.WarnUnlessContentType(icon, "image/png")
	if err := file.SetOwnerAndMode(icon, 0o644, owner); err != nil {
		return nil, err
	}

	slog.Info("PJe Office Pro installed for " + m.User.Username)

	return &Installation{Dir: dest, Launcher: launcher, Icon: icon}, nil
}

// findLauncher locates the start script anywhere under dest and marks it
// executable. A missing script is reported but the expected path is still
// returned.
func (m *Manager) findLauncher(dest string) (string, error) {
	launcher, err := file.FindFirst(dest, LauncherName)
	if err != nil {
		return "", err
	}
	if launcher == "" {
		fallback := filepath.Join(dest, LauncherName)
		slog.Warn(LauncherName + " not found in the archive, the shortcut will point to " + fallback)
		return fallback, nil
	}

	if err := file.AppFs.Chmod(launcher, 0o755); err != nil {
		return "", fmt.Errorf(errors.ToolSetPermissionsFailedErrorTpl, launcher, "0755", err)
	}
	return launcher, nil
}

func (i *Installation) Entry() *desktop.Entry {
	return &desktop.Entry{
		Name:          "PJe Office Pro",
		Comment:       "Carregador de Certificados",
		Exec:          i.Launcher,
		Icon:          i.Icon,
		Categories:    []string{"Office"},
		StartupNotify: desktop.Bool(false),
	}
}

func (m *Manager) InstallShortcut(installer *desktop.Installer, inst *Installation) (string, error) {
	return installer.Install(inst.Entry(), ShortcutName)
}
