package safesign

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/config"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/account"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/desktop"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/service"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/syspkg"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools"
)

const (
	TokenAdminShortcut = "TokenAdmin.desktop"
	TokenAdminIconName = "token2.png"
)

type Manager struct {
	*system.LocalSystem
	Config *config.Config
	User   *system.Identity
}

func NewManager(l *system.LocalSystem, cfg *config.Config, u *system.Identity) *Manager {
	return &Manager{
		LocalSystem: l,
		Config:      cfg,
		User:        u,
	}
}

// PrepareAccounts makes sure the smartcard group exists and holds the user.
func (m *Manager) PrepareAccounts() error {
	if err := account.EnsureGroup(m.Config.Group); err != nil {
		return err
	}
	return account.AddToGroup(m.User.Username, m.Config.Group)
}

func (m *Manager) InstallDependencies() error {
	if err := m.PackageManager.Update(); err != nil {
		return err
	}
	return m.PackageManager.Install(&syspkg.PackageList{
		Packages:         m.Config.Packages,
		PackageListFiles: m.Config.PackageListFiles,
	})
}

func fileNameFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid package url %s: %w", raw, err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "", fmt.Errorf("package url %s has no file name", raw)
	}
	return name, nil
}

// DownloadLegacyPackages fetches every pinned archive into the token_debs
// scratch directory, skipping those already there.
func (m *Manager) DownloadLegacyPackages(ctx context.Context) error {
	dir := m.Config.TokenDebsDir()
	if err := file.AppFs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(errors.DirCreateErrorTpl, dir, err)
	}

	for _, u := range m.Config.LegacyPackageURLs {
		name, err := fileNameFromURL(u)
		if err != nil {
			return err
		}
		if err := tools.Fetch(ctx, name, u, filepath.Join(dir, name), m.Config.ChecksumFor(u)); err != nil {
			return err
		}
	}
	return nil
}

// InstallLegacyPackages forces the downloaded archives in with dpkg and lets
// apt repair whatever that leaves broken. Only the repair pass is fatal.
func (m *Manager) InstallLegacyPackages(ctx context.Context) error {
	if err := m.DownloadLegacyPackages(ctx); err != nil {
		return err
	}

	debs, err := file.Glob(filepath.Join(m.Config.TokenDebsDir(), "*"+m.PackageManager.GetPackageExtension()))
	if err != nil {
		return err
	}
	if len(debs) == 0 {
		slog.Warn("No legacy packages found in " + m.Config.TokenDebsDir())
	} else {
		_ = command.Tolerate(m.PackageManager.Install(&syspkg.PackageList{LocalPackages: debs}), "legacy package install")
	}

	return m.PackageManager.FixBroken()
}

// InstallSafeSign downloads the vendor archive, unpacks it and installs the
// first package found inside.
func (m *Manager) InstallSafeSign(ctx context.Context) error {
	zip := m.Config.SafeSignZip()
	if err := tools.Fetch(ctx, "SafeSign", m.Config.SafeSignURL, zip, m.Config.ChecksumFor(m.Config.SafeSignURL)); err != nil {
		return err
	}
	if err := file.RequireContentType(zip, "application/zip"); err != nil {
		return err
	}

	pkgDir := m.Config.SafeSignPkgDir()
	slog.Info("Extracting " + zip)
	cmd := command.NewShellCommand("unzip", []string{"-o", zip, "-d", pkgDir}, nil, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.ToolExtractFailedErrorTpl, zip, pkgDir, err)
	}

	debs, err := file.Glob(filepath.Join(pkgDir, "*"+m.PackageManager.GetPackageExtension()))
	if err != nil {
		return err
	}
	if len(debs) == 0 {
		slog.Warn("No .deb found in the SafeSign archive")
	} else {
		if err := m.PackageManager.Install(&syspkg.PackageList{LocalPackages: debs[:1]}); err != nil {
			_ = command.Tolerate(fmt.Errorf(errors.ToolInstallFailedErrorTpl, "SafeSign", err), "SafeSign package install")
		}
	}

	return m.PackageManager.FixBroken()
}

func (m *Manager) ActivateService(ctx context.Context) error {
	return service.Activate(ctx, m.Config.Service)
}

// tokenAdminLayout matches the launcher the SafeSign tooling has always
// shipped, with Terminal and Type ahead of Categories.
var tokenAdminLayout = []string{
	desktop.KeyName,
	desktop.KeyComment,
	desktop.KeyExec,
	desktop.KeyIcon,
	desktop.KeyTerminal,
	desktop.KeyType,
	desktop.KeyCategories,
}

func TokenAdminEntry() *desktop.Entry {
	return &desktop.Entry{
		Name:       "TokenAdmin",
		Comment:    "Gerenciador SafeSign",
		Exec:       "tokenadmin",
		Icon:       "token2",
		Categories: []string{"Utility", "System"},
		Layout:     tokenAdminLayout,
	}
}

// InstallShortcut places the TokenAdmin icon in the system theme and writes
// its launcher. Icon copies that fail only produce warnings.
func (m *Manager) InstallShortcut(ctx context.Context, installer *desktop.Installer) (string, error) {
	icon := m.Config.TokenAdminIcon()
	defer func() {
		if err := file.RemoveIfExists(icon); err != nil {
			slog.Warn(err.Error())
		}
	}()

	if err := tools.Fetch(ctx, "TokenAdmin icon", m.Config.TokenAdminIconURL, icon, m.Config.ChecksumFor(m.Config.TokenAdminIconURL)); err != nil {
		return "", err
	}
	tools.WarnUnlessContentType(icon, "image/png")

	if _, err := desktop.ProvisionIcon(icon, TokenAdminIconName, m.Config.IconDirs); err != nil {
		slog.Warn("TokenAdmin icon is missing from some directories: " + err.Error())
	}
	desktop.RefreshIconCache(desktop.HicolorTheme)

	return installer.Install(TokenAdminEntry(), TokenAdminShortcut)
}
