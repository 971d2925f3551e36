package syspkg

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
)

type AptManager struct {
	binary        string
	dpkgBinary    string
	envVars       []string
	installOpts   []string
	updateOpts    []string
	fixBrokenOpts []string
	dpkgOpts      []string
}

func NewAptManager() *AptManager {
	return &AptManager{
		binary:        "apt-get",
		dpkgBinary:    "dpkg",
		envVars:       []string{"DEBIAN_FRONTEND=noninteractive"},
		installOpts:   []string{"install", "-y", "-q"},
		updateOpts:    []string{"update", "-q"},
		fixBrokenOpts: []string{"-f", "install", "-y", "-q"},
		dpkgOpts:      []string{"-i"},
	}
}

func (m *AptManager) GetBin() string {
	return m.binary
}

func (m *AptManager) GetPackageExtension() string {
	return ".deb"
}

func (m *AptManager) Install(list *PackageList) error {
	packagesToInstall, err := list.GetPackages()
	if err != nil {
		return fmt.Errorf("error occurred while parsing packages to install: %w", err)
	}

	if len(packagesToInstall) > 0 {
		slog.Info("Installing packages: " + strings.Join(packagesToInstall, ", "))

		args := append(append([]string{}, m.installOpts...), packagesToInstall...)
		cmd := command.NewShellCommand(m.binary, args, m.envVars, true)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf(errors.SystemPackageInstallErrorTpl, strings.Join(packagesToInstall, " "), err)
		}
	}

	if len(list.LocalPackages) > 0 {
		return m.InstallLocalPackages(list.LocalPackages)
	}

	return nil
}

func (m *AptManager) InstallLocalPackages(paths []string) error {
	if len(paths) == 0 {
		slog.Debug("No local packages to install")
		return nil
	}

	for _, p := range paths {
		exist, err := file.IsPathExist(p)
		if err != nil {
			return fmt.Errorf("failed to check if local package '%s' exists: %w", p, err)
		}
		if !exist {
			return fmt.Errorf("local package '%s' does not exist", p)
		}
	}

	slog.Info("Installing local packages: " + strings.Join(paths, ", "))

	args := append(append([]string{}, m.dpkgOpts...), paths...)
	cmd := command.NewShellCommand(m.dpkgBinary, args, m.envVars, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.SystemLocalPackageInstallErrorTpl, strings.Join(paths, " "), err)
	}

	return nil
}

func (m *AptManager) Update() error {
	slog.Info("Updating apt")
	cmd := command.NewShellCommand(m.binary, m.updateOpts, m.envVars, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.SystemUpdateErrorTpl, err)
	}
	return nil
}

// FixBroken lets apt pull in whatever dependencies a forced dpkg install
// left unresolved.
func (m *AptManager) FixBroken() error {
	slog.Info("Resolving missing dependencies")
	cmd := command.NewShellCommand(m.binary, m.fixBrokenOpts, m.envVars, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.SystemFixBrokenErrorTpl, err)
	}
	return nil
}
