package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/desktop"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "PJE_INSTALLER"
	SystemConfigDir = "/etc/instalador-pje"
)

var DefaultPackages = []string{
	"libengine-pkcs11-openssl",
	"libp11-3",
	"libpcsc-perl",
	"libccid",
	"pcsc-tools",
	"libasedrive-usb",
	"opensc",
	"openssl",
	"pcscd",
	"libc6",
	"libgcc-s1",
	"libgdbm-compat4",
	"libglib2.0-0",
	"libpcsclite1",
	"libssl3",
	"libstdc++6",
}

var DefaultLegacyPackageURLs = []string{
	"http://archive.ubuntu.com/ubuntu/pool/main/o/openssl/libssl1.1_1.1.1-1ubuntu2.1~18.04.23_amd64.deb",
	"http://archive.ubuntu.com/ubuntu/pool/universe/w/wxwidgets3.0/libwxbase3.0-0v5_3.0.5.1+dfsg-4_amd64.deb",
	"http://archive.ubuntu.com/ubuntu/pool/main/g/gdk-pixbuf-xlib/libgdk-pixbuf-xlib-2.0-0_2.40.2-2build4_amd64.deb",
	"http://archive.ubuntu.com/ubuntu/pool/universe/g/gdk-pixbuf-xlib/libgdk-pixbuf2.0-0_2.40.2-2build4_amd64.deb",
	"http://archive.ubuntu.com/ubuntu/pool/main/t/tiff/libtiff5_4.3.0-6_amd64.deb",
	"http://archive.ubuntu.com/ubuntu/pool/universe/w/wxwidgets3.0/libwxgtk3.0-gtk3-0v5_3.0.5.1+dfsg-4_amd64.deb",
}

const (
	DefaultSafeSignURL       = "https://safesign.gdamericadosul.com.br/content/SafeSign_IC_Standard_Linux_ub2204_3.8.0.0_AET.000.zip"
	DefaultPJeOfficeURL      = "https://pje-office.pje.jus.br/pro/pjeoffice-pro-v2.5.16u-linux_x64.zip"
	DefaultPJeIconURL        = "https://raw.githubusercontent.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/refs/heads/main/pjeoffice-pro-black.png"
	DefaultTokenAdminIconURL = "https://raw.githubusercontent.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/refs/heads/main/tokenadmin-black.png"
)

// Checksum pins the SHA-256 of the file served at URL.
type Checksum struct {
	URL    string `mapstructure:"url"`
	SHA256 string `mapstructure:"sha256"`
}

type Config struct {
	Unattended        bool       `mapstructure:"unattended"`
	Group             string     `mapstructure:"group"`
	Service           string     `mapstructure:"service"`
	TempDir           string     `mapstructure:"temp_dir"`
	Packages          []string   `mapstructure:"packages"`
	PackageListFiles  []string   `mapstructure:"package_list_files"`
	LegacyPackageURLs []string   `mapstructure:"legacy_package_urls"`
	SafeSignURL       string     `mapstructure:"safesign_url"`
	PJeOfficeURL      string     `mapstructure:"pjeoffice_url"`
	PJeIconURL        string     `mapstructure:"pjeoffice_icon_url"`
	TokenAdminIconURL string     `mapstructure:"tokenadmin_icon_url"`
	IconDirs          []string   `mapstructure:"icon_dirs"`
	Checksums         []Checksum `mapstructure:"checksums"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("unattended", false)
	v.SetDefault("group", "scard")
	v.SetDefault("service", "pcscd")
	v.SetDefault("temp_dir", "/tmp")
	v.SetDefault("packages", DefaultPackages)
	v.SetDefault("package_list_files", []string{})
	v.SetDefault("legacy_package_urls", DefaultLegacyPackageURLs)
	v.SetDefault("safesign_url", DefaultSafeSignURL)
	v.SetDefault("pjeoffice_url", DefaultPJeOfficeURL)
	v.SetDefault("pjeoffice_icon_url", DefaultPJeIconURL)
	v.SetDefault("tokenadmin_icon_url", DefaultTokenAdminIconURL)
	v.SetDefault("icon_dirs", desktop.DefaultIconDirs)
	v.SetDefault("checksums", []Checksum{})
}

// Load layers defaults, the YAML config file and PJE_INSTALLER_* environment
// variables. An empty path looks for config.yaml under /etc/instalador-pje
// and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetFs(file.AppFs)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", expanded, err)
		}
		slog.Debug("Loaded config file " + expanded)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(SystemConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			slog.Debug("No config file found, using defaults")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct: %w", err)
	}

	return cfg, nil
}

// ChecksumFor returns the pinned digest for url, or "" when none is set.
func (c *Config) ChecksumFor(url string) string {
	for _, sum := range c.Checksums {
		if sum.URL == url {
			return sum.SHA256
		}
	}
	return ""
}

func (c *Config) TokenDebsDir() string {
	return filepath.Join(c.TempDir, "token_debs")
}

func (c *Config) SafeSignZip() string {
	return filepath.Join(c.TempDir, "safesign.zip")
}

func (c *Config) SafeSignPkgDir() string {
	return filepath.Join(c.TempDir, "safesign_pkg")
}

func (c *Config) PJeOfficeZip() string {
	return filepath.Join(c.TempDir, "pjeoffice-pro.zip")
}

func (c *Config) TokenAdminIcon() string {
	return filepath.Join(c.TempDir, "token2.png")
}

// ScratchPaths lists everything the installer leaves in TempDir.
func (c *Config) ScratchPaths() []string {
	return []string{
		c.TokenDebsDir(),
		c.SafeSignPkgDir(),
		c.SafeSignZip(),
		c.PJeOfficeZip(),
	}
}
