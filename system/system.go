package system

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strconv"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/file"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/syspkg"
	"github.com/zcalusic/sysinfo"
)

const defaultUsername = "root"

type LocalSystem struct {
	Vendor         string
	Version        string
	Arch           string
	PackageManager syspkg.SystemPackageManager
}

var sysInfo = func() sysinfo.SysInfo {
	var si sysinfo.SysInfo
	si.GetSysInfo()
	return si
}

// GetLocalSystem accepts Debian and Ubuntu plus the desktop derivatives
// built on them.
func GetLocalSystem() (*LocalSystem, error) {
	si := sysInfo()

	switch si.OS.Vendor {
	case "ubuntu", "debian", "linuxmint", "pop", "elementary", "zorin", "neon", "kali":
	default:
		return nil, &errors.UnsupportedOSError{Vendor: si.OS.Vendor, Version: si.OS.Version}
	}

	l := &LocalSystem{
		Vendor:         si.OS.Vendor,
		Version:        si.OS.Version,
		Arch:           si.OS.Architecture,
		PackageManager: syspkg.NewAptManager(),
	}
	slog.Debug(fmt.Sprintf("Detected %s %s (%s), packages via %s", l.Vendor, l.Version, l.Arch, l.PackageManager.GetBin()))

	return l, nil
}

var currentUser = func() (*user.User, error) {
	return user.Current()
}

func RequireSudo() error {
	current, err := currentUser()
	if err != nil {
		return fmt.Errorf("unable to determine the current user: %w", err)
	}

	if current.Uid != "0" {
		return fmt.Errorf("this command must be run as root (sudo)")
	}

	return nil
}

// Identity is the non-privileged account the installer provisions files for.
type Identity struct {
	Username string
	Uid      int
	Gid      int
	HomeDir  string
}

func (i *Identity) Owner() file.Owner {
	return file.Owner{Uid: i.Uid, Gid: i.Gid}
}

func (i *Identity) Credential() command.Credential {
	return command.Credential{Username: i.Username, Uid: i.Uid, Gid: i.Gid, HomeDir: i.HomeDir}
}

var getenv = os.Getenv

var lookupUser = user.Lookup

// RealUsername prefers the account sudo was invoked from, then the session
// user, then root.
func RealUsername() string {
	if u := getenv("SUDO_USER"); u != "" {
		return u
	}
	if u := getenv("USER"); u != "" {
		return u
	}
	return defaultUsername
}

func ResolveIdentity(username string) (*Identity, error) {
	u, err := lookupUser(username)
	if err != nil {
		return nil, &errors.UnknownUserError{Username: username}
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("invalid uid %q for user %s: %w", u.Uid, username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("invalid gid %q for user %s: %w", u.Gid, username, err)
	}

	slog.Debug(fmt.Sprintf("Resolved user %s (uid=%d gid=%d home=%s)", u.Username, uid, gid, u.HomeDir))

	return &Identity{
		Username: u.Username,
		Uid:      uid,
		Gid:      gid,
		HomeDir:  u.HomeDir,
	}, nil
}

// RealIdentity resolves the invoking user from the environment.
func RealIdentity() (*Identity, error) {
	return ResolveIdentity(RealUsername())
}
