package ptitest

import (
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/syspkg"
)

func NewUbuntuSystem() *system.LocalSystem {
	return &system.LocalSystem{
		Vendor:         "ubuntu",
		Version:        "22.04",
		Arch:           "amd64",
		PackageManager: syspkg.NewAptManager(),
	}
}

func NewDebianSystem() *system.LocalSystem {
	return &system.LocalSystem{
		Vendor:         "debian",
		Version:        "12",
		Arch:           "amd64",
		PackageManager: syspkg.NewAptManager(),
	}
}

// NewAlice is the invoking user most fixtures provision files for.
func NewAlice() *system.Identity {
	return &system.Identity{
		Username: "alice",
		Uid:      1000,
		Gid:      1000,
		HomeDir:  "/home/alice",
	}
}
