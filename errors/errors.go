package errors

import (
	"fmt"
	"strings"
)

// Generic errors

var FileCreateErrorTpl = "failed to create file %s: %w"
var FileOpenErrorTpl = "failed to open %s: %w"
var FileStatErrorTpl = "failed to stat %s: %w"
var FileRemoveErrorTpl = "failed to remove %s: %w"
var FileCopyErrorTpl = "failed to copy file from %s to %s: %w"
var FileChownErrorTpl = "failed to change owner of %s to %d:%d: %w"
var FileChmodErrorTpl = "failed to set permissions on %s to %s: %w"
var DirCreateErrorTpl = "failed to create directory %s: %w"

// Request errors

var RequestFailedErrorTpl = "request to %s failed: %w"
var RequestCopyFailedErrorTpl = "failed to copy data to %s: %w"

// System package errors

var SystemUpdateErrorTpl = "failed to update system package manager: %w"
var SystemPackageInstallErrorTpl = "failed to install package(s) %s: %w"
var SystemLocalPackageInstallErrorTpl = "failed to install %s: %w"
var SystemFixBrokenErrorTpl = "failed to repair package dependencies: %w"

// Account errors

var GroupCreateErrorTpl = "failed to create group %s: %w"
var GroupMembershipErrorTpl = "failed to add user %s to group %s: %w"

// Tool errors

var ToolDownloadFailedErrorTpl = "failed to download %s: %w"
var ToolExtractFailedErrorTpl = "failed to extract %s to %s: %w"
var ToolInstallFailedErrorTpl = "failed to install %s: %w"
var ToolSetPermissionsFailedErrorTpl = "failed to set permissions on %s to %s: %w"
var ServiceActivationErrorTpl = "failed to %s service %s: %w"

// ErrDeclined is returned when the operator answers no to a prompt.
var ErrDeclined = fmt.Errorf("declined by user")

type UnsupportedOSError struct {
	Vendor  string
	Version string
}

func (e *UnsupportedOSError) Error() string {
	return fmt.Sprintf("unsupported os %s %s", e.Vendor, e.Version)
}

type UnknownUserError struct {
	Username string
}

func (e *UnknownUserError) Error() string {
	return fmt.Sprintf("user %s not found", e.Username)
}

// CommandFailedError carries the stderr captured from a failed command.
type CommandFailedError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("command '%s' failed: %s", e.Command, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandFailedError) Unwrap() error {
	return e.Err
}

type ChecksumMismatchError struct {
	Path string
	Want string
	Got  string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: want sha256 %s, got %s", e.Path, e.Want, e.Got)
}

type UnexpectedContentError struct {
	Path string
	Want string
	Got  string
}

func (e *UnexpectedContentError) Error() string {
	return fmt.Sprintf("%s is %s, expected %s", e.Path, e.Got, e.Want)
}
