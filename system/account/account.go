package account

import (
	"fmt"
	"log/slog"
	"os/user"
	"slices"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
)

var lookupGroup = user.LookupGroup

var lookupUser = user.Lookup

// groupIds lists the gids u belongs to according to the group database.
var groupIds = func(u *user.User) ([]string, error) {
	return u.GroupIds()
}

// EnsureGroup creates the group name unless it already exists.
func EnsureGroup(name string) error {
	if _, err := lookupGroup(name); err == nil {
		slog.Debug("Group " + name + " already exists")
		return nil
	}

	slog.Info("Creating group " + name)
	cmd := command.NewShellCommand("addgroup", []string{name}, nil, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.GroupCreateErrorTpl, name, err)
	}
	return nil
}

// IsMember reports whether username already belongs to group.
func IsMember(username, group string) (bool, error) {
	g, err := lookupGroup(group)
	if err != nil {
		return false, fmt.Errorf("unable to look up group %s: %w", group, err)
	}
	u, err := lookupUser(username)
	if err != nil {
		return false, &errors.UnknownUserError{Username: username}
	}
	gids, err := groupIds(u)
	if err != nil {
		return false, fmt.Errorf("unable to list groups of %s: %w", username, err)
	}
	return slices.Contains(gids, g.Gid), nil
}

// AddToGroup appends username to group. Membership only applies to new
// login sessions.
func AddToGroup(username, group string) error {
	member, err := IsMember(username, group)
	if err != nil {
		slog.Debug("Membership check failed, adding anyway: " + err.Error())
	}
	if member {
		slog.Info(fmt.Sprintf("User %s is already in group %s", username, group))
		return nil
	}

	slog.Info(fmt.Sprintf("Adding user %s to group %s", username, group))
	cmd := command.NewShellCommand("adduser", []string{username, group}, nil, true)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(errors.GroupMembershipErrorTpl, username, group, err)
	}
	return nil
}
