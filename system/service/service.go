package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
)

// SystemdConn is the subset of *dbus.Conn used for unit activation.
type SystemdConn interface {
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []dbus.EnableUnitFileChange, error)
	ReloadContext(ctx context.Context) error
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	Close()
}

var NewSystemdConn = func(ctx context.Context) (SystemdConn, error) {
	return dbus.NewSystemConnectionContext(ctx)
}

func unitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

// Activate enables name at boot and starts it now. The system bus is tried
// first; systemctl is used when the bus cannot be reached.
func Activate(ctx context.Context, name string) error {
	unit := unitName(name)

	conn, err := NewSystemdConn(ctx)
	if err != nil {
		slog.Debug("systemd bus unavailable, falling back to systemctl: " + err.Error())
		return activateWithSystemctl(unit)
	}
	defer conn.Close()

	slog.Info("Enabling " + unit)
	_, changes, err := conn.EnableUnitFilesContext(ctx, []string{unit}, false, true)
	if err != nil {
		return fmt.Errorf(errors.ServiceActivationErrorTpl, "enable", unit, err)
	}
	for _, c := range changes {
		slog.Debug(fmt.Sprintf("%s %s -> %s", c.Type, c.Filename, c.Destination))
	}
	if err := conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf(errors.ServiceActivationErrorTpl, "reload units for", unit, err)
	}

	slog.Info("Starting " + unit)
	done := make(chan string, 1)
	if _, err := conn.StartUnitContext(ctx, unit, "replace", done); err != nil {
		return fmt.Errorf(errors.ServiceActivationErrorTpl, "start", unit, err)
	}

	select {
	case result := <-done:
		if result != "done" {
			return fmt.Errorf(errors.ServiceActivationErrorTpl, "start", unit, fmt.Errorf("job finished with result %q", result))
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	slog.Info(unit + " is active")
	return nil
}

func activateWithSystemctl(unit string) error {
	for _, action := range []string{"enable", "start"} {
		slog.Info(fmt.Sprintf("Running systemctl %s %s", action, unit))
		cmd := command.NewShellCommand("systemctl", []string{action, unit}, nil, true)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf(errors.ServiceActivationErrorTpl, action, unit, err)
		}
	}
	return nil
}
