package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/config"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/desktop"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools/cleanup"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools/dialog"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools/pjeoffice"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools/plan"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/tools/safesign"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

const (
	cancelledMessage   = "Installation cancelled."
	interruptedMessage = "Installation interrupted by user."
)

// session carries what one installation run learns as it goes.
type session struct {
	config       *config.Config
	user         *system.Identity
	dialog       *dialog.Dialog
	safesign     *safesign.Manager
	pjeoffice    *pjeoffice.Manager
	installation *pjeoffice.Installation
	desktopDir   string
}

func newSession(l *system.LocalSystem, cfg *config.Config, u *system.Identity, d *dialog.Dialog) *session {
	return &session{
		config:    cfg,
		user:      u,
		dialog:    d,
		safesign:  safesign.NewManager(l, cfg, u),
		pjeoffice: pjeoffice.NewManager(cfg, u),
	}
}

func (s *session) plan() *plan.Plan {
	p := plan.New()

	p.Add("Preparing group "+s.config.Group, plan.Fatal, func(context.Context) error {
		return s.safesign.PrepareAccounts()
	})
	p.Add("Installing dependencies", plan.Fatal, func(context.Context) error {
		return s.safesign.InstallDependencies()
	})
	p.Add("Installing legacy packages", plan.Fatal, s.safesign.InstallLegacyPackages)
	p.Add("Installing SafeSign", plan.Fatal, s.safesign.InstallSafeSign)
	p.Add("Enabling "+s.config.Service, plan.Fatal, s.safesign.ActivateService)
	p.Add("SafeSign installed", plan.Fatal, func(context.Context) error {
		return s.dialog.Checkpoint("install-pje", "Install PJe Office Pro and create shortcuts?")
	})
	p.Add("Installing PJe Office Pro", plan.Fatal, func(ctx context.Context) error {
		inst, err := s.pjeoffice.Install(ctx)
		if err != nil {
			return err
		}
		s.installation = inst
		return nil
	})
	p.Add("PJe Office Pro installed for "+s.user.Username, plan.Fatal, func(context.Context) error {
		return s.dialog.Checkpoint("tokenadmin-shortcut", "Create the TokenAdmin shortcut?")
	})
	p.Add("Creating shortcuts", plan.Fatal, func(ctx context.Context) error {
		installer := desktop.NewInstaller(s.user)
		s.desktopDir = installer.DesktopDir
		if _, err := s.pjeoffice.InstallShortcut(installer, s.installation); err != nil {
			return err
		}
		_, err := s.safesign.InstallShortcut(ctx, installer)
		return err
	})
	p.Always("Cleaning up", func(context.Context) error {
		return cleanup.Remove(s.config.ScratchPaths())
	})

	return p
}

func (s *session) summary() {
	pterm.DefaultSection.Println("Installation complete")
	pterm.Info.Println(fmt.Sprintf("PJe Office Pro and TokenAdmin are available in %s and in the applications menu.", s.desktopDir))
	pterm.Info.Println(fmt.Sprintf("Log out and back in to activate the %s group.", s.config.Group))
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.Bool("yes") {
		cfg.Unattended = true
	}
	return cfg, nil
}

func install(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	command.BaseContext = ctx

	if err := system.RequireSudo(); err != nil {
		return err
	}
	l, err := system.GetLocalSystem()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	u, err := system.RealIdentity()
	if err != nil {
		return err
	}

	d := dialog.New(cfg.Unattended)
	ok, err := d.Confirm(dialog.Title, dialog.Message)
	if err != nil || ctx.Err() != nil {
		return cli.Exit(interruptedMessage, 1)
	}
	if !ok {
		pterm.Info.Println(cancelledMessage)
		return nil
	}

	slog.Info(fmt.Sprintf("Running as root, installing shortcuts for %s (%s)", u.Username, u.HomeDir))

	s := newSession(l, cfg, u, d)
	return finish(ctx, s, s.plan())
}

// finish runs p and maps its result to the exit status. An interrupt wins
// over whatever the steps reported.
func finish(ctx context.Context, s *session, p *plan.Plan) error {
	outcomes, err := p.Run(ctx)
	for _, o := range plan.Failures(outcomes) {
		slog.Debug(fmt.Sprintf("%s (%s): %s", o.Step, o.Policy, o.Err))
	}

	switch {
	case ctx.Err() != nil || stderrors.Is(err, context.Canceled):
		return cli.Exit(interruptedMessage, 1)
	case err == nil:
		s.summary()
		return nil
	case stderrors.Is(err, errors.ErrDeclined):
		pterm.Info.Println(cancelledMessage)
		return nil
	}
	return err
}

func cleanupTemp(c *cli.Context) error {
	if err := system.RequireSudo(); err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	return cleanup.Remove(cfg.ScratchPaths())
}
