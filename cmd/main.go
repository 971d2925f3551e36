package cmd

import (
	"github.com/urfave/cli/v2"
)

func Cli() *cli.App {
	app := &cli.App{
		Name:        "instalador-pje",
		Usage:       "SafeSign + PJe Office Pro installer",
		Description: "Install the SafeSign smartcard middleware, TokenAdmin and PJe Office Pro on Debian and Ubuntu workstations",
		Flags: []cli.Flag{
			debugFlag(),
			yesFlag(),
			configFlag(),
		},
		Action: install,
		Commands: []*cli.Command{
			{
				Name:   "install",
				Usage:  "Run the full installation (default)",
				Action: install,
			},
			{
				Name:   "cleanup",
				Usage:  "Remove temporary files left by a previous run",
				Action: cleanupTemp,
			},
		},
	}
	return app
}
