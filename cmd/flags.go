package cmd

import (
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

func debugFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "Enable debug mode",
		Action: func(c *cli.Context, debugMode bool) error {
			if debugMode {
				slog.Info("Debug mode enabled")
				pterm.DefaultLogger.Level = pterm.LogLevelDebug
			}
			return nil
		},
	}
}

func yesFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Answer yes to every confirmation and checkpoint",
		EnvVars: []string{"PJE_INSTALLER_UNATTENDED"},
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:      "config",
		Aliases:   []string{"c"},
		Usage:     "Path to a YAML config file",
		TakesFile: true,
	}
}
