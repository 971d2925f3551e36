package main

import (
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/cmd"
	"github.com/pterm/pterm"
)

func main() {
	if runtime.GOOS != "linux" {
		log.Fatal("instalador-pje is only supported on Linux")
	}

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	cli := cmd.Cli()
	if err := cli.Run(os.Args); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
