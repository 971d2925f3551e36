package dialog

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/pterm/pterm"
)

const Title = "Instalador SafeSign + PJe"

const Message = `
Este script irá instalar:

  • SafeSign / TokenAdmin
  • Dependências de smartcard
  • PJe Office Pro
  • Atalhos na Área de Trabalho e Menu

Deseja prosseguir?
`

// confirmPrompt reports Ctrl-C as context.Canceled. Left to itself pterm
// would exit the process on the spot.
var confirmPrompt = func(text string) (bool, error) {
	interrupted := false
	ok, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText(text).
		WithDefaultValue(true).
		WithOnInterruptFunc(func() { interrupted = true }).
		Show()
	if interrupted {
		return false, context.Canceled
	}
	return ok, err
}

// Dialog gates the run on operator answers. Unattended dialogs accept
// everything without prompting.
type Dialog struct {
	Unattended bool
	Prompt     func(text string) (bool, error)
}

func New(unattended bool) *Dialog {
	return &Dialog{Unattended: unattended, Prompt: confirmPrompt}
}

// Confirm shows a whiptail yes/no box. Any failure to get a "yes", including
// whiptail being absent, counts as a decline. Only an interrupt is returned
// as an error.
func (d *Dialog) Confirm(title, message string) (bool, error) {
	if d.Unattended {
		slog.Info("Unattended mode, skipping confirmation")
		return true, nil
	}

	cmd := command.NewInteractiveCommand("whiptail", []string{"--title", title, "--yesno", message, "20", "70"})
	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, context.Canceled) {
			return false, err
		}
		slog.Debug("Confirmation declined: " + err.Error())
		return false, nil
	}
	return true, nil
}

// Checkpoint pauses between stages. Answering no returns errors.ErrDeclined
// and an interrupt returns context.Canceled.
func (d *Dialog) Checkpoint(name, message string) error {
	if d.Unattended {
		slog.Info("Checkpoint " + name + " passed (unattended)")
		return nil
	}

	ok, err := d.Prompt(message)
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		slog.Debug("Checkpoint " + name + " prompt failed: " + err.Error())
		return errors.ErrDeclined
	}
	if !ok {
		return errors.ErrDeclined
	}
	return nil
}
