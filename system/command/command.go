package command

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
)

type ShellCommandExecutor interface {
	Start() error
	Wait() error
	String() string
}

type ShellCommandContexter interface {
	Done() <-chan struct{}
	Err() error
}

type ShellCommandRunner interface {
	Run() error
	Output() string
	ErrorOutput() string
	String() string
	GetName() string
	GetArgs() []string
	GetEnvVars() []string
	GetInheritEnvVars() bool
	GetContext() ShellCommandContexter
	GetExecutor() ShellCommandExecutor
}

// Credential identifies the account a command is run as.
type Credential struct {
	Username string
	Uid      int
	Gid      int
	HomeDir  string
}

type ShellCommand struct {
	Name           string
	Args           []string
	EnvVars        []string
	InheritEnvVars bool
	Ctx            ShellCommandContexter
	Cmd            ShellCommandExecutor
	Stdout         *bytes.Buffer
	Stderr         *bytes.Buffer

	stop context.CancelFunc
}

// BaseContext parents every command context. Once it is cancelled running
// commands are stopped and new ones refuse to start.
var BaseContext = context.Background()

func newCmd(name string, args []string, envVars []string, inheritEnvVars bool) (*exec.Cmd, context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(BaseContext, os.Interrupt, syscall.SIGTERM)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		slog.Info("Interrupt signal received, cancelling command")
		err := cmd.Process.Signal(syscall.SIGTERM)
		if err != nil {
			slog.Error("Failed to cancel command: " + err.Error())
		}
		return err
	}
	cmd.Env = envVars
	if inheritEnvVars {
		cmd.Env = append(cmd.Env, os.Environ()...)
	}

	return cmd, ctx, stop
}

func wrap(name string, args []string, envVars []string, inheritEnvVars bool, cmd *exec.Cmd, ctx context.Context, stop context.CancelFunc) *ShellCommand {
	s := &ShellCommand{
		Name:           name,
		Args:           args,
		EnvVars:        envVars,
		InheritEnvVars: inheritEnvVars,
		Ctx:            ctx,
		Cmd:            cmd,
		Stdout:         &bytes.Buffer{},
		Stderr:         &bytes.Buffer{},
		stop:           stop,
	}
	cmd.Stdout = io.MultiWriter(os.Stdout, s.Stdout)
	cmd.Stderr = io.MultiWriter(os.Stderr, s.Stderr)

	return s
}

// NewShellCommand runs name in its own process group with output streamed to
// the terminal and captured.
var NewShellCommand = func(name string, args []string, envVars []string, inheritEnvVars bool) ShellCommandRunner {
	cmd, ctx, stop := newCmd(name, args, envVars, inheritEnvVars)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	return wrap(name, args, envVars, inheritEnvVars, cmd, ctx, stop)
}

// NewInteractiveCommand keeps the child in the foreground process group and
// hands it the terminal, as required by dialog tools.
var NewInteractiveCommand = func(name string, args []string) ShellCommandRunner {
	cmd, ctx, stop := newCmd(name, args, nil, true)
	cmd.Stdin = os.Stdin

	s := wrap(name, args, nil, true, cmd, ctx, stop)
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, s.Stderr)

	return s
}

// NewUserCommand drops to the given account before executing name.
var NewUserCommand = func(c Credential, name string, args []string) ShellCommandRunner {
	envVars := []string{
		"HOME=" + c.HomeDir,
		"USER=" + c.Username,
		"LOGNAME=" + c.Username,
	}
	if path, ok := os.LookupEnv("PATH"); ok {
		envVars = append(envVars, "PATH="+path)
	}
	if display, ok := os.LookupEnv("DISPLAY"); ok {
		envVars = append(envVars, "DISPLAY="+display)
	}
	envVars = append(envVars, "XDG_RUNTIME_DIR=/run/user/"+strconv.Itoa(c.Uid))

	cmd, ctx, stop := newCmd(name, args, envVars, false)
	cmd.Dir = c.HomeDir
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Credential: &syscall.Credential{
			Uid: uint32(c.Uid),
			Gid: uint32(c.Gid),
		},
	}

	return wrap(name, args, envVars, false, cmd, ctx, stop)
}

func (s *ShellCommand) Run() error {
	if s.stop != nil {
		defer s.stop()
	}
	if err := s.Ctx.Err(); err != nil {
		slog.Debug("Not starting " + s.String() + ": " + err.Error())
		return err
	}

	slog.Debug(fmt.Sprintf("Environment variables: %v", s.EnvVars))
	slog.Debug("Running cmd: " + s.String())
	if err := s.Cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command '%s': %w", s.String(), err)
	}

	err := s.Cmd.Wait()
	select {
	case <-s.Ctx.Done():
		slog.Debug("Command was interrupted")
		return s.Ctx.Err()
	default:
		if err != nil {
			return &errors.CommandFailedError{Command: s.String(), Stderr: s.ErrorOutput(), Err: err}
		}
		slog.Debug("Command finished successfully")
		return nil
	}
}

func (s *ShellCommand) Output() string {
	if s.Stdout == nil {
		return ""
	}
	return s.Stdout.String()
}

func (s *ShellCommand) ErrorOutput() string {
	if s.Stderr == nil {
		return ""
	}
	return s.Stderr.String()
}

func (s *ShellCommand) String() string {
	return s.Cmd.String()
}

func (s *ShellCommand) GetName() string {
	return s.Name
}

func (s *ShellCommand) GetArgs() []string {
	return s.Args
}

func (s *ShellCommand) GetEnvVars() []string {
	return s.EnvVars
}

func (s *ShellCommand) GetInheritEnvVars() bool {
	return s.InheritEnvVars
}

func (s *ShellCommand) GetContext() ShellCommandContexter {
	return s.Ctx
}

func (s *ShellCommand) GetExecutor() ShellCommandExecutor {
	return s.Cmd
}

// Tolerate logs err as a warning and swallows it.
func Tolerate(err error, what string) error {
	if err != nil {
		slog.Warn(what + " failed, continuing: " + err.Error())
	}
	return nil
}

var LookPath = exec.LookPath

// Available reports whether name resolves on PATH.
func Available(name string) bool {
	_, err := LookPath(name)
	return err == nil
}
