package ptitest

import (
	"os/exec"
	"strings"
	"sync"
	"testing"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/system/command"
	"github.com/stretchr/testify/assert"
)

type ShellCall struct {
	Binary         string
	ContainsArgs   []string
	EnvVars        []string
	InheritEnvVars bool
}

func (s *ShellCall) Equal(t *testing.T, name string, args []string, envVars []string, inheritEnvVars bool) {
	assert := assert.New(t)
	assert.Equal(s.Binary, name)
	for _, arg := range s.ContainsArgs {
		assert.Contains(args, arg)
	}
	for _, v := range s.EnvVars {
		assert.Contains(envVars, v)
	}
	assert.Equal(s.InheritEnvVars, inheritEnvVars)
}

var CommonShellCalls = map[string]*ShellCall{
	"aptUpdate": {
		Binary:         "apt-get",
		ContainsArgs:   []string{"update", "-q"},
		EnvVars:        []string{"DEBIAN_FRONTEND=noninteractive"},
		InheritEnvVars: true,
	},
	"aptFixBroken": {
		Binary:         "apt-get",
		ContainsArgs:   []string{"-f", "install", "-y"},
		EnvVars:        []string{"DEBIAN_FRONTEND=noninteractive"},
		InheritEnvVars: true,
	},
	"dpkgInstall": {
		Binary:         "dpkg",
		ContainsArgs:   []string{"-i"},
		EnvVars:        []string{"DEBIAN_FRONTEND=noninteractive"},
		InheritEnvVars: true,
	},
}

// FakeCall is one recorded command construction.
type FakeCall struct {
	Name           string
	Args           []string
	EnvVars        []string
	InheritEnvVars bool
	AsUser         string
	Interactive    bool
}

func (c *FakeCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Handler produces the captured stdout and the Run error for a call.
type Handler func(call *FakeCall) (string, error)

// FakeShell replaces the command constructors and records every call.
type FakeShell struct {
	mu       sync.Mutex
	Calls    []*FakeCall
	Handlers map[string]Handler
	Present  map[string]bool
}

func NewFakeShell(t *testing.T) *FakeShell {
	f := &FakeShell{Handlers: map[string]Handler{}, Present: map[string]bool{}}

	oldShell := command.NewShellCommand
	oldInteractive := command.NewInteractiveCommand
	oldUser := command.NewUserCommand
	oldLookPath := command.LookPath
	t.Cleanup(func() {
		command.NewShellCommand = oldShell
		command.NewInteractiveCommand = oldInteractive
		command.NewUserCommand = oldUser
		command.LookPath = oldLookPath
	})

	command.LookPath = func(name string) (string, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.Present[name] {
			return "/usr/bin/" + name, nil
		}
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}

	command.NewShellCommand = func(name string, args []string, envVars []string, inheritEnvVars bool) command.ShellCommandRunner {
		return f.record(&FakeCall{Name: name, Args: args, EnvVars: envVars, InheritEnvVars: inheritEnvVars})
	}
	command.NewInteractiveCommand = func(name string, args []string) command.ShellCommandRunner {
		return f.record(&FakeCall{Name: name, Args: args, InheritEnvVars: true, Interactive: true})
	}
	command.NewUserCommand = func(c command.Credential, name string, args []string) command.ShellCommandRunner {
		return f.record(&FakeCall{Name: name, Args: args, AsUser: c.Username})
	}

	return f
}

// On registers h for every call to binary.
func (f *FakeShell) On(binary string, h Handler) *FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handlers[binary] = h
	return f
}

// Provide makes command.Available report the given binaries as installed.
func (f *FakeShell) Provide(binaries ...string) *FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range binaries {
		f.Present[b] = true
	}
	return f
}

func (f *FakeShell) record(call *FakeCall) *FakeCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return &FakeCommand{call: call, handler: f.Handlers[call.Name]}
}

// CallsTo returns the recorded calls to binary in order.
func (f *FakeShell) CallsTo(binary string) []*FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []*FakeCall
	for _, c := range f.Calls {
		if c.Name == binary {
			calls = append(calls, c)
		}
	}
	return calls
}

// Commands returns every recorded call rendered as "name args...".
func (f *FakeShell) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.Calls {
		out = append(out, c.String())
	}
	return out
}

type FakeCommand struct {
	call    *FakeCall
	handler Handler
	stdout  string
}

// Run refuses to start once command.BaseContext is done, like ShellCommand.
func (c *FakeCommand) Run() error {
	if err := command.BaseContext.Err(); err != nil {
		return err
	}
	if c.handler == nil {
		return nil
	}
	out, err := c.handler(c.call)
	c.stdout = out
	return err
}

func (c *FakeCommand) Output() string                            { return c.stdout }
func (c *FakeCommand) ErrorOutput() string                       { return "" }
func (c *FakeCommand) String() string                            { return c.call.String() }
func (c *FakeCommand) GetName() string                           { return c.call.Name }
func (c *FakeCommand) GetArgs() []string                         { return c.call.Args }
func (c *FakeCommand) GetEnvVars() []string                      { return c.call.EnvVars }
func (c *FakeCommand) GetInheritEnvVars() bool                   { return c.call.InheritEnvVars }
func (c *FakeCommand) GetContext() command.ShellCommandContexter { return nil }
func (c *FakeCommand) GetExecutor() command.ShellCommandExecutor { return nil }
