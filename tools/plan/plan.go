package plan

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/hudsonalbuquerque97-sys/Instalador-pje-safesign/errors"
	"github.com/pterm/pterm"
)

type Policy int

const (
	// Fatal failures stop the run.
	Fatal Policy = iota
	// Tolerated failures are logged and the run continues.
	Tolerated
)

func (p Policy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case Tolerated:
		return "tolerated"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
}

type Outcome struct {
	Step   string
	Policy Policy
	Err    error
}

// StepError reports the fatal step that ended the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %s", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Plan runs steps in order. Finally runs after the steps whatever their
// result and its error never changes the run's outcome.
type Plan struct {
	Steps   []Step
	Finally *Step
}

func New(steps ...Step) *Plan {
	return &Plan{Steps: steps}
}

func (p *Plan) Add(name string, policy Policy, run func(ctx context.Context) error) *Plan {
	p.Steps = append(p.Steps, Step{Name: name, Policy: policy, Run: run})
	return p
}

func (p *Plan) Always(name string, run func(ctx context.Context) error) *Plan {
	p.Finally = &Step{Name: name, Policy: Tolerated, Run: run}
	return p
}

// Run returns errors.ErrDeclined when a step was declined and a *StepError
// when a fatal step failed. Once ctx is done, or a step reports
// context.Canceled, no further step starts and Run returns context.Canceled.
// Finally still runs, with a context that is never cancelled.
func (p *Plan) Run(ctx context.Context) (outcomes []Outcome, err error) {
	defer func() {
		if p.Finally == nil {
			return
		}
		outcomes = append(outcomes, p.run(context.WithoutCancel(ctx), *p.Finally))
	}()

	for _, step := range p.Steps {
		if ctx.Err() != nil {
			slog.Info("Interrupted before " + step.Name)
			return outcomes, context.Canceled
		}

		o := p.run(ctx, step)
		outcomes = append(outcomes, o)
		if ctx.Err() != nil || stderrors.Is(o.Err, context.Canceled) {
			slog.Info("Interrupted during " + step.Name)
			return outcomes, context.Canceled
		}
		if o.Err == nil {
			continue
		}
		if stderrors.Is(o.Err, errors.ErrDeclined) {
			slog.Info("Stopped at " + step.Name)
			return outcomes, errors.ErrDeclined
		}
		if step.Policy == Fatal {
			return outcomes, &StepError{Step: step.Name, Err: o.Err}
		}
	}

	return outcomes, nil
}

func (p *Plan) run(ctx context.Context, step Step) Outcome {
	pterm.DefaultSection.Println(step.Name)

	err := step.Run(ctx)
	if err != nil && step.Policy == Tolerated && ctx.Err() == nil && !stderrors.Is(err, errors.ErrDeclined) {
		slog.Warn(step.Name + " failed, continuing: " + err.Error())
	}
	return Outcome{Step: step.Name, Policy: step.Policy, Err: err}
}

// Failures returns the outcomes that carried an error.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
