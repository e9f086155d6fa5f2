package helpers

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted the prompt.
var ErrAborted = errors.New("helpers: aborted")

// Confirmer asks a blocking yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

type surveyConfirmer struct {
	opts []survey.AskOpt
}

// SurveyConfirmer prompts on the terminal. Options are passed to
// survey.AskOne, which lets callers redirect stdio.
func SurveyConfirmer(opts ...survey.AskOpt) Confirmer {
	return surveyConfirmer{opts: opts}
}

func (s surveyConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{Message: message}
	if err := survey.AskOne(prompt, &out, s.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, ErrAborted
		}
		return false, err
	}
	return out, nil
}

// ConfirmAction asks message and runs callback only when confirmed. The
// returned bool is the answer.
func ConfirmAction(ctx context.Context, confirmer Confirmer, message string, callback func()) (bool, error) {
	if confirmer == nil {
		return false, errors.New("helpers: confirmer is nil")
	}
	ok, err := confirmer.Confirm(ctx, message)
	if err != nil || !ok {
		return false, err
	}
	if callback != nil {
		callback()
	}
	return true, nil
}
