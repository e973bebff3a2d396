package playground

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question describes a free text prompt.
type Question struct {
	Message string
	Help    string
	// Multiline opens an editor style prompt that ends on an empty line.
	Multiline bool
	// Validate runs on single line answers before they are accepted.
	Validate func(string) error
}

// Prompter is the terminal seam of a Session; tests script it.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
	// Choose returns one of options.
	Choose(ctx context.Context, message string, options []string) (string, error)
	Say(ctx context.Context, msg string) error
}

type surveyPrompter struct {
	out io.Writer
}

// NewSurveyPrompter prompts on the terminal through survey and prints
// results to out, or stdout when out is nil.
func NewSurveyPrompter(out io.Writer) Prompter {
	if out == nil {
		out = os.Stdout
	}
	return surveyPrompter{out: out}
}

func (p surveyPrompter) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		answer string
		prompt survey.Prompt
		opts   []survey.AskOpt
	)
	if q.Multiline {
		prompt = &survey.Multiline{Message: q.Message, Help: q.Help}
	} else {
		prompt = &survey.Input{Message: q.Message, Help: q.Help}
		if q.Validate != nil {
			opts = append(opts, survey.WithValidator(func(ans any) error {
				text, _ := ans.(string)
				return q.Validate(text)
			}))
		}
	}
	err := survey.AskOne(prompt, &answer, opts...)
	return answer, surveyError(err)
}

func (p surveyPrompter) Choose(ctx context.Context, message string, options []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var choice string
	prompt := &survey.Select{Message: message, Options: options, PageSize: len(options)}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", surveyError(err)
	}
	if !slices.Contains(options, choice) {
		return "", fmt.Errorf("playground: unexpected choice %q", choice)
	}
	return choice, nil
}

func (p surveyPrompter) Say(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

func surveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
