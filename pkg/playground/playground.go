// Package playground is an interactive prompt for trying template expressions
// and rich text against a data document.
package playground

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-richtext/pkg/expr"
	"github.com/goliatone/go-richtext/pkg/filters"
)

// ErrAborted signals the user interrupted a prompt (Ctrl+C).
var ErrAborted = errors.New("playground: aborted")

// ExpressionRenderer substitutes the variables of a template string.
type ExpressionRenderer interface {
	RenderContext(ctx context.Context, template string, data any) string
}

// RichTextRenderer rewrites the directives of rich text into HTML.
type RichTextRenderer interface {
	PreRender(ctx context.Context, text string) (string, error)
}

// Option configures a Session.
type Option func(*Session)

// WithPrompter replaces the survey prompter.
func WithPrompter(prompter Prompter) Option {
	return func(s *Session) {
		if prompter != nil {
			s.prompter = prompter
		}
	}
}

// WithRichText enables the rich text mode.
func WithRichText(renderer RichTextRenderer) Option {
	return func(s *Session) {
		s.richText = renderer
	}
}

// WithRegistry sets the registry listed by the filters mode.
func WithRegistry(registry *filters.Registry) Option {
	return func(s *Session) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// Session runs the prompt loop.
type Session struct {
	prompter    Prompter
	expressions ExpressionRenderer
	richText    RichTextRenderer
	registry    *filters.Registry
	data        any
}

// New returns a session that renders against data.
func New(expressions ExpressionRenderer, data any, opts ...Option) *Session {
	s := &Session{
		prompter:    NewSurveyPrompter(nil),
		expressions: expressions,
		registry:    filters.NewRegistry(),
		data:        data,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

const (
	modeExpression = "Render expressions"
	modeRichText   = "Render rich text"
	modeFilters    = "List filters"
	modeQuit       = "Quit"
)

func (s *Session) modes() []string {
	modes := []string{modeExpression}
	if s.richText != nil {
		modes = append(modes, modeRichText)
	}
	return append(modes, modeFilters, modeQuit)
}

// Run prompts until the user quits. An interrupt ends the session without
// error.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.expressions == nil {
		return errors.New("playground: expression renderer required")
	}
	err := s.loop(ctx)
	if errors.Is(err, ErrAborted) {
		return nil
	}
	return err
}

func (s *Session) loop(ctx context.Context) error {
	modes := s.modes()
	for {
		mode, err := s.prompter.Choose(ctx, "What next?", modes)
		if err != nil {
			return err
		}

		switch mode {
		case modeExpression:
			err = s.expressionLoop(ctx)
		case modeRichText:
			err = s.richTextOnce(ctx)
		case modeFilters:
			err = s.prompter.Say(ctx, s.filterList())
		case modeQuit:
			return nil
		default:
			return fmt.Errorf("playground: unknown mode %q", mode)
		}
		if err != nil {
			return err
		}
	}
}

// expressionLoop renders expressions until an empty line.
func (s *Session) expressionLoop(ctx context.Context) error {
	for {
		template, err := s.prompter.Ask(ctx, Question{
			Message:  "Expression",
			Help:     "A template such as {title|upper}; leave empty to go back",
			Validate: validateTemplate,
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(template) == "" {
			return nil
		}
		if err := s.prompter.Say(ctx, s.expressions.RenderContext(ctx, template, s.data)); err != nil {
			return err
		}
	}
}

func (s *Session) richTextOnce(ctx context.Context) error {
	text, err := s.prompter.Ask(ctx, Question{
		Message:   "Rich text",
		Help:      "Directives like [[start_block=Title]] or [[element|name]]",
		Multiline: true,
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	out, err := s.richText.PreRender(ctx, text)
	if err != nil {
		return s.prompter.Say(ctx, "error: "+err.Error())
	}
	return s.prompter.Say(ctx, out)
}

func (s *Session) filterList() string {
	var b strings.Builder
	for _, name := range s.registry.Names() {
		spec, _ := s.registry.Spec(name)
		b.WriteString(name)
		if options := append(append([]string(nil), spec.RequiredOptions...), spec.AllowedOptions...); len(options) > 0 {
			b.WriteString(" (" + strings.Join(options, ", ") + ")")
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// validateTemplate rejects templates whose variables do not parse.
func validateTemplate(template string) error {
	for _, placeholder := range expr.Scan(template) {
		if _, err := expr.Parse(placeholder.Raw); err != nil {
			return err
		}
	}
	return nil
}
