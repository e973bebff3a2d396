package render

import (
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-richtext/pkg/filters"
	"github.com/goliatone/go-richtext/pkg/lookup"
)

// DefaultSeparator joins the rendered items of a sequence value.
const DefaultSeparator = ", "

// Option customises a Renderer.
type Option func(*Renderer)

// WithRegistry swaps the filter registry (defaults to filters.NewRegistry()).
func WithRegistry(registry *filters.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithShowErrors renders an inline error notice for unresolved variables
// instead of an empty string.
func WithShowErrors(show bool) Option {
	return func(r *Renderer) {
		r.showErrors = show
	}
}

// WithSeparator overrides the sequence join separator.
func WithSeparator(separator string) Option {
	return func(r *Renderer) {
		r.separator = separator
	}
}

// WithLanguage sets the output language used by case and choice filters.
func WithLanguage(lang string) Option {
	return func(r *Renderer) {
		r.language = strings.TrimSpace(lang)
	}
}

// WithChoices configures the choice list collaborator.
func WithChoices(choices lookup.ChoiceResolver) Option {
	return func(r *Renderer) {
		r.choices = choices
	}
}

// WithPages configures the page collaborator used by linkify.
func WithPages(pages lookup.PageResolver) Option {
	return func(r *Renderer) {
		r.pages = pages
	}
}

// WithRecords configures the record link collaborator used by linkify.
func WithRecords(records lookup.RecordLinker) Option {
	return func(r *Renderer) {
		r.records = records
	}
}

// WithTokens provides theme colour tokens to the badge filters.
func WithTokens(tokens map[string]string) Option {
	return func(r *Renderer) {
		if len(tokens) == 0 {
			r.tokens = nil
			return
		}
		r.tokens = make(map[string]string, len(tokens))
		for key, value := range tokens {
			r.tokens[key] = value
		}
	}
}

// WithFaviconService sets the favicon URL template used by weblinks.
func WithFaviconService(template string) Option {
	return func(r *Renderer) {
		r.favicon = strings.TrimSpace(template)
	}
}

// WithRelativeDateThreshold sets the default number of days reldate renders
// as a relative phrase.
func WithRelativeDateThreshold(days int) Option {
	return func(r *Renderer) {
		if days > 0 {
			r.relative = days
		}
	}
}

// WithClock overrides the clock used by relative date formatting.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithLogger routes debug output about recovered variable errors.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
