package markup

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralTag marks unbalanced or malformed block and cell tokens.
	ErrStructuralTag = errors.New("markup: structural tag error")
	// ErrIterationLimit marks a pass that needed more rewrites than allowed.
	ErrIterationLimit = errors.New("markup: iteration limit exceeded")
)

// Pass names reported by IterationError.
const (
	PassCode       = "code"
	PassContainers = "containers"
	PassTOC        = "toc"
	PassElements   = "elements"
	PassLinks      = "links"
)

// StructuralError describes a block or cell token that cannot be assembled.
type StructuralError struct {
	Tag    string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("markup: [[%s]]: %s", e.Tag, e.Reason)
}

func (e *StructuralError) Unwrap() error {
	return ErrStructuralTag
}

func structural(tag, format string, args ...any) error {
	return &StructuralError{Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

// IterationError reports the pass that hit the rewrite ceiling.
type IterationError struct {
	Pass  string
	Limit int
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("markup: %s pass exceeded %d rewrites", e.Pass, e.Limit)
}

func (e *IterationError) Unwrap() error {
	return ErrIterationLimit
}

// budget counts the rewrites of one pass.
type budget struct {
	pass  string
	limit int
	used  int
}

func (b *budget) spend() error {
	if b.used >= b.limit {
		return &IterationError{Pass: b.pass, Limit: b.limit}
	}
	b.used++
	return nil
}
