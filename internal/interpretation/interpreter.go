package interpretation

import (
	"context"

	"github.com/arcanalab/tarot-api/internal/domain"
)

// Request carries the inputs of one interpretation call. Cards are listed
// in draw order; Positions is advisory and only used when its length equals
// the card count.
type Request struct {
	Question  string
	Cards     domain.CardDraw
	Spread    string
	Positions []string
}

// Outcome is the normalized result of a successful interpretation call.
// Conforming is false when the upstream text contained no valid JSON and
// the raw text was wrapped as the reading narrative instead; the call is
// still a success from the processor's point of view.
type Outcome struct {
	Result     domain.ReadingResult
	Conforming bool
}

// Interpreter is the boundary between the application core and the
// external text-generation service. Implementations are stateless across
// calls and perform exactly one bounded outbound call per invocation.
type Interpreter interface {
	// Interpret builds the prompt pair for the request and performs one
	// outbound call. Errors belong to the taxonomy in errors.go.
	Interpret(ctx context.Context, req Request) (*Outcome, error)
}
