// Package detect watches a continuously mutating problem page and emits at
// most one submission event per genuinely accepted submission. Test runs,
// stale verdicts, and submission-history views never produce events.
package detect

import "context"

// Verdict is one candidate verdict node sampled from the page, together with
// the text of its immediate container.
type Verdict struct {
	Text          string `json:"text"`
	ContainerText string `json:"containerText"`
}

// PageState is one sampled observation of the page.
type PageState struct {
	URL      string    `json:"url"`
	BodyText string    `json:"bodyText"`
	Verdicts []Verdict `json:"verdicts"`
}

// Page abstracts the page-context collaborator. State returns the current
// observation; the field extractors run independently so one failure never
// aborts the others. Selector heuristics live behind this interface.
type Page interface {
	State(ctx context.Context) (PageState, error)
	Title(ctx context.Context) (string, error)
	Difficulty(ctx context.Context) (string, error)
	Language(ctx context.Context) (string, error)
	Code(ctx context.Context) (string, error)
	ProblemURL(ctx context.Context) (string, error)
	Runtime(ctx context.Context) (string, error)
	Memory(ctx context.Context) (string, error)
}
