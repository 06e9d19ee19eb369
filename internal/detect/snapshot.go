package detect

import (
	"context"
	"fmt"
	"sync"
)

// SnapshotFields carries the extracted field values of one page snapshot.
// Absent fields stay empty; the engine treats them as failed extractions.
type SnapshotFields struct {
	Title      string `json:"title,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language,omitempty"`
	Code       string `json:"code,omitempty"`
	ProblemURL string `json:"problemUrl,omitempty"`
	Runtime    string `json:"runtime,omitempty"`
	Memory     string `json:"memory,omitempty"`
}

// Snapshot is one full page observation delivered by the page-context
// collaborator.
type Snapshot struct {
	PageState
	Fields SnapshotFields `json:"fields"`
}

// SnapshotPage implements Page over the most recent snapshot received from
// the page context. It decouples the sampling loop from however the
// snapshots arrive.
type SnapshotPage struct {
	mu       sync.RWMutex
	snapshot Snapshot
	seen     bool
}

// NewSnapshotPage constructs an empty snapshot page.
func NewSnapshotPage() *SnapshotPage {
	return &SnapshotPage{}
}

// Update replaces the current snapshot.
func (p *SnapshotPage) Update(snapshot Snapshot) {
	p.mu.Lock()
	p.snapshot = snapshot
	p.seen = true
	p.mu.Unlock()
}

// State returns the latest observation.
func (p *SnapshotPage) State(_ context.Context) (PageState, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.seen {
		return PageState{}, fmt.Errorf("no page snapshot received yet")
	}

	return p.snapshot.PageState, nil
}

func (p *SnapshotPage) Title(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Title }, "title")
}

func (p *SnapshotPage) Difficulty(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Difficulty }, "difficulty")
}

func (p *SnapshotPage) Language(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Language }, "language")
}

func (p *SnapshotPage) Code(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Code }, "code")
}

func (p *SnapshotPage) ProblemURL(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.ProblemURL }, "problem url")
}

func (p *SnapshotPage) Runtime(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Runtime }, "runtime")
}

func (p *SnapshotPage) Memory(_ context.Context) (string, error) {
	return p.field(func(f SnapshotFields) string { return f.Memory }, "memory")
}

func (p *SnapshotPage) field(pick func(SnapshotFields) string, name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value := pick(p.snapshot.Fields)
	if value == "" {
		return "", fmt.Errorf("%s not present in snapshot", name)
	}

	return value, nil
}

var _ Page = (*SnapshotPage)(nil)
