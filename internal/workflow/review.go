package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"almoner/internal/auth"
	"almoner/internal/dedupe"
	"almoner/internal/donor"
	"almoner/internal/journal"
)

// DuplicateAPI is the review stage's view of the donor API.
type DuplicateAPI interface {
	FindDuplicates(ctx context.Context, id int64) ([]donor.Donor, error)
	Merge(ctx context.Context, primaryID, duplicateID int64) (donor.Donor, error)
}

// Confirmer answers the blocking yes/no prompt before a merge. Merges are
// irreversible; nothing is sent without an affirmative answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) bool

// Confirm calls the wrapped function.
func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Recorder receives review decisions. *journal.Store satisfies it; a nil
// Recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

// Candidate is one scored duplicate candidate.
type Candidate struct {
	Donor      donor.Donor
	Match      dedupe.Match
	Confidence dedupe.Confidence
}

// Result summarizes one pass through duplicate review.
type Result struct {
	Candidates []Candidate
	Merged     *donor.Donor
	Completed  bool
}

// Review drives the duplicate-review stage: fetch candidates, score them,
// and merge only what the operator explicitly confirms.
type Review struct {
	api     DuplicateAPI
	confirm Confirmer
	journal Recorder
	session auth.Provider
	logger  *slog.Logger
}

// NewReview builds a Review. journal and session may be nil.
func NewReview(api DuplicateAPI, confirm Confirmer, rec Recorder, session auth.Provider, logger *slog.Logger) *Review {
	if logger == nil {
		logger = slog.Default()
	}
	return &Review{api: api, confirm: confirm, journal: rec, session: session, logger: logger}
}

// Load fetches and scores the duplicate candidates for reference. Every
// candidate the backend returned is included regardless of score.
func (r *Review) Load(ctx context.Context, reference donor.Donor) ([]Candidate, error) {
	found, err := r.api.FindDuplicates(ctx, reference.ID)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(found))
	for _, dup := range found {
		candidates = append(candidates, r.Score(reference, dup))
	}
	return candidates, nil
}

// Score rates a single candidate against reference without fetching.
func (r *Review) Score(reference, candidate donor.Donor) Candidate {
	match := dedupe.Score(reference, candidate)
	return Candidate{
		Donor:      candidate,
		Match:      match,
		Confidence: dedupe.Rate(match.Score),
	}
}

// Run walks the whole review stage for reference: load candidates, prompt
// for each in turn, and merge the first affirmed candidate. Zero
// candidates completes immediately with no interaction. A merge failure is
// returned with the candidate list intact so the caller can retry.
func (r *Review) Run(ctx context.Context, reference donor.Donor) (Result, error) {
	candidates, err := r.Load(ctx, reference)
	if err != nil {
		return Result{}, err
	}

	result := Result{Candidates: candidates}
	if len(candidates) == 0 {
		result.Completed = true
		r.logger.Info("no duplicates found", "donor_id", reference.ID)
		return result, nil
	}

	for _, candidate := range candidates {
		merged, ok, err := r.Merge(ctx, reference, candidate)
		if err != nil {
			return result, err
		}
		if ok {
			result.Merged = &merged
			result.Completed = true
			return result, nil
		}
	}

	result.Completed = true
	return result, nil
}

// Merge asks for confirmation and, when affirmed, merges candidate into
// reference. A declined prompt issues no network call and leaves the
// caller's state untouched.
func (r *Review) Merge(ctx context.Context, reference donor.Donor, candidate Candidate) (donor.Donor, bool, error) {
	prompt := fmt.Sprintf(
		"Merge %q (id %d) into %q (id %d)? This cannot be undone.",
		candidate.Donor.DisplayName(), candidate.Donor.ID,
		reference.DisplayName(), reference.ID,
	)
	if r.confirm == nil || !r.confirm.Confirm(prompt) {
		r.record(ctx, reference, candidate, journal.DecisionDeclined)
		return donor.Donor{}, false, nil
	}

	merged, err := r.api.Merge(ctx, reference.ID, candidate.Donor.ID)
	if err != nil {
		return donor.Donor{}, false, err
	}
	r.record(ctx, reference, candidate, journal.DecisionMerged)
	r.logger.Info("merged donors", "primary_id", reference.ID, "duplicate_id", candidate.Donor.ID, "score", candidate.Match.Score)
	return merged, true, nil
}

// Skip records that candidate was passed over without a merge attempt.
func (r *Review) Skip(ctx context.Context, reference donor.Donor, candidate Candidate) {
	r.record(ctx, reference, candidate, journal.DecisionSkipped)
}

func (r *Review) record(ctx context.Context, reference donor.Donor, candidate Candidate, decision journal.Decision) {
	if r.journal == nil {
		return
	}
	var operator string
	if r.session != nil {
		if session, ok := r.session.Current(); ok {
			operator = session.Email
		}
	}
	entry := journal.Entry{
		Operator:    operator,
		PrimaryID:   reference.ID,
		DuplicateID: candidate.Donor.ID,
		Score:       candidate.Match.Score,
		Decision:    decision,
	}
	if _, err := r.journal.Record(ctx, entry); err != nil {
		r.logger.Warn("journal write failed", "error", err)
	}
}
