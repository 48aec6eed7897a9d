package workflow

import (
	"context"
	"testing"

	"almoner/internal/auth"
	"almoner/internal/config"
	"almoner/internal/dedupe"
	"almoner/internal/donor"
	"almoner/internal/journal"
	"almoner/internal/logging"
)

func staticSession(email string) auth.Provider {
	return auth.NewStatic(config.Operator{Email: email})
}

type fakeDuplicateAPI struct {
	candidates []donor.Donor
	findErr    error
	mergeErr   error
	mergeCalls int
	merged     donor.Donor
}

func (f *fakeDuplicateAPI) FindDuplicates(_ context.Context, _ int64) ([]donor.Donor, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.candidates, nil
}

func (f *fakeDuplicateAPI) Merge(_ context.Context, primaryID, duplicateID int64) (donor.Donor, error) {
	f.mergeCalls++
	if f.mergeErr != nil {
		return donor.Donor{}, f.mergeErr
	}
	f.merged = donor.Donor{ID: primaryID}
	return f.merged, nil
}

type memoryRecorder struct {
	entries []journal.Entry
}

func (m *memoryRecorder) Record(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	m.entries = append(m.entries, entry)
	return entry, nil
}

func answer(yes bool) Confirmer {
	return ConfirmerFunc(func(string) bool { return yes })
}

func TestLoadScoresEveryCandidate(t *testing.T) {
	api := &fakeDuplicateAPI{candidates: []donor.Donor{
		{ID: 6, FullName: "Jane Doe", Email: "jane@x.com"},
		{ID: 8, FullName: "Someone Else"},
	}}
	review := NewReview(api, answer(false), nil, nil, logging.NewNop())

	reference := donor.Donor{ID: 5, FullName: "Jane Doe", Email: "jane@x.com"}
	candidates, err := review.Load(context.Background(), reference)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("all candidates must be shown, got %d", len(candidates))
	}
	if candidates[0].Match.Score != 75 || candidates[0].Confidence != dedupe.ConfidenceHigh {
		t.Fatalf("unexpected first candidate: %+v", candidates[0])
	}
	// Low scorers stay in the list; thresholds are presentation only.
	if candidates[1].Match.Score != 0 || candidates[1].Confidence != dedupe.ConfidenceLow {
		t.Fatalf("unexpected second candidate: %+v", candidates[1])
	}
}

func TestMergeWithoutConfirmationIssuesNoCall(t *testing.T) {
	api := &fakeDuplicateAPI{candidates: []donor.Donor{{ID: 6, FullName: "Jane Doe"}}}
	rec := &memoryRecorder{}
	review := NewReview(api, answer(false), rec, nil, logging.NewNop())

	reference := donor.Donor{ID: 5, FullName: "Jane Doe"}
	result, err := review.Run(context.Background(), reference)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if api.mergeCalls != 0 {
		t.Fatalf("declined confirmation must not call merge, got %d calls", api.mergeCalls)
	}
	if result.Merged != nil {
		t.Fatal("no merge should be reported")
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("candidate list must stay intact: %+v", result.Candidates)
	}
	if len(rec.entries) != 1 || rec.entries[0].Decision != journal.DecisionDeclined {
		t.Fatalf("expected declined journal entry, got %+v", rec.entries)
	}
}

func TestRunCompletesImmediatelyWithZeroCandidates(t *testing.T) {
	api := &fakeDuplicateAPI{}
	prompted := false
	confirm := ConfirmerFunc(func(string) bool {
		prompted = true
		return true
	})
	review := NewReview(api, confirm, nil, nil, logging.NewNop())

	result, err := review.Run(context.Background(), donor.Donor{ID: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Completed {
		t.Fatal("zero candidates should complete the workflow")
	}
	if prompted {
		t.Fatal("no interaction should be required")
	}
	if api.mergeCalls != 0 {
		t.Fatal("no merge call expected")
	}
}

func TestConfirmedMergeRecordsDecisionWithOperator(t *testing.T) {
	api := &fakeDuplicateAPI{candidates: []donor.Donor{{ID: 9, FullName: "Jane Doe", Email: "jane@x.com", Phone: "555-1234"}}}
	rec := &memoryRecorder{}
	session := staticSession("ops@example.org")
	review := NewReview(api, answer(true), rec, session, logging.NewNop())

	reference := donor.Donor{ID: 5, FullName: "Jane Doe", Email: "jane@x.com", Phone: "(555) 1234"}
	result, err := review.Run(context.Background(), reference)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Merged == nil || result.Merged.ID != 5 {
		t.Fatalf("expected merged donor, got %+v", result.Merged)
	}
	if api.mergeCalls != 1 {
		t.Fatalf("expected one merge call, got %d", api.mergeCalls)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(rec.entries))
	}
	entry := rec.entries[0]
	if entry.Decision != journal.DecisionMerged || entry.Operator != "ops@example.org" {
		t.Fatalf("unexpected journal entry: %+v", entry)
	}
	if entry.Score != 100 {
		t.Fatalf("journal should carry the candidate score, got %d", entry.Score)
	}
}

func TestMergeFailurePreservesCandidates(t *testing.T) {
	reqErr := &donor.RequestError{Op: "merge donors", StatusCode: 500, Status: "500 Internal Server Error"}
	api := &fakeDuplicateAPI{
		candidates: []donor.Donor{{ID: 6, FullName: "Jane Doe"}},
		mergeErr:   reqErr,
	}
	review := NewReview(api, answer(true), nil, nil, logging.NewNop())

	result, err := review.Run(context.Background(), donor.Donor{ID: 5, FullName: "Jane Doe"})
	if !donor.IsRequestFailed(err) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("candidates must survive a failed merge for retry: %+v", result.Candidates)
	}
}

func TestSkipRecordsDecision(t *testing.T) {
	rec := &memoryRecorder{}
	review := NewReview(&fakeDuplicateAPI{}, answer(false), rec, nil, logging.NewNop())

	review.Skip(context.Background(), donor.Donor{ID: 5}, Candidate{Donor: donor.Donor{ID: 6}, Match: dedupe.Match{Score: 25}})

	if len(rec.entries) != 1 || rec.entries[0].Decision != journal.DecisionSkipped {
		t.Fatalf("expected skipped entry, got %+v", rec.entries)
	}
}
