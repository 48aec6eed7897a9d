package workflow

import (
	"context"
	"log/slog"

	"almoner/internal/donor"
)

// Saver is the editor's view of the donor API.
type Saver interface {
	Create(ctx context.Context, payload donor.Create) (donor.Donor, error)
	Update(ctx context.Context, id int64, payload donor.Update) (donor.Donor, error)
}

// Editor validates and submits the donor form. On failure the caller's
// form values stay untouched so the user can retry; on success the saved
// donor advances to duplicate review.
type Editor struct {
	api    Saver
	logger *slog.Logger
}

// NewEditor builds an Editor.
func NewEditor(api Saver, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{api: api, logger: logger}
}

// Submit creates a new donor when existing is nil, otherwise updates the
// existing record with the full form payload. Validation failures return
// before any network call is issued.
func (e *Editor) Submit(ctx context.Context, form donor.Create, existing *donor.Donor) (donor.Donor, error) {
	if err := form.Validate(); err != nil {
		return donor.Donor{}, err
	}

	if existing == nil {
		saved, err := e.api.Create(ctx, form)
		if err != nil {
			return donor.Donor{}, err
		}
		e.logger.Info("created donor", "donor_id", saved.ID, "name", saved.DisplayName())
		return saved, nil
	}

	saved, err := e.api.Update(ctx, existing.ID, donor.Update{Create: form})
	if err != nil {
		return donor.Donor{}, err
	}
	e.logger.Info("updated donor", "donor_id", saved.ID, "name", saved.DisplayName())
	return saved, nil
}
