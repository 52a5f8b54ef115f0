// Package reconcile computes how to move a book's stored chapter set to a
// newly submitted ordered chapter list while preserving chapter identity.
//
// Compute is pure; the store applies the resulting Plan in one transaction.
package reconcile

import (
	"slices"
	"strings"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
)

// Input describes one reconciliation.
type Input struct {
	BookID string
	// Existing lists the ids of the chapters the book currently owns.
	Existing []string
	// Submitted is the new chapter list in reading order.
	Submitted []domain.ChapterDraft
	// Owners maps submitted ids that are not in Existing to the book that
	// owns them. Ids missing from both are unknown.
	Owners map[string]string
}

// Placement is a draft together with its new position.
type Placement struct {
	Draft domain.ChapterDraft
	Order int
}

// Plan is the create/update/delete triplet for one book.
type Plan struct {
	BookID  string
	Creates []Placement
	Updates []Placement
	Deletes []string
}

// Empty reports whether applying the plan changes nothing structurally.
func (p *Plan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Size is the number of chapters the book has after the plan is applied.
func (p *Plan) Size() int {
	return len(p.Creates) + len(p.Updates)
}

// Compute builds the plan for in. Drafts without an id are created, drafts
// with an id the book owns are updated, and owned ids missing from the
// submission are deleted. Every kept or created chapter takes its index in
// the submission as its order.
//
// A submitted id owned by another book is a cross-book error. An id that
// exists nowhere, or appears twice, is a validation error.
func Compute(in Input) (*Plan, error) {
	existing := make(map[string]bool, len(in.Existing))
	for _, id := range in.Existing {
		existing[id] = true
	}

	plan := &Plan{BookID: in.BookID}
	seen := make(map[string]bool, len(in.Submitted))

	for i, draft := range in.Submitted {
		draft.ID = strings.TrimSpace(draft.ID)
		placement := Placement{Draft: draft, Order: i}

		if draft.ID == "" {
			plan.Creates = append(plan.Creates, placement)
			continue
		}

		if seen[draft.ID] {
			return nil, domainerrors.Validationf("chapter %s is submitted more than once", draft.ID)
		}
		seen[draft.ID] = true

		if existing[draft.ID] {
			plan.Updates = append(plan.Updates, placement)
			continue
		}

		if owner, ok := in.Owners[draft.ID]; ok && owner != in.BookID {
			return nil, domainerrors.CrossBookChapterf("chapter %s belongs to another book", draft.ID)
		}
		return nil, domainerrors.Validationf("chapter %s does not exist", draft.ID)
	}

	for _, id := range in.Existing {
		if !seen[id] {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	slices.Sort(plan.Deletes)

	return plan, nil
}

// Foreign returns the submitted ids that are not in existing. The store
// resolves their owners before calling Compute.
func Foreign(existing []string, submitted []domain.ChapterDraft) []string {
	var out []string
	for _, d := range submitted {
		id := strings.TrimSpace(d.ID)
		if id != "" && !slices.Contains(existing, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
