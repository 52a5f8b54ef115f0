// Package service implements LitBook's business operations on top of the
// store, the segmenter, the search index and the LLM annotator.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/store"
)

// storeError maps store sentinels to domain errors. Domain errors from the
// store (reconciliation) pass through unchanged.
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}

	var de *domainerrors.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(what + " already exists")
	case errors.As(err, &de):
		return err
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// loadBook fetches a book with its chapters as a domain error-aware read.
func loadBook(ctx context.Context, st store.Store, bookID string) (*domain.Book, error) {
	book, err := st.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "book")
	}
	return book, nil
}

// resolvePosition checks that chapterID belongs to book and that index is a
// valid 1-based paragraph of it, returning the paragraph text.
func resolvePosition(book *domain.Book, chapterID string, index int) (string, error) {
	ch, ok := book.Chapter(chapterID)
	if !ok {
		return "", domainerrors.Validationf("chapter %s does not belong to book %s", chapterID, book.ID)
	}
	text, ok := ch.Paragraph(index)
	if !ok {
		if ch.ParagraphCount() == 0 {
			return "", domainerrors.Validationf("chapter %s has no paragraphs", chapterID)
		}
		return "", domainerrors.Validationf("paragraph_index %d is out of range 1..%d", index, ch.ParagraphCount())
	}
	return text, nil
}
