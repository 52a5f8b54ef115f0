package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/litbook/litbook-server/internal/errors"
	"github.com/litbook/litbook-server/internal/validation"
)

type chapterInput struct {
	Title   string `json:"title" validate:"notblank,max=200"`
	RawText string `json:"raw_text"`
}

type bookInput struct {
	Title    string         `json:"title" validate:"required,max=300"`
	CoverURL string         `json:"cover_url,omitempty" validate:"omitempty,url"`
	Chapters []chapterInput `json:"chapters" validate:"min=1,dive"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(bookInput{
		Title:    "The Quiet Hours",
		Chapters: []chapterInput{{Title: "One"}},
	})
	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		input     bookInput
		wantField string
	}{
		{
			name:      "missing title",
			input:     bookInput{Chapters: []chapterInput{{Title: "One"}}},
			wantField: "title",
		},
		{
			name:      "bad cover url",
			input:     bookInput{Title: "T", CoverURL: "not a url", Chapters: []chapterInput{{Title: "One"}}},
			wantField: "cover_url",
		},
		{
			name:      "no chapters",
			input:     bookInput{Title: "T"},
			wantField: "chapters",
		},
		{
			name:      "blank chapter title",
			input:     bookInput{Title: "T", Chapters: []chapterInput{{Title: "One"}, {Title: "   "}}},
			wantField: "chapters[1].title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, domainerrors.HTTPStatus(err))

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}
