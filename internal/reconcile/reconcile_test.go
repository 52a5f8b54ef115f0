package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litbook/litbook-server/internal/domain"
	domainerrors "github.com/litbook/litbook-server/internal/errors"
)

func ids(ps []Placement) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Draft.ID
	}
	return out
}

func TestCompute_UpdateCreateDelete(t *testing.T) {
	plan, err := Compute(Input{
		BookID:   "book-1",
		Existing: []string{"1", "2", "3"},
		Submitted: []domain.ChapterDraft{
			{ID: "1", Title: "A"},
			{Title: "B"},
			{ID: "3", Title: "C"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, ids(plan.Updates))
	assert.Equal(t, 0, plan.Updates[0].Order)
	assert.Equal(t, 2, plan.Updates[1].Order)

	require.Len(t, plan.Creates, 1)
	assert.Equal(t, "B", plan.Creates[0].Draft.Title)
	assert.Equal(t, 1, plan.Creates[0].Order)

	assert.Equal(t, []string{"2"}, plan.Deletes)
	assert.Equal(t, 3, plan.Size())
}

func TestCompute_Reorder(t *testing.T) {
	plan, err := Compute(Input{
		BookID:    "book-1",
		Existing:  []string{"a", "b", "c"},
		Submitted: []domain.ChapterDraft{{ID: "c"}, {ID: "a"}, {ID: "b"}},
	})
	require.NoError(t, err)

	orders := map[string]int{}
	for _, u := range plan.Updates {
		orders[u.Draft.ID] = u.Order
	}
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, orders)
	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Deletes)
}

func TestCompute_NewBook(t *testing.T) {
	plan, err := Compute(Input{
		BookID:    "book-new",
		Submitted: []domain.ChapterDraft{{Title: "One"}, {Title: "Two"}},
	})
	require.NoError(t, err)

	assert.Len(t, plan.Creates, 2)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Deletes)
}

func TestCompute_RemoveAll(t *testing.T) {
	plan, err := Compute(Input{BookID: "book-1", Existing: []string{"x", "y"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, plan.Deletes)
	assert.Zero(t, plan.Size())
	assert.False(t, plan.Empty())
}

func TestCompute_CrossBookID(t *testing.T) {
	_, err := Compute(Input{
		BookID:    "book-1",
		Existing:  []string{"1"},
		Submitted: []domain.ChapterDraft{{ID: "1"}, {ID: "99"}},
		Owners:    map[string]string{"99": "book-2"},
	})

	assert.ErrorIs(t, err, domainerrors.ErrCrossBookChapter)
}

func TestCompute_UnknownID(t *testing.T) {
	_, err := Compute(Input{
		BookID:    "book-1",
		Existing:  []string{"1"},
		Submitted: []domain.ChapterDraft{{ID: "made-up"}},
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCompute_DuplicateID(t *testing.T) {
	_, err := Compute(Input{
		BookID:    "book-1",
		Existing:  []string{"1"},
		Submitted: []domain.ChapterDraft{{ID: "1"}, {ID: "1"}},
	})

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestForeign(t *testing.T) {
	got := Foreign([]string{"1", "2"}, []domain.ChapterDraft{{ID: "1"}, {ID: "9"}, {}, {ID: " 9 "}, {ID: "8"}})

	assert.Equal(t, []string{"9", "8"}, got)
}
