package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/litbook/litbook-server/internal/domain"
	"github.com/litbook/litbook-server/internal/store"
)

func TestBookmarks_UniquePerPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "usr-1", "Ada")
	book := createTestBook(t, s, "book-1", "usr-1", 3)
	pos := domain.Position{BookID: "book-1", ChapterID: book.Chapters[0].ID, ParagraphIndex: 2}

	bm := &domain.Bookmark{
		ID: "bm-1", UserID: "usr-1", BookID: pos.BookID, ChapterID: pos.ChapterID,
		ParagraphIndex: pos.ParagraphIndex, Text: "first", CreatedAt: time.Now(),
	}
	if err := s.CreateBookmark(ctx, bm); err != nil {
		t.Fatalf("CreateBookmark: %v", err)
	}

	dup := *bm
	dup.ID = "bm-2"
	dup.Text = "second"
	if err := s.CreateBookmark(ctx, &dup); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := s.GetBookmarkAt(ctx, "usr-1", pos)
	if err != nil {
		t.Fatalf("GetBookmarkAt: %v", err)
	}
	if got.ID != "bm-1" || got.Text != "first" {
		t.Errorf("expected first bookmark kept, got %+v", got)
	}
}

func TestDeleteBookmarkAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "usr-1", "Ada")
	book := createTestBook(t, s, "book-1", "usr-1", 3)
	pos := domain.Position{BookID: "book-1", ChapterID: book.Chapters[0].ID, ParagraphIndex: 1}

	if err := s.CreateBookmark(ctx, &domain.Bookmark{
		ID: "bm-1", UserID: "usr-1", BookID: pos.BookID, ChapterID: pos.ChapterID,
		ParagraphIndex: 1, Text: "verse", CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateBookmark: %v", err)
	}

	deleted, err := s.DeleteBookmarkAt(ctx, "usr-1", pos)
	if err != nil {
		t.Fatalf("DeleteBookmarkAt: %v", err)
	}
	if deleted.ID != "bm-1" {
		t.Errorf("deleted id: got %s", deleted.ID)
	}

	if _, err := s.DeleteBookmarkAt(ctx, "usr-1", pos); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestListBookmarks_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "usr-1", "Ada")
	createTestUser(t, s, "usr-2", "Bo")
	book := createTestBook(t, s, "book-1", "usr-1", 3)

	now := time.Now()
	for i, userID := range []string{"usr-1", "usr-1", "usr-2"} {
		err := s.CreateBookmark(ctx, &domain.Bookmark{
			ID: "bm-" + string(rune('a'+i)), UserID: userID, BookID: "book-1", ChapterID: book.Chapters[0].ID,
			ParagraphIndex: i + 1, Text: "verse", CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("CreateBookmark %d: %v", i, err)
		}
	}

	list, err := s.ListBookmarks(ctx, "usr-1")
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(list) != 2 || list[0].ID != "bm-b" || list[1].ID != "bm-a" {
		t.Errorf("unexpected list: %+v", list)
	}
}
