package domain

import (
	"slices"
	"time"
)

// ActivityType tags an activity log entry.
type ActivityType string

const (
	ActivityStartedReading   ActivityType = "STARTED_READING"
	ActivityFinishedBook     ActivityType = "FINISHED_BOOK"
	ActivityAddedBookmark    ActivityType = "ADDED_BOOKMARK"
	ActivityPublishedBook    ActivityType = "PUBLISHED_BOOK"
	ActivityUpdatedBook      ActivityType = "UPDATED_BOOK"
	ActivityFollowedUser     ActivityType = "FOLLOWED_USER"
	ActivityPostedReflection ActivityType = "POSTED_REFLECTION"
)

var activityTypes = []ActivityType{
	ActivityStartedReading,
	ActivityFinishedBook,
	ActivityAddedBookmark,
	ActivityPublishedBook,
	ActivityUpdatedBook,
	ActivityFollowedUser,
	ActivityPostedReflection,
}

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	return slices.Contains(activityTypes, t)
}

// ActivityTypes lists all known activity types.
func ActivityTypes() []ActivityType {
	return slices.Clone(activityTypes)
}

// Activity is an append-only log entry. Activities are never updated.
type Activity struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Type      ActivityType `json:"type"`
	BookID    string       `json:"book_id,omitempty"`
	Comment   string       `json:"comment,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
