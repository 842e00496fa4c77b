// Package view keeps one user's bookmark list consistent while their own
// mutations and changes from other sessions arrive concurrently.
package view

import (
	"github.com/MrSnakeDoc/smartmark/internal/domain"
	"github.com/MrSnakeDoc/smartmark/internal/feed"
)

// Reconcile returns the list that results from applying ev to list on
// behalf of the session user. The input slice is never modified.
//
//   - INSERT for the session user is prepended. An id already present is
//     replaced in place instead, so ids stay unique when an event overlaps
//     the initial snapshot or is delivered twice.
//   - UPDATE for the session user replaces the matching entry in place.
//   - DELETE removes the entry with the old id whoever it belongs to.
//
// Inserts and updates for any other user, and anything referring to an id
// that is not present (except insert), leave the list unchanged.
func Reconcile(list []domain.Bookmark, sessionUserID string, ev feed.Event) []domain.Bookmark {
	switch ev.Type {
	case feed.EventInsert:
		if ev.New == nil || sessionUserID == "" || ev.New.UserID != sessionUserID {
			return list
		}
		if i := indexOf(list, ev.New.ID); i >= 0 {
			return replaceAt(list, i, *ev.New)
		}
		out := make([]domain.Bookmark, 0, len(list)+1)
		out = append(out, *ev.New)
		return append(out, list...)

	case feed.EventUpdate:
		if ev.New == nil || sessionUserID == "" || ev.New.UserID != sessionUserID {
			return list
		}
		if i := indexOf(list, ev.New.ID); i >= 0 {
			return replaceAt(list, i, *ev.New)
		}
		return list

	case feed.EventDelete:
		if ev.Old == nil {
			return list
		}
		return Remove(list, ev.Old.ID)
	}

	return list
}

// Remove returns list without the entry whose id matches. The input slice is
// never modified; an unknown id returns list itself.
func Remove(list []domain.Bookmark, id string) []domain.Bookmark {
	i := indexOf(list, id)
	if i < 0 {
		return list
	}
	out := make([]domain.Bookmark, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// Owned keeps the entries belonging to userID, applying to a snapshot the
// same ownership check Reconcile applies to inserts.
func Owned(list []domain.Bookmark, userID string) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(list))
	for _, b := range list {
		if userID != "" && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// Dedupe keeps the first occurrence of every id.
func Dedupe(list []domain.Bookmark) []domain.Bookmark {
	seen := make(map[string]struct{}, len(list))
	out := make([]domain.Bookmark, 0, len(list))
	for _, b := range list {
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return out
}

func indexOf(list []domain.Bookmark, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(list []domain.Bookmark, i int, b domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	out[i] = b
	return out
}
