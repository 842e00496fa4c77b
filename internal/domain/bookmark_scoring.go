package domain

import (
	"sort"
	"strings"
)

// BookmarkCandidate represents a bookmark candidate with its match score
type BookmarkCandidate struct {
	Bookmark Bookmark
	Score    float64
}

// ScoreBookmark calculates the match score for a bookmark against a query
// string, looking at the title first and the hostname second.
func ScoreBookmark(queryStr string, bookmark Bookmark) float64 {
	queryStr = strings.ToLower(strings.TrimSpace(queryStr))
	if queryStr == "" {
		return 0.0
	}

	title := strings.ToLower(strings.TrimSpace(bookmark.Title))
	if queryStr == title {
		return ScoreExactMatch + ScoreExactTitleBonus
	}

	titleScore := scoreText(queryStr, title)
	hostScore := scoreText(queryStr, Hostname(bookmark.URL)) * ScoreHostWeight

	if hostScore > titleScore {
		return hostScore
	}
	return titleScore
}

// RankBookmarks returns the bookmarks matching queryStr, best first. Ties keep
// the input order, so a newest-first list stays newest-first among equals.
func RankBookmarks(queryStr string, bookmarks []Bookmark) []BookmarkCandidate {
	candidates := make([]BookmarkCandidate, 0, len(bookmarks))

	for _, bookmark := range bookmarks {
		score := ScoreBookmark(queryStr, bookmark)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, BookmarkCandidate{
			Bookmark: bookmark,
			Score:    score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	return candidates
}

// FilterBookmarks returns the matching bookmarks in rank order. An empty
// query returns the list unchanged.
func FilterBookmarks(queryStr string, bookmarks []Bookmark) []Bookmark {
	if strings.TrimSpace(queryStr) == "" {
		return bookmarks
	}
	candidates := RankBookmarks(queryStr, bookmarks)
	out := make([]Bookmark, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Bookmark)
	}
	return out
}

// FindBestBookmark finds the best matching bookmark for a query
func FindBestBookmark(queryStr string, bookmarks []Bookmark) (Bookmark, bool) {
	candidates := RankBookmarks(queryStr, bookmarks)
	if len(candidates) == 0 {
		return Bookmark{}, false
	}
	return candidates[0].Bookmark, true
}
