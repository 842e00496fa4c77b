package domain

import "testing"

func TestScoreBookmark(t *testing.T) {
	tests := []struct {
		name           string
		queryStr       string
		title          string
		url            string
		expectPositive bool
	}{
		{
			name:           "exact title match",
			queryStr:       "chatgpt",
			title:          "ChatGPT",
			url:            "https://chat.openai.com",
			expectPositive: true,
		},
		{
			name:           "prefix match",
			queryStr:       "chat",
			title:          "ChatGPT",
			url:            "https://chat.openai.com",
			expectPositive: true,
		},
		{
			name:           "substring match",
			queryStr:       "gpt",
			title:          "ChatGPT",
			url:            "https://chat.openai.com",
			expectPositive: true,
		},
		{
			name:           "host match only",
			queryStr:       "openai",
			title:          "My assistant",
			url:            "https://chat.openai.com",
			expectPositive: true,
		},
		{
			name:           "no match",
			queryStr:       "xyz",
			title:          "ChatGPT",
			url:            "https://chat.openai.com",
			expectPositive: false,
		},
		{
			name:           "multi-word match",
			queryStr:       "docker hub",
			title:          "Docker Hub",
			url:            "https://hub.docker.com",
			expectPositive: true,
		},
		{
			name:           "empty query",
			queryStr:       "  ",
			title:          "Docker Hub",
			url:            "https://hub.docker.com",
			expectPositive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmark := Bookmark{
				ID:    "test-id",
				Title: tt.title,
				URL:   tt.url,
			}

			score := ScoreBookmark(tt.queryStr, bookmark)

			if tt.expectPositive && score <= 0 {
				t.Errorf("Expected positive score, got %f", score)
			}

			if !tt.expectPositive && score > 0 {
				t.Errorf("Expected zero score, got %f", score)
			}
		})
	}
}

func TestRankBookmarks_Order(t *testing.T) {
	bookmarks := []Bookmark{
		{ID: "1", Title: "GitHub Issues", URL: "https://github.com/issues"},
		{ID: "2", Title: "Git", URL: "https://git-scm.com"},
		{ID: "3", Title: "Weather", URL: "https://weather.example"},
	}

	candidates := RankBookmarks("git", bookmarks)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Bookmark.ID != "2" {
		t.Errorf("Expected exact title match first, got %s", candidates[0].Bookmark.ID)
	}
	if candidates[0].Score < candidates[1].Score {
		t.Errorf("Candidates not sorted: %f < %f", candidates[0].Score, candidates[1].Score)
	}
}

func TestFilterBookmarks_EmptyQueryKeepsList(t *testing.T) {
	bookmarks := []Bookmark{
		{ID: "b", Title: "B"},
		{ID: "a", Title: "A"},
	}

	got := FilterBookmarks("", bookmarks)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("FilterBookmarks(\"\") = %+v, want input unchanged", got)
	}
}

func TestFindBestBookmark(t *testing.T) {
	bookmarks := []Bookmark{
		{ID: "1", Title: "Grafana", URL: "https://grafana.example"},
		{ID: "2", Title: "Prometheus", URL: "https://prom.example"},
	}

	best, ok := FindBestBookmark("prom", bookmarks)
	if !ok {
		t.Fatal("Expected a match")
	}
	if best.ID != "2" {
		t.Errorf("Expected bookmark 2, got %s", best.ID)
	}

	if _, ok := FindBestBookmark("nothing-here-zzz", bookmarks); ok {
		t.Error("Expected no match")
	}
}
