package redis

import "testing"

func TestKeys(t *testing.T) {
	if got := BookmarkKey("abc"); got != "smartmark:bookmark:abc" {
		t.Errorf("BookmarkKey() = %q", got)
	}
	if got := UserBookmarksKey("u1"); got != "smartmark:user:u1:bookmarks" {
		t.Errorf("UserBookmarksKey() = %q", got)
	}
}

func TestExtractBookmarkID(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "smartmark:bookmark:abc", want: "abc"},
		{key: "smartmark:bookmark:", wantErr: true},
		{key: "short", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ExtractBookmarkID(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractBookmarkID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractBookmarkID() = %q, want %q", got, tt.want)
			}
		})
	}
}
