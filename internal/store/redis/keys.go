package redis

import "fmt"

const (
	// KeyPrefixBookmark is the prefix for bookmark keys
	KeyPrefixBookmark = "smartmark:bookmark:"
	// KeyPrefixUser is the prefix for per-user index keys
	KeyPrefixUser = "smartmark:user:"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// UserBookmarksKey returns the sorted set holding a user's bookmark ids,
// scored by creation time
func UserBookmarksKey(userID string) string {
	return fmt.Sprintf("%s%s:bookmarks", KeyPrefixUser, userID)
}

// ExtractBookmarkID extracts the bookmark ID from a Redis key
func ExtractBookmarkID(key string) (string, error) {
	if len(key) <= len(KeyPrefixBookmark) {
		return "", fmt.Errorf("invalid bookmark key: %s", key)
	}
	return key[len(KeyPrefixBookmark):], nil
}
