package homepage

import (
	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// MapBookmarks converts bookmarks.yaml entries to drafts. The entry's abbr is
// the title when present, otherwise the bookmark name. Entries that would not
// pass validation are skipped.
func MapBookmarks(config BookmarksConfig) []domain.Draft {
	drafts := make([]domain.Draft, 0)

	for _, category := range config {
		for _, bookmarkList := range category {
			for _, bookmarkMap := range bookmarkList {
				for bookmarkName, entryList := range bookmarkMap {
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					title := entry.Abbr
					if title == "" {
						title = bookmarkName
					}

					if d, ok := draft(title, entry.Href); ok {
						drafts = append(drafts, d)
					}
				}
			}
		}
	}

	return drafts
}

// MapServices converts services.yaml entries to drafts titled by service name.
func MapServices(config ServicesConfig) []domain.Draft {
	drafts := make([]domain.Draft, 0)

	for _, groupMap := range config {
		for _, servicesList := range groupMap {
			for _, serviceMap := range servicesList {
				for serviceName, props := range serviceMap {
					if d, ok := draft(serviceName, props.Href); ok {
						drafts = append(drafts, d)
					}
				}
			}
		}
	}

	return drafts
}

func draft(title, href string) (domain.Draft, bool) {
	d := domain.Draft{Title: title, URL: href}.Normalize()
	if d.Validate() != nil {
		return domain.Draft{}, false
	}
	return d, true
}
