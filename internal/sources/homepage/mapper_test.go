package homepage

import (
	"testing"
)

func TestMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{
					"AdGuard Home": {
						Icon:        "adguard-home.svg",
						Href:        "https://adguard.domain.ext",
						Description: "Network-wide ads blocking",
					},
				},
				{
					"Traefik": {
						Icon: "traefik.svg",
						Href: "  https://traefik.domain.ext ",
					},
				},
			},
		},
	}

	drafts := MapServices(config)
	if len(drafts) != 2 {
		t.Fatalf("MapServices() returned %v drafts, want 2", len(drafts))
	}
	if drafts[1].URL != "https://traefik.domain.ext" {
		t.Errorf("MapServices() did not normalize url: %q", drafts[1].URL)
	}
}

func TestMapServicesSkipsInvalid(t *testing.T) {
	config := ServicesConfig{
		{
			"Test": []map[string]ServiceProps{
				{"Invalid Service": {Href: "not-a-valid-url"}},
				{"No Href": {}},
			},
		},
	}

	if drafts := MapServices(config); len(drafts) != 0 {
		t.Errorf("MapServices() = %+v, want none", drafts)
	}
}

func TestMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Dev": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com"}}},
				{"Empty": {}},
				{"Docs": {{Href: "https://go.dev/doc"}}},
				{"Broken": {{Abbr: "BR", Href: "/relative"}}},
			},
		},
	}

	drafts := MapBookmarks(config)
	if len(drafts) != 2 {
		t.Fatalf("MapBookmarks() returned %d drafts, want 2", len(drafts))
	}
	if drafts[0].Title != "GH" || drafts[1].Title != "Docs" {
		t.Errorf("MapBookmarks() = %+v", drafts)
	}
}
