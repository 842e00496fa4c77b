// Package homepage imports links from Homepage (gethomepage.dev) config
// files. Both bookmarks.yaml and services.yaml are understood.
package homepage

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/smartmark/internal/domain"
)

// ErrNoEntries is returned when a file parses but yields nothing importable.
var ErrNoEntries = errors.New("no valid bookmarks found in homepage config")

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads a Homepage file from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a new Homepage loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path is the file the loader reads.
func (l *Loader) Path() string { return l.filePath }

// Load reads the file and returns its entries as drafts.
func (l *Loader) Load() ([]domain.Draft, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read homepage file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a bookmarks.yaml or services.yaml document into drafts.
// The bookmarks layout is tried first; the two layouts cannot both decode.
func Parse(data []byte) ([]domain.Draft, error) {
	// Strip Homepage template variables ({{HOMEPAGE_VAR_...}})
	data = stripTemplateVariables(data)

	var bookmarks BookmarksConfig
	bmErr := yaml.Unmarshal(data, &bookmarks)
	if bmErr == nil {
		if drafts := MapBookmarks(bookmarks); len(drafts) > 0 {
			return drafts, nil
		}
	}

	var services ServicesConfig
	svcErr := yaml.Unmarshal(data, &services)
	if svcErr == nil {
		if drafts := MapServices(services); len(drafts) > 0 {
			return drafts, nil
		}
	}

	if bmErr != nil && svcErr != nil {
		return nil, fmt.Errorf("failed to parse homepage yaml: %w", bmErr)
	}
	return nil, ErrNoEntries
}

// stripTemplateVariables removes Homepage template variables from YAML
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
