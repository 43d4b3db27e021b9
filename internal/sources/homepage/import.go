// Package homepage imports links from Homepage (gethomepage.dev)
// configuration files as bookmark folders.
package homepage

import (
	"context"
	"errors"
	"fmt"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
)

// ErrNoBookmarks is returned when a file parses but yields no links.
var ErrNoBookmarks = errors.New("no bookmarks found in homepage config")

// Import reads path as bookmarks.yaml, falling back to services.yaml when
// the bookmarks layout does not fit. Empty categories are dropped.
func Import(_ context.Context, path string) ([]domain.Folder, error) {
	loader := NewLoader(path)

	folders, bookmarksErr := importBookmarks(loader)
	if bookmarksErr != nil {
		var servicesErr error
		folders, servicesErr = importServices(loader)
		if servicesErr != nil {
			return nil, fmt.Errorf("not a homepage bookmarks or services file: %w", errors.Join(bookmarksErr, servicesErr))
		}
	}

	out := folders[:0]
	for _, f := range folders {
		if len(f.Bookmarks) > 0 {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoBookmarks
	}
	return out, nil
}

func importBookmarks(l *Loader) ([]domain.Folder, error) {
	config, err := l.LoadBookmarks()
	if err != nil {
		return nil, err
	}
	return MapBookmarks(config), nil
}

func importServices(l *Loader) ([]domain.Folder, error) {
	config, err := l.LoadServices()
	if err != nil {
		return nil, err
	}
	return MapServices(config), nil
}
