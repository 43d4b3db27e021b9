package homepage

import (
	"sort"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
)

// MapBookmarks converts bookmarks.yaml categories into folders, one per
// category in file order. Entries without href are skipped; abbr wins over
// the entry name when present.
func MapBookmarks(config BookmarksConfig) []domain.Folder {
	var folders []domain.Folder
	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			folder := newFolder(categoryName)
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 || entryList[0].Href == "" {
						continue
					}
					entry := entryList[0]

					name := entry.Abbr
					if name == "" {
						name = bookmarkName
					}
					folder.Bookmarks = append(folder.Bookmarks, domain.Bookmark{Name: name, URL: entry.Href})
				}
			}
			folders = append(folders, folder)
		}
	}
	return folders
}

// MapServices converts services.yaml groups into folders of service links.
func MapServices(config ServicesConfig) []domain.Folder {
	var folders []domain.Folder
	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			folder := newFolder(groupName)
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					props := serviceMap[serviceName]
					// Skip services without href
					if props.Href == "" {
						continue
					}
					folder.Bookmarks = append(folder.Bookmarks, domain.Bookmark{Name: serviceName, URL: props.Href})
				}
			}
			folders = append(folders, folder)
		}
	}
	return folders
}

func newFolder(name string) domain.Folder {
	return domain.Folder{Name: name, Expanded: true, Bookmarks: []domain.Bookmark{}}
}

// sortedKeys gives a stable order for the rare map holding several keys;
// Homepage files normally use one key per list item.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
