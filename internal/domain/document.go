package domain

import "encoding/json"

// Document is the synchronized unit: the whole bookmark tree.
//
// Mutations never modify the receiver. Each one returns a fresh Document
// together with a flag telling whether anything changed, so snapshots handed
// to notification subscribers or network workers stay valid forever.
// Invalid indices are silent no-ops.
type Document struct {
	Folders []Folder `json:"folders"`
}

// DefaultDocument is used on first run and whenever the persisted copy is
// missing or unreadable.
func DefaultDocument() Document {
	return Document{
		Folders: []Folder{
			{
				Name:     "Documentation",
				Expanded: true,
				Bookmarks: []Bookmark{
					{Name: "The Go Programming Language Specification", URL: "https://go.dev/ref/spec"},
					{Name: "Arch Wiki", URL: "https://wiki.archlinux.org/"},
				},
			},
			{
				Name:     "News",
				Expanded: true,
				Bookmarks: []Bookmark{
					{Name: "Hacker News", URL: "https://news.ycombinator.com/"},
				},
			},
		},
	}
}

// UnmarshalJSON keeps Folders non-nil so an empty tree round-trips as [].
func (d *Document) UnmarshalJSON(data []byte) error {
	type rawDocument Document
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Folders == nil {
		raw.Folders = []Folder{}
	}
	*d = Document(raw)
	return nil
}

// MarshalJSON always emits a folders array, never null.
func (d Document) MarshalJSON() ([]byte, error) {
	type rawDocument Document
	raw := rawDocument(d)
	if raw.Folders == nil {
		raw.Folders = []Folder{}
	}
	return json.Marshal(raw)
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	out := Document{Folders: make([]Folder, len(d.Folders))}
	for i, f := range d.Folders {
		out.Folders[i] = f.clone()
	}
	return out
}

// Equal reports whether both documents hold the same folders and bookmarks in the same order.
func (d Document) Equal(other Document) bool {
	if len(d.Folders) != len(other.Folders) {
		return false
	}
	for i, f := range d.Folders {
		o := other.Folders[i]
		if f.Name != o.Name || f.Expanded != o.Expanded || len(f.Bookmarks) != len(o.Bookmarks) {
			return false
		}
		for j, b := range f.Bookmarks {
			if b != o.Bookmarks[j] {
				return false
			}
		}
	}
	return true
}

// BookmarkCount returns the number of bookmarks across all folders.
func (d Document) BookmarkCount() int {
	n := 0
	for _, f := range d.Folders {
		n += len(f.Bookmarks)
	}
	return n
}

func (d Document) validFolder(index int) bool {
	return index >= 0 && index < len(d.Folders)
}

// ToggleFolder flips the expanded flag of the folder at index.
func (d Document) ToggleFolder(index int) (Document, bool) {
	if !d.validFolder(index) {
		return d, false
	}
	out := d.Clone()
	out.Folders[index].Expanded = !out.Folders[index].Expanded
	return out, true
}

// AddFolder appends an empty, expanded folder.
func (d Document) AddFolder(name string) (Document, bool) {
	return d.AppendFolders(Folder{Name: name, Expanded: true, Bookmarks: []Bookmark{}})
}

// AppendFolders appends folders in order. Appending nothing is a no-op.
func (d Document) AppendFolders(folders ...Folder) (Document, bool) {
	if len(folders) == 0 {
		return d, false
	}
	out := d.Clone()
	for _, f := range folders {
		out.Folders = append(out.Folders, f.clone())
	}
	return out, true
}

// AddBookmark appends a bookmark to the folder at folderIndex.
func (d Document) AddBookmark(folderIndex int, name, url string) (Document, bool) {
	if !d.validFolder(folderIndex) {
		return d, false
	}
	out := d.Clone()
	f := &out.Folders[folderIndex]
	f.Bookmarks = append(f.Bookmarks, Bookmark{Name: name, URL: url})
	return out, true
}

// DeleteBookmark removes one bookmark by position.
func (d Document) DeleteBookmark(folderIndex, bookmarkIndex int) (Document, bool) {
	if !d.validFolder(folderIndex) {
		return d, false
	}
	if bookmarkIndex < 0 || bookmarkIndex >= len(d.Folders[folderIndex].Bookmarks) {
		return d, false
	}
	out := d.Clone()
	f := &out.Folders[folderIndex]
	f.Bookmarks = append(f.Bookmarks[:bookmarkIndex], f.Bookmarks[bookmarkIndex+1:]...)
	return out, true
}

// DeleteFolder removes a folder and everything in it.
func (d Document) DeleteFolder(index int) (Document, bool) {
	if !d.validFolder(index) {
		return d, false
	}
	out := d.Clone()
	out.Folders = append(out.Folders[:index], out.Folders[index+1:]...)
	return out, true
}
