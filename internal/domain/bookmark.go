package domain

import "encoding/json"

// Bookmark is a named link. Two bookmarks are equal when both fields match.
type Bookmark struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Folder groups bookmarks under a name.
// Bookmark order is display order and is preserved through persistence and sync.
type Folder struct {
	// Name is the display label of the folder.
	Name string `json:"name"`

	// Expanded tells the sidebar whether to show the folder's bookmarks.
	// Persisted data written before this field existed loads as expanded.
	Expanded bool `json:"expanded"`

	// Bookmarks are the folder's entries in display order.
	Bookmarks []Bookmark `json:"bookmarks"`
}

// UnmarshalJSON decodes a folder, defaulting Expanded to true when the field is absent.
func (f *Folder) UnmarshalJSON(data []byte) error {
	type rawFolder Folder
	raw := rawFolder{Expanded: true}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Bookmarks == nil {
		raw.Bookmarks = []Bookmark{}
	}
	*f = Folder(raw)
	return nil
}

// MarshalJSON always emits a bookmarks array, never null.
func (f Folder) MarshalJSON() ([]byte, error) {
	type rawFolder Folder
	raw := rawFolder(f)
	if raw.Bookmarks == nil {
		raw.Bookmarks = []Bookmark{}
	}
	return json.Marshal(raw)
}

func (f Folder) clone() Folder {
	out := f
	out.Bookmarks = make([]Bookmark, len(f.Bookmarks))
	copy(out.Bookmarks, f.Bookmarks)
	return out
}
