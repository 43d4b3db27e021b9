package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()

	if len(doc.Folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(doc.Folders))
	}
	if doc.BookmarkCount() != 3 {
		t.Errorf("expected 3 bookmarks, got %d", doc.BookmarkCount())
	}
	for _, f := range doc.Folders {
		if !f.Expanded {
			t.Errorf("folder %q should start expanded", f.Name)
		}
	}
}

func TestDocumentMutations(t *testing.T) {
	tests := []struct {
		name        string
		apply       func(Document) (Document, bool)
		wantChanged bool
		check       func(t *testing.T, d Document)
	}{
		{
			name:        "toggle folder",
			apply:       func(d Document) (Document, bool) { return d.ToggleFolder(1) },
			wantChanged: true,
			check: func(t *testing.T, d Document) {
				if d.Folders[1].Expanded {
					t.Error("folder 1 should be collapsed")
				}
			},
		},
		{
			name:        "toggle folder out of range",
			apply:       func(d Document) (Document, bool) { return d.ToggleFolder(5) },
			wantChanged: false,
		},
		{
			name:        "toggle folder negative index",
			apply:       func(d Document) (Document, bool) { return d.ToggleFolder(-1) },
			wantChanged: false,
		},
		{
			name:        "add folder",
			apply:       func(d Document) (Document, bool) { return d.AddFolder("Work") },
			wantChanged: true,
			check: func(t *testing.T, d Document) {
				if len(d.Folders) != 3 {
					t.Fatalf("expected 3 folders, got %d", len(d.Folders))
				}
				last := d.Folders[2]
				if last.Name != "Work" || !last.Expanded || len(last.Bookmarks) != 0 {
					t.Errorf("unexpected new folder: %+v", last)
				}
			},
		},
		{
			name:        "add bookmark",
			apply:       func(d Document) (Document, bool) { return d.AddBookmark(1, "Lobsters", "https://lobste.rs/") },
			wantChanged: true,
			check: func(t *testing.T, d Document) {
				got := d.Folders[1].Bookmarks
				if len(got) != 2 || got[1] != (Bookmark{Name: "Lobsters", URL: "https://lobste.rs/"}) {
					t.Errorf("unexpected bookmarks: %+v", got)
				}
			},
		},
		{
			name:        "add bookmark to missing folder",
			apply:       func(d Document) (Document, bool) { return d.AddBookmark(999, "n", "u") },
			wantChanged: false,
		},
		{
			name:        "delete bookmark",
			apply:       func(d Document) (Document, bool) { return d.DeleteBookmark(0, 0) },
			wantChanged: true,
			check: func(t *testing.T, d Document) {
				got := d.Folders[0].Bookmarks
				if len(got) != 1 || got[0].Name != "Arch Wiki" {
					t.Errorf("unexpected bookmarks: %+v", got)
				}
			},
		},
		{
			name:        "delete bookmark out of range",
			apply:       func(d Document) (Document, bool) { return d.DeleteBookmark(0, 999) },
			wantChanged: false,
		},
		{
			name:        "delete bookmark in missing folder",
			apply:       func(d Document) (Document, bool) { return d.DeleteBookmark(7, 0) },
			wantChanged: false,
		},
		{
			name:        "delete folder",
			apply:       func(d Document) (Document, bool) { return d.DeleteFolder(0) },
			wantChanged: true,
			check: func(t *testing.T, d Document) {
				if len(d.Folders) != 1 || d.Folders[0].Name != "News" {
					t.Errorf("unexpected folders: %+v", d.Folders)
				}
			},
		},
		{
			name:        "delete folder out of range",
			apply:       func(d Document) (Document, bool) { return d.DeleteFolder(2) },
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := DefaultDocument()
			after, changed := tt.apply(before)

			if changed != tt.wantChanged {
				t.Fatalf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if !before.Equal(DefaultDocument()) {
				t.Fatal("mutation modified its receiver")
			}
			if !changed && !after.Equal(before) {
				t.Fatal("no-op mutation returned a different document")
			}
			if tt.check != nil {
				tt.check(t, after)
			}
		})
	}
}

func TestFolderExpandedDefaultsToTrue(t *testing.T) {
	data := `{"folders":[{"name":"Old","bookmarks":[{"name":"a","url":"b"}]},{"name":"Closed","expanded":false,"bookmarks":[]}]}`

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !doc.Folders[0].Expanded {
		t.Error("folder without expanded field should load expanded")
	}
	if doc.Folders[1].Expanded {
		t.Error("explicit expanded=false should be kept")
	}
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	docs := map[string]Document{
		"default":      DefaultDocument(),
		"zero folders": {Folders: []Folder{}},
		"empty folder": {Folders: []Folder{{Name: "Empty", Expanded: false, Bookmarks: []Bookmark{}}}},
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := json.Marshal(doc)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if strings.Contains(string(data), "null") {
				t.Errorf("encoded document contains null: %s", data)
			}
			var got Document
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if !got.Equal(doc) {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, doc)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := DefaultDocument()
	c := doc.Clone()
	c.Folders[0].Bookmarks[0].Name = "changed"

	if doc.Folders[0].Bookmarks[0].Name == "changed" {
		t.Error("Clone shares bookmark storage with the original")
	}
}
