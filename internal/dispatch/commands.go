package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Command is a UI-originated request handled by the dispatcher loop.
type Command interface {
	command()
}

type (
	ToggleFolder   struct{ Index int }
	AddFolder      struct{ Name string }
	AddBookmark    struct {
		FolderIndex int
		Name        string
		URL         string
	}
	DeleteBookmark struct{ FolderIndex, BookmarkIndex int }
	DeleteFolder   struct{ Index int }
	Push           struct{}
	Pull           struct{}
	SaveSettings   struct{ Credential, Location string }
	ToggleSidebar  struct{}
	DismissStatus  struct{}
	ImportHomepage struct{ Path string }

	// ReloadLocal re-reads the persisted Document after an external edit.
	ReloadLocal struct{}

	// ReloadSettings re-reads the persisted Settings after an external edit.
	ReloadSettings struct{}
)

func (ToggleFolder) command()   {}
func (AddFolder) command()      {}
func (AddBookmark) command()    {}
func (DeleteBookmark) command() {}
func (DeleteFolder) command()   {}
func (Push) command()           {}
func (Pull) command()           {}
func (SaveSettings) command()   {}
func (ToggleSidebar) command()  {}
func (DismissStatus) command()  {}
func (ImportHomepage) command() {}
func (ReloadLocal) command()    {}
func (ReloadSettings) command() {}

// ErrInvalidCommand wraps every DecodeCommand failure.
var ErrInvalidCommand = errors.New("invalid command")

type commandRequest struct {
	Action        string  `json:"action"`
	FolderIndex   *int    `json:"folder_index"`
	BookmarkIndex *int    `json:"bookmark_index"`
	Name          *string `json:"name"`
	URL           *string `json:"url"`
	Path          *string `json:"path"`
}

// DecodeCommand parses the sidebar message format, for example
// {"action":"add_bookmark","folder_index":0,"name":"Go","url":"https://go.dev"}.
// Index bounds are not checked here; the Document ignores invalid ones.
func DecodeCommand(data []byte) (Command, error) {
	var req commandRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidCommand, req.Action, field)
	}

	switch req.Action {
	case "toggle_folder":
		if req.FolderIndex == nil {
			return nil, missing("folder_index")
		}
		return ToggleFolder{Index: *req.FolderIndex}, nil
	case "add_folder":
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			return nil, missing("name")
		}
		return AddFolder{Name: strings.TrimSpace(*req.Name)}, nil
	case "add_bookmark":
		switch {
		case req.FolderIndex == nil:
			return nil, missing("folder_index")
		case req.Name == nil:
			return nil, missing("name")
		case req.URL == nil:
			return nil, missing("url")
		}
		return AddBookmark{FolderIndex: *req.FolderIndex, Name: *req.Name, URL: *req.URL}, nil
	case "delete_bookmark":
		switch {
		case req.FolderIndex == nil:
			return nil, missing("folder_index")
		case req.BookmarkIndex == nil:
			return nil, missing("bookmark_index")
		}
		return DeleteBookmark{FolderIndex: *req.FolderIndex, BookmarkIndex: *req.BookmarkIndex}, nil
	case "delete_folder":
		if req.FolderIndex == nil {
			return nil, missing("folder_index")
		}
		return DeleteFolder{Index: *req.FolderIndex}, nil
	case "toggle_sidebar":
		return ToggleSidebar{}, nil
	case "dismiss_status":
		return DismissStatus{}, nil
	case "push":
		return Push{}, nil
	case "pull":
		return Pull{}, nil
	case "import_homepage":
		if req.Path == nil || strings.TrimSpace(*req.Path) == "" {
			return nil, missing("path")
		}
		return ImportHomepage{Path: strings.TrimSpace(*req.Path)}, nil
	case "":
		return nil, fmt.Errorf("%w: missing action", ErrInvalidCommand)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, req.Action)
	}
}
