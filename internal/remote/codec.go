package remote

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/samanthvittal/bookmark-browser/internal/domain"
)

const documentSchemaURL = "https://schemas.bookmark-browser.dev/document.json"

const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["folders"],
  "properties": {
    "folders": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string"},
          "expanded": {"type": "boolean"},
          "bookmarks": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "url"],
              "properties": {
                "name": {"type": "string"},
                "url": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var documentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(documentSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(documentSchemaURL)
})

var newlines = strings.NewReplacer("\n", "", "\r", "")

// EncodeDocument renders doc in the transport encoding used for remote content.
func EncodeDocument(doc domain.Document) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDocument reverses EncodeDocument. Line breaks inside the base64 text
// are ignored. The payload must satisfy the document schema before it is
// decoded, so a successful return is never a partial Document.
func DecodeDocument(content string) (domain.Document, error) {
	data, err := base64.StdEncoding.DecodeString(newlines.Replace(content))
	if err != nil {
		return domain.Document{}, fmt.Errorf("invalid base64 content: %w", err)
	}

	schema, err := documentSchema()
	if err != nil {
		return domain.Document{}, fmt.Errorf("document schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return domain.Document{}, fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return domain.Document{}, fmt.Errorf("unexpected document shape: %w", err)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
