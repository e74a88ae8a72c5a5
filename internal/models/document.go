// Package models defines the domain types shared across the proxy.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Attachment node keys. An attachment is a tagged object inside a document
// tree: {"kind":"file", "id":…, "path":…} carrying exactly one of "payload"
// (base64 bytes awaiting upload) or "src" (resolved pointer to the stored
// file). "url" only ever appears on the way out and is never persisted.
const (
	KindFile   = "file"
	KeyKind    = "kind"
	KeyID      = "id"
	KeyPath    = "path"
	KeyPayload = "payload"
	KeySrc     = "src"
	KeyURL     = "url"
)

// Document is the decoded JSON payload of one resource member. The "id"
// field is derived from the remote filename on the way out and stripped
// before persisting.
type Document map[string]any

// IsAttachment reports whether node carries the attachment discriminant.
// The check is structural; no shape-sniffing of other fields.
func IsAttachment(node map[string]any) bool {
	kind, ok := node[KeyKind].(string)
	return ok && kind == KindFile
}

// DecodeDocument parses persisted document bytes and injects the derived id.
func DecodeDocument(data []byte, id string) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	// A body of literal null unmarshals to a nil map.
	if doc == nil {
		doc = Document{}
	}
	doc[KeyID] = id
	return doc, nil
}

// EncodeDocument renders the persisted form: two-space indented UTF-8 JSON
// with the derived id stripped.
func EncodeDocument(doc Document) ([]byte, error) {
	stripped := make(Document, len(doc))
	for k, v := range doc {
		if k == KeyID {
			continue
		}
		stripped[k] = v
	}
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stripped); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}
