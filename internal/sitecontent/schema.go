package sitecontent

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed site_content.schema.json
var schemaJSON []byte

const schemaResource = "site_content.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaResource)
	})
	return compiledSchema, schemaErr
}

// DecodeDocument checks raw against the site content schema and decodes it.
// Null members are treated as absent. A section that violates the schema is
// dropped and reported in a *SchemaError, while the returned Document still
// carries every valid section. Callers may merge that partial Document.
func DecodeDocument(raw []byte) (Document, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}
	generic = dropNulls(generic)

	schema, err := documentSchema()
	if err != nil {
		return Document{}, fmt.Errorf("sitecontent: compile schema: %w", err)
	}

	var schemaErr *SchemaError
	if err := schema.Validate(generic); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return Document{}, err
		}
		leaves := leafIssues(verr)
		schemaErr = &SchemaError{}
		for _, issue := range leaves {
			location := issue.InstanceLocation
			if location == "" {
				location = "/"
			}
			schemaErr.Issues = append(schemaErr.Issues, location+": "+issue.Message)
		}

		root, ok := generic.(map[string]any)
		if !ok {
			return Document{}, schemaErr
		}
		for _, issue := range leaves {
			section := topSection(issue.InstanceLocation)
			if section == "" {
				return Document{}, schemaErr
			}
			if _, present := root[section]; present {
				delete(root, section)
				schemaErr.Sections = append(schemaErr.Sections, section)
			}
		}
		slices.Sort(schemaErr.Sections)
	}

	clean, err := json.Marshal(generic)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}
	var doc Document
	if err := json.Unmarshal(clean, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDocumentMalformed, err)
	}
	if schemaErr != nil {
		return doc, schemaErr
	}
	return doc, nil
}

// dropNulls removes null object members at every depth. Null array items are
// kept so the schema still reports them.
func dropNulls(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for key, child := range node {
			if child == nil {
				delete(node, key)
				continue
			}
			node[key] = dropNulls(child)
		}
	case []any:
		for i, child := range node {
			node[i] = dropNulls(child)
		}
	}
	return v
}

func topSection(location string) string {
	location = strings.TrimPrefix(location, "/")
	if location == "" {
		return ""
	}
	section, _, _ := strings.Cut(location, "/")
	return section
}

// SchemaError lists the locations in a stored document that do not match
// the expected shape.
type SchemaError struct {
	Issues []string
	// Sections were dropped from the decoded Document and fall back to
	// defaults when merged.
	Sections []string
}

func (e *SchemaError) Error() string {
	return "sitecontent: document does not match schema: " + strings.Join(e.Issues, "; ")
}

func (e *SchemaError) Unwrap() error {
	return ErrDocumentMalformed
}

func leafIssues(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	var leaves []*jsonschema.ValidationError
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			leaves = append(leaves, node)
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return leaves
}
