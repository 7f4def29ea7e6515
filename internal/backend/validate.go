package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// bodySchema checks the shape of one response body before it is decoded.
type bodySchema struct {
	name     string
	compiled *jsonschema.Schema
}

// mustCompile compiles def at package init. The definitions are static, so a
// failure is a programming error.
func mustCompile(name string, def map[string]any) *bodySchema {
	// The compiler wants plain JSON values, not Go maps with typed slices.
	buf, err := json.Marshal(def)
	if err != nil {
		panic(fmt.Sprintf("marshal %s schema: %v", name, err))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(buf))
	if err != nil {
		panic(fmt.Sprintf("parse %s schema: %v", name, err))
	}

	url := "mem://" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("add %s schema: %v", name, err))
	}
	compiled, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile %s schema: %v", name, err))
	}
	return &bodySchema{name: name, compiled: compiled}
}

// check parses raw and validates it. Any failure is an *ErrInvalidResponse.
func (s *bodySchema) check(raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %w", s.name, err)}
	}
	return nil
}
