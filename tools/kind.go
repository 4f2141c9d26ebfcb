// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yasomaru/mcp-tool-demo/prompt"
)

// Kind identifies one of the tools served. The set is closed.
type Kind int

const (
	Greet Kind = iota
	GenerateStory
	QueryHTML
)

// Kinds lists every tool, in registration order.
var Kinds = []Kind{Greet, GenerateStory, QueryHTML}

// Name returns the tool name used on the wire.
func (k Kind) Name() string {
	switch k {
	case Greet:
		return "greet"
	case GenerateStory:
		return "generate_story"
	case QueryHTML:
		return "query_html"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) String() string { return k.Name() }

// ParseKind returns the Kind whose wire name is name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Name() == name {
			return k, true
		}
	}
	return 0, false
}

// Tool returns the MCP definition of k, including its input schema.
func (k Kind) Tool() *mcp.Tool {
	t := &mcp.Tool{Name: k.Name()}
	switch k {
	case Greet:
		t.Description = "Return a friendly greeting"
		t.InputSchema = object(nil, map[string]*jsonschema.Schema{
			"name": str("the name to greet", prompt.DefaultName),
		})
	case GenerateStory:
		t.Description = "Write a short story by asking the client's model to generate it"
		t.InputSchema = object(nil, map[string]*jsonschema.Schema{
			"topic": str("what the story is about", prompt.DefaultTopic),
			"style": str("the writing style", prompt.DefaultStyle),
		})
	case QueryHTML:
		t.Description = "Answer a question about a local HTML file, such as how to locate or extract elements, by asking the client's model"
		t.InputSchema = object([]string{"html_path", "query"}, map[string]*jsonschema.Schema{
			"html_path": str("path of the HTML file to analyze", ""),
			"query":     str("the question to answer about the page", ""),
		})
	}
	return t
}

func object(required []string, props map[string]*jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Required:   required,
		Properties: props,
	}
}

func str(desc, def string) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string", Description: desc}
	if def != "" {
		s.Default = mustJSON(def)
	}
	return s
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Arguments of each tool. Optional fields are preset to their defaults before
// decoding, so only a missing key takes the default; an empty string is kept.
type (
	greetArgs struct {
		Name string `json:"name"`
	}
	storyArgs struct {
		Topic string `json:"topic"`
		Style string `json:"style"`
	}
	queryHTMLArgs struct {
		HTMLPath string `json:"html_path"`
		Query    string `json:"query"`
	}
)
