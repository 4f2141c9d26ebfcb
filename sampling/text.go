// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sampling

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const emptyResponse = "[empty sampling response]"

// Text returns the text of a sampling result.
//
// Text content is returned verbatim. Any other content is rendered as a
// labelled JSON encoding of the block, so that some signal survives. Text
// never fails, and for non-text content it never returns the empty string.
func Text(res *mcp.CreateMessageResult) string {
	if res == nil || res.Content == nil {
		return emptyResponse
	}
	switch c := res.Content.(type) {
	case *mcp.TextContent:
		if c == nil {
			return emptyResponse
		}
		return c.Text
	case *mcp.ImageContent:
		return describe("image", c)
	case *mcp.AudioContent:
		return describe("audio", c)
	default:
		return describe(fmt.Sprintf("%T", c), c)
	}
}

func describe(kind string, c mcp.Content) string {
	data, err := json.Marshal(c)
	if err != nil || len(data) == 0 || string(data) == "null" {
		return fmt.Sprintf("[%s content]", kind)
	}
	return fmt.Sprintf("[%s content] %s", kind, data)
}
