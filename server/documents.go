// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"

	"github.com/yasomaru/mcp-tool-demo/document"
	"github.com/yasomaru/mcp-tool-demo/internal/metrics"
)

// DocumentTemplate is the URI template of HTML document resources.
// The path variable holds a filesystem path, usually absolute.
const DocumentTemplate = "file://{+path}"

var documentURI = uritemplate.MustNew(DocumentTemplate)

// DocumentURI returns the resource URI of the document at path.
func DocumentURI(path string) (string, error) {
	vals := uritemplate.Values{}
	vals.Set("path", uritemplate.String(path))
	return documentURI.Expand(vals)
}

// DocumentPath returns the filesystem path named by a document resource URI.
func DocumentPath(uri string) (string, error) {
	path := documentURI.Match(uri).Get("path").String()
	if path == "" {
		return "", fmt.Errorf("%q does not match %s", uri, DocumentTemplate)
	}
	return path, nil
}

func addDocuments(s *mcp.Server, m *metrics.Metrics) {
	s.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "html-document",
		Description: "A local HTML document, read the same way query_html reads it",
		MIMEType:    "text/html",
		URITemplate: DocumentTemplate,
	}, readDocument(m))
}

func readDocument(m *metrics.Metrics) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		path, err := DocumentPath(uri)
		if err != nil {
			return nil, err
		}
		doc := document.Load(path)
		m.DocumentLoad(doc.Status.String())
		switch doc.Status {
		case document.OK:
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: uri, MIMEType: "text/html", Text: doc.Text},
				},
			}, nil
		case document.NotFound:
			return nil, mcp.ResourceNotFoundError(uri)
		default:
			return nil, errors.New(doc.Message())
		}
	}
}
