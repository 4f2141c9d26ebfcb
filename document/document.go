// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package document loads local documents for inclusion in sampling prompts.
//
// Loading never fails with an error: every outcome, including a missing file or
// an I/O failure, is described by a [Result] whose [Status] the caller inspects.
// Invalid UTF-8 is replaced with U+FFFD rather than rejected, so malformed or
// mixed-encoding documents still produce usable text.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Status classifies the outcome of [Load].
type Status int

const (
	OK Status = iota
	NotFound
	IsDirectory
	NotRegular // a fifo, device, socket, or other non-regular entry
	ReadError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotFound:
		return "not_found"
	case IsDirectory:
		return "is_directory"
	case NotRegular:
		return "not_regular"
	case ReadError:
		return "read_error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// A Result is the outcome of loading a document.
type Result struct {
	Status Status
	Path   string
	// Text holds the decoded content when Status is OK.
	Text string
	// Size is the on-disk size in bytes, when known.
	Size int64
	// Err holds the underlying failure when Status is ReadError.
	Err error
}

// Message returns the user-facing description of a failed load.
// For a successful load it returns the empty string.
func (r Result) Message() string {
	switch r.Status {
	case OK:
		return ""
	case NotFound:
		return "File not found: " + r.Path
	case IsDirectory:
		return "Path is a directory, not a file: " + r.Path
	case NotRegular:
		return "Path is not a regular file: " + r.Path
	default:
		return fmt.Sprintf("Error reading file %s: %v", r.Path, r.Err)
	}
}

// Load reads the regular file at path and decodes it as UTF-8.
//
// A leading UTF-8 byte order mark is removed. Invalid byte sequences are
// replaced with U+FFFD.
func Load(path string) Result {
	res := Result{Path: path}
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = NotFound
			return res
		}
		res.Status = ReadError
		res.Err = err
		return res
	}
	switch {
	case fi.IsDir():
		res.Status = IsDirectory
		return res
	case !fi.Mode().IsRegular():
		res.Status = NotRegular
		return res
	}
	res.Size = fi.Size()

	data, err := os.ReadFile(path)
	if err != nil {
		// The file may have been removed between Stat and ReadFile.
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = NotFound
			return res
		}
		res.Status = ReadError
		res.Err = err
		return res
	}
	res.Size = int64(len(data))
	res.Text = Decode(data)
	return res
}

// Decode converts data to a valid UTF-8 string, stripping a leading UTF-8 byte
// order mark and replacing invalid sequences with U+FFFD. Other encodings are
// not detected: a UTF-16 byte order mark is just two invalid bytes.
func Decode(data []byte) string {
	dec := unicode.UTF8BOM.NewDecoder()
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}
