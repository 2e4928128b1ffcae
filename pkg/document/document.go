// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document holds the immutable text value threaded through a migration.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	LF   = "\n"
	CRLF = "\r\n"
)

// 📄 Document is a snapshot of a template's text. Values are never mutated;
// every transformation returns a new Document.
type Document struct {
	identity   string
	text       string
	terminator string
}

// 🏭 New creates a document, detecting its native line terminator
func New(identity, text string) Document {
	term := LF
	if strings.Contains(text, CRLF) {
		term = CRLF
	}
	return Document{identity: identity, text: text, terminator: term}
}

// Identity is the path or reference the document was read from.
func (d Document) Identity() string { return d.identity }

// Text returns the full content.
func (d Document) Text() string { return d.text }

// Terminator returns the native line terminator.
func (d Document) Terminator() string { return d.terminator }

// 🔄 WithText returns a copy carrying new content and the same identity and terminator
func (d Document) WithText(text string) Document {
	return Document{identity: d.identity, text: text, terminator: d.terminator}
}

// Lines splits the content on the native terminator.
func (d Document) Lines() []string {
	return strings.Split(d.text, d.terminator)
}

// JoinLines returns a copy whose content is lines joined with the native terminator.
func (d Document) JoinLines(lines []string) Document {
	return d.WithText(strings.Join(lines, d.terminator))
}

// Contains reports whether fragment occurs anywhere in the content.
func (d Document) Contains(fragment string) bool {
	return strings.Contains(d.text, fragment)
}

// Equal compares content only.
func (d Document) Equal(other Document) bool {
	return d.text == other.text
}

// 🔍 Checksum returns a SHA-256 of the content
func (d Document) Checksum() string {
	hash := sha256.Sum256([]byte(d.text))
	return hex.EncodeToString(hash[:])
}
