// Package diff renders a unified line diff between an original document and its migrated form.
package diff

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around each change.
const DefaultContext = 3

// LineType is the kind of a diff line
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is one line of a hunk
type Line struct {
	Type    LineType
	Content string
}

// Hunk is a group of nearby changes with their surrounding context
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// 📄 FileDiff is the full line diff of one document
type FileDiff struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
	Added   int
	Removed int
}

// Empty reports whether the two texts were identical.
func (d *FileDiff) Empty() bool {
	return len(d.Hunks) == 0
}

type op struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

// 🔍 Compute diffs two texts line by line. CRLF terminators are normalized so
// the preview shows content changes only.
func Compute(oldPath, newPath, oldText, newText string, context int) *FileDiff {
	oldText = strings.ReplaceAll(oldText, "\r\n", "\n")
	newText = strings.ReplaceAll(newText, "\r\n", "\n")

	fd := &FileDiff{OldPath: oldPath, NewPath: newPath}
	if oldText == newText {
		return fd
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	ops := toOps(diffs)
	for _, o := range ops {
		switch o.typ {
		case LineAdded:
			fd.Added++
		case LineRemoved:
			fd.Removed++
		}
	}
	fd.Hunks = group(ops, context)
	return fd
}

func toOps(diffs []diffmatchpatch.Diff) []op {
	var ops []op
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if d.Text == "" {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, op{typ: LineContext, oldLine: oldLine, newLine: newLine, content: line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, op{typ: LineRemoved, oldLine: oldLine, newLine: newLine, content: line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, op{typ: LineAdded, oldLine: oldLine, newLine: newLine, content: line})
				newLine++
			}
		}
	}
	return ops
}

// group splits ops into hunks. Changes separated by at most 2*context
// unchanged lines share a hunk.
func group(ops []op, context int) []Hunk {
	var hunks []Hunk
	i := 0
	for i < len(ops) {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(0, i-context)
		last := i
		for j := i + 1; j < len(ops); j++ {
			if ops[j].typ != LineContext {
				last = j
			} else if j-last > 2*context {
				break
			}
		}
		end := min(len(ops), last+context+1)

		hunks = append(hunks, newHunk(ops[start:end]))
		i = end
	}
	return hunks
}

func newHunk(ops []op) Hunk {
	h := Hunk{OldStart: ops[0].oldLine + 1, NewStart: ops[0].newLine + 1}
	for _, o := range ops {
		h.Lines = append(h.Lines, Line{Type: o.typ, Content: o.content})
		if o.typ != LineAdded {
			h.OldCount++
		}
		if o.typ != LineRemoved {
			h.NewCount++
		}
	}
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}
	return h
}

// 📝 Unified renders the diff in unified format. Lines are colored unless
// color.NoColor is set.
func (d *FileDiff) Unified() string {
	if d.Empty() {
		return ""
	}

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	header := color.New(color.FgCyan)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", d.OldPath, d.NewPath)
	for _, h := range d.Hunks {
		sb.WriteString(header.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount))
		sb.WriteString("\n")
		for _, l := range h.Lines {
			switch l.Type {
			case LineRemoved:
				sb.WriteString(removed.Sprint("-" + l.Content))
			case LineAdded:
				sb.WriteString(added.Sprint("+" + l.Content))
			default:
				sb.WriteString(" " + l.Content)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Stat is a one line summary, e.g. "+4 -37".
func (d *FileDiff) Stat() string {
	return fmt.Sprintf("+%d -%d", d.Added, d.Removed)
}
