// Package scriptletmd parses scriptlet and agent markdown files.
// Scriptlet parsing uses goldmark's real CommonMark AST for
// fence/heading structure rather than a hand-rolled line-by-line
// fence-depth scanner — a ``` fence opened inside a ~~~ block is
// correctly treated as text content of the outer fence, including
// pathological cases like four-backtick fences and mixed tilde/backtick
// nesting.
package scriptletmd

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Scriptlet is one H2 section of a scriptlets markdown file.
type Scriptlet struct {
	Name        string
	Command     string // slugified name
	Group       string // containing H1 heading, or empty if none (the scriptindex loader substitutes the kit name)
	Tool        string // bash|ts|python|... from the fence info string
	Code        string
	Description string
	Shortcut    string
	Alias       string
	Expand      string
	SourcePath  string // "file.md#slug"
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify mirrors original_source/src/scriptlets.rs's slugify: lowercase,
// non-alphanumerics collapse to single hyphens, no leading/trailing hyphen.
func Slugify(name string) string {
	lower := strings.ToLower(name)
	slug := slugInvalid.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

// ParseFile parses a scriptlets markdown file's content into its H2
// sections. sourcePath is recorded (as "path#slug") on each Scriptlet
// and used to build the (file, slug) uniqueness key.
func ParseFile(sourcePath string, src []byte) ([]Scriptlet, error) {
	reader := text.NewReader(src)
	doc := goldmark.New().Parser().Parse(reader)

	var out []Scriptlet
	seenSlugs := make(map[string]bool)

	var group string
	groupPrepend := make(map[string]string) // tool family -> concatenated prepend
	var pending *Scriptlet
	var pendingComment string
	sawFenceInSection := false

	flush := func() {
		if pending == nil {
			return
		}
		if pending.Code == "" {
			pending = nil
			pendingComment = ""
			sawFenceInSection = false
			return
		}
		if prepend := groupPrepend[pending.Tool]; prepend != "" {
			pending.Code = prepend + "\n" + pending.Code
		}
		applyHTMLCommentMetadata(pending, pendingComment)
		if pending.Tool == "" {
			pending.Tool = "ts"
		}
		if pending.Command == "" {
			pending.Command = Slugify(pending.Name)
		}
		key := sourcePath + "#" + pending.Command
		if !seenSlugs[key] {
			seenSlugs[key] = true
			pending.SourcePath = key
			out = append(out, *pending)
		}
		pending = nil
		pendingComment = ""
		sawFenceInSection = false
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			text := headingText(node, src)
			if text == "" {
				continue
			}
			switch node.Level {
			case 1:
				flush()
				group = text
				groupPrepend = make(map[string]string)
			case 2:
				flush()
				pending = &Scriptlet{Name: text, Group: group}
			}
		case *ast.FencedCodeBlock:
			code := fencedCodeText(node, src)
			info := fencedCodeInfo(node, src)
			if pending != nil {
				if !sawFenceInSection {
					pending.Tool = info
					pending.Code = code
					sawFenceInSection = true
				}
			} else {
				if groupPrepend[info] != "" {
					groupPrepend[info] += "\n" + code
				} else {
					groupPrepend[info] = code
				}
			}
		case *ast.HTMLBlock:
			if pending != nil {
				pendingComment += "\n" + htmlBlockText(node, src)
			}
		}
	}
	flush()
	return out, nil
}

var htmlCommentKV = regexp.MustCompile(`(?s)<!--(.*?)-->`)

func applyHTMLCommentMetadata(s *Scriptlet, raw string) {
	for _, m := range htmlCommentKV.FindAllStringSubmatch(raw, -1) {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			idx := strings.Index(line, ":")
			if idx < 0 {
				continue
			}
			key := strings.ToLower(strings.TrimSpace(line[:idx]))
			value := strings.TrimSpace(line[idx+1:])
			if value == "" {
				continue
			}
			switch key {
			case "description":
				s.Description = value
			case "shortcut":
				s.Shortcut = value
			case "alias":
				s.Alias = value
			case "expand":
				s.Expand = value
			}
		}
	}
}

func headingText(h *ast.Heading, source []byte) string {
	var buf bytes.Buffer
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(buf.String())
}

func fencedCodeInfo(fcb *ast.FencedCodeBlock, source []byte) string {
	if fcb.Info == nil {
		return ""
	}
	info := string(fcb.Info.Segment.Value(source))
	if fields := strings.Fields(info); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func fencedCodeText(fcb *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		buf.Write(lines.At(i).Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func htmlBlockText(h *ast.HTMLBlock, source []byte) string {
	var buf bytes.Buffer
	lines := h.Lines()
	for i := 0; i < lines.Len(); i++ {
		buf.Write(lines.At(i).Value(source))
	}
	if h.HasClosure() {
		buf.Write(h.ClosureLine.Value(source))
	}
	return buf.String()
}

func (s Scriptlet) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Tool)
}
