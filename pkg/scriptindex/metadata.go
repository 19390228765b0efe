package scriptindex

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// lineCommentPattern matches `// Key: value` metadata lines, the first
// of the two extraction passes.
var lineCommentPattern = regexp.MustCompile(`^//\s*([A-Za-z][A-Za-z0-9_-]*)\s*:\s*(.*)$`)

// ExtractLineCommentMetadata scans leading `//` comment lines at the
// top of a script file for `Key: value` pairs, skipping blank lines and
// stopping at the first line that is not a `// Key: value` comment — the
// conventional Script Kit metadata header block.
func ExtractLineCommentMetadata(src []byte) ScriptMetadata {
	var m ScriptMetadata
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		match := lineCommentPattern.FindStringSubmatch(line)
		if match == nil {
			break
		}
		key, value := strings.ToLower(match[1]), strings.TrimSpace(match[2])
		applyLineCommentField(&m, key, value)
	}
	return m
}

func applyLineCommentField(m *ScriptMetadata, key, value string) {
	switch key {
	case "name":
		m.Name = value
	case "description":
		m.Description = value
	case "alias":
		m.Alias = value
	case "shortcut":
		m.Shortcut = value
	case "icon":
		m.Icon = value
	case "cron":
		m.CronExpr = value
	case "watch":
		m.WatchGlob = value
	case "background":
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			m.Background = b
		}
	default:
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[key] = value
	}
}

// metadataLiteralPattern finds the start of a top-level
// `metadata = { ... }` (optionally `export const metadata = {`)
// declaration.
var metadataLiteralPattern = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const\s+|let\s+|var\s+)?metadata\s*=\s*\{`)

// ExtractTypedMetadata finds the `metadata = { ... }` object literal at
// file top level, extracts the balanced-brace object, normalizes it
// (backtick strings -> double-quoted, since JSON5 already tolerates
// single-quoted strings/unquoted keys/trailing commas/comments) and
// deserializes it. Returns a zero ScriptMetadata if no literal exists.
func ExtractTypedMetadata(src []byte) (ScriptMetadata, bool) {
	loc := metadataLiteralPattern.FindIndex(src)
	if loc == nil {
		return ScriptMetadata{}, false
	}
	braceStart := loc[1] - 1 // index of the opening '{'
	objText, ok := extractBalancedBraces(src[braceStart:])
	if !ok {
		return ScriptMetadata{}, false
	}
	normalized := normalizeQuotes(objText)

	var raw map[string]any
	if err := json5.Unmarshal([]byte(normalized), &raw); err != nil {
		return ScriptMetadata{}, false
	}
	return metadataFromRaw(raw), true
}

// extractBalancedBraces returns the substring from the first '{' up to
// and including its matching '}', tracking string literals (', ", `)
// so braces inside strings never affect the depth count.
func extractBalancedBraces(src []byte) (string, bool) {
	if len(src) == 0 || src[0] != '{' {
		return "", false
	}
	depth := 0
	var quote byte
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inString {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(src[:i+1]), true
			}
		}
	}
	return "", false
}

// normalizeQuotes rewrites backtick-quoted strings to double-quoted
// strings so the JSON5 decoder (which knows single/double quotes but
// not JS template literals) can parse the object.
func normalizeQuotes(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	inBacktick := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			out.WriteByte(c)
			out.WriteByte(s[i+1])
			i++
			continue
		}
		if c == '`' {
			inBacktick = !inBacktick
			out.WriteByte('"')
			continue
		}
		if inBacktick && c == '"' {
			out.WriteByte('\\')
			out.WriteByte('"')
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}

func metadataFromRaw(raw map[string]any) ScriptMetadata {
	var m ScriptMetadata
	for k, v := range raw {
		s, _ := v.(string)
		switch strings.ToLower(k) {
		case "name":
			m.Name = s
		case "description":
			m.Description = s
		case "alias":
			m.Alias = s
		case "shortcut":
			m.Shortcut = s
		case "icon":
			m.Icon = s
		case "cron":
			m.CronExpr = s
		case "watch":
			m.WatchGlob = s
		case "background":
			if b, ok := v.(bool); ok {
				m.Background = b
			}
		case "schema":
			if obj, ok := v.(map[string]any); ok {
				m.Schema = obj
			}
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[k] = v
		}
	}
	return m
}

// ExtractMetadata runs both passes and merges them; where both sources
// disagree on a field, the typed metadata literal wins.
func ExtractMetadata(src []byte) ScriptMetadata {
	lineComment := ExtractLineCommentMetadata(src)
	typed, ok := ExtractTypedMetadata(src)
	if !ok {
		return lineComment
	}
	return lineComment.merge(typed)
}
