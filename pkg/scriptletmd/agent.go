package scriptletmd

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Agent is one mdflow-style markdown task definition.
// Backend is inferred from the filename infix (".claude.md", ".gemini.md",
// ".codex.md"); the ".i." infix marks an agent interactive.
type Agent struct {
	Name        string
	Path        string
	Backend     string // "claude" | "gemini" | "codex" | ""
	Interactive bool

	DisplayName string `yaml:"_sk_name"`
	Description string `yaml:"_sk_description"`
	Model       string `yaml:"model"`
	Env         map[string]string `yaml:"env"`

	Body string
}

// agentBackends is the ordered set of recognised filename infixes. Order
// doesn't matter for correctness (infixes are mutually exclusive) but is
// kept stable for deterministic iteration in tests.
var agentBackends = []string{"claude", "gemini", "codex"}

// ParseAgentFilename extracts the backend and interactive flag from an
// agent's filename, infixes ".claude.md"/".gemini.md"/
// ".codex.md" select the backend; an additional ".i." infix marks the
// agent interactive (e.g. "deploy.i.claude.md").
func ParseAgentFilename(name string) (backend string, interactive bool) {
	base := strings.TrimSuffix(name, ".md")
	parts := strings.Split(base, ".")
	for _, p := range parts[1:] {
		switch p {
		case "i":
			interactive = true
		default:
			for _, b := range agentBackends {
				if p == b {
					backend = b
				}
			}
		}
	}
	return backend, interactive
}

// ParseAgentFile parses one agent markdown file: YAML frontmatter
// (delimited by "---" lines) followed by a freeform body handed to the
// external mdflow binary. A missing or malformed frontmatter block is
// not fatal — the Agent is still returned with its filename-derived
// fields; the body is the whole file content when no frontmatter block is
// found, and the text after the block when its YAML does not parse, so
// one broken agent file does not blank the rest of the kit's agent list.
func ParseAgentFile(path string, src []byte) (Agent, error) {
	backend, interactive := ParseAgentFilename(baseName(path))
	name := strings.TrimSuffix(baseName(path), ".md")
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}

	agent := Agent{
		Name:        name,
		Path:        path,
		Backend:     backend,
		Interactive: interactive,
	}

	front, body, ok := splitFrontmatter(string(src))
	agent.Body = body
	if !ok {
		return agent, nil
	}
	if err := yaml.Unmarshal([]byte(front), &agent); err != nil {
		// Malformed frontmatter: keep the parsed filename fields, drop
		// only the YAML-derived metadata. A single malformed agent file
		// never fails the whole load.
		return agent, nil
	}
	if agent.DisplayName != "" {
		agent.Name = agent.DisplayName
	}
	return agent, nil
}

// splitFrontmatter separates a leading "---\n...\n---\n" YAML block from
// the remaining body. ok is false when no frontmatter delimiter is found.
func splitFrontmatter(src string) (front, body string, ok bool) {
	const delim = "---"
	trimmed := strings.TrimLeft(src, "\n")
	if !strings.HasPrefix(trimmed, delim) {
		return "", src, false
	}
	rest := trimmed[len(delim):]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "\n"+delim)
	if end < 0 {
		return "", src, false
	}
	front = rest[:end]
	body = strings.TrimPrefix(rest[end+1+len(delim):], "\n")
	return front, body, true
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}
