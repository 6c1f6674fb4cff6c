package models

import (
	"fmt"
	"strings"
)

// Tool identifies the AI coding assistant a rules file is written for.
type Tool string

const (
	ToolCursor   Tool = "cursor"
	ToolRoo      Tool = "roo"
	ToolWindsurf Tool = "windsurf"
	ToolClaude   Tool = "claude"
	ToolCopilot  Tool = "copilot"
)

// AllTools lists the supported tools in display order.
var AllTools = []Tool{ToolCursor, ToolRoo, ToolWindsurf, ToolClaude, ToolCopilot}

// IsValid checks if the tool is supported
func (t Tool) IsValid() bool {
	switch t {
	case ToolCursor, ToolRoo, ToolWindsurf, ToolClaude, ToolCopilot:
		return true
	default:
		return false
	}
}

// String returns the string representation of Tool
func (t Tool) String() string {
	return string(t)
}

// DisplayName returns the product name of the tool.
func (t Tool) DisplayName() string {
	switch t {
	case ToolCursor:
		return "Cursor"
	case ToolRoo:
		return "Roo Code"
	case ToolWindsurf:
		return "Windsurf"
	case ToolClaude:
		return "Claude"
	case ToolCopilot:
		return "GitHub Copilot"
	default:
		return string(t)
	}
}

// ParseTool parses a string into a Tool
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tool: %s (must be one of %s)", s, toolNames())
	}
	return t, nil
}

// ParseTools parses a comma-separated list of tools, dropping duplicates.
func ParseTools(s string) ([]Tool, error) {
	var tools []Tool
	seen := make(map[Tool]struct{})
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseTool(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tools = append(tools, t)
	}

	if len(tools) == 0 {
		return nil, fmt.Errorf("no tool specified (must be one of %s)", toolNames())
	}
	return tools, nil
}

func toolNames() string {
	names := make([]string, len(AllTools))
	for i, t := range AllTools {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
