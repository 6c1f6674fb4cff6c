package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jakoblorz/go-airules/internal/models"
	"github.com/jakoblorz/go-airules/internal/pipeline"
	"github.com/jakoblorz/go-airules/internal/tags"
)

// RenderAnalysis summarizes a project analysis and the tags chosen for it.
func RenderAnalysis(a *models.AnalysisResult, selected []string, reasons map[string]string) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Project"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Path:     %s\n", a.ProjectPath)
	fmt.Fprintf(&b, "  Type:     %s\n", a.ProjectType.Label())
	fmt.Fprintf(&b, "  Files:    %d\n", a.Languages.TotalFiles)

	if ranked := a.Languages.Ranked(); len(ranked) > 0 {
		parts := make([]string, 0, len(ranked))
		for _, l := range ranked {
			parts = append(parts, fmt.Sprintf("%s %.0f%%", l.Name, l.Share*100))
		}
		fmt.Fprintf(&b, "  Languages: %s\n", strings.Join(parts, ", "))
	}

	if len(a.Frameworks) > 0 {
		b.WriteString("\n")
		b.WriteString(HeaderStyle.Render("Frameworks"))
		b.WriteString("\n")
		for _, fw := range a.Frameworks {
			version := ""
			if fw.Version != "" {
				version = " " + fw.Version
			}
			fmt.Fprintf(&b, "  %s%s %s\n", fw.Name, version,
				SubtleStyle.Render(fmt.Sprintf("(%s, %.2f)", fw.Category, fw.Confidence)))
		}
	}

	signals := signalLines(a)
	if len(signals) > 0 {
		b.WriteString("\n")
		b.WriteString(HeaderStyle.Render("Signals"))
		b.WriteString("\n")
		for _, line := range signals {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Tags (%d)", len(selected))))
	b.WriteString("\n")
	if len(selected) == 0 {
		b.WriteString(SubtleStyle.Render("  no tags derived"))
		b.WriteString("\n")
	}
	for _, tag := range selected {
		fmt.Fprintf(&b, "  %s", TagStyle.Render(tag))
		if reason := reasons[tag]; reason != "" {
			fmt.Fprintf(&b, " %s", DescStyle.Render(reason))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func signalLines(a *models.AnalysisResult) []string {
	var lines []string
	add := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("%-10s %s", label+":", strings.Join(values, ", ")))
		}
	}

	add("Testing", a.TestingInfo.TestFrameworks)
	add("Coverage", a.TestingInfo.TestCoverageTools)
	add("Security", a.SecurityInfo.SecurityTools)
	add("Auth", a.SecurityInfo.AuthenticationMethods)
	add("Container", a.DeploymentInfo.ContainerTools)
	add("Cloud", a.DeploymentInfo.CloudPlatforms)
	add("CI/CD", a.DeploymentInfo.CICDTools)
	add("IaC", a.DeploymentInfo.InfrastructureAsCode)
	return lines
}

// RenderTagReport lists validation results, one tag per line.
func RenderTagReport(r tags.Report) string {
	var b strings.Builder
	for _, t := range r.Tags {
		switch {
		case !t.WellFormed:
			fmt.Fprintf(&b, "%s %s %s", ErrorStyle.Render("✗"), t.Tag, ErrorStyle.Render("malformed"))
		case !t.Known:
			fmt.Fprintf(&b, "%s %s %s", WarningStyle.Render("?"), t.Tag, WarningStyle.Render("unknown"))
		default:
			fmt.Fprintf(&b, "%s %s", SuccessStyle.Render("✓"), t.Tag)
		}
		if t.Suggestion != "" {
			fmt.Fprintf(&b, " %s", DescStyle.Render("did you mean "+t.Suggestion+"?"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMapping lists frameworks with the tags they map to.
func RenderMapping(m *tags.Mapping, frameworks []string) string {
	if len(frameworks) == 0 {
		frameworks = m.Frameworks()
	}

	var b strings.Builder
	for _, fw := range frameworks {
		mapped, ok := m.Lookup(fw)
		if !ok {
			fmt.Fprintf(&b, "%s %s\n", fw, SubtleStyle.Render("(not mapped)"))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", TagStyle.Render(fw), strings.Join(mapped, ", "))
	}
	return b.String()
}

var statusOrder = []pipeline.Status{
	pipeline.StatusWritten,
	pipeline.StatusPlanned,
	pipeline.StatusUnchanged,
	pipeline.StatusSkipped,
}

// RenderOutcomes lists every rule file with what happened to it, followed by
// a one-line summary.
func RenderOutcomes(outcomes []pipeline.Outcome, dryRun bool) string {
	var b strings.Builder

	if dryRun {
		b.WriteString(WarningStyle.Render("Dry run: no files were written."))
		b.WriteString("\n")
	}

	for _, o := range outcomes {
		c := o.Change
		var marker string
		switch o.Status {
		case pipeline.StatusWritten:
			marker = SuccessStyle.Render(string(c.Action))
		case pipeline.StatusPlanned:
			marker = TagStyle.Render("would " + string(c.Action))
		case pipeline.StatusSkipped:
			marker = WarningStyle.Render("skipped")
		default:
			marker = SubtleStyle.Render("unchanged")
		}
		fmt.Fprintf(&b, "  %-16s %s %s\n", marker, c.RelPath,
			SubtleStyle.Render(fmt.Sprintf("(%s, %d bytes, %s)", c.Tool, len(c.Content), strings.Join(c.Tags, ", "))))
	}

	counts := pipeline.Summary(outcomes)
	parts := make([]string, 0, len(counts))
	for _, s := range statusOrder {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}
	b.WriteString(TitleStyle.Render(strings.Join(parts, ", ")))
	b.WriteString("\n")

	return b.String()
}

// RenderTools lists the supported tools and where their rules go.
func RenderTools(layouts map[models.Tool]string) string {
	tools := make([]models.Tool, 0, len(layouts))
	for t := range layouts {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return toolIndex(tools[i]) < toolIndex(tools[j]) })

	var b strings.Builder
	for _, t := range tools {
		fmt.Fprintf(&b, "%-9s %-15s %s\n", t, t.DisplayName(), SubtleStyle.Render(layouts[t]))
	}
	return b.String()
}

func toolIndex(t models.Tool) int {
	for i, known := range models.AllTools {
		if known == t {
			return i
		}
	}
	return len(models.AllTools)
}
