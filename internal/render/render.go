// Package render prints engine results to a terminal or encodes them as
// JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/architect/internal/heal"
	"github.com/ShayCichocki/architect/internal/workspace"
	"github.com/ShayCichocki/architect/pkg/models"
)

// Format selects how results are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q: want text, json or yaml", s)
}

// Renderer writes results in one format.
type Renderer struct {
	out    io.Writer
	format Format

	titleStyle   lipgloss.Style
	panelStyle   lipgloss.Style
	dimStyle     lipgloss.Style
	commandStyle lipgloss.Style
}

// New creates a Renderer writing to w.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{
		out:    w,
		format: format,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75")),

		panelStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		commandStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
	}
}

// Orchestration writes a full orchestration result.
func (r *Renderer) Orchestration(result models.OrchestrationResult) error {
	if r.format != FormatText {
		return r.encode(result)
	}

	var b strings.Builder
	b.WriteString(r.titleStyle.Render(fmt.Sprintf("Plan (%d steps)", len(result.Plan))) + "\n")
	for _, step := range result.Plan {
		deps := "none"
		if len(step.Dependencies) > 0 {
			deps = strings.Join(step.Dependencies, ", ")
		}
		fmt.Fprintf(&b, "%s %s %s\n    %s\n", statusMark(step.Status), step.ID, step.Summary,
			r.dimStyle.Render("after: "+deps))
	}
	r.write(r.panelStyle.Render(strings.TrimRight(b.String(), "\n")))

	r.write(r.titleStyle.Render("Relevant context"))
	r.writeHits(result.RelevantContext)

	r.write(r.titleStyle.Render("Coding notes"))
	for _, msg := range result.CodingNotes {
		r.writeMessage(msg)
	}

	r.write(r.titleStyle.Render("Review notes"))
	for _, msg := range result.ReviewNotes {
		r.writeMessage(msg)
	}

	r.write(r.titleStyle.Render("Suggested commands"))
	for _, cmd := range result.SuggestedCommands {
		r.write("  $ " + r.commandStyle.Render(cmd))
	}
	return nil
}

// Hits writes retrieval hits.
func (r *Renderer) Hits(hits []models.RetrievalHit) error {
	if r.format != FormatText {
		return r.encode(struct {
			Hits []models.RetrievalHit `json:"hits"`
		}{hits})
	}
	r.writeHits(hits)
	return nil
}

// Attempt writes one attempt of a self-healing run. Structured formats skip
// attempts and carry the final result only.
func (r *Renderer) Attempt(ev heal.AttemptEvent) {
	if r.format != FormatText {
		return
	}
	mark := color.RedString("✗")
	if ev.Success {
		mark = color.GreenString("✓")
	}
	r.write(fmt.Sprintf("%s attempt %d", mark, ev.Attempt))
	if ev.Fix != "" {
		r.write(fmt.Sprintf("  %s %s (%s)", color.YellowString("fix:"), ev.Fix, ev.Rule))
	}
}

// CommandRun writes the outcome of a self-healing run.
func (r *Renderer) CommandRun(result models.CommandRunResult) error {
	if r.format != FormatText {
		return r.encode(result)
	}

	status := color.RedString("FAILED")
	if result.Success {
		status = color.GreenString("OK")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", status, r.commandStyle.Render(result.Command))
	fmt.Fprintf(&b, "attempts: %d  termination: %s\n", result.Attempts, result.Termination)
	if len(result.FixesApplied) > 0 {
		b.WriteString("fixes:\n")
		for _, fix := range result.FixesApplied {
			fmt.Fprintf(&b, "  - %s\n", fix)
		}
	}
	r.write(r.panelStyle.Render(strings.TrimRight(b.String(), "\n")))

	if out := strings.TrimSpace(result.Stdout); out != "" {
		r.write(r.dimStyle.Render("stdout:"))
		r.write(out)
	}
	if errOut := strings.TrimSpace(result.Stderr); errOut != "" {
		r.write(r.dimStyle.Render("stderr:"))
		r.write(errOut)
	}
	return nil
}

// Insights writes a workspace summary and the detected toolchain.
func (r *Renderer) Insights(insights models.WorkspaceInsights, project workspace.ProjectInfo) error {
	if r.format != FormatText {
		return r.encode(struct {
			Insights models.WorkspaceInsights `json:"insights"`
			Project  workspace.ProjectInfo    `json:"project"`
		}{insights, project})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "files: %d  project: %s\n", insights.TotalFiles, project.Type)
	for _, lang := range sortedLanguages(insights.Languages) {
		fmt.Fprintf(&b, "  %-12s %d\n", lang, insights.Languages[lang])
	}
	r.write(r.panelStyle.Render(strings.TrimRight(b.String(), "\n")))

	r.write(r.titleStyle.Render("Largest files"))
	for _, doc := range insights.TopFiles {
		r.write(fmt.Sprintf("  %6d  %s %s", doc.Tokens, doc.Path, r.dimStyle.Render(doc.Language)))
	}
	for _, cmd := range []string{project.Build, project.Test, project.Lint} {
		if cmd != "" {
			r.write("  $ " + r.commandStyle.Render(cmd))
		}
	}
	return nil
}

func (r *Renderer) writeHits(hits []models.RetrievalHit) {
	if len(hits) == 0 {
		r.write(r.dimStyle.Render("  (no matches)"))
		return
	}
	for _, hit := range hits {
		r.write(fmt.Sprintf("  %s %s", color.CyanString("%.2f", hit.Similarity), hit.Path))
	}
}

func (r *Renderer) writeMessage(msg models.AgentMessage) {
	r.write(fmt.Sprintf("[%s] %s", roleLabel(msg.Role), msg.Content))
}

func (r *Renderer) write(line string) {
	fmt.Fprintln(r.out, line)
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		return encodeYAML(r.out, v)
	}
	return fmt.Errorf("unknown format %q", r.format)
}

// encodeYAML goes through JSON so YAML output shares the JSON field names
// and key order.
func encodeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	plainStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// plainStyle drops the flow and quoting styles inherited from JSON.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		plainStyle(child)
	}
}

// sortedLanguages orders languages by file count, then name.
func sortedLanguages(counts map[string]int) []string {
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	return langs
}

func statusMark(s models.StepStatus) string {
	switch s {
	case models.StepStatusDone:
		return color.GreenString("●")
	case models.StepStatusInProgress:
		return color.YellowString("◐")
	case models.StepStatusNeedsAttention:
		return color.RedString("!")
	}
	return color.HiBlackString("○")
}

func roleLabel(role models.AgentRole) string {
	switch role {
	case models.RoleManager:
		return color.MagentaString(string(role))
	case models.RoleCoder:
		return color.BlueString(string(role))
	case models.RoleReviewer:
		return color.GreenString(string(role))
	}
	return string(role)
}
