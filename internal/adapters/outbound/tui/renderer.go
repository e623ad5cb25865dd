package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"
	"github.com/muesli/termenv"

	"github.com/abdidvp/harmonizer/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var separatorLine = strings.Repeat("─", 64)

const (
	maxMissingShown = 5
	maxConfigShown  = 10
)

// Renderer formats reports with its own color profile, so a plain file
// report and a colored terminal report can be produced in one process.
type Renderer struct {
	header     lipgloss.Style
	box        lipgloss.Style
	dim        lipgloss.Style
	faint      lipgloss.Style
	pass       lipgloss.Style
	fail       lipgloss.Style
	warn       lipgloss.Style
	errorTag   lipgloss.Style
	warnTag    lipgloss.Style
	infoTag    lipgloss.Style
	command    lipgloss.Style
	title      lipgloss.Style
	sectionTag lipgloss.Style
}

// NewRenderer builds a renderer. With color off the output is plain text.
func NewRenderer(color bool) *Renderer {
	lr := lipgloss.NewRenderer(io.Discard)
	if color {
		lr.SetColorProfile(termenv.EnvColorProfile())
	} else {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		header: lr.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center),
		box: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68),
		dim:        lr.NewStyle().Foreground(dim),
		faint:      lr.NewStyle().Foreground(faint),
		pass:       lr.NewStyle().Foreground(success),
		fail:       lr.NewStyle().Foreground(danger),
		warn:       lr.NewStyle().Foreground(warning),
		errorTag:   lr.NewStyle().Foreground(danger).Bold(true),
		warnTag:    lr.NewStyle().Foreground(warning).Bold(true),
		infoTag:    lr.NewStyle().Foreground(info),
		command:    lr.NewStyle().Foreground(accent),
		title:      lr.NewStyle().Bold(true).Foreground(fg),
		sectionTag: lr.NewStyle().Bold(true).Foreground(fg),
	}
}

// ReportOptions carries what the status alone does not know.
type ReportOptions struct {
	ScanTime        time.Time
	Recommendations []string
	// Timings, when set, adds a per-phase performance section.
	Timings []domain.PhaseTiming
}

// Status formats a scan result as the human-readable diagnostic report.
func (r *Renderer) Status(status domain.EnvironmentStatus, opts ReportOptions) string {
	var b strings.Builder

	title := r.header.Render("ENVIRONMENT HARMONIZER")
	subtitle := r.dim.Render("Diagnostic Report")
	b.WriteString(r.box.Render(title + "\n" + subtitle))
	b.WriteString("\n\n")

	scanTime := opts.ScanTime
	if scanTime.IsZero() {
		scanTime = time.Now()
	}
	fmt.Fprintf(&b, "  %s %s\n", r.label("Project Path:"), status.ProjectPath)
	fmt.Fprintf(&b, "  %s %s\n\n", r.label("Scan Time:"), scanTime.Format(domain.TimestampLayout))

	r.renderOS(&b, status)
	r.renderPython(&b, status)
	r.renderVenv(&b, status)
	r.renderDependencies(&b, status)
	r.renderConfigFiles(&b, status)

	b.WriteString("  " + r.faint.Render(separatorLine) + "\n\n")
	r.renderIssues(&b, status.Issues)
	r.renderFixable(&b, status.FixableIssues())
	r.renderRecommendations(&b, opts.Recommendations)
	r.renderPerformance(&b, opts.Timings)
	r.renderFooter(&b, status)

	return b.String()
}

func (r *Renderer) label(s string) string { return r.dim.Render(s) }

func (r *Renderer) section(b *strings.Builder, name string) {
	b.WriteString("  " + r.sectionTag.Render("["+name+"]") + "\n")
}

func (r *Renderer) renderOS(b *strings.Builder, s domain.EnvironmentStatus) {
	r.section(b, "OS ENVIRONMENT")
	fmt.Fprintf(b, "    %s %s\n", r.label("Type:"), s.OSType)
	fmt.Fprintf(b, "    %s %s\n", r.label("Version:"), s.OSVersion)
	if s.WSLVersion != "" {
		fmt.Fprintf(b, "    %s %s\n", r.label("WSL:"), s.WSLVersion)
	}
	b.WriteString("\n")
}

func (r *Renderer) renderPython(b *strings.Builder, s domain.EnvironmentStatus) {
	r.section(b, "PYTHON ENVIRONMENT")
	fmt.Fprintf(b, "    %s %s\n", r.label("Version:"), s.PythonVersion)
	fmt.Fprintf(b, "    %s %s\n", r.label("Executable:"), s.PythonExecutable)
	if s.RequiredPython != "" {
		fmt.Fprintf(b, "    %s %s\n", r.label("Required:"), s.RequiredPython)
	}
	b.WriteString("\n")
}

func (r *Renderer) renderVenv(b *strings.Builder, s domain.EnvironmentStatus) {
	r.section(b, "VIRTUAL ENVIRONMENT")
	fmt.Fprintf(b, "    %s %s\n", r.label("Type:"), s.VenvType)
	active := r.warn.Render("No")
	if s.VenvActive {
		active = r.pass.Render("Yes")
	}
	fmt.Fprintf(b, "    %s %s\n", r.label("Active:"), active)
	if s.VenvPath != "" {
		fmt.Fprintf(b, "    %s %s\n", r.label("Path:"), s.VenvPath)
	}
	b.WriteString("\n")
}

func (r *Renderer) renderDependencies(b *strings.Builder, s domain.EnvironmentStatus) {
	r.section(b, "DEPENDENCIES")
	if s.RequirementsFile == "" {
		fmt.Fprintf(b, "    %s No requirements file found\n\n", r.infoTag.Render("ℹ"))
		return
	}

	fmt.Fprintf(b, "    %s %s\n", r.label("Requirements File:"), s.RequirementsFile)
	fmt.Fprintf(b, "    %s %d\n", r.label("Installed Packages:"), len(s.InstalledPackages))
	if n := len(s.MissingPackages); n > 0 {
		fmt.Fprintf(b, "    %s %s\n", r.label("Missing Packages:"), r.fail.Render(fmt.Sprint(n)))
		for _, pkg := range firstN(s.MissingPackages, maxMissingShown) {
			fmt.Fprintf(b, "      %s %s\n", r.fail.Render("✗"), pkg)
		}
		if n > maxMissingShown {
			fmt.Fprintf(b, "      %s\n", r.dim.Render(fmt.Sprintf("... and %d more", n-maxMissingShown)))
		}
	} else {
		fmt.Fprintf(b, "    %s All dependencies installed\n", r.pass.Render("✓"))
	}
	b.WriteString("\n")
}

func (r *Renderer) renderConfigFiles(b *strings.Builder, s domain.EnvironmentStatus) {
	r.section(b, "CONFIGURATION FILES")
	if len(s.ConfigFiles) == 0 {
		fmt.Fprintf(b, "    %s No config files detected\n\n", r.infoTag.Render("ℹ"))
		return
	}

	fmt.Fprintf(b, "    %s %d files\n", r.label("Found:"), len(s.ConfigFiles))
	for _, f := range firstN(s.ConfigFiles, maxConfigShown) {
		fmt.Fprintf(b, "      %s %s\n", r.pass.Render("✓"), f)
	}
	if n := len(s.ConfigFiles); n > maxConfigShown {
		fmt.Fprintf(b, "      %s\n", r.dim.Render(fmt.Sprintf("... and %d more", n-maxConfigShown)))
	}
	b.WriteString("\n")
}

func (r *Renderer) renderIssues(b *strings.Builder, issues []domain.Issue) {
	if len(issues) == 0 {
		b.WriteString("  " + r.pass.Render("[NO ISSUES DETECTED]") + "\n")
		fmt.Fprintf(b, "    %s Environment appears to be properly configured\n\n", r.pass.Render("✓"))
		return
	}

	b.WriteString("  " + r.title.Render(fmt.Sprintf("[DETECTED ISSUES] (%d total)", len(issues))) + "\n\n")
	for _, issue := range sortBySeverity(issues) {
		r.renderIssue(b, issue)
	}
}

func (r *Renderer) renderIssue(b *strings.Builder, issue domain.Issue) {
	fmt.Fprintf(b, "    %s %s\n", r.severityTag(issue.Severity), issue.Message)
	fmt.Fprintf(b, "      %s %s\n", r.label("Category:"), issue.Category)
	if issue.Fixable {
		fmt.Fprintf(b, "      %s %s\n", r.label("Fixable:"), r.pass.Render("Yes"))
		if issue.FixCommand != "" {
			fmt.Fprintf(b, "      %s %s\n", r.label("Fix:"), r.command.Render(issue.FixCommand))
		}
	} else {
		fmt.Fprintf(b, "      %s No\n", r.label("Fixable:"))
	}
	b.WriteString("\n")
}

func (r *Renderer) severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return r.errorTag.Render("[ERROR]")
	case domain.SeverityWarning:
		return r.warnTag.Render("[WARNING]")
	default:
		return r.infoTag.Render("[INFO]")
	}
}

func (r *Renderer) severityIcon(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return r.fail.Render("✗")
	case domain.SeverityWarning:
		return r.warn.Render("⚠")
	default:
		return r.infoTag.Render("ℹ")
	}
}

// sortBySeverity orders errors first, keeping detection order within a
// severity.
func sortBySeverity(issues []domain.Issue) []domain.Issue {
	sorted := append([]domain.Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})
	return sorted
}

func (r *Renderer) renderFixable(b *strings.Builder, fixable []domain.Issue) {
	if len(fixable) == 0 {
		return
	}

	b.WriteString("  " + r.faint.Render(separatorLine) + "\n")
	b.WriteString("  " + r.command.Render(fmt.Sprintf("[FIXABLE ISSUES] - %d issue(s) can be automatically fixed", len(fixable))) + "\n\n")

	for _, group := range domain.GroupByCategory(fixable) {
		issues := group.Issues
		noun := "fix"
		if len(issues) > 1 {
			noun = "fixes"
		}
		fmt.Fprintf(b, "    %s %s (%d %s):\n", r.pass.Render("●"), categoryTitle(group.Category), len(issues), noun)
		for _, issue := range issues {
			fmt.Fprintf(b, "      %s %s\n", r.severityIcon(issue.Severity), issue.Message)
			if issue.FixCommand != "" {
				fmt.Fprintf(b, "        %s %s\n", r.label("Fix:"), r.command.Render(issue.FixCommand))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + r.command.Render("TIP: Run `harmonizer fix --dry-run` to preview changes first") + "\n\n")
}

func (r *Renderer) renderRecommendations(b *strings.Builder, recs []string) {
	if len(recs) == 0 {
		return
	}
	r.section(b, "RECOMMENDATIONS")
	for _, rec := range recs {
		fmt.Fprintf(b, "    %s %s\n", r.dim.Render("•"), rec)
	}
	b.WriteString("\n")
}

func (r *Renderer) renderPerformance(b *strings.Builder, timings []domain.PhaseTiming) {
	if len(timings) == 0 {
		return
	}
	r.section(b, "PERFORMANCE")
	var total float64
	for _, t := range timings {
		total += t.Seconds
		fmt.Fprintf(b, "    %s %8.3fs  %s\n", r.label(fmt.Sprintf("%-13s", t.Phase)), t.Seconds,
			r.dim.Render(fmt.Sprintf("%d issue(s)", int(t.Issues))))
	}
	fmt.Fprintf(b, "    %s %8.3fs\n\n", r.label(fmt.Sprintf("%-13s", "total")), total)
}

func (r *Renderer) renderFooter(b *strings.Builder, s domain.EnvironmentStatus) {
	b.WriteString("  " + r.faint.Render(separatorLine) + "\n")
	if len(s.Issues) == 0 {
		b.WriteString("  " + r.pass.Render("✓ No issues detected - environment is healthy!") + "\n")
		return
	}

	sum := s.IssueSummary()
	parts := []string{
		countTag(sum.Errors, fmt.Sprintf("%d error(s)", sum.Errors), r.errorTag),
		countTag(sum.Warnings, fmt.Sprintf("%d warning(s)", sum.Warnings), r.warnTag),
		countTag(sum.Info, fmt.Sprintf("%d info", sum.Info), r.infoTag),
	}
	fmt.Fprintf(b, "  %s %s\n", r.title.Render("Summary:"), strings.Join(parts, ", "))

	if n := len(s.FixableIssues()); n > 0 {
		b.WriteString("  " + r.command.Render(fmt.Sprintf("Run `harmonizer fix` to apply %d automated fix(es)", n)) + "\n")
	}
}

func countTag(n int, text string, style lipgloss.Style) string {
	if n == 0 {
		return text
	}
	return style.Render(text)
}

// Fixes formats fix results grouped by fixer, in run order.
func (r *Renderer) Fixes(results []domain.FixResult) string {
	var b strings.Builder
	if len(results) == 0 {
		b.WriteString("  " + r.dim.Render("No fixes were attempted.") + "\n")
		return b.String()
	}

	dryRun := false
	var order []string
	groups := make(map[string][]domain.FixResult)
	for _, res := range results {
		if _, ok := groups[res.Fixer]; !ok {
			order = append(order, res.Fixer)
		}
		groups[res.Fixer] = append(groups[res.Fixer], res)
		dryRun = dryRun || res.DryRun
	}

	heading := "Fix Results"
	if dryRun {
		heading += "  " + r.warnTag.Render("[DRY-RUN]")
	}
	b.WriteString("\n  " + r.title.Render(heading) + "\n")
	b.WriteString("  " + r.faint.Render(separatorLine) + "\n\n")

	for _, fixer := range order {
		b.WriteString("  " + r.sectionTag.Render(DisplayName(fixer)) + "\n")
		for _, res := range groups[fixer] {
			r.renderFixResult(&b, res)
		}
		b.WriteString("\n")
	}

	sum := domain.SummarizeFixes(results)
	fmt.Fprintf(&b, "  %s %s, %s\n",
		r.title.Render("Summary:"),
		r.pass.Render(fmt.Sprintf("%d succeeded", sum.Succeeded)),
		countTag(sum.Failed, fmt.Sprintf("%d failed", sum.Failed), r.errorTag),
	)
	return b.String()
}

func (r *Renderer) renderFixResult(b *strings.Builder, res domain.FixResult) {
	mark := r.fail.Render("✗")
	if res.Success {
		mark = r.pass.Render("✓")
	}
	lines := strings.Split(strings.TrimRight(res.Message, "\n"), "\n")
	fmt.Fprintf(b, "    %s %s\n", mark, lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintf(b, "      %s\n", r.dim.Render(l))
	}
	if res.Command != "" {
		fmt.Fprintf(b, "      %s %s\n", r.label("$"), r.command.Render(res.Command))
	}
}

// DisplayName splits a fixer's type name into words: "ConfigFixer" becomes
// "Config Fixer".
func DisplayName(fixer string) string {
	if fixer == "" {
		return "Fixer"
	}
	return strings.Join(camelcase.Split(fixer), " ")
}

func categoryTitle(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
