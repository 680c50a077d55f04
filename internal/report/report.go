// Package report writes weekly summaries as flat JSON files plus an index.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/TobiSchelling/weeklynotes/internal/notes"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

// Section header patterns used for the summary statistics.
const (
	ThemesPattern   = `themes`
	FrictionPattern = `misunderstanding|friction`
	IdeasPattern    = `content ideas`
)

var sectionHeader = regexp.MustCompile(`^##\s`)

// NoteRef identifies one analyzed note in a report.
type NoteRef struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Report is the per-week JSON document.
type Report struct {
	WeekStart       string    `json:"week_start"`
	WeekEnd         string    `json:"week_end"`
	NoteCount       int       `json:"note_count"`
	GeneratedAt     string    `json:"generated_at"`
	Model           string    `json:"model"`
	ThemeCount      int       `json:"theme_count"`
	FrictionCount   int       `json:"friction_count"`
	IdeaCount       int       `json:"idea_count"`
	SummaryMarkdown string    `json:"summary_markdown"`
	NotesAnalyzed   []NoteRef `json:"notes_analyzed"`
}

// IndexEntry is one week in index.json.
type IndexEntry struct {
	WeekStart     string `json:"week_start"`
	WeekEnd       string `json:"week_end"`
	File          string `json:"file"`
	NoteCount     int    `json:"note_count"`
	GeneratedAt   string `json:"generated_at"`
	ThemeCount    int    `json:"theme_count"`
	FrictionCount int    `json:"friction_count"`
	IdeaCount     int    `json:"idea_count"`
}

// Index is the manifest of all generated weeks, newest first.
type Index struct {
	Weeks []IndexEntry `json:"weeks"`
}

// New assembles the report for a summarized week.
func New(w week.Window, model, summary string, docs []notes.Document, now time.Time) *Report {
	refs := make([]NoteRef, 0, len(docs))
	for i := range docs {
		refs = append(refs, NoteRef{
			Title: docs[i].DisplayTitle("Untitled"),
			Date:  docs[i].Date(),
		})
	}

	return &Report{
		WeekStart:       w.StartLabel(),
		WeekEnd:         w.EndLabel(),
		NoteCount:       len(docs),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		Model:           model,
		ThemeCount:      CountSectionItems(summary, ThemesPattern),
		FrictionCount:   CountSectionItems(summary, FrictionPattern),
		IdeaCount:       CountSectionItems(summary, IdeasPattern),
		SummaryMarkdown: summary,
		NotesAnalyzed:   refs,
	}
}

// FileName is the report's file name inside the store.
func (r *Report) FileName() string {
	return r.WeekStart + ".json"
}

// Entry derives the index entry for the report.
func (r *Report) Entry() IndexEntry {
	return IndexEntry{
		WeekStart:     r.WeekStart,
		WeekEnd:       r.WeekEnd,
		File:          r.FileName(),
		NoteCount:     r.NoteCount,
		GeneratedAt:   r.GeneratedAt,
		ThemeCount:    r.ThemeCount,
		FrictionCount: r.FrictionCount,
		IdeaCount:     r.IdeaCount,
	}
}

// CountSectionItems counts bullet lines under the level-2 sections whose
// header matches pattern, case-insensitively. Nested bullets count too.
func CountSectionItems(md, pattern string) int {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return 0
	}

	inSection := false
	count := 0
	for _, line := range strings.Split(md, "\n") {
		if sectionHeader.MatchString(line) {
			inSection = re.MatchString(line)
			continue
		}
		if inSection && strings.HasPrefix(strings.TrimSpace(line), "-") {
			count++
		}
	}
	return count
}

// Markdown renders the report as a standalone markdown document.
func (r *Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Integrator Weekly Summary: %s\n\n", week.DisplayLabel(r.WeekStart))
	fmt.Fprintf(&sb, "**Period:** %s to %s  \n", r.WeekStart, r.WeekEnd)
	fmt.Fprintf(&sb, "**Notes analyzed:** %d  \n", r.NoteCount)
	fmt.Fprintf(&sb, "**Generated:** %s", r.GeneratedAt)
	if r.Model != "" {
		fmt.Fprintf(&sb, " with %s", r.Model)
	}
	sb.WriteString("\n\n---\n\n")
	sb.WriteString(strings.TrimSpace(r.SummaryMarkdown))
	sb.WriteString("\n")
	return sb.String()
}
