package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/weeklynotes/internal/notes"
	"github.com/TobiSchelling/weeklynotes/internal/report"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatBoth     = "both"
)

const (
	previewNotes = 3
	previewChars = 500
)

// NotesSource fetches the notes of one folder for a week.
type NotesSource interface {
	RecentNotes(ctx context.Context, folder string, w week.Window, includeTranscripts bool) ([]notes.Document, error)
}

// Summarizer turns a week of notes into markdown.
type Summarizer interface {
	Summarize(ctx context.Context, docs []notes.Document, w week.Window) (string, error)
	Model() string
}

// Options controls a single run.
type Options struct {
	Window             week.Window
	Folder             string
	IncludeTranscripts bool
	DryRun             bool
	Model              string
	Format             string
	MarkdownPath       string
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Preview is the start of one note's extracted text, shown on dry runs.
type Preview struct {
	Title string
	Date  string
	Text  string
}

// Result holds the results of a run.
type Result struct {
	Window       week.Window
	Notes        []notes.Document
	Report       *report.Report
	ReportPath   string
	MarkdownPath string
	Previews     []Preview
	Steps        []StepResult
	Empty        bool
	DryRun       bool
}

// Pipeline fetches, summarizes and stores one week.
type Pipeline struct {
	source     NotesSource
	summarizer Summarizer
	store      *report.Store
	now        func() time.Time
}

// New creates a new pipeline. The summarizer may be nil for dry runs.
func New(source NotesSource, summarizer Summarizer, store *report.Store) *Pipeline {
	return &Pipeline{
		source:     source,
		summarizer: summarizer,
		store:      store,
		now:        time.Now,
	}
}

// Run executes the fetch, summarize and save steps. Finding no notes is
// not an error: the result is marked Empty and nothing is written.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &Result{Window: opts.Window, DryRun: opts.DryRun}

	// Step 1: Fetch
	docs, err := p.source.RecentNotes(ctx, opts.Folder, opts.Window, opts.IncludeTranscripts)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Fetch", Err: err})
		return r, err
	}
	r.Notes = docs
	r.Steps = append(r.Steps, StepResult{
		Name:    "Fetch",
		Summary: fmt.Sprintf("Found %d notes for %s", len(docs), opts.Window.Display()),
	})
	if len(docs) == 0 {
		r.Empty = true
		return r, nil
	}

	if opts.DryRun {
		r.Previews = Previews(docs, previewNotes, previewChars)
		r.Steps = append(r.Steps, StepResult{
			Name:    "Summarize",
			Summary: fmt.Sprintf("[dry-run] Would summarize %d notes", len(docs)),
		})
		return r, nil
	}

	// Step 2: Summarize
	if p.summarizer == nil {
		err := errors.New("no summarizer configured")
		r.Steps = append(r.Steps, StepResult{Name: "Summarize", Err: err})
		return r, err
	}
	summary, err := p.summarizer.Summarize(ctx, docs, opts.Window)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Summarize", Err: err})
		return r, err
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Summarize",
		Summary: fmt.Sprintf("Generated %d characters of summary", len(summary)),
	})

	model := opts.Model
	if model == "" {
		model = p.summarizer.Model()
	}
	r.Report = report.New(opts.Window, model, summary, docs, p.now())

	// Step 3: Save
	step := p.save(r, opts)
	r.Steps = append(r.Steps, step)
	return r, step.Err
}

func (p *Pipeline) save(r *Result, opts Options) StepResult {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatJSON
	}

	var written []string
	if format == FormatJSON || format == FormatBoth {
		path, err := p.store.Save(r.Report)
		if err != nil {
			return StepResult{Name: "Save", Err: err}
		}
		r.ReportPath = path
		written = append(written, path)
	}
	if format == FormatMarkdown || format == FormatBoth {
		path, err := p.store.WriteMarkdown(r.Report, opts.MarkdownPath)
		if err != nil {
			return StepResult{Name: "Save", Err: err}
		}
		r.MarkdownPath = path
		written = append(written, path)
	}
	if len(written) == 0 {
		return StepResult{Name: "Save", Err: fmt.Errorf("unknown output format %q (use json, markdown or both)", opts.Format)}
	}

	log.Printf("Wrote %s", strings.Join(written, ", "))
	return StepResult{Name: "Save", Summary: "Wrote " + strings.Join(written, ", ")}
}

// Previews returns the first n notes with their text cut to limit runes.
// Cut text ends in "...".
func Previews(docs []notes.Document, n, limit int) []Preview {
	if n > len(docs) {
		n = len(docs)
	}
	out := make([]Preview, 0, n)
	for i := 0; i < n; i++ {
		text := docs[i].Text()
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit]) + "..."
		}
		out = append(out, Preview{
			Title: docs[i].DisplayTitle("Untitled"),
			Date:  docs[i].Date(),
			Text:  text,
		})
	}
	return out
}
