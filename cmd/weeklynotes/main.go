package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/TobiSchelling/weeklynotes/internal/config"
	"github.com/TobiSchelling/weeklynotes/internal/granola"
	"github.com/TobiSchelling/weeklynotes/internal/llm"
	"github.com/TobiSchelling/weeklynotes/internal/pipeline"
	"github.com/TobiSchelling/weeklynotes/internal/report"
	"github.com/TobiSchelling/weeklynotes/internal/server"
	"github.com/TobiSchelling/weeklynotes/internal/summarize"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	logFile    string
	outputDir  string
	cfg        *config.Config
	logOutput  *lumberjack.Logger
)

func main() {
	err := rootCmd.Execute()
	if logOutput != nil {
		logOutput.Close()
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", describeError(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "weeklynotes",
	Short: "Weekly summaries of integrator meeting notes",
	Long: "weeklynotes pulls last week's meeting notes from a Granola folder, asks an LLM for a\n" +
		"structured summary of themes, friction points and content ideas, and writes it as JSON.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if outputDir != "" {
			cfg.Output.Dir = outputDir
		}

		if logFile == "" {
			logFile = cfg.Logging.File
		}
		if logFile != "" {
			setupLogFile(logFile)
		}
		return nil
	},
	RunE: runE,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for summary JSON files")

	addRunFlags(rootCmd.Flags())

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// setupLogFile sends log output to a size-rotated file.
func setupLogFile(path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("Cannot create log directory, logging to stderr: %v", err)
		return
	}
	logOutput = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(logOutput)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("weeklynotes", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/weeklynotes/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		color.Green("Created config: %s", target)
		fmt.Println("Edit it to set the Granola folder and LLM provider.")
		fmt.Println("Put GRANOLA_ACCESS_TOKEN and ANTHROPIC_API_KEY in your environment or a .env file.")
		return nil
	},
}

// --- run command ---

var (
	weekStart          string
	folder             string
	includeTranscripts bool
	dryRun             bool
	model              string
	format             string
	token              string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Summarize one week of meeting notes (default: last week)",
	Args:  cobra.NoArgs,
	RunE:  runE,
}

func init() {
	addRunFlags(runCmd.Flags())
}

func addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&weekStart, "week-start", "", "Monday of the week to summarize (YYYY-MM-DD, default: last week)")
	fs.StringVar(&folder, "folder", "", "Granola folder name fragment (default: config or GRANOLA_FOLDER)")
	fs.BoolVar(&includeTranscripts, "include-transcripts", false, "Also fetch meeting transcripts")
	fs.BoolVar(&dryRun, "dry-run", false, "Fetch notes and show previews without calling the LLM")
	fs.StringVar(&model, "model", "", "LLM model (default: config)")
	fs.StringVar(&format, "format", "", "Output format: json, markdown or both (default: config)")
	fs.StringVar(&token, "token", "", "Granola access token (default: GRANOLA_ACCESS_TOKEN or desktop app login)")
}

func runE(cmd *cobra.Command, args []string) error {
	window, err := week.Resolve(weekStart, time.Now())
	if err != nil {
		return err
	}

	result, err := runWeek(cmd.Context(), window)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

// runWeek wires the Granola client, summarizer and report store for one
// window and runs the pipeline.
func runWeek(ctx context.Context, window week.Window) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := runOptions(cfg, window)

	var summarizer pipeline.Summarizer
	if !opts.DryRun {
		provider, err := llm.CreateProvider(cfg.Summarization.Provider, opts.Model, cfg.APIKey())
		if err != nil {
			return nil, err
		}
		summarizer = summarize.NewSummarizer(provider, cfg.Summarization.MaxTokens)
	}

	accessToken, err := granola.NewAuthenticator().ResolveToken(ctx, token, cfg.Granola.AccessToken)
	if err != nil {
		return nil, err
	}
	client := granola.NewClient(cfg.Granola.BaseURL, accessToken)

	store, err := report.Open(cfg.GetOutputDir())
	if err != nil {
		return nil, err
	}

	fmt.Printf("Fetching notes from %q for %s...\n", opts.Folder, window.Display())
	return pipeline.New(client, summarizer, store).Run(ctx, opts)
}

// runOptions merges the run flags over the config.
func runOptions(c *config.Config, window week.Window) pipeline.Options {
	opts := pipeline.Options{
		Window:             window,
		Folder:             c.Granola.Folder,
		IncludeTranscripts: includeTranscripts || c.Granola.IncludeTranscripts,
		DryRun:             dryRun,
		Model:              c.Summarization.Model,
		Format:             c.Output.Format,
	}
	if folder != "" {
		opts.Folder = folder
	}
	if model != "" {
		opts.Model = model
	}
	if format != "" {
		opts.Format = format
	}
	return opts
}

func printResult(r *pipeline.Result) {
	for i, step := range r.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(r.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}

	if r.Empty {
		color.Yellow("\nNo notes found for %s. Nothing to summarize.", r.Window.Display())
		fmt.Println("Check the folder with --folder, or pick another week with --week-start.")
		return
	}

	fmt.Printf("\nNotes (%d):\n", len(r.Notes))
	for i := range r.Notes {
		fmt.Printf("  %s  %s\n", r.Notes[i].Date(), r.Notes[i].DisplayTitle("Untitled"))
	}

	if r.DryRun {
		color.Cyan("\n[dry-run] Extracted text of the first %d notes:", len(r.Previews))
		for _, p := range r.Previews {
			fmt.Printf("\n### %s\n%s\n", p.Title, p.Text)
		}
		return
	}

	if r.ReportPath != "" {
		color.Green("\nSummary written to %s", r.ReportPath)
	}
	if r.MarkdownPath != "" {
		color.Green("Markdown written to %s", r.MarkdownPath)
	}
	if r.Report != nil {
		fmt.Printf("Themes: %d  Friction points: %d  Content ideas: %d\n",
			r.Report.ThemeCount, r.Report.FrictionCount, r.Report.IdeaCount)
	}
}

// describeError adds a hint to the errors a user can fix.
func describeError(err error) string {
	switch {
	case errors.Is(err, granola.ErrNoToken):
		return err.Error() + "\n  Pass --token, export GRANOLA_ACCESS_TOKEN, or sign in to the Granola desktop app."
	case errors.Is(err, granola.ErrFolderNotFound):
		return err.Error() + "\n  Use --folder with part of the folder's name as shown in Granola."
	case errors.Is(err, llm.ErrNoAPIKey):
		return err.Error() + "\n  Use --dry-run to check note fetching without a key."
	case errors.Is(err, week.ErrInvalidDate):
		return err.Error()
	}
	return strings.TrimSpace(err.Error())
}

// --- index command ---

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "List the weeks that have a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := report.Open(cfg.GetOutputDir())
		if err != nil {
			return err
		}
		idx, err := store.LoadIndex()
		if err != nil {
			return err
		}

		if len(idx.Weeks) == 0 {
			fmt.Println("No summaries yet. Generate one with: weeklynotes run")
			return nil
		}

		fmt.Printf("Summaries in %s:\n\n", store.Dir())
		for _, e := range idx.Weeks {
			fmt.Printf("  %s  %-24s  %2d notes  %2d themes  %2d friction  %2d ideas\n",
				e.WeekStart, week.DisplayLabel(e.WeekStart), e.NoteCount, e.ThemeCount, e.FrictionCount, e.IdeaCount)
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := report.Open(cfg.GetOutputDir())
		if err != nil {
			return err
		}

		port := servePort
		if !cmd.Flags().Changed("port") && cfg.Server.Port != 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(store, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}
