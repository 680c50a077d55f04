package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/weeklynotes/internal/report"
	"github.com/TobiSchelling/weeklynotes/internal/week"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Server is the HTTP server for browsing weekly reports.
type Server struct {
	store *report.Store
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(store *report.Store) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":   renderMarkdown,
		"formatWeek": week.DisplayLabel,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base with its own "content" and "title".
	pageNames := []string{"index.html", "report.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{store: store, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/week/", s.handleWeek)
	s.mux.HandleFunc("/api/index.json", s.handleIndexJSON)
	s.mux.HandleFunc("/api/week/", s.handleWeekJSON)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	idx, err := s.store.LoadIndex()
	if err != nil {
		log.Printf("Error loading index: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Weeks": idx.Weeks,
	})
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	weekStart := strings.TrimPrefix(r.URL.Path, "/week/")
	if weekStart == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	rep, err := s.store.LoadReport(weekStart)
	if err != nil {
		s.reportError(w, r, err)
		return
	}

	s.render(w, "report.html", map[string]any{
		"Report": rep,
	})
}

func (s *Server) handleIndexJSON(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(s.store.Path(report.IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		data = []byte("{\"weeks\": []}\n")
	} else if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func (s *Server) handleWeekJSON(w http.ResponseWriter, r *http.Request) {
	weekStart := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/week/"), ".json")
	if _, err := week.Starting(weekStart); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(s.store.Path(weekStart + ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, data)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, report.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, week.ErrInvalidDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Error loading report: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(store *report.Store, port int) error {
	srv, err := New(store)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
