package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
)

// Template paths used for loading templates from disk.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// TemplateRenderer renders HTML pages. Each page in pages/ is parsed together with layout.tmpl
// and partials/, so every page can define its own "content" block.
type TemplateRenderer struct {
	fsys    fs.FS
	devMode bool
	logger  *slog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Reparse templates on every render
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer parses every page up front so broken templates fail at startup.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &TemplateRenderer{fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: logger}
	pages, err := r.parse()
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	r.pages = pages
	return r, nil
}

func (r *TemplateRenderer) parse() (map[string]*template.Template, error) {
	base, err := template.New("root").Funcs(templateFuncs()).ParseFS(r.fsys, "layout.tmpl", "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(r.fsys, "pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no page templates found")
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		page, cerr := base.Clone()
		if cerr != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", file, cerr)
		}
		if _, perr := page.ParseFS(r.fsys, file); perr != nil {
			return nil, fmt.Errorf("parse %s: %w", file, perr)
		}
		pages[strings.TrimSuffix(path.Base(file), ".tmpl")] = page
	}
	return pages, nil
}

func (r *TemplateRenderer) lookup(name string) (*template.Template, error) {
	if r.devMode {
		pages, err := r.parse()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.pages = pages
		r.mu.Unlock()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	return t, nil
}

// Render writes page with status. Nothing is written if the template fails.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, data PageData) error {
	t, err := r.lookup(data.Page)
	if err != nil {
		r.logTemplateError(data.Page, err)
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logTemplateError(data.Page, err)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", data.Page),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(page string, err error) {
	r.logger.Error("template execution failed",
		slog.String("template", page),
		slog.Any("error", err),
	)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"roleTitle":  RoleTitle,
		"loginPath":  domainauth.LoginPath,
		"signupPath": domainauth.SignupPath,
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"value": func(form map[string]string, field string) string {
			return form[field]
		},
	}
}
