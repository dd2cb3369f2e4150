package mermaid

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/cleitonmarx/envconfigs/introspection"
)

var (
	//go:embed graph.gohtml
	templateFS embed.FS
	tmpl       = template.Must(template.ParseFS(templateFS, "graph.gohtml"))
)

const defaultMaxTextSize = 100000

type graphHandlerConfig struct {
	maxTextSize int
}

// GraphHandlerOption configures NewGraphHandler behavior.
type GraphHandlerOption func(*graphHandlerConfig)

// WithMaxTextSize sets Mermaid's maxTextSize value used by the graph page.
// Values <= 0 are ignored and default to 100000.
func WithMaxTextSize(maxTextSize int) GraphHandlerOption {
	return func(cfg *graphHandlerConfig) {
		if maxTextSize > 0 {
			cfg.maxTextSize = maxTextSize
		}
	}
}

type graphPageData struct {
	GraphJSON   template.JS
	Title       string
	MaxTextSize int
}

// RenderPage writes a standalone HTML page drawing the configuration graph of report.
func RenderPage(title string, report introspection.Report, opts ...GraphHandlerOption) ([]byte, error) {
	cfg := graphHandlerConfig{
		maxTextSize: defaultMaxTextSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	graphJSON, err := json.Marshal(GenerateConfigGraph(report))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, graphPageData{
		Title:       fmt.Sprintf("%s Configuration Graph", title),
		MaxTextSize: cfg.maxTextSize,
		// json.Marshal returns a valid JavaScript string literal for the graph source.
		GraphJSON: template.JS(graphJSON),
	}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// NewGraphHandler creates an HTTP handler serving the configuration graph page of report.
func NewGraphHandler(title string, report introspection.Report, opts ...GraphHandlerOption) http.Handler {
	page, err := RenderPage(title, report, opts...)
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	})
}
