package mermaid

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleitonmarx/envconfigs/introspection"
)

func TestNewGraphHandler(t *testing.T) {
	report := introspection.Report{
		Configs: []introspection.ConfigAccess{
			{Key: "DATABASE_URL", Provider: "env", Resolution: introspection.ResolutionFound, Caller: introspection.Caller{Func: "main.run"}},
		},
	}

	tests := map[string]struct {
		title    string
		opts     []GraphHandlerOption
		validate func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		"serves_html": {
			title: "envconfigs",
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
				body := rec.Body.String()
				assert.Contains(t, body, "<title>envconfigs Configuration Graph</title>")
				assert.Equal(t, 1, strings.Count(body, "mermaid.render('mermaid-svg-id',"))
				assert.Regexp(t, regexp.MustCompile(`maxTextSize:\s*100000`), body)
			},
		},
		"embeds_graph_as_escaped_js_string": {
			title: "App<title>",
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := rec.Body.String()
				assert.Contains(t, body, "App&lt;title&gt; Configuration Graph")
				assert.Contains(t, body, `mermaid.render('mermaid-svg-id', "graph TD\n`)
				assert.Contains(t, body, `provider_env --\u003e key_DATABASE_URL`)
				assert.NotContains(t, body, "mermaid.render('mermaid-svg-id', \"graph TD\n")
			},
		},
		"overrides_max_text_size": {
			title: "envconfigs",
			opts:  []GraphHandlerOption{WithMaxTextSize(2048)},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Regexp(t, regexp.MustCompile(`maxTextSize:\s*2048`), rec.Body.String())
			},
		},
		"invalid_max_text_size_uses_default": {
			title: "envconfigs",
			opts:  []GraphHandlerOption{WithMaxTextSize(0), nil},
			validate: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Regexp(t, regexp.MustCompile(`maxTextSize:\s*100000`), rec.Body.String())
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			handler := NewGraphHandler(tt.title, report, tt.opts...)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			tt.validate(t, rec)
		})
	}
}

func TestRenderPage(t *testing.T) {
	page, err := RenderPage("envconfigs", introspection.Report{})
	require.NoError(t, err)
	assert.Contains(t, string(page), "<!DOCTYPE html>")
}
