// Package preview serves form fixtures through a renderer for local template
// development.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formtags/pkg/logging"
	"github.com/goliatone/go-formtags/pkg/model"
	"github.com/goliatone/go-formtags/pkg/render"
)

// FormExtensions are tried in order when resolving a form name.
var FormExtensions = []string{".yaml", ".yml", ".json"}

// RequiredMessage is reported for required fields posted empty.
const RequiredMessage = "This field is required."

// Options configures a Server.
type Options struct {
	// FormsDir holds the form fixtures served under /forms/:name.
	FormsDir string
	Renderer render.Renderer
	// Template is passed to the renderer as RenderOptions.Template.
	Template string
	// Assets is served under /assets when set.
	Assets fs.FS
	Logger *zerolog.Logger
}

// Server renders form fixtures on request. Fixtures are read from disk on
// every request.
type Server struct {
	opts   Options
	logger zerolog.Logger
	router *gin.Engine
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Renderer == nil {
		return nil, errors.New("preview: renderer is required")
	}
	if strings.TrimSpace(opts.FormsDir) == "" {
		return nil, errors.New("preview: forms directory is required")
	}

	logger := logging.GetLogger("formtags.preview")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	s := &Server{opts: opts, logger: logger}
	s.router = s.routes()
	return s, nil
}

// Handler exposes the gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/forms", s.listForms)
	r.GET("/forms/:name", s.renderForm)
	r.POST("/forms/:name", s.submitForm)
	if s.opts.Assets != nil {
		r.StaticFS("/assets", http.FS(s.opts.Assets))
	}
	return r
}

func (s *Server) listForms(c *gin.Context) {
	names, err := FormNames(s.opts.FormsDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forms": names})
}

func (s *Server) renderForm(c *gin.Context) {
	form, ok := s.loadForm(c)
	if !ok {
		return
	}
	values := map[string]any{}
	for key, vals := range c.Request.URL.Query() {
		values[key] = collapse(vals)
	}
	s.respond(c, form, render.RenderOptions{Values: values}, http.StatusOK)
}

func (s *Server) submitForm(c *gin.Context) {
	form, ok := s.loadForm(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form payload: %v", err)
		return
	}

	values := make(map[string]any, len(c.Request.PostForm))
	for key, vals := range c.Request.PostForm {
		values[key] = collapse(vals)
	}

	errs := RequiredErrors(form, values)
	status := http.StatusOK
	if len(errs) > 0 {
		status = http.StatusUnprocessableEntity
	}
	s.respond(c, form, render.RenderOptions{Values: values, Errors: errs}, status)
}

func (s *Server) respond(c *gin.Context, form model.Form, opts render.RenderOptions, status int) {
	opts.Template = s.opts.Template
	opts.Locale = c.Query("locale")
	opts.Data = map[string]any{"path": c.Request.URL.Path}
	if form.Action == "" {
		form.Action = c.Request.URL.Path
	}

	out, err := s.opts.Renderer.Render(c.Request.Context(), form, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("form", form.Name).Msg("Render failed")
		c.String(http.StatusInternalServerError, "render %s: %v", form.Name, err)
		return
	}
	c.Data(status, s.opts.Renderer.ContentType(), out)
}

func (s *Server) loadForm(c *gin.Context) (model.Form, bool) {
	name := c.Param("name")
	path, err := ResolveForm(s.opts.FormsDir, name)
	if err != nil {
		c.String(http.StatusNotFound, "%v", err)
		return model.Form{}, false
	}
	form, err := model.LoadForm(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Invalid form fixture")
		c.String(http.StatusInternalServerError, "%v", err)
		return model.Form{}, false
	}
	if form.Name == "" {
		form.Name = name
	}
	return form, true
}

// ResolveForm maps a form name to a fixture file inside dir.
func ResolveForm(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("preview: invalid form name %q", name)
	}
	for _, ext := range FormExtensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("preview: form %q not found", name)
}

// FormNames lists the fixtures in dir by name.
func FormNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("preview: read forms: %w", err)
	}
	seen := map[string]struct{}{}
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		ext := filepath.Ext(entry.Name())
		for _, known := range FormExtensions {
			if ext != known {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ext)
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// RequiredErrors reports required visible fields with no posted value.
func RequiredErrors(form model.Form, values map[string]any) map[string][]string {
	errs := map[string][]string{}
	for _, field := range form.VisibleFields() {
		if !field.Required {
			continue
		}
		posted := model.ValueStrings(values[field.Name])
		if len(posted) == 0 || strings.TrimSpace(posted[0]) == "" {
			errs[field.Name] = []string{RequiredMessage}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func collapse(vals []string) any {
	if len(vals) == 1 {
		return vals[0]
	}
	return vals
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("preview: shutdown: %w", err)
		}
		return nil
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request")
	}
}
