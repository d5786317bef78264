package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/seqflow/pkg/buildinfo"
	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/storage"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

// =============================================================================
// Request decoding
// =============================================================================

// diagramRequest is the JSON request body. Raw text bodies fill only Source.
type diagramRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// readRequest decodes the body as JSON or raw text depending on Content-Type.
func readRequest(w http.ResponseWriter, r *http.Request) (diagramRequest, error) {
	body := http.MaxBytesReader(w, r.Body, apperrors.MaxSourceBytes+4096)
	defer body.Close()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req diagramRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return diagramRequest{}, err
			}
			return diagramRequest{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
		return req, nil
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return diagramRequest{}, err
	}
	return diagramRequest{Source: string(data)}, nil
}

// options returns a fresh copy of the server defaults.
func (s *Server) options() pipeline.Options {
	d := s.defaults
	return pipeline.Options{
		Layout:     d.Layout,
		Formats:    append([]string(nil), d.Formats...),
		Engine:     d.Engine,
		Title:      d.Title,
		Background: d.Background,
		Detailed:   d.Detailed,
		Scale:      d.Scale,
		Logger:     d.Logger,
	}
}

// renderOptions applies the render query parameters to the defaults.
// Exactly one format is rendered per request.
func (s *Server) renderOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.options()
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
		if len(opts.Formats) > 0 {
			format = opts.Formats[0]
		}
	}
	opts.Formats = []string{format}

	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	if v := q.Get("detailed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid detailed: %q", v)
		}
		opts.Detailed = b
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid scale: %q", v)
		}
		opts.Scale = f
	}
	if v := q.Get("refresh"); v != "" {
		opts.Refresh, _ = strconv.ParseBool(v)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Stateless endpoints
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"version":    info.Version,
		"commit":     info.Commit,
		"go_version": info.GoVersion,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.runner.Parse(r.Context(), req.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.runner.Parse(r.Context(), req.Source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g := s.runner.Project(r.Context(), d, s.options())
	if hash, err := pipeline.GraphHash(g); err == nil {
		w.Header().Set("X-Graph-Hash", hash)
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), req.Source, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, opts.Formats[0], result.Artifacts, result.GraphHash, result.CacheInfo.RenderHit)
}

func writeArtifact(w http.ResponseWriter, format string, artifacts map[string][]byte, graphHash string, hit bool) {
	data := artifacts[format]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Graph-Hash", graphHash)
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// =============================================================================
// Stored diagrams
// =============================================================================

// summary is the list view of a stored document.
type summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Actors    int       `json:"actors"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func summarize(doc storage.Document) summary {
	sm := summary{ID: doc.ID, Name: doc.Name, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}
	if doc.Diagram != nil {
		sm.Actors = len(doc.Diagram.Actors)
		sm.Messages = len(doc.Diagram.Messages)
	}
	return sm
}

// buildDocument parses and projects the request into a document.
func (s *Server) buildDocument(w http.ResponseWriter, r *http.Request) (*storage.Document, error) {
	req, err := readRequest(w, r)
	if err != nil {
		return nil, err
	}
	d, err := s.runner.Parse(r.Context(), req.Source)
	if err != nil {
		return nil, err
	}
	return &storage.Document{
		Name:    req.Name,
		Source:  req.Source,
		Diagram: d,
		Graph:   s.runner.Project(r.Context(), d, s.options()),
	}, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.buildDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/diagrams/%s", doc.ID))
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	docs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]summary, len(docs))
	for i, d := range docs {
		out[i] = summarize(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagrams": out})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.buildDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc.ID = existing.ID
	if doc.Name == "" {
		doc.Name = existing.Name
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rendered, err := s.runner.RenderWithCacheInfo(r.Context(), doc.Graph, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, opts.Formats[0], rendered.Artifacts, rendered.GraphHash, rendered.Hit)
}
