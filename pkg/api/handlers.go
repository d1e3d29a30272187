package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/causeway/pkg/buildinfo"
	"github.com/matzehuels/causeway/pkg/cache"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/httputil"
	"github.com/matzehuels/causeway/pkg/impact"
	cio "github.com/matzehuels/causeway/pkg/io"
	"github.com/matzehuels/causeway/pkg/pipeline"
	"github.com/matzehuels/causeway/pkg/render"
	"github.com/matzehuels/causeway/pkg/render/nodelink"
)

// ModelRef names the model of a request. Exactly one field must be set.
type ModelRef struct {
	Model     json.RawMessage `json:"model,omitempty"`
	ModelID   string          `json:"model_id,omitempty" validate:"omitempty,hexadecimal,len=64"`
	ModelName string          `json:"model_name,omitempty" validate:"omitempty,max=200"`
	Refresh   bool            `json:"refresh,omitempty"`
}

// QueryRequest is the body of /v1/impact and /v1/identify.
type QueryRequest struct {
	ModelRef
	impact.Query
}

// CounterfactualRequest is the body of /v1/counterfactual.
type CounterfactualRequest struct {
	ModelRef
	pipeline.CounterfactualQuery
}

// DoorsRequest is the body of /v1/doors.
type DoorsRequest struct {
	ModelRef
	pipeline.DoorsQuery
}

// DSepRequest is the body of /v1/dsep.
type DSepRequest struct {
	ModelRef
	pipeline.DSepQuery
}

// RenderRequest is the body of /v1/render.
type RenderRequest struct {
	ModelRef
	Format      string   `json:"format,omitempty" validate:"omitempty,oneof=dot svg png pdf"`
	Detailed    bool     `json:"detailed,omitempty"`
	HideLatents bool     `json:"hide_latents,omitempty"`
	On          []string `json:"on,omitempty"`
	Doing       []string `json:"doing,omitempty"`
	Knowing     []string `json:"knowing,omitempty"`
	Adjust      []string `json:"adjust,omitempty"`
}

// Response wraps every query answer with the id of the model it used.
type Response[T any] struct {
	ModelID string `json:"model_id"`
	Result  T      `json:"result"`
}

// ModelInfo describes a stored model.
type ModelInfo struct {
	ModelID  string   `json:"model_id"`
	Name     string   `json:"name,omitempty"`
	Observed []string `json:"observed"`
	Latents  []string `json:"latents"`
	Summary  string   `json:"summary"`
}

type tenant struct {
	ID string `validate:"max=64,printascii,excludesall=/\\:. "`
}

// runnerFor scopes the cache of the shared runner to the request's tenant.
func (s *Server) runnerFor(r *http.Request) (*pipeline.Runner, error) {
	id := r.Header.Get(HeaderTenant)
	if id == "" {
		return s.runner, nil
	}
	if err := errors.ValidateStruct(tenant{ID: id}); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid %s header", HeaderTenant)
	}
	scoped := *s.runner
	scoped.Keyer = cache.NewScopedKeyer(s.runner.Keyer, "tenant:"+id)
	return &scoped, nil
}

// decode reads req and resolves the model ref embedded in it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any, ref *ModelRef) (*pipeline.Runner, *pipeline.Model, error) {
	if err := httputil.DecodeJSON(w, r, req, s.opts.MaxBodyBytes); err != nil {
		return nil, nil, err
	}
	runner, err := s.runnerFor(r)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.resolve(r.Context(), runner, *ref)
	if err != nil {
		return nil, nil, err
	}
	return runner, m, nil
}

func (s *Server) resolve(ctx context.Context, runner *pipeline.Runner, ref ModelRef) (*pipeline.Model, error) {
	n := 0
	for _, set := range []bool{len(ref.Model) > 0, ref.ModelID != "", ref.ModelName != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "exactly one of model, model_id and model_name is required")
	}

	switch {
	case len(ref.Model) > 0:
		return runner.LoadModel(ctx, pipeline.Source{Data: ref.Model, Format: cio.FormatJSON})
	case ref.ModelID != "":
		return runner.ModelByHash(ctx, strings.ToLower(ref.ModelID))
	default:
		return s.namedModel(ctx, runner, ref.ModelName)
	}
}

// namedModel loads <ModelsDir>/<name>.{yaml,yml,json,toml}.
func (s *Server) namedModel(ctx context.Context, runner *pipeline.Runner, name string) (*pipeline.Model, error) {
	if s.opts.ModelsDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "model_name needs a server models directory")
	}
	if err := errors.ValidatePath(name); err != nil {
		return nil, err
	}
	for _, ext := range []string{".yaml", ".yml", ".json", ".toml"} {
		path := filepath.Join(s.opts.ModelsDir, name+ext)
		if _, err := os.Stat(path); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "model %q", name)
		}
		return runner.LoadModel(ctx, pipeline.Source{Path: path})
	}
	return nil, errors.New(errors.ErrCodeNotFound, "model %q not found", name)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

// handleStoreModel accepts a model document in JSON, YAML or TOML, chosen
// by Content-Type, and keeps it for later queries by id.
func (s *Server) handleStoreModel(w http.ResponseWriter, r *http.Request) {
	data, err := httputil.ReadBody(w, r, s.opts.MaxBodyBytes)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	runner, err := s.runnerFor(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := runner.LoadModel(r.Context(), pipeline.Source{Data: data, Format: formatOf(r)})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := runner.StoreModel(r.Context(), m); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ModelInfo{
		ModelID:  m.Hash,
		Name:     m.Name,
		Observed: m.Observed().Sorted(),
		Latents:  m.Latents().Sorted(),
		Summary:  m.String(),
	})
}

func formatOf(r *http.Request) cio.Format {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "yaml"):
		return cio.FormatYAML
	case strings.Contains(ct, "toml"):
		return cio.FormatTOML
	default:
		return cio.FormatJSON
	}
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	runner, err := s.runnerFor(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := runner.ModelByHash(r.Context(), strings.ToLower(chi.URLParam(r, "id")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := cio.WriteGraphJSON(m.Model, w); err != nil {
		s.logger.Error("write graph", "err", err)
	}
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, hit, err := runner.ImpactWithCacheInfo(r.Context(), m, req.Query, pipeline.Options{Refresh: req.Refresh})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	httputil.WriteJSON(w, http.StatusOK, Response[*pipeline.ImpactResult]{ModelID: m.Hash, Result: res})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, hit, err := runner.IdentifyWithCacheInfo(r.Context(), m, req.Query, pipeline.Options{Refresh: req.Refresh})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	httputil.WriteJSON(w, http.StatusOK, Response[*pipeline.IdentifyResult]{ModelID: m.Hash, Result: res})
}

func (s *Server) handleCounterfactual(w http.ResponseWriter, r *http.Request) {
	var req CounterfactualRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, hit, err := runner.CounterfactualWithCacheInfo(r.Context(), m, req.CounterfactualQuery, pipeline.Options{Refresh: req.Refresh})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	httputil.WriteJSON(w, http.StatusOK, Response[*pipeline.ImpactResult]{ModelID: m.Hash, Result: res})
}

func (s *Server) handleDoors(w http.ResponseWriter, r *http.Request) {
	var req DoorsRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := runner.Doors(r.Context(), m, req.DoorsQuery)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Response[*pipeline.DoorsResult]{ModelID: m.Hash, Result: res})
}

func (s *Server) handleDSep(w http.ResponseWriter, r *http.Request) {
	var req DSepRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := runner.DSep(r.Context(), m, req.DSepQuery)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Response[*pipeline.DSepResult]{ModelID: m.Hash, Result: res})
}

// handleRender answers with the diagram itself, not a JSON envelope.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	runner, m, err := s.decode(w, r, &req, &req.ModelRef)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := render.FormatSVG
	if req.Format != "" {
		if format, err = render.ParseFormat(req.Format); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	opts := pipeline.RenderOptions{
		Format: format,
		Options: nodelink.Options{
			Detailed:    req.Detailed,
			HideLatents: req.HideLatents,
			On:          req.On,
			Doing:       req.Doing,
			Knowing:     req.Knowing,
			Adjust:      req.Adjust,
		},
	}
	data, hit, err := runner.RenderWithCacheInfo(r.Context(), m, opts, req.Refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cacheHeader(w, hit)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
