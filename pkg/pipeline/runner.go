package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/causeway/pkg/cache"
	"github.com/matzehuels/causeway/pkg/dsep"
	"github.com/matzehuels/causeway/pkg/errors"
	"github.com/matzehuels/causeway/pkg/identify"
	"github.com/matzehuels/causeway/pkg/impact"
	"github.com/matzehuels/causeway/pkg/nodeset"
	"github.com/matzehuels/causeway/pkg/observability"
	"github.com/matzehuels/causeway/pkg/render"
	"github.com/matzehuels/causeway/pkg/render/nodelink"
)

// Runner answers queries with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no per-query state. Multiple goroutines can safely use
// the same Runner.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Analyzer *impact.Analyzer
	// TTL overrides the default lifetime of cached answers when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Analyzer: impact.New(identify.Options{Logger: logger}),
	}
}

// WithInference replaces the analyzer with one using opts. A nil logger in
// opts is taken from the runner.
func (r *Runner) WithInference(opts identify.Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	r.Analyzer = impact.New(opts)
	return r
}

// ImpactWithCacheInfo answers q and reports whether the answer was cached.
// A query that is not identifiable is an answer, not an error: the result
// carries the hedge explanation and no distribution.
func (r *Runner) ImpactWithCacheInfo(ctx context.Context, m *Model, q impact.Query, opts Options) (*ImpactResult, bool, error) {
	ctx = log.WithContext(ctx, r.Logger)
	start := time.Now()
	observability.Query().OnQueryStart(ctx, KindImpact)

	key := r.Keyer.QueryKey(m.Hash, cache.QueryKeyOpts{
		Kind:    KindImpact,
		On:      sortedCopy(q.On),
		Doing:   sortedCopy(q.Doing),
		Knowing: sortedCopy(q.Knowing),
		Values:  q.Values,
	})
	res, hit, err := cached(ctx, r, keyQuery, key, r.ttl(cache.TTLQuery), opts.Refresh, func() (*ImpactResult, error) {
		out, err := r.Analyzer.CausalImpact(ctx, m.Model, q)
		if err != nil {
			return nil, err
		}
		return newImpactResult(m, out, q.On, q.Doing, q.Knowing, q.Values), nil
	})
	observability.Query().OnQueryComplete(ctx, KindImpact, routeOf(res), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("answered impact query", "route", res.Route, "cached", hit, "duration", time.Since(start))
	return res, hit, nil
}

// Impact is a convenience wrapper that calls ImpactWithCacheInfo and discards the cache hit info.
func (r *Runner) Impact(ctx context.Context, m *Model, q impact.Query, opts Options) (*ImpactResult, error) {
	res, _, err := r.ImpactWithCacheInfo(ctx, m, q, opts)
	return res, err
}

// IdentifyWithCacheInfo runs the do-calculus on q without the shortcut
// routes. A query that is not identifiable fails with a HEDGE error.
func (r *Runner) IdentifyWithCacheInfo(ctx context.Context, m *Model, q impact.Query, opts Options) (*IdentifyResult, bool, error) {
	ctx = log.WithContext(ctx, r.Logger)
	start := time.Now()
	observability.Query().OnQueryStart(ctx, KindIdentify)

	key := r.Keyer.QueryKey(m.Hash, cache.QueryKeyOpts{
		Kind:    KindIdentify,
		On:      sortedCopy(q.On),
		Doing:   sortedCopy(q.Doing),
		Knowing: sortedCopy(q.Knowing),
	})
	res, hit, err := cached(ctx, r, keyQuery, key, r.ttl(cache.TTLQuery), opts.Refresh, func() (*IdentifyResult, error) {
		if err := impact.Validate(m.Model, impact.Query{On: q.On, Doing: q.Doing, Knowing: q.Knowing}); err != nil {
			return nil, err
		}
		f, err := r.Analyzer.Identifier().DoCalculusWithObservation(ctx, m.Model,
			nodeset.Of(q.On...), nodeset.Of(q.Doing...), nodeset.Of(q.Knowing...))
		if err != nil {
			return nil, err
		}
		return &IdentifyResult{Query: f.LatexQuery(nil), Latex: f.ToLatex(), Outline: f.String()}, nil
	})
	route := "do-calculus"
	if errors.Is(err, errors.ErrCodeHedge) {
		route = "hedge"
	}
	observability.Query().OnQueryComplete(ctx, KindIdentify, route, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return res, hit, nil
}

// Identify is a convenience wrapper that calls IdentifyWithCacheInfo and discards the cache hit info.
func (r *Runner) Identify(ctx context.Context, m *Model, q impact.Query, opts Options) (*IdentifyResult, error) {
	res, _, err := r.IdentifyWithCacheInfo(ctx, m, q, opts)
	return res, err
}

// CounterfactualWithCacheInfo answers q on the twin model built from the
// observed profile.
func (r *Runner) CounterfactualWithCacheInfo(ctx context.Context, m *Model, q CounterfactualQuery, opts Options) (*ImpactResult, bool, error) {
	ctx = log.WithContext(ctx, r.Logger)
	start := time.Now()
	observability.Query().OnQueryStart(ctx, KindCounterfactual)

	key := r.Keyer.QueryKey(m.Hash, cache.QueryKeyOpts{
		Kind:    KindCounterfactual,
		On:      sortedCopy(q.On),
		Doing:   sortedCopy(q.WhatIf),
		Values:  q.Values,
		Profile: q.Profile,
	})
	res, hit, err := cached(ctx, r, keyQuery, key, r.ttl(cache.TTLQuery), opts.Refresh, func() (*ImpactResult, error) {
		out, err := r.Analyzer.Counterfactual(ctx, m.Model, q.Profile, q.On, q.WhatIf, q.Values)
		if err != nil {
			return nil, err
		}
		return newImpactResult(m, out, q.On, q.WhatIf, nil, q.Values), nil
	})
	observability.Query().OnQueryComplete(ctx, KindCounterfactual, routeOf(res), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	return res, hit, nil
}

// Counterfactual is a convenience wrapper that calls CounterfactualWithCacheInfo and discards the cache hit info.
func (r *Runner) Counterfactual(ctx context.Context, m *Model, q CounterfactualQuery, opts Options) (*ImpactResult, error) {
	res, _, err := r.CounterfactualWithCacheInfo(ctx, m, q, opts)
	return res, err
}

// Doors lists the minimal backdoor and frontdoor sets for q. Door searches
// are cheap and never cached.
func (r *Runner) Doors(ctx context.Context, m *Model, q DoorsQuery) (*DoorsResult, error) {
	start := time.Now()
	observability.Query().OnQueryStart(ctx, KindDoors)
	res, err := r.doors(ctx, m, q)
	observability.Query().OnQueryComplete(ctx, KindDoors, "", time.Since(start), err)
	return res, err
}

func (r *Runner) doors(ctx context.Context, m *Model, q DoorsQuery) (*DoorsResult, error) {
	if err := m.Check(q.Cause, q.Effect); err != nil {
		return nil, err
	}
	res := &DoorsResult{Cause: q.Cause, Effect: q.Effect, Backdoor: [][]string{}, Frontdoor: [][]string{}}
	for s, err := range m.BackDoors(q.Cause, q.Effect) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Backdoor = append(res.Backdoor, s.Sorted())
		if !q.All {
			break
		}
	}
	for s, err := range m.FrontDoors(q.Cause, q.Effect) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Frontdoor = append(res.Frontdoor, s.Sorted())
		if !q.All {
			break
		}
	}
	return res, nil
}

// DSep tests d-separation in the causal graph, latent variables included.
func (r *Runner) DSep(ctx context.Context, m *Model, q DSepQuery) (*DSepResult, error) {
	start := time.Now()
	observability.Query().OnQueryStart(ctx, KindDSep)

	x, y, z := nodeset.Of(q.X...), nodeset.Of(q.Y...), nodeset.Of(q.Z...)
	var sep bool
	var err error
	switch q.Through {
	case ThroughAll:
		sep, err = dsep.IsDSeparated(m.DAG(), x, y, z)
	case ThroughParents:
		sep, err = dsep.IsDSeparatedThroughParents(m.DAG(), x, y, z)
	case ThroughChildren:
		sep, err = dsep.IsDSeparatedThroughChildren(m.DAG(), x, y, z)
	default:
		err = errors.New(errors.ErrCodeInvalidArgument, "unknown separation variant %q", q.Through)
	}
	observability.Query().OnQueryComplete(ctx, KindDSep, q.Through, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &DSepResult{Separated: sep}, nil
}

// RenderWithCacheInfo draws the causal graph of m.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *Model, opts RenderOptions, refresh bool) ([]byte, bool, error) {
	start := time.Now()
	if opts.Format == "" {
		opts.Format = render.FormatSVG
	}
	key := r.Keyer.RenderKey(m.Hash, cache.RenderKeyOpts{
		Format:      string(opts.Format),
		Detailed:    opts.Detailed,
		HideLatents: opts.HideLatents,
		Highlight:   opts.highlight(),
	})
	if !refresh {
		if data, ok := r.lookup(ctx, keyRender, key); ok {
			return data, true, nil
		}
	}

	data, err := render.FromDOT(ctx, nodelink.ToDOT(m.Model, opts.Options), opts.Format)
	observability.Query().OnRenderComplete(ctx, string(opts.Format), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, keyRender, key, data, r.ttl(cache.TTLRender))
	r.Logger.Debug("rendered model", "format", opts.Format, "bytes", len(data), "duration", time.Since(start))
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m *Model, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, m, opts, false)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes data to the cache. Failures only cost a recomputation later.
func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// cached returns the JSON value stored under key, or computes and stores it.
func cached[T any](ctx context.Context, r *Runner, keyType, key string, ttl time.Duration, refresh bool, compute func() (T, error)) (T, bool, error) {
	if !refresh {
		if data, ok := r.lookup(ctx, keyType, key); ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				return v, true, nil
			}
			// Undecodable entry: fall through and overwrite it.
		}
	}
	v, err := compute()
	if err != nil {
		return v, false, err
	}
	if data, err := json.Marshal(v); err == nil {
		r.store(ctx, keyType, key, data, ttl)
	}
	return v, false, nil
}

func newImpactResult(m *Model, res *impact.Result, on, doing, knowing []string, values map[string]string) *ImpactResult {
	out := &ImpactResult{
		Explanation:  res.Explanation,
		Route:        Route(res.Explanation),
		Identified:   res.Identified(),
		Distribution: NewTable(res.Distribution),
	}
	f := res.Formula
	if f == nil {
		f = identify.NewFormula(m.Model, nil, on, doing, knowing)
	} else {
		out.Latex = f.ToLatex()
		out.Outline = f.String()
	}
	out.Query = f.LatexQuery(values)
	return out
}

func routeOf(res *ImpactResult) string {
	if res == nil {
		return ""
	}
	return res.Route
}
