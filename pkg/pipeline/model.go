package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/causeway/pkg/cache"
	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/errors"
	cio "github.com/matzehuels/causeway/pkg/io"
	"github.com/matzehuels/causeway/pkg/observability"
)

// Source is a model document, either a file or in-memory bytes.
type Source struct {
	Path string
	Data []byte
	// Format defaults to the extension of Path, then to JSON.
	Format cio.Format
	// Name overrides the name stored in the document.
	Name string
}

// LoadModel parses a model document and hashes its canonical form. Two
// documents describing the same model hash alike whatever their format.
func (r *Runner) LoadModel(ctx context.Context, src Source) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, format, err := src.read()
	if err != nil {
		return nil, err
	}
	f, err := cio.Read(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	m, err := f.Model()
	if err != nil {
		return nil, err
	}
	hash, err := modelHash(m)
	if err != nil {
		return nil, err
	}

	name := src.Name
	if name == "" {
		name = f.Name
	}
	if name == "" && src.Path != "" {
		name = strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	}
	r.Logger.Debug("loaded model", "name", name, "hash", hash[:12], "model", m)
	return &Model{Model: m, Name: name, Hash: hash}, nil
}

func (s Source) read() ([]byte, cio.Format, error) {
	format := s.Format
	if s.Path == "" {
		if len(s.Data) == 0 {
			return nil, "", errors.New(errors.ErrCodeInvalidArgument, "no model given")
		}
		if format == "" {
			format = cio.FormatJSON
		}
		return s.Data, format, nil
	}

	if format == "" {
		var err error
		if format, err = cio.FormatFromPath(s.Path); err != nil {
			return nil, "", err
		}
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", s.Path)
		}
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", s.Path)
	}
	return data, format, nil
}

// canonical returns the JSON document of m without a name.
func canonical(m *causal.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := cio.WriteModel(m, "", &buf, cio.FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func modelHash(m *causal.Model) (string, error) {
	data, err := canonical(m)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// StoreModel keeps the canonical document of m in the cache so later calls
// can refer to it by hash.
func (r *Runner) StoreModel(ctx context.Context, m *Model) error {
	data, err := canonical(m.Model)
	if err != nil {
		return err
	}
	if err := r.Cache.Set(ctx, r.Keyer.ModelKey(m.Hash), data, cache.TTLModel); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store model %s", m.Hash)
	}
	observability.Cache().OnCacheSet(ctx, keyModel, len(data))
	return nil
}

// ModelByHash returns a model stored with [Runner.StoreModel].
func (r *Runner) ModelByHash(ctx context.Context, hash string) (*Model, error) {
	data, hit, err := r.Cache.Get(ctx, r.Keyer.ModelKey(hash))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load model %s", hash)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyModel)
		return nil, errors.New(errors.ErrCodeNotFound, "model %s not found", hash)
	}
	observability.Cache().OnCacheHit(ctx, keyModel)
	m, err := cio.Parse(data, cio.FormatJSON)
	if err != nil {
		return nil, err
	}
	return &Model{Model: m, Hash: hash}, nil
}
