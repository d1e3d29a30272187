package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/causeway/pkg/causal"
	"github.com/matzehuels/causeway/pkg/errors"
)

// Read decodes a model file from r. Unknown keys are rejected in every
// format so that typos do not silently drop latents or edits.
//
// Read does not close r.
func Read(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if extra := md.Undecoded(); len(extra) > 0 {
			keys := make([]string, len(extra))
			for i, k := range extra {
				keys[i] = k.String()
			}
			return nil, errors.New(errors.ErrCodeInvalidFormat, "decode toml: unknown keys %s", strings.Join(keys, ", "))
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported model format %q", format)
	}
	return &f, nil
}

// ReadModel decodes a model file from r and builds the model.
func ReadModel(r io.Reader, format Format) (*causal.Model, error) {
	f, err := Read(r, format)
	if err != nil {
		return nil, err
	}
	return f.Model()
}

// Parse is [ReadModel] over an in-memory document.
func Parse(data []byte, format Format) (*causal.Model, error) {
	return ReadModel(bytes.NewReader(data), format)
}

// Import reads the model file at path. The format comes from the extension.
func Import(path string) (*causal.Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	m, err := ReadModel(f, format)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidModel
		}
		return nil, errors.Wrap(code, err, "%s", path)
	}
	return m, nil
}
