package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/causeway/pkg/errors"
)

const dot = "digraph G {\n  \"a\" -> \"b\";\n}\n"

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"dot", "SVG", "png", "pdf"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ParseFormat(gif) error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
}

func TestFromDOT(t *testing.T) {
	ctx := context.Background()
	out, err := FromDOT(ctx, dot, FormatDOT)
	if err != nil || string(out) != dot {
		t.Errorf("FromDOT(dot) = %q, %v", out, err)
	}

	svg, err := FromDOT(ctx, dot, FormatSVG)
	if err != nil {
		t.Fatalf("FromDOT(svg) error = %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("svg header not normalized:\n%s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="x"><g/></svg>`)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got := string(normalizeViewBox(in)); got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() changed an svg without viewBox: %s", got)
	}
}

func TestContentType(t *testing.T) {
	if got := FormatSVG.ContentType(); got != "image/svg+xml" {
		t.Errorf("ContentType() = %q", got)
	}
}
