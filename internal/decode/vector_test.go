package decode_test

import (
	"errors"
	"testing"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/decode"
	"github.com/artbyte/assetcache/internal/models"
	"github.com/artbyte/assetcache/internal/testutil"
)

func TestSVGVector_Decode(t *testing.T) {
	d := decode.NewSVGVector()

	artifact, err := d.Decode([]byte(testutil.SVG), models.RenderParams{Width: 48, Height: 48})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if artifact.IntrinsicWidth != 24 || artifact.IntrinsicHeight != 24 {
		t.Fatalf("Expected intrinsic 24x24, got %vx%v", artifact.IntrinsicWidth, artifact.IntrinsicHeight)
	}
	if artifact.Params.Width != 48 {
		t.Fatal("Expected render params to be recorded on the artifact")
	}
	// <g> with <circle> and <path> inside.
	if got := artifact.Scene.NodeCount(); got != 3 {
		t.Fatalf("Expected 3 scene nodes, got %d", got)
	}
}

func TestSVGVector_IntrinsicSizeFromViewBox(t *testing.T) {
	d := decode.NewSVGVector()

	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`
	artifact, err := d.Decode([]byte(svg), models.RenderParams{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if artifact.IntrinsicWidth != 100 || artifact.IntrinsicHeight != 50 {
		t.Fatalf("Expected viewBox fallback 100x50, got %vx%v", artifact.IntrinsicWidth, artifact.IntrinsicHeight)
	}
}

func TestSVGVector_PxUnits(t *testing.T) {
	d := decode.NewSVGVector()

	svg := `<svg width="32px" height="16px"></svg>`
	artifact, err := d.Decode([]byte(svg), models.RenderParams{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if artifact.IntrinsicWidth != 32 || artifact.IntrinsicHeight != 16 {
		t.Fatalf("Expected 32x16, got %vx%v", artifact.IntrinsicWidth, artifact.IntrinsicHeight)
	}
}

func TestSVGVector_Malformed(t *testing.T) {
	d := decode.NewSVGVector()

	cases := []struct {
		name string
		data string
	}{
		{"not xml", "not markup at all"},
		{"unclosed tag", `<svg><g>`},
		{"wrong root", `<html><body/></html>`},
		{"empty", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := d.Decode([]byte(c.data), models.RenderParams{})
			if !errors.Is(err, &apperrors.DecodeError{}) {
				t.Fatalf("Expected DecodeError, got %v", err)
			}
		})
	}
}

func TestSVGVector_NestedChildren(t *testing.T) {
	d := decode.NewSVGVector()

	svg := `<svg width="10" height="10"><g id="outer"><g id="inner"><path d="M0 0"/></g></g></svg>`
	artifact, err := d.Decode([]byte(svg), models.RenderParams{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(artifact.Scene.Nodes) != 1 {
		t.Fatalf("Expected 1 top-level node, got %d", len(artifact.Scene.Nodes))
	}
	outer := artifact.Scene.Nodes[0]
	if outer.Attrs["id"] != "outer" || len(outer.Children) != 1 {
		t.Fatalf("Unexpected outer node: %+v", outer)
	}
	if got := artifact.Scene.NodeCount(); got != 3 {
		t.Fatalf("Expected 3 nodes total, got %d", got)
	}
}
