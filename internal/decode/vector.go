package decode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/artbyte/assetcache/internal/apperrors"
	"github.com/artbyte/assetcache/internal/models"
)

// SVGVector parses SVG markup into a scene graph. Only structure and
// attributes are extracted; rasterization is the presentation layer's job.
type SVGVector struct{}

// NewSVGVector creates the default vector decoder.
func NewSVGVector() *SVGVector {
	return &SVGVector{}
}

// Decode implements Vector. The intrinsic size comes from the document's
// width/height attributes, falling back to the viewBox dimensions. The
// rendering parameters are recorded on the artifact since the drawable
// output depends on them.
func (d *SVGVector) Decode(data []byte, params models.RenderParams) (*models.VectorArtifact, error) {
	scene, err := parseSVG(data)
	if err != nil {
		return nil, apperrors.NewDecodeError("vector", err)
	}

	w, h := scene.Width, scene.Height
	if w == 0 && scene.HasViewBox {
		w = scene.ViewBox[2]
	}
	if h == 0 && scene.HasViewBox {
		h = scene.ViewBox[3]
	}

	return &models.VectorArtifact{
		IntrinsicWidth:  w,
		IntrinsicHeight: h,
		Scene:           scene,
		Params:          params,
	}, nil
}

func parseSVG(data []byte) (*models.Scene, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	// Find the document element, skipping prologue tokens.
	var root xml.StartElement
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("no document element")
			}
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			root = start
			break
		}
	}
	if root.Name.Local != "svg" {
		return nil, fmt.Errorf("document element is <%s>, expected <svg>", root.Name.Local)
	}

	scene := &models.Scene{}
	for _, attr := range root.Attr {
		switch attr.Name.Local {
		case "width":
			scene.Width = parseLength(attr.Value)
		case "height":
			scene.Height = parseLength(attr.Value)
		case "viewBox":
			if vb, ok := parseViewBox(attr.Value); ok {
				scene.ViewBox = vb
				scene.HasViewBox = true
			}
		}
	}

	nodes, err := parseChildren(dec)
	if err != nil {
		return nil, err
	}
	scene.Nodes = nodes
	return scene, nil
}

// parseChildren consumes tokens until the enclosing element closes, building
// the subtree of drawable nodes.
func parseChildren(dec *xml.Decoder) ([]models.SceneNode, error) {
	var nodes []models.SceneNode
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nodes, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := models.SceneNode{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, attr := range t.Attr {
				node.Attrs[attr.Name.Local] = attr.Value
			}
			children, err := parseChildren(dec)
			if err != nil {
				return nil, err
			}
			node.Children = children
			nodes = append(nodes, node)
		case xml.EndElement:
			return nodes, nil
		}
	}
}

// parseLength reads an SVG length, tolerating a "px" unit suffix. Other units
// and malformed values yield 0 (size then falls back to the viewBox).
func parseLength(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseViewBox(s string) ([4]float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	var vb [4]float64
	if len(fields) != 4 {
		return vb, false
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return vb, false
		}
		vb[i] = v
	}
	return vb, true
}
