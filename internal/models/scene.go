package models

// Scene is a parsed vector document: the root of a tree of drawable nodes
// plus the size attributes declared on the document element.
type Scene struct {
	// Width and Height are the document's declared dimensions, 0 if absent.
	Width  float64
	Height float64

	// ViewBox is the declared view box (min-x, min-y, width, height).
	// HasViewBox reports whether one was declared.
	ViewBox    [4]float64
	HasViewBox bool

	// Nodes are the top-level drawable elements in document order.
	Nodes []SceneNode
}

// SceneNode is a single element of a vector scene graph. The cache layer
// treats it as an opaque handle; rendering is the presentation layer's job.
type SceneNode struct {
	Name     string
	Attrs    map[string]string
	Children []SceneNode
}

// NodeCount returns the total number of nodes in the scene, counting nested
// children. Mostly useful in tests and diagnostics.
func (s *Scene) NodeCount() int {
	n := 0
	for i := range s.Nodes {
		n += countNodes(&s.Nodes[i])
	}
	return n
}

func countNodes(node *SceneNode) int {
	n := 1
	for i := range node.Children {
		n += countNodes(&node.Children[i])
	}
	return n
}
