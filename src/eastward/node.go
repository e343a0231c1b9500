package eastward

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Node is one manifest entry. Parent is a path, not a pointer: the manifest
// may reference a parent before it has been defined.
type Node struct {
	Path   string
	Name   string
	Parent string
	Type   string

	// FilePath is the output path relative to the extraction root. It is only
	// meaningful when Extractable is set.
	FilePath    string
	Extractable bool

	Tags        []string
	Properties  map[string]any
	ObjectFiles map[string]any
	DeployMeta  map[string]any
	Dependency  map[string]any

	Children map[string]*Node
}

// ObjectFile returns the raw resource path stored under key, or "".
func (n *Node) ObjectFile(key string) string {
	s, _ := n.ObjectFiles[key].(string)
	return s
}

// Property returns the property stored under key.
func (n *Node) Property(key string) any {
	return n.Properties[key]
}

// ChildNames returns the names of n's children, sorted.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitPath returns the last segment of p and everything before it.
func SplitPath(p string) (name, parent string) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return p, ""
	}
	return p[i+1:], p[:i]
}

// LoadManifest loads the asset library at p, preferring its packed variant,
// and merges its entries into the node table.
func (g *Graph) LoadManifest(p string) error {
	data, err := g.LoadPackedOrJSON(p+PackedSuffix, p)
	if err != nil {
		return fmt.Errorf("load manifest %s: %w", p, err)
	}
	if data == nil {
		return fmt.Errorf("manifest %s not found", p)
	}
	index, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("manifest %s: top level is %T, want object", p, data)
	}
	return g.AddManifest(index)
}

// AddManifest merges decoded manifest entries into the node table. Entries
// may appear in any order; parents referenced before their own entry are
// created empty and filled in when it arrives.
func (g *Graph) AddManifest(index map[string]any) error {
	paths := make([]string, 0, len(index))
	for p := range index {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		rec, ok := index[p].(map[string]any)
		if !ok {
			return fmt.Errorf("manifest entry %s is %T, want object", p, index[p])
		}

		n := g.affirm(p)
		n.Type, _ = rec["type"].(string)
		if fp, ok := rec["filePath"].(string); ok {
			n.FilePath, n.Extractable = fp, true
		} else {
			n.FilePath, n.Extractable = "", false
		}
		n.Tags = stringList(rec["tags"])
		n.Properties = table(rec["properties"])
		n.ObjectFiles = table(rec["objectFiles"])
		n.DeployMeta = table(rec["deployMeta"])
		n.Dependency = table(rec["dependency"])

		if n.Parent != "" {
			parent := g.affirm(n.Parent)
			parent.Children[n.Name] = n
		}
	}

	log.Debug().Int("entries", len(paths)).Int("nodes", len(g.nodes)).Msg("manifest loaded")
	return nil
}

func (g *Graph) affirm(p string) *Node {
	if n, ok := g.nodes[p]; ok {
		return n
	}
	name, parent := SplitPath(p)
	n := &Node{Path: p, Name: name, Parent: parent, Children: make(map[string]*Node)}
	g.nodes[p] = n
	return n
}

// Node returns the node at path, or nil.
func (g *Graph) Node(p string) *Node {
	return g.nodes[p]
}

// Nodes returns every node, sorted by path.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// NodesOfType returns the nodes whose type is typ, sorted by path.
func (g *Graph) NodesOfType(typ string) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// table normalises an empty or missing property table to nil.
func table(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	return m
}

func stringList(v any) []string {
	l, ok := v.([]any)
	if !ok || len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, s := range l {
		if str, ok := s.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
