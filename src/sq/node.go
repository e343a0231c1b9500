// Package sq models dialogue scripts: a typed node tree with a
// reachability-pruned build into dialogue records and a text decompiler.
package sq

import (
	"errors"
	"fmt"

	"github.com/VriskaSerket51/eastward-go/src/value"
)

// Node types as they appear in script data.
const (
	TypeRoot      = "root"
	TypeAction    = "action"
	TypeContext   = "context"
	TypeDirective = "directive"
	TypeLabel     = "label"
	TypeTag       = "tag"
)

// DirectiveID is the directive naming the localization key of the lines under it.
const DirectiveID = "id"

// SpeakerPrefix is stripped from context names when building records.
const SpeakerPrefix = "CH_"

var speechActions = map[string]bool{"say": true, "shout": true, "emo": true}

// IsSpeech reports whether an action name produces a dialogue line.
func IsSpeech(name string) bool {
	return speechActions[name]
}

// ErrFormat is returned when script data is not a node object.
var ErrFormat = errors.New("malformed script data")

type Tag struct {
	Name  string
	Param string
}

type InlineDirective struct {
	Name  string
	Value string
}

// Node is one script element. Only the fields belonging to Type are set.
type Node struct {
	Type string

	File  string   // root
	ID    string   // label
	Names []string // context
	Tags  []Tag    // tag

	// action and directive
	Name      string
	Value     string
	HasValue  bool
	Args      []string
	LineCount int
	Sub       bool

	InlineDirectives []InlineDirective
	Children         []*Node
}

// IsSpeech reports whether n is a speech action.
func (n *Node) IsSpeech() bool {
	return n.Type == TypeAction && IsSpeech(n.Name)
}

// Parse builds a node tree from decoded JSON or MessagePack data.
func Parse(data any) (*Node, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: node is %T", ErrFormat, data)
	}

	n := &Node{Type: value.String(m["type"])}
	switch n.Type {
	case TypeRoot:
		n.File = value.String(m["file"])
	case TypeLabel:
		n.ID = value.String(m["id"])
	case TypeContext:
		n.Names = value.Strings(m["names"])
	case TypeTag:
		for _, t := range value.List(m["tags"]) {
			pair := value.List(t)
			var tag Tag
			if len(pair) > 0 {
				tag.Name = value.String(pair[0])
			}
			if len(pair) > 1 {
				tag.Param = value.String(pair[1])
			}
			n.Tags = append(n.Tags, tag)
		}
	case TypeDirective:
		n.Name = value.String(m["name"])
		if v, ok := m["value"]; ok && v != nil {
			n.Value, n.HasValue = value.String(v), true
		}
	case TypeAction:
		n.Name = value.String(m["name"])
		n.Args = value.Strings(m["args"])
		n.LineCount = value.Int(m["lineCount"])
		n.Sub, _ = m["sub"].(bool)
	}

	for _, d := range value.List(m["inlineDirectives"]) {
		dm, _ := d.(map[string]any)
		n.InlineDirectives = append(n.InlineDirectives, InlineDirective{Name: value.String(dm["name"]), Value: value.String(dm["value"])})
	}

	for i, c := range value.List(m["children"]) {
		child, err := Parse(c)
		if err != nil {
			return nil, fmt.Errorf("child %d of %s: %w", i, n.Type, err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
