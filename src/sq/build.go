package sq

import (
	"strings"
	"sync"
)

// Record is one entry of a built dialogue tree. A speech line carries
// Speaker, Directive and Fallback; any other action carries Type and Args.
type Record struct {
	Type      string    `json:"type,omitempty" msgpack:"type,omitempty"`
	File      string    `json:"file,omitempty" msgpack:"file,omitempty"`
	Speaker   string    `json:"speaker,omitempty" msgpack:"speaker,omitempty"`
	Directive string    `json:"directive,omitempty" msgpack:"directive,omitempty"`
	Fallback  string    `json:"fallback,omitempty" msgpack:"fallback,omitempty"`
	Args      []string  `json:"args,omitempty" msgpack:"args,omitempty"`
	Children  []*Record `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Needed computes, for every node under root, whether its subtree holds
// anything worth keeping in a build. Context and directive nodes are always
// needed, speech actions are needed, and any node with a needed child is
// needed.
func Needed(root *Node) map[*Node]bool {
	memo := make(map[*Node]bool)
	var fold func(n *Node) bool
	fold = func(n *Node) bool {
		keep := false
		for _, c := range n.Children {
			if fold(c) {
				keep = true
			}
		}
		switch n.Type {
		case TypeContext, TypeDirective:
			keep = true
		case TypeAction:
			keep = keep || IsSpeech(n.Name)
		}
		memo[n] = keep
		return keep
	}
	fold(root)
	return memo
}

// Script is a parsed script tree with a cached build.
type Script struct {
	Root *Node

	mu     sync.Mutex
	needed map[*Node]bool
	built  *Record
}

func NewScript(root *Node) *Script {
	return &Script{Root: root}
}

// Needed returns the need table of the tree, computing it once.
func (s *Script) Needed() map[*Node]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.neededLocked()
}

func (s *Script) neededLocked() map[*Node]bool {
	if s.needed == nil {
		s.needed = Needed(s.Root)
	}
	return s.needed
}

// Build returns the minimized record tree. The first result is cached and
// returned on later calls; force rebuilds and replaces the cache.
func (s *Script) Build(force bool) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.built != nil && !force {
		return s.built
	}
	b := builder{needed: s.neededLocked()}
	out := &Record{Type: TypeRoot, File: s.Root.File, Children: []*Record{}}
	for _, c := range s.Root.Children {
		if rec := b.build(c, nil, ""); rec != nil {
			out.Children = append(out.Children, rec)
		}
	}
	s.built = out
	return out
}

type builder struct {
	needed map[*Node]bool
}

// build returns the record n contributes to its parent's list, or nil. A
// speech action with a speaker always yields a record; any other node only
// when one of its children did.
func (b builder) build(n *Node, speakers []string, directive string) *Record {
	if !b.needed[n] {
		return nil
	}

	childSpeakers, childDirective := speakers, directive
	switch n.Type {
	case TypeContext:
		childSpeakers = n.Names
	case TypeDirective:
		if n.Name == DirectiveID {
			childDirective = n.Value
		}
	}

	rec := &Record{}
	talk := false
	switch {
	case n.IsSpeech():
		if who := speaker(speakers); who != "" {
			rec.Speaker = who
			rec.Directive = directive
			rec.Fallback = strings.Join(n.Args, "\n")
			talk = true
		}
	case n.Type == TypeAction:
		rec.Type = n.Name
		rec.Args = n.Args
	}

	for _, c := range n.Children {
		if child := b.build(c, childSpeakers, childDirective); child != nil {
			rec.Children = append(rec.Children, child)
		}
	}
	if !talk && len(rec.Children) == 0 {
		return nil
	}
	return rec
}

func speaker(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[len(names)-1], SpeakerPrefix)
}
