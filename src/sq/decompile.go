package sq

import "strings"

// Decompile renders the tree as indented script text, one tab per level.
// Only the children of a root node are rendered.
func Decompile(root *Node) string {
	var sb strings.Builder
	if root == nil || root.Type != TypeRoot {
		return ""
	}
	for _, c := range root.Children {
		writeNode(&sb, c, 0)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("\t", depth)

	var line strings.Builder
	switch n.Type {
	case TypeLabel:
		line.WriteString(indent + "!" + n.ID + "\n")
	case TypeContext:
		line.WriteString(indent + "@" + strings.Join(n.Names, ",") + "\n")
	case TypeTag:
		tokens := make([]string, 0, len(n.Tags))
		for _, t := range n.Tags {
			tok := "#" + t.Name
			if t.Param != "" {
				tok += "(" + t.Param + ")"
			}
			tokens = append(tokens, tok)
		}
		line.WriteString(indent + strings.Join(tokens, " ") + "\n")
	case TypeDirective:
		line.WriteString(indent + "$" + n.Name)
		if n.HasValue {
			line.WriteString(":" + n.Value)
		}
		line.WriteString("\n")
	case TypeAction:
		writeAction(&line, n, indent)
	}

	out := line.String()
	if len(n.InlineDirectives) > 0 {
		tokens := make([]string, 0, len(n.InlineDirectives))
		for _, d := range n.InlineDirectives {
			tokens = append(tokens, "$"+d.Name+"("+d.Value+")")
		}
		out = strings.TrimRight(out, " \t\r\n") + " //" + strings.Join(tokens, " ") + "\n"
	}
	sb.WriteString(out)

	for _, c := range n.Children {
		writeNode(sb, c, depth+1)
	}
}

func writeAction(line *strings.Builder, n *Node, indent string) {
	line.WriteString(indent)
	if n.Sub {
		line.WriteString(".")
	}
	line.WriteString(n.Name)

	if n.LineCount <= 1 {
		if len(n.Args) > 0 {
			line.WriteString(" " + strings.Join(n.Args, " "))
		}
		line.WriteString("\n")
		return
	}

	if len(n.Args) > 0 {
		line.WriteString(" " + n.Args[0])
	}
	line.WriteString(":\n")
	for i := 1; i < len(n.Args); i++ {
		line.WriteString(indent + "\t" + n.Args[i] + "\n")
	}
}

// Localize returns a copy of the tree in which every speech action under an
// "id" directive has its arguments replaced by the translated lines, when
// translate knows the id. The input tree is not modified.
func Localize(root *Node, translate func(id string) (string, bool)) *Node {
	return localize(root, "", translate)
}

func localize(n *Node, directive string, translate func(string) (string, bool)) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Names = append([]string(nil), n.Names...)
	cp.Tags = append([]Tag(nil), n.Tags...)
	cp.Args = append([]string(nil), n.Args...)
	cp.InlineDirectives = append([]InlineDirective(nil), n.InlineDirectives...)

	if n.Type == TypeDirective && n.Name == DirectiveID {
		directive = n.Value
	}
	if n.IsSpeech() && directive != "" {
		if text, ok := translate(directive); ok && text != "" {
			cp.Args = strings.Split(text, "\n")
		}
	}

	cp.Children = nil
	for _, c := range n.Children {
		cp.Children = append(cp.Children, localize(c, directive, translate))
	}
	return &cp
}
