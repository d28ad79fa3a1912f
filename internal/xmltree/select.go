package xmltree

import "strings"

type step struct {
	name  string
	child bool
}

// compile splits a selector into steps. "a b" is a descendant step,
// "a > b" a child step. "*" matches any element.
func compile(selector string) []step {
	var steps []step
	child := false
	for _, tok := range strings.Fields(selector) {
		if tok == ">" {
			child = true
			continue
		}
		steps = append(steps, step{name: tok, child: child})
		child = false
	}
	return steps
}

// Find returns the first element matching selector below n, in document order.
func (n *Node) Find(selector string) *Node {
	all := n.FindAll(selector)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every element matching selector below n, in document order
// and without duplicates.
func (n *Node) FindAll(selector string) []*Node {
	steps := compile(selector)
	if len(steps) == 0 {
		return nil
	}

	current := []*Node{n}
	for _, s := range steps {
		seen := make(map[*Node]bool)
		var next []*Node
		for _, ctx := range current {
			if s.child {
				for _, c := range ctx.Children {
					if c.matches(s.name) && !seen[c] {
						seen[c] = true
						next = append(next, c)
					}
				}
				continue
			}
			ctx.walk(func(d *Node) {
				if d.matches(s.name) && !seen[d] {
					seen[d] = true
					next = append(next, d)
				}
			})
		}
		if len(next) == 0 {
			return nil
		}
		current = next
	}
	return current
}

// FindText returns the trimmed text of the first match, or "" when absent.
func (n *Node) FindText(selector string) string {
	if m := n.Find(selector); m != nil {
		return m.TrimmedText()
	}
	return ""
}

// FindAttr returns an attribute of the first match, or "" when absent.
func (n *Node) FindAttr(selector, attr string) string {
	if m := n.Find(selector); m != nil {
		v, _ := m.Attr(attr)
		return strings.TrimSpace(v)
	}
	return ""
}

// walk visits every descendant element of n in document order, excluding n.
func (n *Node) walk(fn func(*Node)) {
	for _, c := range n.Children {
		if !c.IsElement() {
			continue
		}
		fn(c)
		c.walk(fn)
	}
}

func (n *Node) matches(name string) bool {
	return n.IsElement() && (name == "*" || n.Name == name)
}
