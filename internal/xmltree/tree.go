// Package xmltree parses XML into a small element tree that keeps element and
// attribute names exactly as written ("gmd:title", "xlink:href").
// Lookups match on the literal prefixed name. Selectors follow CSS
// combinator rules:
// "a b" matches b anywhere below a, "a > b" matches b directly under a.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Node is an element or a run of character data.
// Text nodes have an empty Name.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Node
	Parent   *Node

	data string
}

// Parse reads a complete document and returns a document node whose children
// are the top-level elements. Comments, processing instructions and
// directives are dropped.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = passthroughCharset

	doc := &Node{}
	cur := doc
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: qualified(t.Name), Parent: cur}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: qualified(a.Name)}, Value: a.Value})
			}
			cur.Children = append(cur.Children, n)
			cur = n
		case xml.EndElement:
			if cur == doc || cur.Name != qualified(t.Name) {
				return nil, fmt.Errorf("xmltree: unexpected end element %q", qualified(t.Name))
			}
			cur = cur.Parent
		case xml.CharData:
			if cur == doc {
				continue
			}
			cur.Children = append(cur.Children, &Node{Parent: cur, data: string(t)})
		}
	}

	if cur != doc {
		return nil, fmt.Errorf("xmltree: unclosed element %q", cur.Name)
	}
	if len(doc.Children) == 0 {
		return nil, fmt.Errorf("xmltree: no root element")
	}
	return doc, nil
}

// passthroughCharset accepts documents that declare a UTF-8 compatible encoding.
func passthroughCharset(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", charset)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// IsElement reports whether the node is an element (not text, not the document).
func (n *Node) IsElement() bool {
	return n.Name != ""
}

// Root returns the first top-level element of a document node.
func (n *Node) Root() *Node {
	for _, c := range n.Children {
		if c.IsElement() {
			return c
		}
	}
	return nil
}

// Attr returns the value of an attribute by its written name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the concatenated character data of the node and all its
// descendants.
func (n *Node) Text() string {
	if !n.IsElement() && n.Parent != nil {
		return n.data
	}
	var sb strings.Builder
	n.appendText(&sb)
	return sb.String()
}

func (n *Node) appendText(sb *strings.Builder) {
	for _, c := range n.Children {
		if c.IsElement() {
			c.appendText(sb)
		} else {
			sb.WriteString(c.data)
		}
	}
}

// TrimmedText returns Text with surrounding whitespace removed.
func (n *Node) TrimmedText() string {
	return strings.TrimSpace(n.Text())
}

// OuterXML serialises the element and its subtree. Namespace declarations
// made on ancestors are copied onto the element so the fragment stands alone.
func (n *Node) OuterXML() []byte {
	var buf bytes.Buffer

	declared := make(map[string]bool)
	for _, a := range n.Attrs {
		if isNamespaceDecl(a.Name.Local) {
			declared[a.Name.Local] = true
		}
	}
	var inherited []xml.Attr
	for p := n.Parent; p != nil; p = p.Parent {
		for _, a := range p.Attrs {
			if isNamespaceDecl(a.Name.Local) && !declared[a.Name.Local] {
				declared[a.Name.Local] = true
				inherited = append(inherited, a)
			}
		}
	}

	n.write(&buf, inherited)
	return buf.Bytes()
}

func (n *Node) write(buf *bytes.Buffer, extra []xml.Attr) {
	if !n.IsElement() {
		xml.EscapeText(buf, []byte(n.data)) //nolint:errcheck // bytes.Buffer writes do not fail
		return
	}

	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, attrs := range [][]xml.Attr{n.Attrs, extra} {
		for _, a := range attrs {
			buf.WriteByte(' ')
			buf.WriteString(a.Name.Local)
			buf.WriteString(`="`)
			xml.EscapeText(buf, []byte(a.Value)) //nolint:errcheck // bytes.Buffer writes do not fail
			buf.WriteByte('"')
		}
	}
	if len(n.Children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range n.Children {
		c.write(buf, nil)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
}

func isNamespaceDecl(name string) bool {
	return name == "xmlns" || strings.HasPrefix(name, "xmlns:")
}
