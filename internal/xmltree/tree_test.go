package xmltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<csw:Results xmlns:csw="http://www.opengis.net/cat/csw/2.0.2" xmlns:gmd="http://www.isotc211.org/2005/gmd">
  <gmd:MD_Metadata>
    <gmd:title>First &amp; best</gmd:title>
    <gmd:citation><gmd:title> Nested </gmd:title></gmd:citation>
    <gmd:code codeListValue="otherRestrictions"/>
  </gmd:MD_Metadata>
  <gmd:MD_Metadata xmlns:xlink="http://www.w3.org/1999/xlink">
    <gmd:title>Second</gmd:title>
    <gmd:anchor xlink:href="http://example.com/a?b=1&amp;c=2">link</gmd:anchor>
  </gmd:MD_Metadata>
</csw:Results>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "csw:Results", root.Name)
	assert.Len(t, root.FindAll("gmd:MD_Metadata"), 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"text only", "just text"},
		{"unclosed", "<a><b></b>"},
		{"mismatched", "<a></b>"},
		{"unsupported charset", `<?xml version="1.0" encoding="ISO-8859-1"?><a/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestFind_DocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	titles := doc.FindAll("gmd:MD_Metadata gmd:title")
	require.Len(t, titles, 3)
	assert.Equal(t, "First & best", titles[0].TrimmedText())
	assert.Equal(t, "Nested", titles[1].TrimmedText())
	assert.Equal(t, "Second", titles[2].TrimmedText())
}

func TestFind_ChildCombinator(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	direct := doc.FindAll("gmd:MD_Metadata > gmd:title")
	assert.Len(t, direct, 2)
	assert.Equal(t, "Nested", doc.FindText("gmd:citation > gmd:title"))
	assert.Nil(t, doc.Find("csw:Results > gmd:title"))
}

func TestFind_Missing(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Nil(t, doc.Find("gmd:nothing"))
	assert.Empty(t, doc.FindText("gmd:nothing"))
	assert.Empty(t, doc.FindAttr("gmd:nothing", "codeListValue"))
	assert.Nil(t, doc.FindAll(""))
}

func TestFindAttr(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "otherRestrictions", doc.FindAttr("gmd:code", "codeListValue"))
	assert.Equal(t, "http://example.com/a?b=1&c=2", doc.FindAttr("gmd:anchor", "xlink:href"))
	assert.Empty(t, doc.FindAttr("gmd:code", "missing"))
}

func TestFind_Wildcard(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	children := doc.Root().FindAll("> *")
	assert.Len(t, children, 2)
}

func TestOuterXML_InheritsNamespaces(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	second := doc.FindAll("gmd:MD_Metadata")[1]
	out := string(second.OuterXML())

	assert.Contains(t, out, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
	assert.Contains(t, out, `xmlns:gmd="http://www.isotc211.org/2005/gmd"`)
	assert.Contains(t, out, `xmlns:csw="http://www.opengis.net/cat/csw/2.0.2"`)

	// The fragment parses on its own and keeps its content.
	frag, err := Parse(second.OuterXML())
	require.NoError(t, err)
	assert.Equal(t, "Second", frag.FindText("gmd:title"))
	assert.Equal(t, "http://example.com/a?b=1&c=2", frag.FindAttr("gmd:anchor", "xlink:href"))
}

func TestOuterXML_EmptyElement(t *testing.T) {
	doc, err := Parse([]byte(`<a xmlns:x="urn:x"><x:b k="v"/></a>`))
	require.NoError(t, err)

	assert.Equal(t, `<x:b k="v" xmlns:x="urn:x"/>`, string(doc.Find("x:b").OuterXML()))
}
