package iso19139

import (
	"strings"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

// fieldRule fills one scalar field from the first node matching path.
// When attr is set the attribute value is used instead of the text.
type fieldRule struct {
	field    string
	path     string
	attr     string
	required bool
	set      func(r *domain.Record, v string)
}

// listRule fills a list field from every node matching path.
type listRule struct {
	field string
	path  string
	attr  string
	add   func(r *domain.Record, v string)
}

// blockRule fills fields that need more than one lookup per source block.
type blockRule struct {
	field string
	apply func(root *xmltree.Node, r *domain.Record)
}

var fieldRules = []fieldRule{
	{
		field:    "uuid",
		path:     "gmd:fileIdentifier > gco:CharacterString",
		required: true,
		set:      func(r *domain.Record, v string) { r.UUID = v },
	},
	{
		field: "parentUuid",
		path:  "gmd:parentIdentifier > gco:CharacterString",
		set:   func(r *domain.Record, v string) { r.ParentUUID = &v },
	},
	{
		field: "title",
		path:  "gmd:identificationInfo gmd:citation gmd:title gco:CharacterString",
		set:   func(r *domain.Record, v string) { r.Title = v },
	},
	{
		field: "abstract",
		path:  "gmd:identificationInfo gmd:abstract gco:CharacterString",
		set:   func(r *domain.Record, v string) { r.Abstract = v },
	},
	{
		field: "purpose",
		path:  "gmd:identificationInfo gmd:purpose gco:CharacterString",
		set:   func(r *domain.Record, v string) { r.Purpose = &v },
	},
	{
		field: "type",
		path:  "gmd:hierarchyLevel gmd:MD_ScopeCode",
		attr:  "codeListValue",
		set:   func(r *domain.Record, v string) { r.Type = v },
	},
	{
		field: "spatialRepresentationType",
		path:  "gmd:spatialRepresentationType gmd:MD_SpatialRepresentationTypeCode",
		attr:  "codeListValue",
		set:   func(r *domain.Record, v string) { r.SpatialRepresentationType = &v },
	},
}

var listRules = []listRule{
	{
		field: "keywords",
		path:  "gmd:identificationInfo gmd:keyword gco:CharacterString",
		add:   func(r *domain.Record, v string) { r.Keywords = append(r.Keywords, v) },
	},
}

var blockRules = []blockRule{
	{field: "owner/publisher", apply: extractContacts},
	{field: "dates", apply: extractDates},
	{field: "constraints", apply: extractConstraints},
	{field: "graphics", apply: extractGraphics},
	{field: "spec", apply: extractServiceSpec},
	{field: "crs", apply: extractCRS},
	{field: "bbox", apply: extractBBox},
	{field: "protocol/url/layer", apply: extractOnlineResource},
	{field: "distributionFormats", apply: extractDistributionFormats},
}

// value reads a node's attribute or trimmed text.
func value(n *xmltree.Node, attr string) string {
	if attr == "" {
		return n.TrimmedText()
	}
	v, _ := n.Attr(attr)
	return strings.TrimSpace(v)
}
