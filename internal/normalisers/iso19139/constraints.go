package iso19139

import (
	"strings"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

const restrictionOther = "otherRestrictions"

// accessRewrites map a code fragment to the normalised value that replaces the
// whole access constraint. The first fragment found wins.
var accessRewrites = []struct{ contains, value string }{
	{"noLimitations", domain.AccessNoRestrictions},
	{"INSPIRE_Directive_Article13_1d", domain.AccessNorwayDigitalRestricted},
	{"INSPIRE_Directive_Article13_1e", domain.AccessRestricted},
}

// extractConstraints walks every gmd:resourceConstraints block. A use
// limitation or a use constraint ends the block; later blocks overwrite
// fields set by earlier ones.
func extractConstraints(root *xmltree.Node, r *domain.Record) {
	c := &r.Constraints
	for _, block := range root.FindAll("gmd:resourceConstraints") {
		if v := block.FindText("gmd:useLimitation gco:CharacterString"); v != "" {
			c.UseLimitation = ptr(v)
			continue
		}

		if code := block.FindAttr("gmd:accessConstraints gmd:MD_RestrictionCode", "codeListValue"); code != "" {
			if access := accessValue(block, code); access != "" {
				c.AccessConstraints = ptr(normaliseAccess(access))
			}
		}

		if code := block.FindAttr("gmd:useConstraints gmd:MD_RestrictionCode", "codeListValue"); code != "" {
			c.UseConstraints = ptr(code)
			c.UseConstraintsLink = nil
			c.UseConstraintsText = nil
			if anchor := block.Find("gmd:otherConstraints gmx:Anchor"); anchor != nil {
				c.UseConstraintsLink = optional(value(anchor, "xlink:href"))
				c.UseConstraintsText = optional(anchor.TrimmedText())
			}
			continue
		}

		if v := block.FindText("gmd:otherConstraints gco:CharacterString"); v != "" {
			c.OtherConstraints = ptr(v)
		}

		if code := block.FindAttr("gmd:MD_SecurityConstraints gmd:MD_ClassificationCode", "codeListValue"); code != "" {
			c.SecurityConstraints = ptr(code)
			if note := block.FindText("gmd:userNote gco:CharacterString"); note != "" {
				c.SecurityConstraintsNote = ptr(note)
			}
		}
	}
}

// accessValue resolves the access code of a block. otherRestrictions defers to
// the block's free text, then to its first anchor link.
func accessValue(block *xmltree.Node, code string) string {
	if code != restrictionOther {
		return code
	}
	nodes := block.FindAll("gmd:otherConstraints gco:CharacterString")
	if len(nodes) > 0 {
		texts := make([]string, len(nodes))
		for i, n := range nodes {
			texts[i] = n.TrimmedText()
			if texts[i] == domain.AccessNoRestrictions {
				return domain.AccessNoRestrictions
			}
		}
		return strings.Join(texts, ", ")
	}
	return block.FindAttr("gmd:otherConstraints gmx:Anchor", "xlink:href")
}

func normaliseAccess(v string) string {
	for _, rw := range accessRewrites {
		if strings.Contains(v, rw.contains) {
			return rw.value
		}
	}
	return v
}
