package iso19139

import (
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/xmltree"
)

// Date type codes.
const (
	dateCreation    = "creation"
	dateRevision    = "revision"
	datePublication = "publication"
)

// unsetDatePrefix marks placeholder dates some registries emit.
const unsetDatePrefix = "0001-01-01"

func ptr(s string) *string {
	return &s
}

// extractContacts fills owner and publisher. Later contacts win.
func extractContacts(root *xmltree.Node, r *domain.Record) {
	for _, contact := range root.FindAll("gmd:pointOfContact") {
		org := contact.FindText("gmd:organisationName gco:CharacterString")
		if org == "" {
			continue
		}
		switch contact.FindAttr("gmd:CI_RoleCode", "codeListValue") {
		case "owner":
			r.Owner = ptr(org)
		case "publisher":
			r.Publisher = ptr(org)
		}
	}
}

func extractDates(root *xmltree.Node, r *domain.Record) {
	for _, d := range root.FindAll("gmd:identificationInfo gmd:citation gmd:CI_Date") {
		v := d.FindText("gmd:date gco:Date")
		if v == "" {
			v = d.FindText("gmd:date gco:DateTime")
		}
		if v == "" || strings.HasPrefix(v, unsetDatePrefix) {
			continue
		}
		switch d.FindAttr("gmd:CI_DateTypeCode", "codeListValue") {
		case dateCreation:
			r.DateCreated = ptr(v)
		case dateRevision:
			r.DateUpdated = ptr(v)
		case datePublication:
			r.DatePublished = ptr(v)
		}
	}
}

func extractGraphics(root *xmltree.Node, r *domain.Record) {
	for _, g := range root.FindAll("gmd:graphicOverview") {
		url := g.FindText("gmd:fileName gco:CharacterString")
		typ := g.FindText("gmd:fileDescription gco:CharacterString")
		if url == "" || typ == "" {
			continue
		}
		r.Graphics = append(r.Graphics, domain.Graphic{URL: url, Type: typ})
	}
}

// extractServiceSpec applies to service records only.
func extractServiceSpec(root *xmltree.Node, r *domain.Record) {
	if r.Type != domain.TypeService {
		return
	}
	spec := &domain.ServiceSpec{OperatesOn: []string{}}
	if st := root.FindText("srv:serviceType gco:LocalName"); st != "" {
		spec.ServiceType = ptr(st)
	}
	for _, op := range root.FindAll("srv:operatesOn") {
		if id, _ := op.Attr("uuidref"); strings.TrimSpace(id) != "" {
			spec.OperatesOn = append(spec.OperatesOn, strings.TrimSpace(id))
		}
	}
	r.Spec = spec
}

func extractCRS(root *xmltree.Node, r *domain.Record) {
	for _, ref := range root.FindAll("gmd:referenceSystemInfo") {
		code := ref.FindText("gmd:code gco:CharacterString")
		if code == "" {
			code = ref.FindAttr("gmd:code gmx:Anchor", "xlink:href")
		}
		if code != "" {
			r.CRS = append(r.CRS, code)
		}
	}
}

// extractBBox reads the first extent. A box is only produced when all four
// bounds are present and finite numbers.
func extractBBox(root *xmltree.Node, r *domain.Record) {
	extent := root.Find("gmd:EX_Extent")
	if extent == nil {
		return
	}
	var box domain.BBox
	for i, bound := range []string{
		"gmd:westBoundLongitude",
		"gmd:southBoundLatitude",
		"gmd:eastBoundLongitude",
		"gmd:northBoundLatitude",
	} {
		f, err := strconv.ParseFloat(extent.FindText(bound), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return
		}
		box[i] = f
	}
	r.BBox = &box
}

// extractOnlineResource picks the last transfer option with a usable URL.
func extractOnlineResource(root *xmltree.Node, r *domain.Record) {
	info := root.Find("gmd:distributionInfo")
	if info == nil {
		return
	}
	for _, opt := range info.FindAll("gmd:transferOptions") {
		online := opt.Find("gmd:CI_OnlineResource")
		if online == nil {
			continue
		}
		url := online.FindText("gmd:linkage gmd:URL")
		if url == "" {
			continue
		}
		r.URL = url
		r.Protocol = online.FindText("gmd:protocol gco:CharacterString")
		r.Layer = online.FindText("gmd:name gco:CharacterString")
	}
}

func extractDistributionFormats(root *xmltree.Node, r *domain.Record) {
	for _, f := range root.FindAll("gmd:distributionFormat") {
		name := f.FindText("gmd:name gco:CharacterString")
		if name == "" {
			continue
		}
		d := domain.Distribution{Name: name}
		if v := f.FindText("gmd:version gco:CharacterString"); v != "" {
			d.Version = ptr(v)
		}
		if online := f.Find("gmd:CI_OnlineResource"); online != nil {
			d.URL = optional(online.FindText("gmd:linkage gmd:URL"))
			d.Layer = optional(online.FindText("gmd:name gco:CharacterString"))
			d.Protocol = optional(online.FindText("gmd:protocol gco:CharacterString"))
		}
		r.DistributionFormats = append(r.DistributionFormats, d)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
