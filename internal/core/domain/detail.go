package domain

// DetailView is the wire form of a DetailRecord served by the record API.
// Field names follow the public API rather than the stored record.
type DetailView struct {
	UUID          string         `json:"uuid"`
	ParentUUID    *string        `json:"parentUuid,omitempty"`
	Type          string         `json:"type,omitempty"`
	Title         string         `json:"title"`
	Abstract      string         `json:"abstract"`
	Purpose       *string        `json:"purpose,omitempty"`
	Owner         *string        `json:"owner,omitempty"`
	Publisher     *string        `json:"publisher,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Constraints   Constraints    `json:"constraints"`
	Graphics      []Graphic      `json:"graphics,omitempty"`
	Protocol      string         `json:"protocol,omitempty"`
	URL           string         `json:"url,omitempty"`
	Layer         string         `json:"layer,omitempty"`
	SpatialType   *string        `json:"spatialType,omitempty"`
	BBox          *BBox          `json:"bbox,omitempty"`
	CRS           []string       `json:"crs,omitempty"`
	Spec          *ServiceSpec   `json:"spec,omitempty"`
	Distributions []Distribution `json:"distributions,omitempty"`
	Created       *string        `json:"created,omitempty"`
	Updated       *string        `json:"updated,omitempty"`
	Published     *string        `json:"published,omitempty"`

	Parent       *RecordSummary  `json:"parent,omitempty"`
	Children     []RecordSummary `json:"children"`
	OperatesOn   []RecordSummary `json:"operatesOn"`
	OperatedOnBy []RecordSummary `json:"operatedOnBy"`
}

// View converts the detail into its wire form. Relation lists are never nil.
func (d *DetailRecord) View() DetailView {
	r := d.Record
	return DetailView{
		UUID:          r.UUID,
		ParentUUID:    r.ParentUUID,
		Type:          r.Type,
		Title:         r.Title,
		Abstract:      r.Abstract,
		Purpose:       r.Purpose,
		Owner:         r.Owner,
		Publisher:     r.Publisher,
		Keywords:      r.Keywords,
		Constraints:   r.Constraints,
		Graphics:      r.Graphics,
		Protocol:      r.Protocol,
		URL:           r.URL,
		Layer:         r.Layer,
		SpatialType:   r.SpatialRepresentationType,
		BBox:          r.BBox,
		CRS:           r.CRS,
		Spec:          r.Spec,
		Distributions: r.DistributionFormats,
		Created:       r.DateCreated,
		Updated:       r.DateUpdated,
		Published:     r.DatePublished,
		Parent:        d.Parent,
		Children:      nonNil(d.Children),
		OperatesOn:    nonNil(d.OperatesOn),
		OperatedOnBy:  nonNil(d.OperatedOnBy),
	}
}

func nonNil(s []RecordSummary) []RecordSummary {
	if s == nil {
		return []RecordSummary{}
	}
	return s
}
