package domain

// Record types as declared by gmd:hierarchyLevel.
const (
	TypeDataset  = "dataset"
	TypeSeries   = "series"
	TypeService  = "service"
	TypeSoftware = "software"
)

// Normalised access constraint values.
const (
	AccessNoRestrictions          = "no restrictions"
	AccessNorwayDigitalRestricted = "norway digital restricted"
	AccessRestricted              = "restricted"
)

// ThumbnailGraphicType is the graphic type used as a result thumbnail.
const ThumbnailGraphicType = "miniatyrbilde"

// Record is the flat, typed form of one ISO 19139 metadata document.
// Optional scalar fields are nil when the source document does not carry them.
type Record struct {
	UUID       string  `json:"uuid"`
	ParentUUID *string `json:"parentUuid,omitempty"`

	Title     string   `json:"title,omitempty"`
	Abstract  string   `json:"abstract,omitempty"`
	Purpose   *string  `json:"purpose,omitempty"`
	Owner     *string  `json:"owner,omitempty"`
	Publisher *string  `json:"publisher,omitempty"`
	Keywords  []string `json:"keywords"`

	Constraints Constraints `json:"constraints"`
	Graphics    []Graphic   `json:"graphics"`

	Type string       `json:"type,omitempty"`
	Spec *ServiceSpec `json:"spec,omitempty"`

	SpatialRepresentationType *string  `json:"spatialRepresentationType,omitempty"`
	BBox                      *BBox    `json:"bbox,omitempty"`
	CRS                       []string `json:"crs"`

	Protocol            string         `json:"protocol,omitempty"`
	URL                 string         `json:"url,omitempty"`
	Layer               string         `json:"layer,omitempty"`
	DistributionFormats []Distribution `json:"distributionFormats"`

	DateCreated   *string `json:"dateCreated,omitempty"`
	DateUpdated   *string `json:"dateUpdated,omitempty"`
	DatePublished *string `json:"datePublished,omitempty"`
}

// IsOpen reports whether the record's access constraints normalised to
// unrestricted access.
func (r *Record) IsOpen() bool {
	return r.Constraints.AccessConstraints != nil &&
		*r.Constraints.AccessConstraints == AccessNoRestrictions
}

// OperatesOn returns the identifiers this record operates on, if it is a service.
func (r *Record) OperatesOn() []string {
	if r.Spec == nil {
		return nil
	}
	return r.Spec.OperatesOn
}

// Thumbnail returns the URL of the first thumbnail graphic, or "".
func (r *Record) Thumbnail() string {
	return ThumbnailOf(r.Graphics)
}

// ThumbnailOf picks the first graphic tagged as a thumbnail.
func ThumbnailOf(graphics []Graphic) string {
	for _, g := range graphics {
		if g.Type == ThumbnailGraphicType {
			return g.URL
		}
	}
	return ""
}

// Constraints is the rights information of a record.
type Constraints struct {
	UseLimitation           *string `json:"useLimitation,omitempty"`
	AccessConstraints       *string `json:"accessConstraints,omitempty"`
	OtherConstraints        *string `json:"otherConstraints,omitempty"`
	UseConstraints          *string `json:"useConstraints,omitempty"`
	UseConstraintsLink      *string `json:"useConstraintsLink,omitempty"`
	UseConstraintsText      *string `json:"useConstraintsText,omitempty"`
	SecurityConstraints     *string `json:"securityConstraints,omitempty"`
	SecurityConstraintsNote *string `json:"securityConstraintsNote,omitempty"`
}

// Graphic is a preview image attached to a record.
type Graphic struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// ServiceSpec carries service-only classification.
type ServiceSpec struct {
	ServiceType *string  `json:"serviceType,omitempty"`
	OperatesOn  []string `json:"operatesOn"`
}

// BBox is a geographic bounding box as [west, south, east, north] in degrees.
type BBox [4]float64

// West returns the western bound.
func (b BBox) West() float64 { return b[0] }

// South returns the southern bound.
func (b BBox) South() float64 { return b[1] }

// East returns the eastern bound.
func (b BBox) East() float64 { return b[2] }

// North returns the northern bound.
func (b BBox) North() float64 { return b[3] }

// Distribution is one alternative way of obtaining the resource.
type Distribution struct {
	Name     string  `json:"name"`
	Version  *string `json:"version,omitempty"`
	URL      *string `json:"url,omitempty"`
	Layer    *string `json:"layer,omitempty"`
	Protocol *string `json:"protocol,omitempty"`
}
