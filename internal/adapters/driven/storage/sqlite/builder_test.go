package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/normalisers/iso19139"
)

func TestNewBuilder_CreatesTempFileInDir(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBuilder(context.Background(), dir)
	require.NoError(t, err)
	defer b.Abort()

	assert.Equal(t, dir, filepath.Dir(b.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(b.Path()), tempPrefix))
	assert.FileExists(t, b.Path())
}

func TestBuilder_InsertAndCount(t *testing.T) {
	ctx := context.Background()
	b, err := NewBuilder(ctx, t.TempDir())
	require.NoError(t, err)
	defer b.Abort()

	require.NoError(t, b.Insert(ctx, newRecord("a", "First")))
	require.NoError(t, b.Insert(ctx, newRecord("b", "Second")))
	assert.Equal(t, 2, b.Count())
}

func TestBuilder_InsertRejectsMissingUUID(t *testing.T) {
	ctx := context.Background()
	b, err := NewBuilder(ctx, t.TempDir())
	require.NoError(t, err)
	defer b.Abort()

	err = b.Insert(ctx, newRecord("", "No identity"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, b.Count())
}

func TestBuilder_InsertRejectsDuplicateUUID(t *testing.T) {
	ctx := context.Background()
	b, err := NewBuilder(ctx, t.TempDir())
	require.NoError(t, err)
	defer b.Abort()

	require.NoError(t, b.Insert(ctx, newRecord("a", "First")))
	err = b.Insert(ctx, newRecord("a", "Again"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting record a")
}

func TestBuilder_AbortRemovesFile(t *testing.T) {
	ctx := context.Background()
	b, err := NewBuilder(ctx, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Insert(ctx, newRecord("a", "First")))

	require.NoError(t, b.Abort())
	assert.NoFileExists(t, b.Path())

	// Idempotent.
	require.NoError(t, b.Abort())

	err = b.Insert(ctx, newRecord("b", "Second"))
	assert.ErrorIs(t, err, ErrBuildClosed)
	assert.ErrorIs(t, b.Finish(ctx), ErrBuildClosed)
}

func TestBuilder_FinishProducesSearchableFile(t *testing.T) {
	ctx := context.Background()
	b, err := NewBuilder(ctx, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Insert(ctx, newRecord("a", "Arealressurskart")))
	require.NoError(t, b.Finish(ctx))

	_, err = os.Stat(b.Path())
	require.NoError(t, err)

	r, err := OpenReader(b.Path())
	require.NoError(t, err)
	defer r.Close()

	results, err := r.Search(ctx, []string{"arealressurskart"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].UUID)

	assert.ErrorIs(t, b.Insert(ctx, newRecord("b", "Late")), ErrBuildClosed)
}

func TestBuilder_RecordRoundTrip(t *testing.T) {
	bbox := domain.BBox{4.5, 57.9, 31.2, 71.2}
	want := &domain.Record{
		UUID:       "full",
		ParentUUID: strPtr("parent"),
		Title:      "Full record",
		Abstract:   "Every field set",
		Purpose:    strPtr("Testing"),
		Owner:      strPtr("Kartverket"),
		Publisher:  strPtr("Geonorge"),
		Keywords:   []string{"a", "b"},
		Constraints: domain.Constraints{
			AccessConstraints:  strPtr(domain.AccessNoRestrictions),
			UseConstraints:     strPtr("license"),
			UseConstraintsLink: strPtr("https://creativecommons.org/licenses/by/4.0/"),
			UseConstraintsText: strPtr("CC BY 4.0"),
		},
		Graphics:                  []domain.Graphic{{URL: "https://example.org/t.png", Type: domain.ThumbnailGraphicType}},
		Type:                      domain.TypeService,
		Spec:                      &domain.ServiceSpec{ServiceType: strPtr("view"), OperatesOn: []string{"x", "y"}},
		SpatialRepresentationType: strPtr("vector"),
		BBox:                      &bbox,
		CRS:                       []string{"EPSG:25833"},
		Protocol:                  "OGC:WMS",
		URL:                       "https://example.org/wms",
		Layer:                     "layer",
		DistributionFormats: []domain.Distribution{
			{Name: "GML", Version: strPtr("3.2.1")},
			{Name: "SOSI", URL: strPtr("https://example.org/sosi"), Protocol: strPtr("WWW:DOWNLOAD-1.0-http--download")},
		},
		DateCreated: strPtr("2015-03-01"),
		DateUpdated: strPtr("2023-11-20"),
	}

	r := openPublished(t, want)
	got, err := r.Get(context.Background(), "full")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBuilder_NonFiniteBoundsStillPublish(t *testing.T) {
	doc := `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:gco="http://www.isotc211.org/2005/gco">` +
		`<gmd:fileIdentifier><gco:CharacterString>nan-1</gco:CharacterString></gmd:fileIdentifier>` +
		`<gmd:identificationInfo><gmd:MD_DataIdentification><gmd:extent><gmd:EX_Extent><gmd:geographicElement>` +
		`<gmd:EX_GeographicBoundingBox>` +
		`<gmd:westBoundLongitude><gco:Decimal>NaN</gco:Decimal></gmd:westBoundLongitude>` +
		`<gmd:eastBoundLongitude><gco:Decimal>10</gco:Decimal></gmd:eastBoundLongitude>` +
		`<gmd:southBoundLatitude><gco:Decimal>Inf</gco:Decimal></gmd:southBoundLatitude>` +
		`<gmd:northBoundLatitude><gco:Decimal>60</gco:Decimal></gmd:northBoundLatitude>` +
		`</gmd:EX_GeographicBoundingBox></gmd:geographicElement></gmd:EX_Extent></gmd:extent>` +
		`</gmd:MD_DataIdentification></gmd:identificationInfo></gmd:MD_Metadata>`

	rec, err := iso19139.New().Extract(&domain.RawDocument{UUID: "nan-1", Content: []byte(doc)})
	require.NoError(t, err)
	assert.Nil(t, rec.BBox)

	r := openPublished(t, rec)
	got, err := r.Get(context.Background(), "nan-1")
	require.NoError(t, err)
	assert.Nil(t, got.BBox)
}
