package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/geocat/internal/core/domain"
)

const minimalRecord = `<?xml version="1.0" encoding="UTF-8"?>
<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd" xmlns:gco="http://www.isotc211.org/2005/gco">
  <gmd:fileIdentifier><gco:CharacterString>rec-42</gco:CharacterString></gmd:fileIdentifier>
  <gmd:hierarchyLevel><gmd:MD_ScopeCode codeListValue="dataset"/></gmd:hierarchyLevel>
  <gmd:identificationInfo>
    <gmd:MD_DataIdentification>
      <gmd:citation><gmd:CI_Citation><gmd:title><gco:CharacterString>Lakes</gco:CharacterString></gmd:title></gmd:CI_Citation></gmd:citation>
      <gmd:abstract><gco:CharacterString>Every lake.</gco:CharacterString></gmd:abstract>
    </gmd:MD_DataIdentification>
  </gmd:identificationInfo>
</gmd:MD_Metadata>
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestExtractCmd_PrintsRecord(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "extract", writeFile(t, "lakes.xml", minimalRecord))

	require.NoError(t, err)
	var rec domain.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "rec-42", rec.UUID)
	assert.Equal(t, "Lakes", rec.Title)
	assert.Equal(t, domain.TypeDataset, rec.Type)
	assert.Contains(t, out, "\n  \"uuid\": \"rec-42\"")
}

func TestExtractCmd_MissingIdentifier(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	doc := `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd"></gmd:MD_Metadata>`
	_, err := execute(t, "extract", writeFile(t, "bad.xml", doc))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
}

func TestExtractCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "extract", filepath.Join(t.TempDir(), "nope.xml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract failed")
}
