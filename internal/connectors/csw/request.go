package csw

import (
	"bytes"
	"encoding/xml"
	"strings"
	"text/template"
)

// Result types of a GetRecords request.
const (
	resultTypeResults = "results"
	resultTypeHits    = "hits"
)

var getRecordsTemplate = template.Must(template.New("GetRecords").Funcs(template.FuncMap{
	"attr": escapeAttr,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<csw:GetRecords
  service="CSW"
  version="2.0.2"
  resultType="{{ attr .ResultType }}"
  startPosition="{{ .StartPosition }}"
  maxRecords="{{ .MaxRecords }}"
  outputSchema="{{ attr .OutputSchema }}"
  xmlns:csw="http://www.opengis.net/cat/csw/2.0.2"
  xmlns:ogc="http://www.opengis.net/ogc"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xsi:schemaLocation="http://www.opengis.net/cat/csw/2.0.2 http://schemas.opengis.net/csw/2.0.2/CSW-discovery.xsd">
  <csw:Query typeNames="csw:Record">
    <csw:ElementSetName>full</csw:ElementSetName>
  </csw:Query>
</csw:GetRecords>
`))

type getRecordsParams struct {
	ResultType    string
	StartPosition int
	MaxRecords    int
	OutputSchema  string
}

func buildGetRecords(p getRecordsParams) ([]byte, error) {
	var buf bytes.Buffer
	if err := getRecordsTemplate.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func escapeAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
