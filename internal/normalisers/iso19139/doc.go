// Package iso19139 normalises ISO 19139 (gmd:MD_Metadata) documents into
// domain records.
//
// Field extraction is table driven: scalar and list fields are described by a
// selector and the field they fill, while the structured blocks (contacts,
// dates, constraints, distributions) each have a small rule function. The
// extractor holds no state and is safe for concurrent use.
package iso19139
