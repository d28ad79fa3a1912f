// Package normalisers holds the Extractor implementations that turn raw
// metadata documents into catalog records. iso19139 is the only format
// currently understood.
package normalisers
