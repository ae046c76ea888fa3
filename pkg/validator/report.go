package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/gowebpki/jcs"
)

// Report is the outcome of validating one file.
type Report struct {
	// FileType is the human label of the parsing branch, empty for
	// unsupported files.
	FileType   string
	Extensions []string
	Errors     []string
	Warnings   []string
	// Issues are endorsement chain defects. They never count as errors.
	Issues []string
}

func newReport() *Report {
	return &Report{
		Extensions: []string{},
		Errors:     []string{},
		Warnings:   []string{},
		Issues:     []string{},
	}
}

// Valid reports whether the file produced no errors.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

type reportJSON struct {
	FileType   *string  `json:"fileType"`
	Extensions []string `json:"extensions"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	Issues     []string `json:"issues"`
}

// MarshalJSON renders an unsupported file's type as null.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Extensions: nonNil(r.Extensions),
		Errors:     nonNil(r.Errors),
		Warnings:   nonNil(r.Warnings),
		Issues:     nonNil(r.Issues),
	}
	if r.FileType != "" {
		ft := r.FileType
		out.FileType = &ft
	}
	return gojson.Marshal(out)
}

// Fingerprint is the hex sha256 of the report's RFC 8785 canonical JSON.
// Equal reports have equal fingerprints.
func (r *Report) Fingerprint() (string, error) {
	raw, err := r.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize report: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
