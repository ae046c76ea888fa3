// Package schemas bundles the protocol's canonical JSON Schema documents.
//
// File names mirror the path segments of each schema's $id under the
// https://spp.dev/schemas/ namespace.
package schemas

import "embed"

// FS holds the bundled schema set.
//
//go:embed *.json
var FS embed.FS
