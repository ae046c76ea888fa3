// Package schema resolves, compiles and applies the protocol's JSON Schemas.
package schema

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Mindburn-Labs/spp/schemas"
)

// DefaultNamespace is the URI prefix under which protocol schemas are published.
const DefaultNamespace = "https://spp.dev/schemas/"

// metaNamespace hosts the JSON Schema meta-schemas, which the compiler ships with.
const metaNamespace = "https://json-schema.org/"

var (
	// ErrUnresolvable is returned for $ref URIs outside every known namespace.
	ErrUnresolvable = errors.New("schema: cannot resolve")
	// ErrSchemaNotFound is returned when a root schema file does not exist.
	ErrSchemaNotFound = errors.New("schema: not found")
)

// Loader maps schema URIs onto files of a filesystem.
type Loader struct {
	namespace string
	fsys      fs.FS
}

// NewLoader returns a loader over fsys. An empty namespace selects DefaultNamespace.
func NewLoader(fsys fs.FS, namespace string) *Loader {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if !strings.HasSuffix(namespace, "/") {
		namespace += "/"
	}
	return &Loader{namespace: namespace, fsys: fsys}
}

// Embedded returns a loader over the schema bundle compiled into the binary.
func Embedded() *Loader { return NewLoader(schemas.FS, DefaultNamespace) }

// Dir returns a loader over a directory on disk, or the embedded bundle when dir is empty.
func Dir(dir, namespace string) *Loader {
	if dir == "" {
		return NewLoader(schemas.FS, namespace)
	}
	return NewLoader(os.DirFS(dir), namespace)
}

// Namespace returns the URI prefix served by the loader.
func (l *Loader) Namespace() string { return l.namespace }

// FS returns the backing filesystem.
func (l *Loader) FS() fs.FS { return l.fsys }

// URI returns the canonical URI of a schema file.
func (l *Loader) URI(name string) string { return l.namespace + name }

// Exists reports whether the schema file is present.
func (l *Loader) Exists(name string) bool {
	info, err := fs.Stat(l.fsys, name)
	return err == nil && !info.IsDir()
}

// Load fetches the document behind uri. It has the signature the compiler
// expects for its LoadURL hook.
func (l *Loader) Load(uri string) (io.ReadCloser, error) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		uri = uri[:i]
	}
	switch {
	case strings.HasPrefix(uri, metaNamespace):
		return io.NopCloser(strings.NewReader("true")), nil
	case strings.HasPrefix(uri, l.namespace):
		name := strings.TrimPrefix(uri, l.namespace)
		if !fs.ValidPath(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvable, uri)
		}
		f, err := l.fsys.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrUnresolvable, uri)
			}
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnresolvable, uri)
	}
}
