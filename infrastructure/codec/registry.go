package codec

import (
	"fmt"
	"sort"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
)

// Registry resolves codecs by format identifier
type Registry struct {
	codecs map[string]ports.DocumentCodec
}

// NewRegistry creates a registry with the given codecs
func NewRegistry(codecs ...ports.DocumentCodec) *Registry {
	r := &Registry{codecs: make(map[string]ports.DocumentCodec, len(codecs))}
	for _, c := range codecs {
		r.codecs[c.Format()] = c
	}
	return r
}

// NewDefaultRegistry registers every built-in codec
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewJSONCodec(), NewMarkdownCodec())
}

// Lookup returns the codec for the format, or an import-format error
// listing the supported formats.
func (r *Registry) Lookup(format string) (ports.DocumentCodec, error) {
	if c, ok := r.codecs[format]; ok {
		return c, nil
	}
	return nil, pkgerrors.NewImportFormatError(
		fmt.Sprintf("unsupported format %q (supported: %v)", format, r.Formats()), nil)
}

// Formats returns the registered format identifiers, sorted
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

var _ ports.CodecRegistry = (*Registry)(nil)
