package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"github.com/kiln-gfx/kiln/common"
)

//go:embed triangle.wgsl
var triangleSource string

// ErrEntryPointNotFound is returned by Validate when a named entry point is not
// declared in the library source with the matching stage annotation.
var ErrEntryPointNotFound = errors.New("shader entry point not found")

// entryPointPattern matches a stage-annotated WGSL function declaration,
// capturing the stage name and the function name.
var entryPointPattern = regexp.MustCompile(`@(vertex|fragment)\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)`)

// library is the implementation of the Library interface.
// It holds the WGSL source text and the named entry points resolved from it.
type library struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
}

// Library defines the interface for a compiled shader program container. It exposes
// the library's unique key, WGSL source text, and the vertex and fragment entry point
// names that a pipeline binds to its shader stages. The library itself is transient:
// once a pipeline state has been created from it, only the entry points matter.
type Library interface {
	// Key retrieves the unique identifier for this library, used for labeling GPU objects.
	//
	// Returns:
	//   - string: the library's unique key
	Key() string

	// Source retrieves the WGSL shader source text.
	//
	// Returns:
	//   - string: the WGSL source code of the library
	Source() string

	// VertexEntry returns the name of the vertex stage entry point.
	//
	// Returns:
	//   - string: the vertex entry point function name (default "vertex_main")
	VertexEntry() string

	// FragmentEntry returns the name of the fragment stage entry point.
	//
	// Returns:
	//   - string: the fragment entry point function name (default "fragment_main")
	FragmentEntry() string

	// Validate resolves both named entry points against the source text. A library
	// whose source does not declare a stage-annotated function for each configured
	// entry point cannot produce a working pipeline, so this is a fatal bootstrap
	// condition for the caller.
	//
	// Returns:
	//   - error: an ErrEntryPointNotFound-wrapped error naming the missing entry point, or nil
	Validate() error
}

var _ Library = &library{}

// NewLibrary creates a new Library from raw WGSL source.
// Entry points default to "vertex_main" and "fragment_main" and can be overridden
// with builder options.
//
// Parameters:
//   - key: the unique identifier for this library
//   - source: the WGSL shader source text
//   - opts: a variadic list of LibraryBuilderOption functions to configure the library
//
// Returns:
//   - Library: a new Library instance holding the source and entry point names
func NewLibrary(key, source string, opts ...LibraryBuilderOption) Library {
	l := &library{
		key:           key,
		source:        source,
		vertexEntry:   "vertex_main",
		fragmentEntry: "fragment_main",
	}
	for _, opt := range opts {
		opt(l)
	}
	l.vertexEntry = common.Coalesce(l.vertexEntry, "vertex_main")
	l.fragmentEntry = common.Coalesce(l.fragmentEntry, "fragment_main")
	return l
}

// Triangle returns the built-in single-triangle Library with the embedded WGSL
// source and the default entry points.
//
// Returns:
//   - Library: the embedded triangle shader library
func Triangle() Library {
	return NewLibrary("triangle", triangleSource)
}

func (l *library) Key() string {
	return l.key
}

func (l *library) Source() string {
	return l.source
}

func (l *library) VertexEntry() string {
	return l.vertexEntry
}

func (l *library) FragmentEntry() string {
	return l.fragmentEntry
}

func (l *library) Validate() error {
	declared := map[string]string{}
	for _, m := range entryPointPattern.FindAllStringSubmatch(l.source, -1) {
		declared[m[2]] = m[1]
	}

	if declared[l.vertexEntry] != "vertex" {
		return fmt.Errorf("%w: no @vertex function %q in library %q", ErrEntryPointNotFound, l.vertexEntry, l.key)
	}
	if declared[l.fragmentEntry] != "fragment" {
		return fmt.Errorf("%w: no @fragment function %q in library %q", ErrEntryPointNotFound, l.fragmentEntry, l.key)
	}
	return nil
}
