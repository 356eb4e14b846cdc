package shader

// LibraryBuilderOption is a functional option applied to a library during construction via NewLibrary.
type LibraryBuilderOption func(*library)

// WithVertexEntry overrides the vertex stage entry point name.
//
// Parameters:
//   - name: the vertex entry point function name
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithVertexEntry(name string) LibraryBuilderOption {
	return func(l *library) {
		l.vertexEntry = name
	}
}

// WithFragmentEntry overrides the fragment stage entry point name.
//
// Parameters:
//   - name: the fragment entry point function name
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithFragmentEntry(name string) LibraryBuilderOption {
	return func(l *library) {
		l.fragmentEntry = name
	}
}
