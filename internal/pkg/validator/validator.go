package validator

// Validator validates structs using their field tags.
type Validator interface {
	// Validate returns nil when data is valid, otherwise an error describing
	// the failing fields.
	Validate(data any) error
}
