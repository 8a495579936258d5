package parser

const (
	// AnnotationPrefix is the prefix used for all weave annotations
	AnnotationPrefix = "weave::"

	// Constructor name prefixes tried when no //weave::constructor is declared
	ExportedConstructorPrefix   = "New"
	UnexportedConstructorPrefix = "new"
)
