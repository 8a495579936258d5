package annotations

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParserEngine defines the core annotation parsing functionality
type ParserEngine interface {
	ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error)
	ValidateTarget(annotation *ParsedAnnotation, target Target) error
}

// ParseError is returned for malformed annotations
type ParseError struct {
	Message    string
	Location   SourceLocation
	Suggestion string
}

func (e ParseError) Error() string {
	msg := fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Message)
	if e.Suggestion != "" {
		msg += ". " + e.Suggestion
	}
	return msg
}

// annotationNode is the root of a //weave:: comment
type annotationNode struct {
	Name   string       `parser:"Prefix @Ident"`
	Args   []*valueNode `parser:"@@*"`
	Params []*paramNode `parser:"@@*"`
}

// paramNode is a named parameter; a parameter without value is a flag
type paramNode struct {
	Key   string     `parser:"Dash @Ident"`
	Value *valueNode `parser:"(Equals @@)?"`
}

type valueNode struct {
	String *string  `parser:"  @String"`
	Number *int     `parser:"| @Number"`
	List   []string `parser:"| @Ident (Comma @Ident)*"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Prefix", Pattern: `//\s*weave::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `-?\d+`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_./\-]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ParticipleParser parses //weave:: annotations with a participle grammar and checks them
// against the schemas of a registry
type ParticipleParser struct {
	parser   *participle.Parser[annotationNode]
	registry AnnotationRegistry
}

// NewParser creates an annotation parser. A nil registry disables schema checks.
func NewParser(registry AnnotationRegistry) *ParticipleParser {
	return &ParticipleParser{
		parser: participle.MustBuild[annotationNode](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is a //weave:: annotation
func IsAnnotation(comment string) bool {
	content := strings.TrimSpace(comment)
	if !strings.HasPrefix(content, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(content[2:]), "weave::")
}

// ParseAnnotation parses a single annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)
	if !IsAnnotation(raw) {
		return nil, ParseError{
			Message:    "annotation must start with '//weave::'",
			Location:   location,
			Suggestion: "Use format: //weave::type arguments -Param=value",
		}
	}

	node, err := p.parser.ParseString(location.File, raw)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	var schema *AnnotationSchema
	var annotationType AnnotationType
	if p.registry != nil {
		s, err := p.registry.Lookup(node.Name)
		if err != nil {
			return nil, ParseError{
				Message:    fmt.Sprintf("unknown annotation type: %s", node.Name),
				Location:   location,
				Suggestion: "Use one of: " + strings.Join(p.registry.Names(), ", "),
			}
		}
		schema = &s
		annotationType = s.Type
	} else if annotationType, err = ParseAnnotationType(node.Name); err != nil {
		return nil, ParseError{Message: err.Error(), Location: location}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Name:       node.Name,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        raw,
	}
	for _, arg := range node.Args {
		parsed.Args = append(parsed.Args, arg.strings()...)
	}

	for _, param := range node.Params {
		if _, dup := parsed.Parameters[param.Key]; dup {
			return nil, ParseError{
				Message:  fmt.Sprintf("parameter '%s' is given more than once", param.Key),
				Location: location,
			}
		}
		value, err := convertParameter(schema, param)
		if err != nil {
			return nil, ParseError{Message: err.Error(), Location: location}
		}
		parsed.Parameters[param.Key] = value
	}

	if schema != nil {
		if err := validateAgainstSchema(*schema, parsed); err != nil {
			return nil, ParseError{Message: err.Error(), Location: location}
		}
	}
	return parsed, nil
}

// ValidateTarget checks that the annotation may be attached to the given declaration kind
func (p *ParticipleParser) ValidateTarget(annotation *ParsedAnnotation, target Target) error {
	if p.registry == nil {
		return nil
	}
	schema, err := p.registry.GetSchema(annotation.Type)
	if err != nil {
		return err
	}
	if schema.Targets&target == 0 {
		return ParseError{
			Message:  fmt.Sprintf("annotation '%s' cannot be attached to a %s", annotation.Name, target),
			Location: annotation.Location,
		}
	}
	return nil
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation) error {
	var perr participle.Error
	if stderrors.As(err, &perr) {
		pos := perr.Position()
		location.Column = location.Column + pos.Column - 1
		if location.Column < 1 {
			location.Column = pos.Column
		}
		return ParseError{
			Message:    perr.Message(),
			Location:   location,
			Suggestion: "Use format: //weave::type arguments -Param=value",
		}
	}
	return ParseError{Message: err.Error(), Location: location}
}

func (v *valueNode) strings() []string {
	switch {
	case v.String != nil:
		return []string{*v.String}
	case v.Number != nil:
		return []string{strconv.Itoa(*v.Number)}
	default:
		return v.List
	}
}

// convertParameter types a parameter value by its schema. Without a schema, flags become
// true, numbers ints, single values strings and lists []string.
func convertParameter(schema *AnnotationSchema, param *paramNode) (interface{}, error) {
	if schema == nil {
		if param.Value == nil {
			return true, nil
		}
		if param.Value.Number != nil {
			return *param.Value.Number, nil
		}
		values := param.Value.strings()
		if len(values) == 1 {
			return values[0], nil
		}
		return values, nil
	}

	spec, ok := schema.Parameters[param.Key]
	if !ok {
		return nil, fmt.Errorf("unknown parameter '%s' for %s annotation", param.Key, schema.Type)
	}
	value, err := typeParameter(spec, param)
	if err != nil {
		return nil, err
	}
	if spec.Validator != nil {
		if err := spec.Validator(value); err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", param.Key, err)
		}
	}
	return value, nil
}

func typeParameter(spec ParameterSpec, param *paramNode) (interface{}, error) {
	if param.Value == nil {
		if spec.Type != BoolType {
			return nil, fmt.Errorf("parameter '%s' requires a %s value", param.Key, spec.Type)
		}
		return true, nil
	}

	values := param.Value.strings()
	switch spec.Type {
	case BoolType:
		if len(values) != 1 {
			return nil, fmt.Errorf("parameter '%s' expects a single bool value", param.Key)
		}
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return nil, fmt.Errorf("parameter '%s' expects a bool value, got '%s'", param.Key, values[0])
		}
		return b, nil
	case IntType:
		if param.Value.Number == nil {
			return nil, fmt.Errorf("parameter '%s' expects an int value, got '%s'", param.Key, strings.Join(values, ","))
		}
		return *param.Value.Number, nil
	case StringSliceType:
		return values, nil
	default:
		if len(values) != 1 {
			return nil, fmt.Errorf("parameter '%s' expects a single value", param.Key)
		}
		return values[0], nil
	}
}

func validateAgainstSchema(schema AnnotationSchema, parsed *ParsedAnnotation) error {
	if len(parsed.Args) < schema.MinArgs {
		return fmt.Errorf("%s annotation requires at least %d argument(s), got %d",
			parsed.Name, schema.MinArgs, len(parsed.Args))
	}
	if schema.MaxArgs >= 0 && len(parsed.Args) > schema.MaxArgs {
		return fmt.Errorf("%s annotation accepts at most %d argument(s), got %d",
			parsed.Name, schema.MaxArgs, len(parsed.Args))
	}
	if schema.ArgValidator != nil {
		for _, arg := range parsed.Args {
			if err := schema.ArgValidator(arg); err != nil {
				return fmt.Errorf("%s annotation: %w", parsed.Name, err)
			}
		}
	}
	for name, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(name) {
			return fmt.Errorf("%s annotation requires parameter '%s'", parsed.Name, name)
		}
	}
	return nil
}
