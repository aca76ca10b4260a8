package setup

import (
	"fmt"

	"github.com/angelmondragon/pricingdef/internal/resource"
	"gopkg.in/yaml.v3"
)

// ValueSource is either a literal string or the name of an attribute read
// from a record at resolve time. In YAML a scalar is a literal and
// `{attr: name}` is an attribute reference.
type ValueSource struct {
	Literal string
	Attr    string
}

// Literal returns a source that always yields value.
func Literal(value string) ValueSource {
	return ValueSource{Literal: value}
}

// Attr returns a source that reads name from the record.
func Attr(name string) ValueSource {
	return ValueSource{Attr: name}
}

func (v ValueSource) IsZero() bool {
	return v.Literal == "" && v.Attr == ""
}

func (v ValueSource) IsAttr() bool {
	return v.Attr != ""
}

// Resolve returns the literal, or the attribute read off rec. ok is false
// when the record cannot provide the attribute.
func (v ValueSource) Resolve(rec resource.Reader) (string, bool, error) {
	if !v.IsAttr() {
		return v.Literal, !v.IsZero(), nil
	}
	if rec == nil {
		return "", false, nil
	}
	return resource.String(rec, v.Attr)
}

func (v ValueSource) String() string {
	if v.IsAttr() {
		return "attr:" + v.Attr
	}
	return v.Literal
}

func (v *ValueSource) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*v = Literal(node.Value)
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 || node.Content[0].Value != "attr" {
			return fmt.Errorf("line %d: value reference must be {attr: <name>}", node.Line)
		}
		*v = Attr(node.Content[1].Value)
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or {attr: <name>}", node.Line)
	}
}

func (v ValueSource) MarshalYAML() (any, error) {
	if v.IsAttr() {
		return map[string]string{"attr": v.Attr}, nil
	}
	return v.Literal, nil
}
