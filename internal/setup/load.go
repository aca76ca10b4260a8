package setup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/angelmondragon/pricingdef/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Load reads and builds the setup file at path.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, fmt.Sprintf("read pricing setup %s", path))
	}
	return Parse(bytes.NewReader(raw))
}

// Parse decodes a YAML setup document and builds it. Unknown option keys are
// rejected.
func Parse(r io.Reader) (*Registry, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConfig, err, "invalid option keys or malformed pricing setup")
	}
	return Build(doc)
}
