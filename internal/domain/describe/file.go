package describe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/types"
)

// LoadFile reads clip metadata from a .json, .yaml or .yml file.
func LoadFile(path string, log *logger.Logger) ([]types.ClipDescription, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.E(errs.KindInput, "read clip metadata", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = YAMLToJSON(raw)
		if err != nil {
			return nil, errs.E(errs.KindInput, "parse clip metadata yaml", err)
		}
	}
	return All(raw, log)
}

// YAMLToJSON converts a YAML document to JSON, keeping mapping key order so
// clip order survives the conversion.
func YAMLToJSON(in []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(in, &doc); err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if err := writeNode(&b, &doc); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeNode(b *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			b.WriteString("null")
			return nil
		}
		return writeNode(b, n.Content[0])
	case yaml.AliasNode:
		return writeNode(b, n.Alias)
	case yaml.MappingNode:
		b.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			b.Write(key)
			b.WriteByte(':')
			if err := writeNode(b, n.Content[i+1]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		b.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeNode(b, c); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		b.Write(out)
		return nil
	default:
		return fmt.Errorf("unsupported yaml node kind %d", n.Kind)
	}
}
