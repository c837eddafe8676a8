// Package optionflags collects planner properties from a YAML file and
// from key=value command line flags.
package optionflags

import (
	"errors"
	"flag"
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Flags struct {
	file      map[string]string
	overrides map[string]string
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.Func("c", "path of YAML properties file", f.Load)
	fs.Func("o", "set property as key=value (can be specified multiple times)", f.Set)
}

// Load reads properties from a YAML file.  Nested mappings are flattened
// into dotted keys so that
//
//	operator:
//	  join:
//	    broadcast.limit: 1024
//
// sets operator.join.broadcast.limit.
func (f *Flags) Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if f.file == nil {
		f.file = make(map[string]string)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	if err := flatten(f.file, "", doc.Content[0]); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func flatten(props map[string]string, prefix string, node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		for k := 0; k+1 < len(node.Content); k += 2 {
			key := node.Content[k].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(props, key, node.Content[k+1]); err != nil {
				return err
			}
		}
		return nil
	case yaml.ScalarNode:
		if prefix == "" {
			return errors.New("properties must be a mapping")
		}
		props[prefix] = node.Value
		return nil
	case yaml.AliasNode:
		return flatten(props, prefix, node.Alias)
	}
	return fmt.Errorf("line %d: property %q must be a scalar or mapping", node.Line, prefix)
}

// Set records a key=value property.  Properties set this way take
// precedence over those loaded from a file.
func (f *Flags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("property %q: expected key=value", s)
	}
	if f.overrides == nil {
		f.overrides = make(map[string]string)
	}
	f.overrides[key] = value
	return nil
}

func (f *Flags) Props() map[string]string {
	props := make(map[string]string, len(f.file)+len(f.overrides))
	maps.Copy(props, f.file)
	maps.Copy(props, f.overrides)
	return props
}
