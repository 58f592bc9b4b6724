package flatyml

import (
	"errors"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/flatyml/pkg/flatyml/index"
)

// Snapshot is an ordered copy of a parsed index.
type Snapshot []Entry

// Map returns the snapshot as key -> int or string.
func (s Snapshot) Map() map[string]any {
	m := make(map[string]any, len(s))
	for _, e := range s {
		m[e.Key] = e.Value.Any()
	}
	return m
}

// MarshalYAML renders the snapshot as a flat mapping in entry order.
// Keys are always plain and strings always double-quoted, so the output
// parses back to the same entries.
func (s Snapshot) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range s {
		// No tag: a "!!str" tag would quote keys such as 123 or null.
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Key}
		val := &yaml.Node{Kind: yaml.ScalarNode}
		if e.Value.Kind == index.KindInt {
			val.Tag = "!!int"
			val.Value = strconv.Itoa(e.Value.Int)
		} else {
			val.Tag = "!!str"
			val.Value = e.Value.Str
			val.Style = yaml.DoubleQuotedStyle
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// UnmarshalYAML reads a flat mapping of integers and strings.
// Values of any other kind are skipped.
func (s *Snapshot) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.New("snapshot: expected a mapping")
	}
	out := make(Snapshot, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			continue
		}
		var val Value
		switch v.ShortTag() {
		case "!!int":
			var n int
			if err := v.Decode(&n); err != nil {
				return err
			}
			val = index.IntValue(n)
		case "!!str":
			val = index.StringValue(v.Value)
		default:
			continue
		}
		out = append(out, Entry{Key: k.Value, Value: val, Size: val.Size()})
	}
	*s = out
	return nil
}
