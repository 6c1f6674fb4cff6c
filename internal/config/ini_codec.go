package config

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/viper"
)

// iniCodec teaches viper to read and write INI files. Sections become nested
// maps and keys of the default section stay at the top level.
type iniCodec struct {
	// order lists "section.key" entries that are written first, in order.
	order []string
}

var _ viper.Codec = iniCodec{}

func init() {
	// Write "key = value" without aligning the "=" signs of a section.
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

func (c iniCodec) Decode(b []byte, v map[string]any) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true,
	}, b)
	if err != nil {
		return fmt.Errorf("failed to parse ini: %w", err)
	}

	for _, section := range f.Sections() {
		target := v
		if section.Name() != ini.DefaultSection {
			nested, ok := v[section.Name()].(map[string]any)
			if !ok {
				nested = make(map[string]any)
				v[section.Name()] = nested
			}
			target = nested
		}

		for _, key := range section.Keys() {
			target[key.Name()] = key.String()
		}
	}

	return nil
}

func (c iniCodec) Encode(v map[string]any) ([]byte, error) {
	f := ini.Empty()

	var sections []string
	for name, value := range v {
		if _, ok := value.(map[string]any); ok {
			sections = append(sections, name)
			continue
		}
		if _, err := f.Section(ini.DefaultSection).NewKey(name, formatValue(value)); err != nil {
			return nil, fmt.Errorf("failed to encode key %s: %w", name, err)
		}
	}
	sort.Strings(sections)

	for _, name := range sections {
		section, err := f.NewSection(name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode section %s: %w", name, err)
		}

		values := v[name].(map[string]any)
		for _, key := range c.sortedKeys(name, values) {
			if _, err := section.NewKey(key, formatValue(values[key])); err != nil {
				return nil, fmt.Errorf("failed to encode key %s.%s: %w", name, key, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write ini: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedKeys returns the keys of a section with the configured order first
// and everything else alphabetically.
func (c iniCodec) sortedKeys(section string, values map[string]any) []string {
	var keys []string
	listed := make(map[string]struct{})
	for _, entry := range c.order {
		name, key, ok := strings.Cut(entry, ".")
		if !ok || name != section {
			continue
		}
		if _, present := values[key]; present {
			keys = append(keys, key)
			listed[key] = struct{}{}
		}
	}

	var rest []string
	for key := range values {
		if _, ok := listed[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = formatValue(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}
