package listing

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"lightbox/internal/services"
)

// Record is one entry of a listing. An empty Locator means the item has no
// source and can never be fetched.
type Record struct {
	Name    string `json:"name" yaml:"name" plist:"name"`
	Locator string `json:"url,omitempty" yaml:"url,omitempty" plist:"url,omitempty"`
}

// Format identifies a listing encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatPlist Format = "plist"
)

// DetectFormat picks a format from the location's extension, defaulting to JSON.
func DetectFormat(location string) Format {
	trimmed := strings.TrimSpace(location)
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	switch strings.ToLower(path.Ext(trimmed)) {
	case ".plist":
		return FormatPlist
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// normalize turns a generically decoded document into ordered records.
func normalize(doc any) ([]Record, error) {
	switch value := doc.(type) {
	case map[string]any:
		names := make([]string, 0, len(value))
		for name := range value {
			names = append(names, name)
		}
		sort.Strings(names)
		records := make([]Record, 0, len(names))
		for _, name := range names {
			locator, err := locatorValue(name, value[name])
			if err != nil {
				return nil, err
			}
			records = append(records, Record{Name: strings.TrimSpace(name), Locator: locator})
		}
		return records, nil
	case []any:
		records := make([]Record, 0, len(value))
		for i, entry := range value {
			record, err := entryRecord(i, entry)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, nil
	case nil:
		return nil, nil
	default:
		return nil, services.Wrap(services.ErrList, "listing", "decode", fmt.Sprintf("unsupported document type %T", doc), nil)
	}
}

func entryRecord(index int, entry any) (Record, error) {
	fields, ok := entry.(map[string]any)
	if !ok {
		return Record{}, services.Wrap(services.ErrList, "listing", "decode", fmt.Sprintf("entry %d is %T, want an object", index, entry), nil)
	}
	name, _ := fields["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("item %d", index+1)
	}
	raw, ok := fields["url"]
	if !ok {
		raw = fields["locator"]
	}
	locator, err := locatorValue(name, raw)
	if err != nil {
		return Record{}, err
	}
	return Record{Name: name, Locator: locator}, nil
}

func locatorValue(name string, raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", services.Wrap(services.ErrList, "listing", "decode", fmt.Sprintf("locator for %q is %T, want a string", name, raw), nil)
	}
}

// Static serves a fixed listing. It is handy for tests and for callers that
// build the item set themselves.
type Static []Record

// List returns a copy of the records.
func (s Static) List(context.Context) ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}
