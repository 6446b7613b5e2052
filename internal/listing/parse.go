package listing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
	"howett.net/plist"

	"lightbox/internal/services"
)

// Parse decodes a listing document in the given format.
func Parse(data []byte, format Format) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, services.Wrap(services.ErrList, "listing", "parse", "document is empty", nil)
	}
	var doc any
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatPlist:
		_, err = plist.Unmarshal(data, &doc)
	default:
		return nil, services.Wrap(services.ErrList, "listing", "parse", fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrList, "listing", "parse", string(format)+" document is malformed", err)
	}
	return normalize(doc)
}
