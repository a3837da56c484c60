package manuscript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/bookkit/internal/model"
)

// MetadataFiles lists descriptor names probed in order.
var MetadataFiles = []string{"metadata.yaml", "metadata.yml", "metadata.toml", "metadata.json"}

// MetadataError reports a descriptor that exists but cannot be parsed.
type MetadataError struct {
	Chapter string
	Path    string
	Err     error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("chapter %s: malformed metadata %s: %v", e.Chapter, e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// ParseMetadata decodes descriptor data in the format named by path's
// extension. Keys missing from the data keep their defaults; empty data
// yields all defaults.
func ParseMetadata(path string, data []byte) (model.Metadata, error) {
	var err error
	meta := model.DefaultMetadata()
	if len(bytes.TrimSpace(data)) == 0 {
		return meta, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &meta)
	case ".toml":
		err = toml.Unmarshal(data, &meta)
	case ".json":
		err = json.Unmarshal(data, &meta)
	default:
		err = fmt.Errorf("unsupported metadata format %q", filepath.Ext(path))
	}
	if err != nil {
		return model.Metadata{}, err
	}
	if meta.Status == "" {
		meta.Status = model.DefaultStatus
	}
	return meta, nil
}
