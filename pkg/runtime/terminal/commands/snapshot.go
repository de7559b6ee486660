package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/de-tools/daily-report/pkg/models/api"
)

// LoadSnapshot reads an export request from a JSON or YAML file, chosen by
// extension.
func LoadSnapshot(path string) (api.ExportRequest, error) {
	var req api.ExportRequest

	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read snapshot: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&req)
	default:
		err = yaml.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return req, nil
}
