package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

// LoadRows reads a JSON array fixture of row objects, as a PostgREST server
// would return them. Filenames are relative to this package.
func LoadRows(filename string) ([]map[string]any, error) {
	_, currentFile, _, _ := runtime.Caller(0)
	dir := filepath.Dir(currentFile)

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// RawRows marshals rows back into the wire shape a stub Transport returns.
func RawRows(rows []map[string]any) json.RawMessage {
	data, err := json.Marshal(rows)
	if err != nil {
		panic(err)
	}
	return json.RawMessage(data)
}
