package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"
)

// MarshalJSON encodes v with two-space indentation and no HTML escaping.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes v to w as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	out, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

// CodeFileName returns the file name used when saving a project's generated code.
func CodeFileName(projectName string) string {
	s := slug.Make(projectName)
	if s == "" {
		s = "project"
	}
	return strings.ReplaceAll(s, "-", "_") + CodeFileSuffix
}

// SaveCode writes code to dir under CodeFileName(projectName) and returns the path.
func SaveCode(fs afero.Fs, dir, projectName, code string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, CodeFileName(projectName))
	if err := afero.WriteFile(fs, path, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
