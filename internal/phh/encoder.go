package phh

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lox/pokerrooms/internal/fileutil"
)

// Encode writes the hand history to w as PHH TOML.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// Decode reads a single PHH hand.
func Decode(r io.Reader) (*HandHistory, error) {
	var hand HandHistory
	md, err := toml.NewDecoder(r).Decode(&hand)
	if err != nil {
		return nil, fmt.Errorf("phh: %w", err)
	}
	if !md.IsDefined("variant") || !md.IsDefined("actions") {
		return nil, fmt.Errorf("phh: missing variant or actions")
	}
	return &hand, nil
}

// ReadFile decodes the hand stored at path.
func ReadFile(path string) (*HandHistory, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile stores hand as <dir>/<table>/<hand>.phh and returns the path.
func WriteFile(dir string, hand *HandHistory) (string, error) {
	if hand == nil || hand.HandID == "" {
		return "", fmt.Errorf("phh: hand history has no id")
	}
	var buf bytes.Buffer
	if err := Encode(&buf, hand); err != nil {
		return "", err
	}
	table := hand.Table
	if table == "" {
		table = "default"
	}
	path := filepath.Join(dir, filepath.Base(table), filepath.Base(hand.HandID)+".phh")
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("phh: writing %s: %w", path, err)
	}
	return path, nil
}
