// Package manifest reads and rewrites the version field of a pubspec-style YAML manifest.
// Only the top-level `version` scalar is interpreted; every other line is left untouched.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoVersion is returned when the manifest has no usable version field.
var ErrNoVersion = errors.New("manifest has no version field")

const versionKey = "version:"

// Manifest is a loaded manifest file. The full content is held in memory so a
// rewrite never reads from the file it is replacing.
type Manifest struct {
	Path    string
	Version string

	data []byte
	mode os.FileMode
	// line is the 1-based line of the top-level version key; inline is false
	// when its value does not sit on that same line.
	line   int
	inline bool
}

type versionField struct {
	Version yaml.Node `yaml:"version"`
}

// Load reads the manifest at path and extracts its top-level version.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVersion)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: %w: top level is not a mapping", path, ErrNoVersion)
	}

	// Decoding through the struct rejects duplicate keys.
	var field versionField
	if err := root.Decode(&field); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	key, node := versionNodes(root)
	switch {
	case key == nil:
		return nil, fmt.Errorf("%s: %w", path, ErrNoVersion)
	case node.Kind != yaml.ScalarNode:
		return nil, fmt.Errorf("%s: %w: version is not a scalar (line %d)", path, ErrNoVersion, node.Line)
	case strings.TrimSpace(node.Value) == "":
		return nil, fmt.Errorf("%s: %w: version is empty (line %d)", path, ErrNoVersion, node.Line)
	}

	return &Manifest{
		Path:    path,
		Version: strings.TrimSpace(node.Value),
		data:    data,
		mode:    info.Mode().Perm(),
		line:    key.Line,
		inline:  node.Line == key.Line && node.Style&(yaml.LiteralStyle|yaml.FoldedStyle) == 0,
	}, nil
}

// versionNodes returns the key and value nodes of the version entry of a mapping.
func versionNodes(mapping *yaml.Node) (key, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "version" {
			return mapping.Content[i], mapping.Content[i+1]
		}
	}
	return nil, nil
}

// Record parses the loaded version into a VersionRecord.
func (m *Manifest) Record() (VersionRecord, error) {
	rec, err := ParseVersion(m.Version)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("%s: %w", m.Path, err)
	}
	return rec, nil
}

// SetVersion rewrites the manifest on disk with version as its version field.
// Only the line holding the top-level version key changes. The file is replaced
// through a temp file in the same directory.
func (m *Manifest) SetVersion(version string) error {
	if !m.inline {
		return fmt.Errorf("%s: %w: version value must be on the same line as its key (line %d)", m.Path, ErrNoVersion, m.line)
	}
	out, ok := RewriteVersion(m.data, m.line, version)
	if !ok {
		return fmt.Errorf("%s: %w: line %d does not start with %q", m.Path, ErrNoVersion, m.line, versionKey)
	}
	if err := writeFileAtomic(m.Path, out, m.mode); err != nil {
		return fmt.Errorf("writing manifest %s: %w", m.Path, err)
	}
	m.data = out
	m.Version = version
	return nil
}

// RewriteVersion returns data with line number line (1-based) replaced by
// "version: <version>", provided its trimmed content starts with "version:".
// The line terminator is kept as it was and all other bytes are copied
// unchanged. ok is false, and data is returned as is, when the line does not
// match.
func RewriteVersion(data []byte, line int, version string) (out []byte, ok bool) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	if line < 1 || line > len(lines) {
		return data, false
	}
	content, eol := splitEOL(lines[line-1])
	if !strings.HasPrefix(strings.TrimSpace(string(content)), versionKey) {
		return data, false
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(version))
	for i, l := range lines {
		if i == line-1 {
			buf.WriteString("version: ")
			buf.WriteString(version)
			buf.Write(eol)
			continue
		}
		buf.Write(l)
	}
	return buf.Bytes(), true
}

func splitEOL(line []byte) (content, eol []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")):
		return line[:len(line)-1], line[len(line)-1:]
	}
	return line, nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
