// Package frontmatter reads and writes markdown documents that carry yaml
// frontmatter between --- delimiters. Run reports use it to keep their
// machine-readable header next to the human-readable body.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delim = []byte("---")

// Parse splits a document into raw frontmatter yaml and body. The document
// must open with a --- line; the next --- line closes the block. CRLF line
// endings are tolerated.
func Parse(doc []byte) (meta, body []byte, err error) {
	doc = bytes.ReplaceAll(doc, []byte("\r\n"), []byte("\n"))
	lines := bytes.SplitAfter(doc, []byte("\n"))
	if len(lines) == 0 || !isDelim(lines[0]) {
		return nil, nil, fmt.Errorf("frontmatter: document does not open with ---")
	}
	for i := 1; i < len(lines); i++ {
		if !isDelim(lines[i]) {
			continue
		}
		meta = bytes.Join(lines[1:i], nil)
		body = bytes.Join(lines[i+1:], nil)
		return meta, body, nil
	}
	return nil, nil, fmt.Errorf("frontmatter: missing closing ---")
}

// ParseInto parses doc and unmarshals its frontmatter into v, returning the
// body.
func ParseInto(doc []byte, v any) (body []byte, err error) {
	meta, body, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(meta, v); err != nil {
		return nil, fmt.Errorf("frontmatter: unmarshal: %w", err)
	}
	return body, nil
}

// Write marshals v as yaml frontmatter and appends body, returning the
// complete document.
func Write(v any, body string) ([]byte, error) {
	meta, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(delim)
	buf.WriteByte('\n')
	buf.Write(meta)
	buf.Write(delim)
	buf.WriteByte('\n')
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// isDelim reports whether line is a --- delimiter, ignoring the trailing
// newline and surrounding spaces.
func isDelim(line []byte) bool {
	return bytes.Equal(bytes.TrimSpace(line), delim)
}
