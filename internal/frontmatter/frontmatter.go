// Package frontmatter splits and decodes the YAML block at the top of a document.
package frontmatter

import (
	"bytes"
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Fields is the decoded frontmatter. Only title and uid carry meaning for the
// reference page; everything else is kept in Extra.
type Fields struct {
	Title string         `yaml:"title"`
	UID   string         `yaml:"uid"`
	Extra map[string]any `yaml:",inline"`
}

// Split separates `---` delimited YAML frontmatter from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input. Both LF and CRLF documents are handled.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closing := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closing)
	if idx < 0 {
		// A closing delimiter on the final line without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	fmEnd := start + idx + len(nl)
	bodyStart := start + idx + len(closing)
	return content[start:fmEnd], content[bodyStart:], true, nil
}

// Decode parses raw YAML frontmatter (without delimiters).
func Decode(fm []byte) (Fields, error) {
	var fields Fields
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return Fields{}, err
	}
	fields.Title = strings.TrimSpace(fields.Title)
	fields.UID = strings.TrimSpace(fields.UID)
	return fields, nil
}

// Normalize returns fm with CRLF line endings folded to LF, for hashing.
func Normalize(fm []byte) []byte {
	return bytes.ReplaceAll(fm, []byte("\r\n"), []byte("\n"))
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
