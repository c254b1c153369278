package markdown

import "bytes"

// StripESM removes top-level MDX import/export statements from body. Lines
// inside fenced code blocks are left untouched. Multi-line statements are not
// followed: only the line that starts the statement is removed.
func StripESM(body []byte) []byte {
	lines := bytes.SplitAfter(body, []byte("\n"))
	out := make([]byte, 0, len(body))
	var fence []byte
	for _, line := range lines {
		trimmed := bytes.TrimLeft(line, " ")
		if marker := fenceMarker(trimmed); marker != nil {
			switch {
			case fence == nil:
				fence = marker
			case bytes.HasPrefix(trimmed, fence):
				fence = nil
			}
			out = append(out, line...)
			continue
		}
		if fence == nil && len(trimmed) == len(line) &&
			(bytes.HasPrefix(line, []byte("import ")) || bytes.HasPrefix(line, []byte("export "))) {
			continue
		}
		out = append(out, line...)
	}
	return out
}

func fenceMarker(line []byte) []byte {
	for _, m := range [][]byte{[]byte("```"), []byte("~~~")} {
		if bytes.HasPrefix(line, m) {
			return m
		}
	}
	return nil
}
