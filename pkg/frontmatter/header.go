package frontmatter

import (
	"bufio"
	"bytes"
	"io"
)

// ParseHeader reads only the frontmatter block from r and stops at the
// closing delimiter; the body is never read. A reader with no block, or an
// unterminated one, yields an empty map.
func (b *Builtin) ParseHeader(r io.Reader) (map[string]any, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return map[string]any{}, scanner.Err()
	}

	first := append([]byte(nil), bytes.TrimPrefix(scanner.Bytes(), bom)...)
	delim, _, _, ok := b.opening(first)
	if !ok {
		return map[string]any{}, nil
	}

	var doc bytes.Buffer
	doc.Write(first)
	doc.WriteByte('\n')
	for scanner.Scan() {
		line := scanner.Bytes()
		doc.Write(line)
		doc.WriteByte('\n')
		if bytes.HasPrefix(line, []byte(delim)) {
			m, err := b.Parse(doc.Bytes())
			if err != nil {
				return nil, err
			}
			return m.Data, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return map[string]any{}, nil
}
