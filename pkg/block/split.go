package block

import "strings"

// Split breaks a document into blocks. One or more empty lines separate
// blocks. A line holding only spaces or tabs is not empty: it stays inside
// the surrounding block, so a fenced code block may contain indented blank
// lines. Each block is trimmed of surrounding whitespace and empty blocks
// are dropped. CRLF line endings are normalized to LF first.
func Split(document string) []string {
	document = strings.ReplaceAll(document, "\r\n", "\n")

	var (
		blocks  []string
		current []string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		if trimmed := strings.TrimSpace(strings.Join(current, "\n")); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(document, "\n") {
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks
}
