package feed

import "strings"

const (
	recordTag  = "element"
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

// splitRecords returns the inner text of every top-level <element> block.
// Nested <element> tags (image lists) only move the depth counter; a record
// ends when the counter returns to zero. A record left open at the end of
// the input is dropped.
func splitRecords(doc string) []string {
	doc = unwrapRoot(doc)
	closeTag := "</" + recordTag + ">"

	var records []string
	depth, start := 0, 0

	for i := 0; i < len(doc); {
		j := strings.IndexByte(doc[i:], '<')
		if j < 0 {
			break
		}
		i += j
		rest := doc[i:]

		switch {
		case strings.HasPrefix(rest, cdataOpen):
			end := strings.Index(rest, cdataClose)
			if end < 0 {
				return records
			}
			i += end + len(cdataClose)

		case strings.HasPrefix(rest, closeTag):
			if depth == 1 {
				records = append(records, doc[start:i])
			}
			if depth > 0 {
				depth--
			}
			i += len(closeTag)

		case isOpenTag(rest, recordTag):
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return records
			}
			i += end + 1
			if rest[end-1] == '/' {
				continue
			}
			depth++
			if depth == 1 {
				start = i
			}

		default:
			i++
		}
	}

	return records
}

// unwrapRoot strips an optional <root>...</root> envelope.
func unwrapRoot(doc string) string {
	open := strings.Index(doc, "<root")
	if open < 0 || !isOpenTag(doc[open:], "root") {
		return doc
	}
	end := strings.IndexByte(doc[open:], '>')
	if end < 0 {
		return doc
	}
	inner := doc[open+end+1:]
	if closeIdx := strings.LastIndex(inner, "</root>"); closeIdx >= 0 {
		inner = inner[:closeIdx]
	}
	return inner
}

// isOpenTag reports whether s starts with an opening tag named name,
// with or without attributes. "<images_number>" is not an "<images>" tag.
func isOpenTag(s, name string) bool {
	if len(s) < len(name)+2 || s[0] != '<' || s[1:len(name)+1] != name {
		return false
	}
	switch s[len(name)+1] {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
