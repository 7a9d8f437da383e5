package feed

import (
	"regexp"
	"strings"
)

var (
	urlRegex        = regexp.MustCompile(`https?://[^\s<>"'\]]+`)
	imageEntityRepl = strings.NewReplacer("&amp;", "&", "&#38;", "&")
)

// extractImages collects picture URLs from the record's <images> block.
// <element> children win; when there are none every http(s) token in the
// block is used. Order of first appearance is kept and duplicates dropped.
func extractImages(record string) []string {
	block, ok := rawTag(record, "images")
	if !ok || strings.TrimSpace(block) == "" {
		return nil
	}

	var candidates []string
	for _, child := range elementChildren(block) {
		candidates = append(candidates, removeWhitespace(stripCDATA(child)))
	}
	if len(candidates) == 0 {
		candidates = urlRegex.FindAllString(block, -1)
	}

	seen := make(map[string]struct{}, len(candidates))
	images := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = imageEntityRepl.Replace(c)
		if !strings.HasPrefix(c, "http") {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		images = append(images, c)
	}
	return images
}

// elementChildren returns the bodies of the <element> tags in block.
func elementChildren(block string) []string {
	var children []string
	for rest := block; ; {
		body, next, ok := nextTag(rest, recordTag)
		if !ok {
			return children
		}
		children = append(children, body)
		rest = rest[next:]
	}
}

func removeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
