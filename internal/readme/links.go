package readme

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"
)

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)

// Link is a Markdown hyperlink found in a document.
type Link struct {
	Text string
	URL  string
	Line int
}

// External reports whether the link points at an http(s) URL.
func (l Link) External() bool {
	return strings.HasPrefix(l.URL, "http://") || strings.HasPrefix(l.URL, "https://")
}

// ExtractLinks returns every inline Markdown link in doc, in order.
// Links inside fenced code blocks are ignored.
func ExtractLinks(doc []byte) []Link {
	var links []Link
	scanner := bufio.NewScanner(bytes.NewReader(doc))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	fenced := false
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
			continue
		}
		if fenced {
			continue
		}

		for _, m := range linkRe.FindAllStringSubmatch(line, -1) {
			links = append(links, Link{Text: m[1], URL: m[2], Line: lineNum})
		}
	}
	return links
}

// ExternalURLs returns the distinct http(s) URLs linked from doc, in order of
// first appearance.
func ExternalURLs(doc []byte) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, l := range ExtractLinks(doc) {
		if !l.External() || seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		urls = append(urls, l.URL)
	}
	return urls
}
