package web

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
)

// writeDirListing renders a plain HTML index of entries. Entries are sorted
// by name so the output for an unchanged directory is byte-identical.
func writeDirListing(w http.ResponseWriter, urlPath string, entries []os.DirEntry) {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	title := html.EscapeString("Directory listing for " + urlPath)

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n</head>\n<body>\n<h1>%s</h1>\n<hr>\n<ul>\n", title, title)
	for _, name := range names {
		href := (&url.URL{Path: name}).String()
		// A name containing ':' would otherwise parse as a URL scheme.
		if strings.Contains(strings.SplitN(name, "/", 2)[0], ":") {
			href = "./" + href
		}
		fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(href), html.EscapeString(name))
	}
	b.WriteString("</ul>\n<hr>\n</body>\n</html>\n")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}
