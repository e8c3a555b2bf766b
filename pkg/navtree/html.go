package navtree

import (
	"io"
	"strings"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// AnchorSet ids and names an html page can be deep linked with
type AnchorSet map[string]struct{}

// Has reports whether fragment is an anchor of the page
func (s AnchorSet) Has(fragment string) bool {
	_, ok := s[fragment]
	return ok
}

// Anchors collects all id and a[name] anchors of an html page
func Anchors(r io.Reader) (AnchorSet, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}
	anchors := AnchorSet{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "id" || (attr.Key == "name" && n.Data == "a") {
					if attr.Val != "" {
						anchors[attr.Val] = struct{}{}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors, nil
}

// ParseHTML builds the outline of a single generated html page from its
// headings. Headings carry their anchor either as id attribute or as a nested
// <a id> / <a name> element. A <div class="title"> names the page, otherwise
// the first h1 does.
func ParseHTML(name string, r io.Reader, opts ...OutlineOption) (*nav.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html")
	}
	o := newOutline(name, opts)
	offset := 0
	if title := findTitleDiv(doc); title != nil {
		o.page.Title = textContent(title)
		o.titled = true
		offset = 1
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				o.heading(level+offset, textContent(n), headingAnchor(n))
				return
			}
			switch n.Data {
			case "script", "style", "nav":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return nav.NewTree(name, o.page), nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingAnchor(n *html.Node) string {
	if id := attr(n, "id"); id != "" {
		return id
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "a" {
			if id := attr(c, "id"); id != "" {
				return id
			}
			if name := attr(c, "name"); name != "" {
				return name
			}
		}
	}
	return ""
}

func findTitleDiv(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "div" {
		for _, class := range strings.Fields(attr(n, "class")) {
			if class == "title" {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTitleDiv(c); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
