package dynamic

import (
	"strings"

	"golang.org/x/net/html"
)

const (
	maxSimplifiedHTML = 50 * 1024
	maxLinks          = 20
	maxForms          = 5
	maxClickables     = 10
	maxVisibleText    = 2 * 1024
	truncationMarker  = "\n...[truncated]"
)

// Link is one extracted anchor.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// Form is one extracted <form>, simplified to its action/method and input
// names.
type Form struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Inputs []string `json:"inputs"`
}

// PageState is what the AI oracle is allowed to see of a page (spec §4.7
// "Page state extraction"): never raw, uncapped HTML.
type PageState struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	SimplifiedHTML string   `json:"simplifiedHtml"`
	Links          []Link   `json:"links"`
	Forms          []Form   `json:"forms"`
	Clickables     []string `json:"clickables"`
	VisibleText    string   `json:"visibleText"`
}

// PageStateExtractor is the consumed collaborator that turns raw provider
// output into a bounded PageState.
type PageStateExtractor interface {
	Extract(url, rawHTML string) (PageState, error)
}

// HTMLPageStateExtractor is the default implementation: it tokenizes HTML
// with golang.org/x/net/html (the ecosystem's standard tokenizer — no
// example repo in the pack carries a scraping dependency, so this is an
// out-of-pack addition, see DESIGN.md), stripping script/style/comments,
// collapsing whitespace, and truncating every field to the spec's caps.
type HTMLPageStateExtractor struct{}

// NewHTMLPageStateExtractor builds the default extractor.
func NewHTMLPageStateExtractor() *HTMLPageStateExtractor { return &HTMLPageStateExtractor{} }

// Extract parses rawHTML into a capped PageState.
func (HTMLPageStateExtractor) Extract(url, rawHTML string) (PageState, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return PageState{}, err
	}

	state := PageState{URL: url}
	var visibleText strings.Builder
	var simplified strings.Builder

	var walk func(n *html.Node, skip bool)
	walk = func(n *html.Node, skip bool) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				skip = true
			case "title":
				if n.FirstChild != nil && state.Title == "" {
					state.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if len(state.Links) < maxLinks {
					state.Links = append(state.Links, Link{Href: attr(n, "href"), Text: textOf(n)})
				}
			case "form":
				if len(state.Forms) < maxForms {
					state.Forms = append(state.Forms, extractForm(n))
				}
			case "button":
				if len(state.Clickables) < maxClickables {
					if t := textOf(n); t != "" {
						state.Clickables = append(state.Clickables, t)
					}
				}
			case "input":
				if strings.EqualFold(attr(n, "type"), "submit") && len(state.Clickables) < maxClickables {
					if v := attr(n, "value"); v != "" {
						state.Clickables = append(state.Clickables, v)
					}
				}
			}
			simplified.WriteString("<" + n.Data + ">")
		case html.TextNode:
			if !skip {
				text := strings.TrimSpace(n.Data)
				if text != "" {
					simplified.WriteString(text)
					visibleText.WriteString(text)
					visibleText.WriteString(" ")
				}
			}
		case html.CommentNode:
			// stripped entirely, never written to simplified or visible text
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, skip)
		}
	}
	walk(doc, false)

	state.SimplifiedHTML = collapseWhitespace(simplified.String())
	state.SimplifiedHTML = truncate(state.SimplifiedHTML, maxSimplifiedHTML)
	state.VisibleText = truncate(collapseWhitespace(visibleText.String()), maxVisibleText)

	return state, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func extractForm(n *html.Node) Form {
	f := Form{Action: attr(n, "action"), Method: attr(n, "method")}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "input" || n.Data == "select" || n.Data == "textarea") {
			if name := attr(n, "name"); name != "" {
				f.Inputs = append(f.Inputs, name)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return f
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + truncationMarker
}
