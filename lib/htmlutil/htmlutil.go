package htmlutil

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("sitecrawl/htmlutil")

// GetText concatenates every text node under node.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	return out.String()
}

// Normalize strips non-printable characters, trims and collapses runs of
// whitespace into a single space.
func Normalize(text string) string {
	text = removeNonPrintable(text)
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

// Text returns the normalized text of the first node in sel, or "" if sel
// is empty.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return Normalize(GetText(sel.Nodes[0]))
}

// FindText is Text(sel.Find(selector)).
func FindText(sel *goquery.Selection, selector string) string {
	return Text(sel.Find(selector).First())
}

type Anchor struct {
	Name string
	Href string
}

// GetAnchors reads every anchor in sel, hrefs are resolved against base
// when it is not nil. Anchors without an href or with one that fails to
// parse are skipped.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = strings.TrimSpace(a.Val)
				break
			}
		}
		if href == "" {
			continue
		}

		link, err := url.Parse(href)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := Normalize(GetText(n))
		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}
