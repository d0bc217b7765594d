package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "Samsung Galaxy A15", Normalize("\n\t Samsung   Galaxy \n A15 ​"))
	require.Equal(t, "", Normalize(" \n "))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<ul>
			<li><a href="/c/1">  Chapter
				1 </a></li>
			<li><a href="https://other.example/c/2">Chapter 2</a></li>
			<li><a>no href</a></li>
		</ul>`))
	require.NoError(t, err)

	base, err := url.Parse("https://novels.example/novel/x/chapters")
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), base, doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "Chapter 1", Href: "https://novels.example/c/1"},
		{Name: "Chapter 2", Href: "https://other.example/c/2"},
	}, anchors)
}

func TestFindText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div><span class="price"> 19.990 <b>Lekë</b></span><span class="price">2</span></div>`,
	))
	require.NoError(t, err)
	require.Equal(t, "19.990 Lekë", FindText(doc.Selection, "span.price"))
	require.Equal(t, "", FindText(doc.Selection, "bdi"))
}
