package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from listing copy pasted in from the CMS. Text
// without markup is returned unchanged.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}

	// Block elements would otherwise glue adjacent words together
	doc.Find("br, p, li, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AfterHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}
