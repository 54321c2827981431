package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, data PageData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Page(&buf, data))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestPageRendersDropdownAndCards(t *testing.T) {
	doc := renderPage(t, PageData{
		Cities: []CityOption{
			{Index: 0, Name: "Montreal"},
			{Index: 1, Name: "Oslo", Selected: true},
		},
		Cards: []Card{{
			DateLabel: "Mon, Jan 1",
			City:      "Oslo",
			Icon:      "/images/clear.png",
			IconAlt:   "clear",
			Weather:   "Clear",
			High:      "5°C",
			Low:       "-2°C",
		}},
	})

	options := doc.Find("#citySelect option")
	require.Equal(t, 2, options.Length())
	assert.Equal(t, "Montreal", options.Eq(0).Text())
	assert.Equal(t, "0", options.Eq(0).AttrOr("value", ""))
	_, selected := options.Eq(1).Attr("selected")
	assert.True(t, selected)

	cards := doc.Find("article.forecast-card")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "Mon, Jan 1", cards.Find("h3").Text())
	assert.Equal(t, "Oslo", cards.Find("p.city").Text())
	assert.Equal(t, "/images/clear.png", cards.Find("img.weather-icon").AttrOr("src", ""))
	assert.Equal(t, "Clear", cards.Find("p.weather-text").Text())

	spans := cards.Find(".temps span")
	assert.Equal(t, "High: 5°C", strings.TrimSpace(spans.Eq(0).Text()))
	assert.Equal(t, "Low: -2°C", strings.TrimSpace(spans.Eq(1).Text()))

	assert.Equal(t, 0, doc.Find(`meta[http-equiv="refresh"]`).Length())
}

func TestPageLoadingRefreshes(t *testing.T) {
	doc := renderPage(t, PageData{Status: "Loading forecast...", Loading: true})

	assert.Equal(t, "Loading forecast...", doc.Find("#status").Text())
	assert.Equal(t, "2", doc.Find(`meta[http-equiv="refresh"]`).AttrOr("content", ""))
	assert.Equal(t, 0, doc.Find("article.forecast-card").Length())
}

func TestPageEscapesCityNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Page(&buf, PageData{
		Cities: []CityOption{{Index: 0, Name: "<script>alert(1)</script>"}},
	}))
	assert.NotContains(t, buf.String(), "<script>alert(1)</script>")
}
