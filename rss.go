package monk

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// feedLimit caps the number of items in the reading list feed.
const feedLimit = 50

// renderRSS writes the reading list as RSS 2.0. Items link to the saved
// page; the GUID is the article's page on this site.
func (a *App) renderRSS(c echo.Context, articles []Article) error {
	base := a.Config.URL
	if len(articles) > feedLimit {
		articles = articles[:feedLimit]
	}
	items := make([]rssItem, 0, len(articles))
	for _, art := range articles {
		items = append(items, rssItem{
			Title:       art.Name,
			Link:        art.URL,
			Description: art.Description,
			Categories:  art.Tags,
			PubDate:     art.CreatedAt.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: BuildURL(base, "articles", art.ID), IsPermaLink: true},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
