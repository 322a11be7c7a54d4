package views

import "github.com/a-h/templ"

func layout(cfg SiteConfig, title string, body func(p *page)) templ.Component {
	return component(func(p *page) {
		full := cfg.Name
		if title != "" {
			full = title + " · " + cfg.Name
		}
		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw("<title>")
		p.text(full)
		p.raw("</title>")
		if cfg.Description != "" {
			p.raw(`<meta name="description"`)
			p.attr("content", cfg.Description)
			p.raw(">")
		}
		p.raw(`<link rel="alternate" type="application/rss+xml" title="Reading list"`)
		p.attr("href", "/feed.xml")
		p.raw(`><link rel="stylesheet" href="/public/monk.css"></head><body>`)
		p.raw(`<header class="site-header"><a class="brand" href="/">`)
		p.text(cfg.Name)
		p.raw(`</a><nav><a href="/">Articles</a><a href="/add/">Add</a><a href="/admin/">Admin</a></nav></header><main>`)
		body(p)
		p.raw(`</main></body></html>`)
	})
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return layout(cfg, "Not found", func(p *page) {
		p.raw(`<h1>Not found</h1><p>That article is not in the collection.</p><p><a href="/">Back to the list</a></p>`)
	})
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return layout(cfg, "Error", func(p *page) {
		p.raw(`<h1>Something went wrong</h1><p>The server could not complete the request.</p>`)
	})
}
