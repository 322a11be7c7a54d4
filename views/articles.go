package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/monk/markdown"
)

// Home renders the article list with tag filter and layout toggle.
func Home(cfg SiteConfig, s ListState) templ.Component {
	return layout(cfg, "", func(p *page) {
		p.raw(`<section class="list-header"><h1>Saved articles</h1><div class="layout-toggle">`)
		for _, l := range []string{"table", "cards"} {
			p.raw("<a")
			p.attr("href", ListHref(s.ActiveTag, l))
			if l == s.Layout {
				p.raw(` class="active" aria-current="true"`)
			}
			p.raw(">")
			p.text(l)
			p.raw("</a>")
		}
		p.raw("</div></section>")
		if s.Admin {
			p.component(AdminBar(s.CSRFToken))
		}
		if s.Message != "" {
			p.raw(`<p class="flash">`)
			p.text(s.Message)
			p.raw("</p>")
		}
		if len(s.Tags) > 0 {
			p.raw(`<nav class="tags"><a`)
			p.attr("class", TagClass(s.ActiveTag == ""))
			p.attr("href", ListHref("", s.Layout))
			p.raw(">all</a>")
			for _, t := range s.Tags {
				p.raw("<a")
				p.attr("class", TagClass(t == s.ActiveTag))
				p.attr("href", ListHref(t, s.Layout))
				p.raw(">")
				p.text(t)
				p.raw("</a>")
			}
			p.raw("</nav>")
		}
		if len(s.Articles) == 0 {
			p.raw(`<p class="empty">Nothing saved yet.</p>`)
			return
		}
		if s.Layout == "cards" {
			p.component(ArticleCards(s.Articles))
		} else {
			p.component(ArticleTable(s.Articles))
		}
	})
}

// ArticleTable renders articles as table rows.
func ArticleTable(articles []Article) templ.Component {
	return component(func(p *page) {
		p.raw(`<table class="articles"><thead><tr><th>Name</th><th>Url</th><th>Saved</th><th></th></tr></thead><tbody>`)
		for _, a := range articles {
			p.raw("<tr><td><a")
			p.attr("href", ArticleHref(a.ID))
			p.raw(">")
			p.text(a.Name)
			p.raw("</a></td><td><a")
			p.attr("href", a.URL)
			p.raw(` target="_blank" rel="noopener noreferrer">`)
			p.text(Host(a.URL))
			p.raw("</a></td><td>")
			p.text(a.Saved)
			p.raw("</td><td>")
			writeTags(p, a.Tags)
			p.raw("</td></tr>")
		}
		p.raw("</tbody></table>")
	})
}

// ArticleCards renders articles as cards.
func ArticleCards(articles []Article) templ.Component {
	return component(func(p *page) {
		p.raw(`<div class="cards">`)
		for _, a := range articles {
			p.raw(`<article class="card">`)
			if a.Cover != "" {
				p.raw(`<img loading="lazy" alt=""`)
				p.attr("src", a.Cover)
				p.raw(">")
			}
			p.raw("<h2><a")
			p.attr("href", ArticleHref(a.ID))
			p.raw(">")
			p.text(a.Name)
			p.raw(`</a></h2><p class="host">`)
			p.text(Host(a.URL))
			p.raw("</p>")
			writeTags(p, a.Tags)
			p.raw("</article>")
		}
		p.raw("</div>")
	})
}

func writeTags(p *page, tags []string) {
	for _, t := range tags {
		p.raw("<a")
		p.attr("class", TagClass(false))
		p.attr("href", ListHref(t, ""))
		p.raw(">")
		p.text(t)
		p.raw("</a>")
	}
}

// ArticlePage renders one article. Admins also get the edit, cover and
// delete forms.
func ArticlePage(cfg SiteConfig, a Article, admin bool, csrfToken string) templ.Component {
	return layout(cfg, a.Name, func(p *page) {
		p.raw(`<article class="article">`)
		if a.Cover != "" {
			p.raw(`<img class="cover" alt=""`)
			p.attr("src", a.Cover)
			p.raw(">")
		}
		p.raw("<h1>")
		p.text(a.Name)
		p.raw(`</h1><p class="meta"><a`)
		p.attr("href", a.URL)
		p.raw(` target="_blank" rel="noopener noreferrer">`)
		p.text(a.URL)
		p.raw("</a> · saved ")
		p.text(a.Saved)
		p.raw("</p>")
		writeTags(p, a.Tags)
		if a.Description != "" {
			p.raw(`<div class="description">`)
			p.component(markdown.Markdown(a.Description))
			p.raw("</div>")
		}
		p.raw(`<p class="permalink"><a`)
		p.attr("href", buildURL(cfg.URL, "articles", a.ID))
		p.raw(">permalink</a></p></article>")
		if admin {
			writeEditForms(p, a, csrfToken)
		}
	})
}

func writeEditForms(p *page, a Article, csrfToken string) {
	base := ArticleHref(a.ID)
	p.raw(`<section class="admin"><h2>Edit</h2><form method="post"`)
	p.attr("action", base+"edit/")
	p.raw(">")
	csrfField(p, csrfToken)
	p.raw(`<label>Name<input name="name" required`)
	p.attr("value", a.Name)
	p.raw(`></label><label>Tags<input name="tags"`)
	p.attr("value", JoinTags(a.Tags))
	p.raw(`></label><label>Description<textarea name="description" rows="6">`)
	p.text(a.Description)
	p.raw(`</textarea></label><button type="submit">Save</button></form>`)

	p.raw(`<form method="post" enctype="multipart/form-data"`)
	p.attr("action", base+"cover/")
	p.raw(">")
	csrfField(p, csrfToken)
	p.raw(`<label>Cover image<input type="file" name="image" accept="image/*" required></label><button type="submit">Upload cover</button></form>`)

	p.raw(`<form method="post"`)
	p.attr("action", base+"delete/")
	p.raw(">")
	csrfField(p, csrfToken)
	p.raw(`<button class="danger" type="submit">Delete</button></form></section>`)
}

func csrfField(p *page, token string) {
	p.raw(`<input type="hidden" name="_csrf"`)
	p.attr("value", token)
	p.raw(">")
}

// AdderForm renders the form for saving an article by hand.
func AdderForm(cfg SiteConfig, csrfToken, message string) templ.Component {
	return layout(cfg, "Add", func(p *page) {
		p.raw(`<h1>Add to monk</h1>`)
		if message != "" {
			p.raw(`<p class="flash">`)
			p.text(message)
			p.raw("</p>")
		}
		p.raw(`<form method="post" action="/add/" class="adder">`)
		csrfField(p, csrfToken)
		p.raw(`<label>Url<input type="url" name="url" placeholder="https://example.com" required></label>`)
		p.raw(`<label>Title<input name="name" placeholder="Fetched from the page when empty"></label>`)
		p.raw(`<label>Tags<input name="tags" placeholder="go, reading"></label>`)
		p.raw(`<label>Description<textarea name="description" rows="4"></textarea></label>`)
		p.raw(`<button type="submit">Add to monk</button></form>`)
	})
}
