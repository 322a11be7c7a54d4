package views

import "github.com/a-h/templ"

// AdminLogin renders the admin sign-in form.
func AdminLogin(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	return layout(cfg, "Admin", func(p *page) {
		p.raw(`<h1>Admin</h1>`)
		if showError {
			p.raw(`<p class="flash error">Wrong password, or too many attempts.</p>`)
		}
		p.raw(`<form method="post" action="/admin/login/" class="login">`)
		csrfField(p, csrfToken)
		p.raw(`<label>Password<input type="password" name="password" autocomplete="current-password" required></label>`)
		p.raw(`<button type="submit">Sign in</button></form>`)
	})
}

// AdminBar renders the signed-in notice with a logout button.
func AdminBar(csrfToken string) templ.Component {
	return component(func(p *page) {
		p.raw(`<form method="post" action="/admin/logout/" class="admin-bar">`)
		csrfField(p, csrfToken)
		p.raw(`<span>Signed in</span><button type="submit">Log out</button></form>`)
	})
}
