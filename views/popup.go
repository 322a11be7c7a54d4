package views

import "github.com/a-h/templ"

// Popup renders the extension popup. An error replaces the whole view. The
// upload button submits nothing; the host wires its click to Controller.Upload.
func Popup(s PopupState) templ.Component {
	return component(func(p *page) {
		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>monk</title></head><body class="popup">`)
		defer p.raw(`</body></html>`)
		if s.Error != "" {
			p.raw(`<p class="error">Error: `)
			p.text(s.Error)
			p.raw("</p>")
			return
		}
		p.raw(`<p>Add to monk?</p><pre>`)
		p.text(s.Dump)
		p.raw(`</pre><button type="button" id="upload">Upload</button>`)
		if s.Destination != "" {
			p.raw(`<p class="destination">`)
			p.text(s.Destination)
			p.raw("</p>")
		}
	})
}
