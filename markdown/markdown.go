// Package markdown renders the small Markdown subset used in article notes:
// paragraphs, headings, bullet and numbered lists, quotes, fenced code and
// inline emphasis, code and links.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic      = regexp.MustCompile(`\*([^*]+)\*`)
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reLink        = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrderedItem = regexp.MustCompile(`^\d+\.\s`)
)

type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrdered
	blockQuote
	blockCode
)

var closers = map[block]string{
	blockPara:    "</p>",
	blockList:    "</ul>",
	blockOrdered: "</ol>",
	blockQuote:   "</blockquote>",
	blockCode:    "</code></pre>",
}

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(md string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, md)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// Render writes the HTML form of md to buf. All text is escaped.
func Render(buf *bytes.Buffer, md string) {
	cur := blockNone
	open := func(b block, tag string) {
		if cur == b {
			return
		}
		buf.WriteString(closers[cur])
		buf.WriteString(tag)
		cur = b
	}
	closeBlock := func() {
		buf.WriteString(closers[cur])
		cur = blockNone
	}

	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimRight(raw, "\r")

		if strings.HasPrefix(line, "```") {
			if cur == blockCode {
				closeBlock()
			} else {
				open(blockCode, "<pre><code>")
			}
			continue
		}
		if cur == blockCode {
			buf.WriteString(html.EscapeString(line))
			buf.WriteByte('\n')
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeBlock()
		case strings.HasPrefix(line, "#"):
			level := len(line) - len(strings.TrimLeft(line, "#"))
			if level > 3 || !strings.HasPrefix(line[level:], " ") {
				writePara(buf, &cur, trimmed)
				continue
			}
			closeBlock()
			tag := "h" + strconv.Itoa(level)
			buf.WriteString("<" + tag + ">" + FormatInline(strings.TrimSpace(line[level:])) + "</" + tag + ">")
		case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* "):
			open(blockList, "<ul>")
			buf.WriteString("<li>" + FormatInline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrderedItem.MatchString(line):
			open(blockOrdered, "<ol>")
			buf.WriteString("<li>" + FormatInline(strings.TrimSpace(reOrderedItem.ReplaceAllString(line, ""))) + "</li>")
		case strings.HasPrefix(line, "> "):
			open(blockQuote, "<blockquote>")
			buf.WriteString(FormatInline(strings.TrimSpace(line[2:])))
		default:
			writePara(buf, &cur, trimmed)
		}
	}
	closeBlock()
}

func writePara(buf *bytes.Buffer, cur *block, text string) {
	if *cur == blockPara {
		buf.WriteByte(' ')
	} else {
		buf.WriteString(closers[*cur])
		buf.WriteString("<p>")
		*cur = blockPara
	}
	buf.WriteString(FormatInline(text))
}

// FormatInline escapes s and applies links, inline code, bold and italic.
func FormatInline(s string) string {
	out := html.EscapeString(s)

	// Code spans are swapped for placeholders so emphasis never reaches inside them.
	var spans []string
	out = reInlineCode.ReplaceAllStringFunc(out, func(m string) string {
		spans = append(spans, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(spans)-1) + "\x00"
	})
	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `" target="_blank" rel="noopener noreferrer">` + match[1] + `</a>`
	})
	out = outsideTags(out, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		return reItalic.ReplaceAllString(seg, "<em>$1</em>")
	})
	for i, span := range spans {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", span, 1)
	}
	return out
}

// outsideTags applies fn to the text between HTML tags only.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// SafeURL returns raw escaped for an href attribute, or "" when its scheme
// is not http, https or mailto. Relative paths and fragments are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto":
		return html.EscapeString(val)
	}
	return ""
}
