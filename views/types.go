package views

// SiteConfig holds site-wide settings every page template reads.
type SiteConfig struct {
	Name        string // MONK_NAME (default "monk")
	URL         string // MONK_URL  (default "http://localhost:3000")
	Description string
}

// Article is the template-facing form of a saved article.
type Article struct {
	ID          string
	Name        string
	URL         string
	Description string
	Tags        []string
	Cover       string // path under /public/, empty when none
	Saved       string // YYYY-MM-DD
}

// ListState carries everything the article list page renders.
type ListState struct {
	Articles  []Article
	Tags      []string
	ActiveTag string
	Layout    string // "table" or "cards"
	Admin     bool
	CSRFToken string
	Message   string
}

// PopupState is what the extension popup shows.
type PopupState struct {
	Destination string
	Dump        string // indented JSON of the held page info
	Error       string // when set, nothing else is shown
}
