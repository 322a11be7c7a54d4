package monk

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// SplitTags parses a comma-separated form value into normalized tags.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTags lowercases and trims tags, drops empty ones and duplicates,
// and keeps first-seen order. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" || strings.Contains(t, ",") {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// filterByTag returns the articles carrying tag.
func filterByTag(articles []Article, tag string) []Article {
	tag = normalizeTag(tag)
	filtered := []Article{}
	for _, a := range articles {
		for _, t := range a.Tags {
			if t == tag {
				filtered = append(filtered, a)
				break
			}
		}
	}
	return filtered
}

// joinTagColumn encodes tags for storage as ",a,b," so a tag can be
// matched with a single substring test.
func joinTagColumn(tags []string) string {
	return "," + strings.Join(NormalizeTags(tags), ",") + ","
}

// ParseTags splits a stored tag column (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return []string{}
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// collectTags returns the sorted, deduplicated tags of the given tag columns.
func collectTags(columns []string) []string {
	set := make(map[string]struct{})
	for _, col := range columns {
		for _, t := range ParseTags(col) {
			set[t] = struct{}{}
		}
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result
}

// validArticleURL reports whether raw is an absolute http(s) URL.
func validArticleURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
