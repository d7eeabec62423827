package omdb

import (
	"net/url"
	"strconv"
)

// SearchParams builds a search lookup: s=<term>&type=<kind>&page=<page>.
func SearchParams(term, kind string, page int) url.Values {
	v := url.Values{}
	v.Set("s", term)
	if kind != "" {
		v.Set("type", kind)
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}

// IDParams builds a detail lookup by external identifier.
func IDParams(id string) url.Values {
	return url.Values{"i": {id}}
}

// TitleParams builds a detail lookup by title.
func TitleParams(title string) url.Values {
	return url.Values{"t": {title}}
}

// lookupKind names a parameter set for metric labels.
func lookupKind(params url.Values) string {
	switch {
	case params.Has("s"):
		return "search"
	case params.Has("i"):
		return "id"
	case params.Has("t"):
		return "title"
	default:
		return "other"
	}
}
