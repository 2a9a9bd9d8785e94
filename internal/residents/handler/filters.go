package handler

import (
	"net/url"
	"strings"
)

// groupByParam reads the breakdown column. Column names are identifiers, so
// surrounding whitespace is dropped.
func groupByParam(form url.Values) string {
	return strings.TrimSpace(form.Get("by"))
}
