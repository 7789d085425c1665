package service

import "github.com/microcosm-cc/bluemonday"

var (
	// contentPolicy allows the usual user-generated-content markup in
	// article bodies, thread bodies and comments.
	contentPolicy = bluemonday.UGCPolicy()

	// strictPolicy strips all markup from titles, names and excerpts.
	strictPolicy = bluemonday.StrictPolicy()
)

func sanitizeContent(s string) string {
	return contentPolicy.Sanitize(s)
}

func sanitizeText(s string) string {
	return strictPolicy.Sanitize(s)
}
