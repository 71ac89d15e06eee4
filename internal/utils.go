package internal

import (
	"strings"
)

func StringContains(s []string, e string) bool {
	for _, item := range s {
		if item == e {
			return true
		}
	}
	return false
}

// RemovePassword masks the password part of a meta URL before it is logged.
func RemovePassword(uri string) string {
	atIdx := strings.LastIndex(uri, "@")
	if atIdx < 0 {
		return uri
	}
	start := 0
	if p := strings.Index(uri, "://"); p >= 0 && p < atIdx {
		start = p + 3
	}
	colon := strings.Index(uri[start:atIdx], ":")
	if colon < 0 {
		return uri
	}
	return uri[:start+colon+1] + "****" + uri[atIdx:]
}
