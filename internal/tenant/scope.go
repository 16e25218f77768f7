package tenant

import (
	"net/url"
	"strings"
)

// scopeParam is the query parameter carrying the active knowledge-base id
// on every tenant-scoped request.
const scopeParam = "kbId"

// ScopeURL augments a collaborator-bound request path with the active
// knowledge-base id, preserving any existing query string verbatim:
//
//	/api/articles          -> /api/articles?kbId=kb1
//	/api/articles?sort=asc -> /api/articles?sort=asc&kbId=kb1
//
// When no knowledge base is active the path is returned unmodified; the
// backend rejects unscoped tenant-sensitive requests itself. Data accessors
// in this module check Active before dispatching, so an unscoped call can
// only originate upstream.
func (r *Resolver) ScopeURL(path string) string {
	id, err := r.Active()
	if err != nil {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	return path + sep + scopeParam + "=" + url.QueryEscape(id.String())
}
