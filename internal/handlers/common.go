// Package handlers exposes the services as JSON endpoints.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/services"
)

func listParams(r *http.Request) services.ListParams {
	limit, offset := httpx.Paging(r, 50, 500)
	return services.ListParams{Query: strings.TrimSpace(r.URL.Query().Get("q")), Limit: limit, Offset: offset}
}

// currentUser returns the authenticated user id, if any.
func currentUser(r *http.Request) *uint {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		return &uid
	}
	return nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
