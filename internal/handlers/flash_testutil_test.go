package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newGetRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, target, nil)
}
