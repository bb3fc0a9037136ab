package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ProblemDetails is an RFC 7807 problem body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// Problem builds a problem titled with the standard status text.
func Problem(status int, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

func (pd *ProblemDetails) Error() string {
	return fmt.Sprintf("%d %s: %s", pd.Status, pd.Title, pd.Detail)
}

func (pd *ProblemDetails) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	_ = json.NewEncoder(w).Encode(pd)
}

func WriteInternalServerError(w http.ResponseWriter, err error, instance string) {
	Problem(http.StatusInternalServerError, err.Error(), instance).Write(w)
}

// NotFound and MethodNotAllowed plug the problem writer into a router.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Problem(http.StatusNotFound, "No route for "+r.URL.Path, r.URL.Path).Write(w)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, OPTIONS")
	Problem(http.StatusMethodNotAllowed, r.Method+" is not supported, use GET.", r.URL.Path).Write(w)
}
