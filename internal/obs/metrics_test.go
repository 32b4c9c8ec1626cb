package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                               "/",
		"/metrics":                       "/metrics",
		"/auth/register":                 "/auth/register",
		"/users":                         "/users",
		"/users/profile/me":              "/users/profile/me",
		"/users/01J9ZX":                  "/users/:id",
		"/emotions/log":                  "/emotions/log",
		"/emotions/logs":                 "/emotions/logs",
		"/emotions/logs/01J9ZX":          "/emotions/logs/:id",
		"/emotions/logs/01J9ZX/feedback": "/emotions/logs/:id/feedback",
		"/emotions/logs/abc/extra":       "/emotions/logs/abc/extra",
		"/emotions/logs?page=2":          "/emotions/logs",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
