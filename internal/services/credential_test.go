package services

import (
	"strings"
	"testing"
)

func TestCookieHeader(t *testing.T) {
	tc := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "sessdata="},
		{name: "unreserved characters kept", token: "abc-DEF_123.~", want: "sessdata=abc-DEF_123.~"},
		{name: "equals and ampersand", token: "a=b&c", want: "sessdata=a%3Db%26c"},
		{name: "comma and star", token: "ab,cd*11", want: "sessdata=ab%2Ccd%2A11"},
		{name: "space is %20", token: "a b", want: "sessdata=a%20b"},
		{name: "plus is escaped", token: "a+b", want: "sessdata=a%2Bb"},
		{name: "percent is escaped", token: "a%2C", want: "sessdata=a%252C"},
		{name: "non-ascii", token: "é", want: "sessdata=%C3%A9"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := CookieHeader(tt.token); got != tt.want {
				t.Errorf("CookieHeader(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}

	t.Run("reserved characters never appear raw", func(t *testing.T) {
		got := CookieHeader("x=1&y=2;z")
		value := strings.TrimPrefix(got, "sessdata=")
		if strings.ContainsAny(value, "=&;") {
			t.Errorf("CookieHeader leaked reserved characters: %q", got)
		}
	})

	t.Run("Credential", func(t *testing.T) {
		c := Credential("a&b")
		if c.CookieHeader() != "sessdata=a%26b" {
			t.Errorf("Credential.CookieHeader() = %q", c.CookieHeader())
		}
		if c.Map()[CredentialKey] != "a&b" {
			t.Errorf("Credential.Map() = %v", c.Map())
		}
	})
}
