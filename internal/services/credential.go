package services

import (
	"net/url"
	"strings"
)

// CredentialKey is the key expected by [BilibiliService.Authenticate].
const CredentialKey = "sessdata"

// Credential is the opaque session token sent as the sessdata cookie.
type Credential string

// CookieHeader returns the Cookie header value for the credential.
func (c Credential) CookieHeader() string {
	return CookieHeader(string(c))
}

// Map returns the credential in the form accepted by [Service.Authenticate].
func (c Credential) Map() map[string]string {
	return map[string]string{CredentialKey: string(c)}
}

// CookieHeader builds "sessdata=<token>" with every byte outside the RFC 3986
// unreserved set percent-encoded, spaces as %20.
func CookieHeader(token string) string {
	return CredentialKey + "=" + strings.ReplaceAll(url.QueryEscape(token), "+", "%20")
}
