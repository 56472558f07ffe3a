// Package services defines the [Service] interface for the platform API and implements it for Bilibili.
//
// # Bilibili Implementation
//
// [BilibiliService] issues plain GET requests authenticated by the SESSDATA cookie.
// The cookie value is built by [CookieHeader], which percent-encodes the raw token.
//
// Endpoints:
//   - /x/v3/fav/resource/list : one page (20 entries) of a favorites folder
//   - /x/player/pagelist : the parts of a video
//   - /x/player/playurl (fnval=16) : the DASH descriptor for one part
//
// Audio bytes are fetched from the resolved CDN URL with Referer, Origin and a browser User-Agent,
// which the CDN requires.
//
// # Error Handling
//
// Every JSON response is wrapped in a {code, message, data} envelope and code is the only error signal:
//   - [shared.PlatformError] : non-zero envelope code, formatted "code:message"
//   - [shared.TransportError] : network failure, non-2xx status or undecodable body
//
// Fields missing from data decode to zero values.
//
// API requests are throttled by a [rate.Limiter] and bounded by the request timeout.
// Audio downloads use a separate, longer timeout.
package services
