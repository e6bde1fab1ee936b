// Package tenant resolves the effective configuration a merchant's orders are
// priced with. The tenant is always passed explicitly as a Context value.
package tenant

import (
	"net"
	"net/http"
	"strings"
)

// BrandHeader selects the brand explicitly.
const BrandHeader = "X-Brand-Key"

// Context identifies the tenant a request is served for.
type Context struct {
	BrandKey string
	Hostname string
}

// FromRequest reads the brand header and the request host.
func FromRequest(r *http.Request) Context {
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return Context{
		BrandKey: strings.ToLower(strings.TrimSpace(r.Header.Get(BrandHeader))),
		Hostname: host,
	}
}

// HostBrand derives a brand key from the leftmost label of the hostname,
// e.g. "acme.pay.example.com" → "acme". Bare domains, IPs and the www/api
// labels yield "".
func (c Context) HostBrand() string {
	host := strings.ToLower(c.Hostname)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || net.ParseIP(host) != nil {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	switch labels[0] {
	case "www", "api":
		return ""
	}
	return labels[0]
}

// Brand returns the explicit brand, else the hostname-derived one, else
// fallback.
func (c Context) Brand(fallback string) string {
	if c.BrandKey != "" {
		return c.BrandKey
	}
	if b := c.HostBrand(); b != "" {
		return b
	}
	return fallback
}
