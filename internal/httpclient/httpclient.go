// Package httpclient builds the HTTP client used for outbound API calls.
// Requests may only use http(s) and, unless allowed, never reach loopback,
// private or link-local addresses, including through redirects.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// DefaultMaxRedirects bounds redirect chains
const DefaultMaxRedirects = 10

// Options tunes a Client
type Options struct {
	Timeout      time.Duration
	MaxRedirects int  // 0 = DefaultMaxRedirects
	AllowPrivate bool // permit loopback and private networks (self-hosted gateways)
}

// Client is an http.Client that checks every URL it is asked to reach
type Client struct {
	*http.Client
	allowPrivate bool
}

// New builds a Client
func New(opts Options) *Client {
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	c := &Client{Client: &http.Client{Timeout: opts.Timeout}, allowPrivate: opts.AllowPrivate}

	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= opts.MaxRedirects {
			return errors.Newf("stopped after %d redirects", opts.MaxRedirects)
		}
		return errors.Wrap(c.Check(req.URL), "redirect blocked")
	}

	if !opts.AllowPrivate {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		c.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, errors.Wrap(err, "invalid address")
				}
				addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
				if err != nil {
					return nil, errors.Wrapf(err, "resolve %q", host)
				}
				for _, ip := range addrs {
					if Private(ip) {
						return nil, errors.Newf("private address blocked: %s", ip)
					}
				}
				// dial the address that was checked, not a fresh lookup
				return dialer.DialContext(ctx, network, net.JoinHostPort(addrs[0].String(), port))
			},
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		}
	}
	return c
}

// Wrap adopts an existing client, such as an httptest server's, with
// private addresses allowed.
func Wrap(hc *http.Client) *Client {
	return &Client{Client: hc, allowPrivate: true}
}

// Check rejects URLs the client must not reach
func (c *Client) Check(u *url.URL) error {
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return errors.Newf("scheme %q not allowed", u.Scheme)
	}
	if u.User != nil {
		return errors.New("credentials in URL not allowed")
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("URL has no host")
	}
	if c.allowPrivate {
		return nil
	}
	if h := strings.ToLower(host); h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return errors.New("localhost blocked")
	}
	if ip, err := netip.ParseAddr(host); err == nil && Private(ip) {
		return errors.Newf("private address blocked: %s", host)
	}
	return nil
}

// Do checks the request URL before sending it
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.Check(req.URL); err != nil {
		return nil, errors.Wrap(err, "request blocked")
	}
	return c.Client.Do(req)
}

// Private reports whether ip is loopback, private, link-local, multicast,
// unspecified or otherwise not publicly routable.
func Private(ip netip.Addr) bool {
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() || ip.IsUnspecified() || ip.IsInterfaceLocalMulticast() {
		return true
	}
	if ip.Is4() {
		b := ip.As4()
		return b[0] == 0 || b[0] >= 240
	}
	return false
}
