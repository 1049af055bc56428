// Package cookies exports browser cookies into the Netscape file format the extractor reads.
package cookies

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fetcharr/internal/domain/consts"
	"fetcharr/internal/domain/logger"
	"fetcharr/internal/platform"

	"github.com/browserutils/kooky"
	// Use all browsers for Kooky:
	_ "github.com/browserutils/kooky/browser/all"
)

// ErrNoCookies is returned when no browser held cookies for the requested domains.
var ErrNoCookies = errors.New("no cookies found")

// Source loads cookies for one registrable domain.
type Source func(ctx context.Context, domain string) ([]*http.Cookie, error)

// BrowserSource reads valid cookies from every browser profile kooky can find.
func BrowserSource(ctx context.Context, domain string) ([]*http.Cookie, error) {
	kookyCookies, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(domain))
	if err != nil && len(kookyCookies) == 0 {
		return nil, fmt.Errorf("failed reading browser cookies for %s: %w", domain, err)
	}
	if err != nil {
		logger.Pl.D(2, "Some cookie stores could not be read for %s: %v", domain, err)
	}
	return convertToHTTPCookies(kookyCookies), nil
}

// convertToHTTPCookies converts kooky cookies to http.Cookie format.
func convertToHTTPCookies(kookyCookies []*kooky.Cookie) []*http.Cookie {
	httpCookies := make([]*http.Cookie, len(kookyCookies))
	for i, c := range kookyCookies {
		httpCookies[i] = &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
	return httpCookies
}

// Export collects cookies for each domain and writes them to path with owner-only permissions.
//
// Returns the number of cookies written.
func Export(ctx context.Context, src Source, domains []string, path string) (int, error) {
	if src == nil {
		src = BrowserSource
	}

	var all []*http.Cookie
	for _, d := range domains {
		d = platform.NormalizeDomain(d)
		if d == "" {
			continue
		}
		found, err := src(ctx, d)
		if err != nil {
			logger.Pl.W("Skipping %s: %v", d, err)
			continue
		}
		logger.Pl.I("Found %d cookies for %s", len(found), d)
		all = mergeCookies(all, found)
	}
	if len(all) == 0 {
		return 0, fmt.Errorf("%w for %s", ErrNoCookies, strings.Join(domains, ", "))
	}

	if err := writeFileAtomic(path, all); err != nil {
		return 0, err
	}
	logger.Pl.S("Wrote %d cookies to %q", len(all), path)
	return len(all), nil
}

// WriteNetscape writes cookies in the Netscape cookies.txt layout.
func WriteNetscape(w io.Writer, cookies []*http.Cookie) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("# Netscape HTTP Cookie File\n# https://curl.haxx.se/rfc/cookie_spec.html\n# This is a generated file! Do not edit.\n\n"); err != nil {
		return err
	}

	for _, c := range cookies {
		if c.Domain == "" || c.Name == "" {
			continue
		}
		domain := c.Domain
		includeSub := "FALSE"
		if strings.HasPrefix(domain, ".") {
			includeSub = "TRUE"
		}
		if c.HttpOnly {
			domain = "#HttpOnly_" + domain
		}

		path := c.Path
		if path == "" {
			path = "/"
		}

		secure := "FALSE"
		if c.Secure {
			secure = "TRUE"
		}

		expires := int64(0)
		if !c.Expires.IsZero() {
			expires = c.Expires.Unix()
		}

		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, includeSub, path, secure, expires, c.Name, c.Value); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeFileAtomic writes to a temp file beside path, then renames it into place.
func writeFileAtomic(path string, cookies []*http.Cookie) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, consts.PermsGenericDir); err != nil {
		return fmt.Errorf("failed to create %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*.txt")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				logger.Pl.E("Failed to remove temp cookie file %q: %v", tmp.Name(), rmErr)
			}
		}
	}()

	if err = tmp.Chmod(consts.PermsCookieFile); err != nil {
		tmp.Close()
		return err
	}
	if err = WriteNetscape(tmp, cookies); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// mergeCookies dedupes by domain, path and name; the later expiry wins.
func mergeCookies(existing, incoming []*http.Cookie) []*http.Cookie {
	cookieMap := make(map[string]*http.Cookie, len(existing)+len(incoming))
	for _, set := range [][]*http.Cookie{existing, incoming} {
		for _, c := range set {
			key := c.Domain + "|" + c.Path + "|" + c.Name
			if prev, ok := cookieMap[key]; ok && prev.Expires.After(c.Expires) {
				continue
			}
			cookieMap[key] = c
		}
	}

	merged := make([]*http.Cookie, 0, len(cookieMap))
	for _, c := range cookieMap {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Domain != merged[j].Domain {
			return merged[i].Domain < merged[j].Domain
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}
