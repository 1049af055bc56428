package cookies

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteNetscape(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1900000000, 0)
	var buf bytes.Buffer
	err := WriteNetscape(&buf, []*http.Cookie{
		{Domain: ".youtube.com", Path: "/", Name: "SID", Value: "abc", Secure: true, HttpOnly: true, Expires: exp},
		{Domain: "www.tiktok.com", Name: "tt", Value: "1"},
		{Domain: "", Name: "orphan", Value: "x"},
	})
	if err != nil {
		t.Fatalf("WriteNetscape: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "# Netscape HTTP Cookie File\n") {
		t.Fatalf("missing header:\n%s", out)
	}
	for _, want := range []string{
		"#HttpOnly_.youtube.com\tTRUE\t/\tTRUE\t1900000000\tSID\tabc\n",
		"www.tiktok.com\tFALSE\t/\tFALSE\t0\ttt\t1\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing line %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "orphan") {
		t.Fatalf("cookies without a domain must be skipped:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	older := time.Now().Add(time.Hour)
	newer := time.Now().Add(24 * time.Hour)
	var asked []string
	src := func(_ context.Context, domain string) ([]*http.Cookie, error) {
		asked = append(asked, domain)
		switch domain {
		case "youtube.com":
			return []*http.Cookie{
				{Domain: ".youtube.com", Path: "/", Name: "SID", Value: "old", Expires: older},
				{Domain: ".youtube.com", Path: "/", Name: "SID", Value: "new", Expires: newer},
			}, nil
		default:
			return nil, errors.New("locked profile")
		}
	}

	out := filepath.Join(t.TempDir(), "auth", "cookies.txt")
	n, err := Export(context.Background(), src, []string{"www.youtube.com", "instagram.com"}, out)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected duplicates merged into 1 cookie, got %d", n)
	}
	if len(asked) != 2 || asked[0] != "youtube.com" {
		t.Fatalf("domains should be normalized before lookup, got %v", asked)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("cookie file perms = %o, want 600", perm)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "\tSID\tnew\n") {
		t.Fatalf("later expiry should win:\n%s", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}

func TestExportNothingFound(t *testing.T) {
	t.Parallel()

	src := func(context.Context, string) ([]*http.Cookie, error) { return nil, nil }
	out := filepath.Join(t.TempDir(), "cookies.txt")
	if _, err := Export(context.Background(), src, []string{"facebook.com"}, out); !errors.Is(err, ErrNoCookies) {
		t.Fatalf("err = %v, want ErrNoCookies", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("no file should be written when nothing was found")
	}
}
