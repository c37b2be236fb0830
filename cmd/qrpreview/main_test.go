package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/qrpreview/config"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qrpreview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSign(t *testing.T) {
	t.Setenv("QRPREVIEW_TEST_SECRET", testSecret)
	path := writeConfig(t, "auth:\n  method: hmac\n  secret: ${QRPREVIEW_TEST_SECRET}\n")

	out, _, err := execute(t, "--config", path, "sign", "hello")
	if err != nil {
		t.Fatalf("sign error = %v", err)
	}
	token := strings.TrimSpace(out)
	if len(token) != 64 {
		t.Fatalf("token = %q, want 64 hex chars", token)
	}

	again, _, err := execute(t, "--config", path, "sign", "hello")
	if err != nil {
		t.Fatalf("sign error = %v", err)
	}
	if strings.TrimSpace(again) != token {
		t.Errorf("tokens differ across runs: %q vs %q", again, token)
	}
}

func TestSign_NoAuth(t *testing.T) {
	if _, _, err := execute(t, "sign", "hello"); err == nil {
		t.Fatal("expected error signing with auth.method none")
	}
}

func TestRender_Stdout(t *testing.T) {
	out, _, err := execute(t, "render", "hello", "--width", "100")
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	if !strings.HasPrefix(out, "<svg") {
		t.Fatalf("output does not start with <svg: %.40q", out)
	}
}

func TestRender_File(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	_, stderr, err := execute(t, "render", "hello", "--format", "png", "-o", dst)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}
	if !strings.Contains(stderr, "image/png") {
		t.Errorf("stderr = %q, want content type", stderr)
	}
}

func TestRender_BadRequest(t *testing.T) {
	if _, _, err := execute(t, "render", ""); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestInvalidConfig(t *testing.T) {
	path := writeConfig(t, "auth:\n  method: kerberos\n")
	if _, _, err := execute(t, "--config", path, "render", "hello"); err == nil {
		t.Fatal("expected config validation error")
	}
}

func TestApp_Routes(t *testing.T) {
	cfg := config.Default()
	cfg.Observe.Logging.Enabled = false

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(func() { _ = a.shutdown(ctx) })

	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)

	get := func(path string) (*http.Response, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return resp, buf.String()
	}

	q := url.Values{"data": {"https://example.com"}, "format": {"svg"}}
	resp, body := get("/preview?" + q.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/preview status = %d, body %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=3600, s-maxage=3600" {
		t.Errorf("Cache-Control = %q", got)
	}

	resp, _ = get("/preview?" + q.Encode())
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}

	if resp, _ := get("/preview"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing data status = %d, want 400", resp.StatusCode)
	}

	if resp, _ := get("/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}

	resp, body = get("/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, body %s", resp.StatusCode, body)
	}
	for _, name := range []string{"memory", "cache", "encoder"} {
		if !strings.Contains(body, name) {
			t.Errorf("/health body missing %q: %s", name, body)
		}
	}

	resp, body = get("/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "preview_requests") {
		t.Errorf("/metrics missing preview_requests")
	}

	if resp, _ := get("/preview/stats"); resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("/preview/stats without admin keys status = %d, want 404", resp.StatusCode)
	}
}
