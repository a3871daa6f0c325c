package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	manager, err := NewTLSManagerWithConfig(&TLSConfig{})
	if err != nil {
		t.Fatalf("Failed to create TLS manager: %v", err)
	}
	if manager.IsEnabled() {
		t.Error("TLS should be disabled")
	}
	if manager.GetTLSConfig() != nil {
		t.Error("TLS config should be nil when TLS is disabled")
	}
	if manager.NeedsHTTPServer() {
		t.Error("no HTTP listener needed without TLS")
	}
}

func TestTLSConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config TLSConfig
	}{
		{"empty domain", TLSConfig{EnableTLS: true, EnableLetsEncrypt: true, LetsEncryptEmail: "ops@retrobasic.dev"}},
		{"empty email", TLSConfig{EnableTLS: true, EnableLetsEncrypt: true, Domain: "retrobasic.dev"}},
		{"no key file", TLSConfig{EnableTLS: true, CertFile: "server.crt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &TLSManager{config: &tt.config}
			if err := manager.validateConfig(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLetsEncryptSetup(t *testing.T) {
	manager, err := NewTLSManagerWithConfig(&TLSConfig{
		EnableTLS:         true,
		EnableLetsEncrypt: true,
		Domain:            "retrobasic.dev",
		LetsEncryptEmail:  "ops@retrobasic.dev",
		CertCacheDir:      filepath.Join(t.TempDir(), "certs"),
	})
	if err != nil {
		t.Fatalf("NewTLSManagerWithConfig: %v", err)
	}
	if manager.GetTLSConfig() == nil {
		t.Fatal("expected a TLS config")
	}
	if !manager.NeedsHTTPServer() {
		t.Error("ACME challenges need the HTTP listener")
	}
	if _, err := os.Stat(manager.config.CertCacheDir); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}

func writeTestCertificate(t *testing.T, dir string) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}

	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0600); err != nil {
		t.Fatal(err)
	}
	return certFile, keyFile
}

func TestManualCertificate(t *testing.T) {
	certFile, keyFile := writeTestCertificate(t, t.TempDir())

	manager, err := NewTLSManagerWithConfig(&TLSConfig{EnableTLS: true, CertFile: certFile, KeyFile: keyFile})
	if err != nil {
		t.Fatalf("NewTLSManagerWithConfig: %v", err)
	}
	cfg := manager.GetTLSConfig()
	if cfg == nil || len(cfg.Certificates) != 1 {
		t.Fatalf("expected one certificate, got %+v", cfg)
	}

	if _, err := NewTLSManagerWithConfig(&TLSConfig{EnableTLS: true, CertFile: certFile, KeyFile: certFile + ".missing"}); err == nil {
		t.Error("expected an error for a missing key file")
	}
}

func TestRedirectHandler(t *testing.T) {
	manager := &TLSManager{config: &TLSConfig{EnableTLS: true, ForceHTTPSRedirect: true}}

	tests := []struct {
		httpsAddr string
		want      string
	}{
		{":443", "https://retrobasic.dev/ws?token=x"},
		{":8443", "https://retrobasic.dev:8443/ws?token=x"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "http://retrobasic.dev:80/ws?token=x", nil)
		rec := httptest.NewRecorder()
		manager.HTTPHandler(tt.httpsAddr).ServeHTTP(rec, req)

		if rec.Code != http.StatusMovedPermanently {
			t.Errorf("%s: status %d", tt.httpsAddr, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != tt.want {
			t.Errorf("%s: Location = %q, want %q", tt.httpsAddr, got, tt.want)
		}
	}
}
