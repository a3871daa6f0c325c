// Package tls sets up HTTPS for serve mode, either from certificate files
// or through Let's Encrypt.
package tls

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"

	"golang.org/x/crypto/acme/autocert"
)

// TLSManager owns the certificate source of the HTTPS listener.
type TLSManager struct {
	config      *TLSConfig
	autocertMgr *autocert.Manager
	tlsConfig   *tls.Config
	initialized bool
}

// TLSConfig mirrors the [TLS] configuration section.
type TLSConfig struct {
	EnableTLS          bool
	EnableLetsEncrypt  bool
	Domain             string
	LetsEncryptEmail   string
	CertCacheDir       string
	ForceHTTPSRedirect bool
	CertFile           string
	KeyFile            string
	HTTPAddress        string
}

// LoadTLSConfig reads the [TLS] section.
func LoadTLSConfig() *TLSConfig {
	return &TLSConfig{
		EnableTLS:          configuration.GetBool("TLS", "enable_tls", false),
		EnableLetsEncrypt:  configuration.GetBool("TLS", "enable_letsencrypt", false),
		Domain:             configuration.GetString("TLS", "domain", ""),
		LetsEncryptEmail:   configuration.GetString("TLS", "letsencrypt_email", ""),
		CertCacheDir:       configuration.GetString("TLS", "cert_cache_dir", "./certs"),
		ForceHTTPSRedirect: configuration.GetBool("TLS", "force_https_redirect", false),
		CertFile:           configuration.GetString("TLS", "cert_file", "./certs/server.crt"),
		KeyFile:            configuration.GetString("TLS", "key_file", "./certs/server.key"),
		HTTPAddress:        configuration.GetString("TLS", "http_address", ":80"),
	}
}

// NewTLSManager creates a manager from the configuration file.
func NewTLSManager() (*TLSManager, error) {
	return NewTLSManagerWithConfig(LoadTLSConfig())
}

// NewTLSManagerWithConfig validates config and prepares the certificate
// source when TLS is enabled.
func NewTLSManagerWithConfig(config *TLSConfig) (*TLSManager, error) {
	manager := &TLSManager{config: config}

	if err := manager.validateConfig(); err != nil {
		return nil, fmt.Errorf("TLS configuration validation failed: %w", err)
	}
	if config.EnableTLS {
		if err := manager.initializeTLS(); err != nil {
			return nil, fmt.Errorf("TLS initialization failed: %w", err)
		}
	}
	return manager, nil
}

func (tm *TLSManager) validateConfig() error {
	if !tm.config.EnableTLS {
		return nil
	}
	if tm.config.EnableLetsEncrypt {
		if strings.TrimSpace(tm.config.Domain) == "" {
			return fmt.Errorf("domain is required when Let's Encrypt is enabled")
		}
		if strings.TrimSpace(tm.config.LetsEncryptEmail) == "" {
			return fmt.Errorf("letsencrypt_email is required when Let's Encrypt is enabled")
		}
		if strings.Contains(tm.config.Domain, "example.com") {
			logger.Warn(logger.AreaAuth, "Using example domain %s for Let's Encrypt", tm.config.Domain)
		}
		return nil
	}
	if strings.TrimSpace(tm.config.CertFile) == "" || strings.TrimSpace(tm.config.KeyFile) == "" {
		return fmt.Errorf("cert_file and key_file are required without Let's Encrypt")
	}
	return nil
}

func (tm *TLSManager) initializeTLS() error {
	if tm.config.EnableLetsEncrypt {
		return tm.initializeLetsEncrypt()
	}
	return tm.initializeManualTLS()
}

func (tm *TLSManager) initializeLetsEncrypt() error {
	logger.Info(logger.AreaAuth, "Initializing Let's Encrypt for domain: %s", tm.config.Domain)

	if err := os.MkdirAll(tm.config.CertCacheDir, 0700); err != nil {
		return fmt.Errorf("failed to create certificate cache directory: %w", err)
	}

	tm.autocertMgr = &autocert.Manager{
		Cache:      autocert.DirCache(tm.config.CertCacheDir),
		Prompt:     autocert.AcceptTOS,
		Email:      tm.config.LetsEncryptEmail,
		HostPolicy: autocert.HostWhitelist(tm.config.Domain, "www."+tm.config.Domain),
	}

	tm.tlsConfig = tm.autocertMgr.TLSConfig()
	tm.tlsConfig.MinVersion = tls.VersionTLS12
	getCertificate := tm.tlsConfig.GetCertificate
	tm.tlsConfig.GetCertificate = func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		if hello.ServerName == "" {
			hello.ServerName = tm.config.Domain
		}
		cert, err := getCertificate(hello)
		if err != nil {
			logger.Warn(logger.AreaAuth, "Failed to get certificate for %s: %v", hello.ServerName, err)
		}
		return cert, err
	}

	tm.initialized = true
	return nil
}

func (tm *TLSManager) initializeManualTLS() error {
	logger.Info(logger.AreaAuth, "Loading TLS certificate %s", tm.config.CertFile)

	cert, err := tls.LoadX509KeyPair(tm.config.CertFile, tm.config.KeyFile)
	if err != nil {
		return fmt.Errorf("loading key pair: %w", err)
	}
	tm.tlsConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	tm.initialized = true
	return nil
}

// GetTLSConfig returns the listener configuration, nil when TLS is off.
func (tm *TLSManager) GetTLSConfig() *tls.Config {
	if !tm.initialized || !tm.config.EnableTLS {
		return nil
	}
	return tm.tlsConfig
}

// IsEnabled returns true if TLS is enabled
func (tm *TLSManager) IsEnabled() bool {
	return tm.config.EnableTLS
}

// NeedsHTTPServer reports whether a plain HTTP listener has to run next to
// the HTTPS one, for ACME challenges or redirects.
func (tm *TLSManager) NeedsHTTPServer() bool {
	return tm.config.EnableTLS && (tm.config.EnableLetsEncrypt || tm.config.ForceHTTPSRedirect)
}

// HTTPAddress is where the plain HTTP listener binds.
func (tm *TLSManager) HTTPAddress() string {
	return tm.config.HTTPAddress
}

// HTTPHandler serves ACME challenges and redirects everything else to
// HTTPS on httpsAddr's port.
func (tm *TLSManager) HTTPHandler(httpsAddr string) http.Handler {
	redirect := tm.redirectHandler(httpsAddr)
	if tm.autocertMgr != nil {
		return tm.autocertMgr.HTTPHandler(redirect)
	}
	return redirect
}

func (tm *TLSManager) redirectHandler(httpsAddr string) http.Handler {
	_, port, err := net.SplitHostPort(httpsAddr)
	if err != nil {
		port = ""
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		target := "https://" + host
		if port != "" && port != "443" {
			target = "https://" + net.JoinHostPort(host, port)
		}
		target += r.URL.RequestURI()

		logger.Debug(logger.AreaGeneral, "Redirecting HTTP to HTTPS: %s -> %s", r.URL.String(), target)
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
}
