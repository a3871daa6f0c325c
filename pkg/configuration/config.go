package configuration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalConfigPath holds per-machine overrides merged over the main file.
const LocalConfigPath = "settings.local.yaml"

// Config verwaltet die Anwendungskonfiguration
type Config struct {
	settings map[string]map[string]string
	filePath string
	mu       sync.RWMutex
}

var (
	globalConfig *Config
	once         sync.Once
)

// Initialize initialisiert die globale Konfiguration
func Initialize(configPath string) error {
	var err error
	once.Do(func() {
		globalConfig, err = loadConfig(configPath)
		if err != nil {
			return
		}
		if _, statErr := os.Stat(LocalConfigPath); statErr == nil {
			// Silent error - config loading continues with base config
			_ = globalConfig.loadLocalConfig(LocalConfigPath)
		}
	})
	return err
}

// loadConfig lädt die Konfiguration aus einer Datei
func loadConfig(filePath string) (*Config, error) {
	config := &Config{
		settings: make(map[string]map[string]string),
		filePath: filePath,
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		config.createDefaultConfig()
		if err := config.saveToFile(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := config.merge(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return config, nil
}

// loadLocalConfig lädt lokale Konfigurationsüberschreibungen
func (c *Config) loadLocalConfig(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merge(data)
}

// merge reads a YAML document of sections holding scalar values and
// overwrites the matching settings.
func (c *Config) merge(data []byte) error {
	var doc map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for section, values := range doc {
		if c.settings[section] == nil {
			c.settings[section] = make(map[string]string)
		}
		for key, value := range values {
			if value == nil {
				c.settings[section][key] = ""
				continue
			}
			c.settings[section][key] = fmt.Sprint(value)
		}
	}
	return nil
}

// createDefaultConfig erstellt die Standard-Konfiguration mit nur den verwendeten Parametern
func (c *Config) createDefaultConfig() {
	c.settings["Interpreter"] = map[string]string{
		"input_prompt":      " ? ",
		"input_retry_limit": "0",
		"check_interval":    "1000",
		"history_file":      ".retrobasic_history",
	}

	c.settings["Server"] = map[string]string{
		"listen_address":      ":8080",
		"max_clients":         "100",
		"write_wait_timeout":  "10s",
		"pong_timeout":        "60s",
		"max_message_size_kb": "4",
		"allowed_origins":     "",
	}

	c.settings["JWT"] = map[string]string{
		"secret_key":             "",
		"token_expiration_hours": "24",
		"require_token":          "false",
	}

	c.settings["TLS"] = map[string]string{
		"enable_tls":           "false",
		"enable_letsencrypt":   "false",
		"domain":               "",
		"letsencrypt_email":    "",
		"cert_cache_dir":       "./certs",
		"cert_file":            "./certs/server.crt",
		"key_file":             "./certs/server.key",
		"force_https_redirect": "false",
		"http_address":         ":80",
	}

	c.settings["Debug"] = map[string]string{
		"enable_debug_logging": "true",
		"log_level":            "INFO",
		"log_file":             "debug.log",
		"max_log_size_mb":      "10",
		"log_rotation_count":   "3",
		"trace_statements":     "false",
		// Selektive Logging-Bereiche
		"log_program":  "false",
		"log_run":      "false",
		"log_terminal": "false",
		"log_session":  "false",
		"log_auth":     "true",
		"log_config":   "true",
		"log_general":  "true",
	}
}

// saveToFile speichert die aktuelle Konfiguration in die Datei
func (c *Config) saveToFile() error {
	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("# retrobasic configuration\n")
	buf.WriteString("# Generated automatically - modify with care\n\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c.settings); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(c.filePath, buf.Bytes(), 0644)
}

// GetString gibt einen String-Wert aus der Konfiguration zurück
func GetString(section, key, defaultValue string) string {
	if globalConfig == nil {
		return defaultValue
	}

	globalConfig.mu.RLock()
	defer globalConfig.mu.RUnlock()

	if sectionMap, exists := globalConfig.settings[section]; exists {
		if value, exists := sectionMap[key]; exists {
			return value
		}
	}

	return defaultValue
}

// GetInt gibt einen Integer-Wert aus der Konfiguration zurück
func GetInt(section, key string, defaultValue int) int {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}

	if value, err := strconv.Atoi(str); err == nil {
		return value
	}

	return defaultValue
}

// GetBool gibt einen Boolean-Wert aus der Konfiguration zurück
func GetBool(section, key string, defaultValue bool) bool {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}

	if value, err := strconv.ParseBool(str); err == nil {
		return value
	}

	return defaultValue
}

// GetDuration gibt einen Duration-Wert aus der Konfiguration zurück
func GetDuration(section, key string, defaultValue time.Duration) time.Duration {
	str := GetString(section, key, "")
	if str == "" {
		return defaultValue
	}

	if value, err := time.ParseDuration(str); err == nil {
		return value
	}

	return defaultValue
}
