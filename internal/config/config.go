package config

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/wallproof/internal/constants"
	"github.com/kozaktomas/wallproof/internal/layout"
	"github.com/kozaktomas/wallproof/internal/proof"
	"github.com/kozaktomas/wallproof/internal/quality"
)

//go:embed proof.yaml
var proofYAML []byte

type Config struct {
	Database DatabaseConfig
	Web      WebConfig
	Assets   AssetsConfig
	Proof    ProofConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type WebConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string // CORS whitelist; empty allows the local dev origins
}

type AssetsConfig struct {
	Root           string   // directory local image references are resolved under
	BaseURL        string   // fetched when a local file is missing; also resolves relative references
	PlatformHosts  []string // hosts of the commerce platform's image CDN
	FetchTimeoutMS int
}

// ProofConfig is the page layout, labels and colors of the proof. The
// yaml-tagged fields come from the embedded proof.yaml and an optional
// PROOF_CONFIG file.
type ProofConfig struct {
	Layout     layout.Config `yaml:"layout"`
	Texts      proof.Texts   `yaml:"texts"`
	Disclaimer quality.Texts `yaml:"disclaimer"`
	Style      proof.Style   `yaml:"style"`

	LogoPath     string  `yaml:"-"`
	FontPath     string  `yaml:"-"` // TrueType font for the rich backend; core Helvetica when empty
	BoldFontPath string  `yaml:"-"`
	RasterDPI    float64 `yaml:"-"`
	StripWidthCm float64 `yaml:"-"`
}

type LogConfig struct {
	File       string // rotate logs into this file instead of stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a non-negative float environment variable.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

// envList reads a comma separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// DefaultProof returns the built-in proof settings with the embedded
// proof.yaml applied.
func DefaultProof() ProofConfig {
	p := ProofConfig{
		Layout:     layout.DefaultConfig(),
		Texts:      proof.DefaultTexts(),
		Disclaimer: quality.DefaultTexts(),
		Style:      proof.DefaultStyle(),
		RasterDPI:  constants.DefaultRasterDPI,
	}
	if err := yaml.Unmarshal(proofYAML, &p); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded proof.yaml: " + err.Error())
	}
	return p
}

// ApplyProofFile overlays the proof settings with a YAML file.
func (p *ProofConfig) ApplyProofFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read proof config: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to parse proof config %s: %w", path, err)
	}
	return nil
}

func Load() *Config {
	p := DefaultProof()
	if path := os.Getenv("PROOF_CONFIG"); path != "" {
		if err := p.ApplyProofFile(path); err != nil {
			log.Printf("WARNING: %v, using built-in proof settings", err)
			p = DefaultProof()
		}
	}
	p.LogoPath = os.Getenv("PROOF_LOGO_PATH")
	p.FontPath = os.Getenv("PROOF_FONT_PATH")
	p.BoldFontPath = os.Getenv("PROOF_BOLD_FONT_PATH")
	p.RasterDPI = envFloat("PROOF_RASTER_DPI", p.RasterDPI)
	p.StripWidthCm = envFloat("PROOF_STRIP_WIDTH_CM", p.Layout.StripWidthCm)

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Web: WebConfig{
			Port:           envInt("WEB_PORT", 8080),
			Host:           envString("WEB_HOST", "0.0.0.0"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Assets: AssetsConfig{
			Root:           envString("ASSETS_ROOT", "."),
			BaseURL:        os.Getenv("ASSETS_BASE_URL"),
			PlatformHosts:  envList("PLATFORM_CDN_HOSTS"),
			FetchTimeoutMS: envInt("ASSETS_FETCH_TIMEOUT_MS", constants.DefaultFetchTimeoutMS),
		},
		Proof: p,
		Log: LogConfig{
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
		},
	}
}
