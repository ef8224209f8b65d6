package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

type Config struct {
	APIPort           string
	APIMaxConns       int
	APIMaxInFlight    int
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	LogLevel          string
	MetricsPort       string

	CorpusRoot     string
	CorpusManifest string
	CorpusSuffix   string
	FieldPathsFile string

	ScanWorkers int
	ScanKeyword string
	ScanTopK    int

	ClassifierBackend   string
	OllamaURL           string
	OllamaGenModel      string
	OpenAIURL           string
	OpenAIModel         string
	OpenAIAPIKeyFile    string
	ClassifyLimit       int
	ClassifyWorkers     int
	ClassifyRPS         float64
	ClassifyMaxTokens   int
	ClassifyTemperature float64

	AuditSize int
	AuditSeed uint64
	AuditZ    float64

	NATSURL     string
	NATSSubject string
}

func Load() Config {
	return Config{
		APIPort:           mustEnv("API_PORT", "8080"),
		APIMaxConns:       mustEnvInt("API_MAX_CONNS", 256),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 4),
		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
		LogLevel:          mustEnv("LOG_LEVEL", "info"),
		MetricsPort:       mustEnv("METRICS_PORT", ""),

		CorpusRoot:     mustEnv("CORPUS_ROOT", "./data/corpus"),
		CorpusManifest: mustEnv("CORPUS_MANIFEST", ""),
		CorpusSuffix:   mustEnv("CORPUS_SUFFIX", ".xml"),
		FieldPathsFile: mustEnv("FIELD_PATHS_FILE", ""),

		ScanWorkers: mustEnvInt("SCAN_WORKERS", 0),
		ScanKeyword: mustEnv("SCAN_KEYWORD", "religion"),
		ScanTopK:    mustEnvInt("SCAN_TOP_K", 5),

		ClassifierBackend:   strings.ToLower(mustEnv("CLASSIFIER_BACKEND", "ollama")),
		OllamaURL:           mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:      mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OpenAIURL:           mustEnv("OPENAI_URL", "http://localhost:8000/v1/chat/completions"),
		OpenAIModel:         mustEnv("OPENAI_MODEL", "llama3-sdsc"),
		OpenAIAPIKeyFile:    mustEnv("OPENAI_API_KEY_FILE", ""),
		ClassifyLimit:       mustEnvInt("CLASSIFY_LIMIT", 100),
		ClassifyWorkers:     mustEnvInt("CLASSIFY_WORKERS", 4),
		ClassifyRPS:         mustEnvFloat("CLASSIFY_RPS", 0),
		ClassifyMaxTokens:   mustEnvInt("CLASSIFY_MAX_TOKENS", 8),
		ClassifyTemperature: mustEnvFloat("CLASSIFY_TEMPERATURE", 0.2),

		AuditSize: mustEnvInt("AUDIT_SIZE", 30),
		AuditSeed: uint64(mustEnvInt("AUDIT_SEED", 42)),
		AuditZ:    mustEnvFloat("AUDIT_Z", domain.DefaultZ),

		NATSURL:     mustEnv("NATS_URL", ""),
		NATSSubject: mustEnv("NATS_SUBJECT", "filings.scan.completed"),
	}
}

// Validate reports every problem at once.
func (c Config) Validate() []error {
	var errs []error
	if c.CorpusRoot == "" && c.CorpusManifest == "" {
		errs = append(errs, fmt.Errorf("CORPUS_ROOT or CORPUS_MANIFEST is required"))
	}
	if c.ScanTopK < 0 {
		errs = append(errs, fmt.Errorf("SCAN_TOP_K must be >= 0, got %d", c.ScanTopK))
	}
	if c.APIMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("API_MAX_CONNS must be > 0, got %d", c.APIMaxConns))
	}
	switch c.ClassifierBackend {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("CLASSIFIER_BACKEND must be ollama or openai, got %q", c.ClassifierBackend))
	}
	if c.ClassifyRPS < 0 {
		errs = append(errs, fmt.Errorf("CLASSIFY_RPS must be >= 0, got %v", c.ClassifyRPS))
	}
	if c.AuditSize <= 0 {
		errs = append(errs, fmt.Errorf("AUDIT_SIZE must be > 0, got %d", c.AuditSize))
	}
	if !(c.AuditZ > 0) {
		errs = append(errs, fmt.Errorf("AUDIT_Z must be > 0, got %v", c.AuditZ))
	}
	return errs
}

// LoadFieldPaths returns the default lookup paths, overridden per field by
// the YAML file at path when one is given.
func LoadFieldPaths(path string) (domain.FieldPaths, error) {
	paths := domain.DefaultFieldPaths()
	if path == "" {
		return paths, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FieldPaths{}, fmt.Errorf("read field paths file: %w", err)
	}
	var override domain.FieldPaths
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return domain.FieldPaths{}, domain.WrapError(domain.ErrInvalidInput, "parse field paths", err)
	}
	if len(override.Name) > 0 {
		paths.Name = override.Name
	}
	if len(override.Mission) > 0 {
		paths.Mission = override.Mission
	}
	if len(override.Revenue) > 0 {
		paths.Revenue = override.Revenue
	}
	return paths, nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
