package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"`
	} `yaml:"jwt"`

	// Matching controls the scoring engine defaults. Weights must sum
	// to 1.0; LoadConfig refuses to start otherwise.
	Matching struct {
		Poids struct {
			Competences   float64 `yaml:"competences"`
			Localisation  float64 `yaml:"localisation"`
			Disponibilite float64 `yaml:"disponibilite"`
			Financier     float64 `yaml:"financier"`
			Experience    float64 `yaml:"experience"`
		} `yaml:"poids"`
		ScoringConcurrency int `yaml:"scoring_concurrency"` // parallel candidate scoring per besoin
		EnrichTimeoutSec   int `yaml:"enrich_timeout_sec"`  // per-call budget for narrative generation
	} `yaml:"matching"`

	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
}

var AppConfig *Config

// LoadConfig reads the YAML file (CONFIG_PATH or config/config.yaml)
// when one is available, then applies environment overrides. With no
// file, DATABASE_URL must be set (test / container mode); the matching
// section then keeps its defaults unless a file provides it.
func LoadConfig() {
	var cfg Config

	explicitPath := os.Getenv("CONFIG_PATH")
	configPath := explicitPath
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	if f, err := os.Open(configPath); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}
	} else if explicitPath != "" || os.Getenv("DATABASE_URL") == "" {
		// an explicitly requested file must exist; without one the
		// environment has to carry at least the database address
		log.Fatalf("Failed to open config file at %s: %v", configPath, err)
	}

	// env always wins over the file
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if cfg.JWT.TTL <= 0 {
		cfg.JWT.TTL = 60
	}

	applyMatchingDefaults(&cfg)
	if err := validateWeights(&cfg); err != nil {
		log.Fatalf("Invalid matching configuration: %v", err)
	}

	AppConfig = &cfg
}

func applyMatchingDefaults(cfg *Config) {
	p := &cfg.Matching.Poids
	if p.Competences == 0 && p.Localisation == 0 && p.Disponibilite == 0 && p.Financier == 0 && p.Experience == 0 {
		p.Competences = 0.35
		p.Localisation = 0.20
		p.Disponibilite = 0.15
		p.Financier = 0.15
		p.Experience = 0.15
	}
	if cfg.Matching.ScoringConcurrency <= 0 {
		cfg.Matching.ScoringConcurrency = 8
	}
	if cfg.Matching.EnrichTimeoutSec <= 0 {
		cfg.Matching.EnrichTimeoutSec = 20
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
}

func validateWeights(cfg *Config) error {
	p := cfg.Matching.Poids
	sum := p.Competences + p.Localisation + p.Disponibilite + p.Financier + p.Experience
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("matching.poids must sum to 1.0, got %.3f", sum)
	}
	return nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
