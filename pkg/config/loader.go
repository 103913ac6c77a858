package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig est renvoyée (enveloppée) quand la configuration ne passe pas la validation.
var ErrInvalidConfig = errors.New("invalid config")

// Variables d'environnement prioritaires sur le fichier.
const (
	EnvDSN         = "DRIVERS_DSN"
	EnvOpenAIKey   = "OPENAI_API_KEY"
	EnvOpenAIModel = "OPENAI_MODEL"
	EnvInfluxToken = "INFLUX_TOKEN"
)

var (
	validate     = validator.New()
	sqlIdentExpr = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func init() {
	_ = validate.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentExpr.MatchString(fl.Field().String())
	})
}

// Load lit le fichier YAML (s'il existe) par-dessus les valeurs par défaut,
// applique l'environnement puis valide. Un chemin vide renvoie les défauts.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// pas de fichier : défauts
		case err != nil:
			return AppConfig{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvDSN); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv(EnvOpenAIModel); v != "" {
		cfg.Narration.Model = v
	}
	cfg.Narration.APIKey = strings.TrimSpace(os.Getenv(EnvOpenAIKey))
	cfg.Influx.Token = os.Getenv(EnvInfluxToken)
}

// Validate contrôle les tags de validation et la cohérence des poids du score d'alignement.
func Validate(cfg AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	a := cfg.Detection.Alignment
	if a.CorrWeight+a.ShareWeight > 1+1e-9 {
		return fmt.Errorf("%w: corr_weight + share_weight = %.3f > 1", ErrInvalidConfig, a.CorrWeight+a.ShareWeight)
	}
	return nil
}

// WriteDefault écrit la configuration par défaut au chemin donné, dossiers compris.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WeekEndDay convertit le jour de fin de semaine configuré.
func (d DatabaseConfig) WeekEndDay() time.Weekday {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), d.WeekEnd) {
			return wd
		}
	}
	return time.Monday
}
