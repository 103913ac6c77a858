package config

import (
	"subscriber-drivers/pkg/models"
)

// AppConfig est le contenu du fichier drivers.yaml.
type AppConfig struct {
	Detection models.DetectionConfig `yaml:"detection"`
	Database  DatabaseConfig         `yaml:"database"`
	Forecast  ForecastConfig         `yaml:"forecast"`
	Narration NarrationConfig        `yaml:"narration"`
	Influx    InfluxConfig           `yaml:"influx"`
	Server    ServerConfig           `yaml:"server"`
}

// DatabaseConfig : source MariaDB/MySQL des commandes et souscriptions.
type DatabaseConfig struct {
	DSN                string `yaml:"dsn"`
	OrdersTable        string `yaml:"orders_table" validate:"required,sqlident"`
	SubscriptionsTable string `yaml:"subscriptions_table" validate:"required,sqlident"`
	WeekEnd            string `yaml:"week_end" validate:"oneof=monday tuesday wednesday thursday friday saturday sunday"`
	LookbackWeeks      int    `yaml:"lookback_weeks" validate:"gte=16,lte=520"` // semaines complètes lues avant la semaine courante
}

// ForecastConfig : payloads des modèles pré-entraînés et horizon par défaut.
type ForecastConfig struct {
	SubscriptionModel string `yaml:"subscription_model"`
	AddChurnModel     string `yaml:"add_churn_model"`
	HorizonDays       int    `yaml:"horizon_days" validate:"gte=1,lte=365"`
}

// NarrationConfig : collaborateur de narration (OpenAI). La clé vient de OPENAI_API_KEY.
type NarrationConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Model       string  `yaml:"model" validate:"required_if=Enabled true"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	APIKey      string  `yaml:"-"`
}

// InfluxConfig : export optionnel des métriques de drivers. Le token vient de INFLUX_TOKEN.
type InfluxConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url" validate:"required_if=Enabled true"`
	Org     string `yaml:"org" validate:"required_if=Enabled true"`
	Bucket  string `yaml:"bucket" validate:"required_if=Enabled true"`
	Token   string `yaml:"-"`
}

// ServerConfig : API HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Default renvoie la configuration de production.
func Default() AppConfig {
	return AppConfig{
		Detection: models.DefaultDetectionConfig(),
		Database: DatabaseConfig{
			OrdersTable:        "OrderActivity",
			SubscriptionsTable: "CustomerMaster",
			WeekEnd:            "monday",
			LookbackWeeks:      52,
		},
		Forecast: ForecastConfig{
			SubscriptionModel: "subscription_model.yaml",
			AddChurnModel:     "add_churn_model.yaml",
			HorizonDays:       14,
		},
		Narration: NarrationConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Influx: InfluxConfig{
			URL:    "http://localhost:8086",
			Org:    "telecom",
			Bucket: "drivers",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
