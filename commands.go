package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"subscriber-drivers/pkg/analysis"
	"subscriber-drivers/pkg/config"
	"subscriber-drivers/pkg/database"
	"subscriber-drivers/pkg/export"
	"subscriber-drivers/pkg/forecast"
	"subscriber-drivers/pkg/metrics"
	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/narration"
	"subscriber-drivers/pkg/server"
)

var (
	configPath string
	verbose    bool
	quiet      bool

	todayFlag    string
	horizonFlag  int
	lookbackFlag int
	inputPath    string
	withNarrate  bool
	withExport   bool
	noForecast   bool
	addrFlag     string

	appCfg config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:           "drivers",
	Short:         "Détection des drivers structurels des adds, du churn et du mix de souscriptions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if cmd.Name() == "init" {
			return nil
		}
		var err error
		appCfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		slog.Debug("configuration loaded", "path", configPath)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run complet : chargement, prévision, détection, narration et export",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		today, err := parseToday()
		if err != nil {
			return err
		}

		loader, err := database.Connect(ctx, appCfg.Database)
		if err != nil {
			return err
		}
		defer loader.Close()

		deps := analysis.Deps{Source: loader, WeekEnd: loader.WeekEnd, Metrics: metrics.NewRecorder()}
		if !noForecast {
			if err := loadModels(&deps); err != nil {
				return err
			}
		}
		if withNarrate {
			if deps.Narrator, err = narration.New(appCfg.Narration); err != nil {
				return err
			}
		}
		if withExport {
			sink, err := export.NewSink(ctx, appCfg.Influx)
			if err != nil {
				return err
			}
			defer sink.Close()
			deps.Exporter = sink
		}

		report, err := analysis.Run(ctx, deps, runConfig(today))
		if err != nil {
			return fmt.Errorf("compute: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Détection seule, depuis un fichier JSON (--input) ou depuis la base",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var in analysis.Input
		if inputPath != "" {
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("parse %s: %w", inputPath, err)
			}
		} else {
			today, err := parseToday()
			if err != nil {
				return err
			}
			loader, err := database.Connect(ctx, appCfg.Database)
			if err != nil {
				return err
			}
			defer loader.Close()
			from, to := database.Range(today, lookback(), loader.WeekEnd)
			orders, err := loader.LoadOrders(ctx, from, to)
			if err != nil {
				return err
			}
			if in.Subscriptions, err = loader.LoadSubscriptions(ctx, from, to); err != nil {
				return err
			}
			in.AddChurn = database.PrepareAddChurnFrames(orders)
		}

		report := analysis.Detect(in, appCfg.Detection)
		if !withNarrate {
			return printJSON(cmd.OutOrStdout(), report)
		}
		n, err := narration.New(appCfg.Narration)
		if err != nil {
			return err
		}
		out := struct {
			Drivers   models.DriverReport `json:"drivers"`
			Narration analysis.Narratives `json:"narration"`
		}{Drivers: report}
		if out.Narration.Subscriptions, err = n.NarrateSubscriptions(ctx, report.Subscriptions); err != nil {
			return err
		}
		if out.Narration.AddChurn, err = n.NarrateAddChurn(ctx, report.AddChurn); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Prévisions journalières à partir des modèles pré-entraînés",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := parseToday()
		if err != nil {
			return err
		}
		var deps analysis.Deps
		if err := loadModels(&deps); err != nil {
			return err
		}
		out := analysis.Forecasts{}
		if out.Subscriptions, err = deps.Subscriptions.Run(horizon(), today); err != nil {
			return err
		}
		if out.AddChurn, err = deps.AddChurn.Run(horizon(), today); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API HTTP de détection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var narrator narration.Narrator
		if appCfg.Narration.Enabled {
			n, err := narration.New(appCfg.Narration)
			if err != nil {
				return err
			}
			narrator = n
		}
		addr := appCfg.Server.Addr
		if addrFlag != "" {
			addr = addrFlag
		}
		h := server.NewHandlers(appCfg.Detection, metrics.NewRecorder(), narrator)
		return server.Serve(ctx, addr, server.NewRouter(h))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Gestion du fichier de configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Écrit la configuration par défaut",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "drivers.yaml", "fichier de configuration YAML")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "mode verbeux")

	for _, c := range []*cobra.Command{analyzeCmd, detectCmd, forecastCmd} {
		c.Flags().StringVar(&todayFlag, "today", "", "date de référence YYYY-MM-DD (défaut : aujourd'hui UTC)")
	}
	for _, c := range []*cobra.Command{analyzeCmd, forecastCmd} {
		c.Flags().IntVar(&horizonFlag, "horizon", 0, "horizon de prévision en jours (défaut : forecast.horizon_days)")
	}
	for _, c := range []*cobra.Command{analyzeCmd, detectCmd} {
		c.Flags().IntVar(&lookbackFlag, "lookback", 0, "semaines chargées (défaut : database.lookback_weeks)")
		c.Flags().BoolVar(&withNarrate, "narrate", false, "ajoute la narration OpenAI")
	}
	analyzeCmd.Flags().BoolVar(&withExport, "export", false, "exporte les résultats vers InfluxDB")
	analyzeCmd.Flags().BoolVar(&noForecast, "no-forecast", false, "ignore les modèles de prévision")
	analyzeCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "sans barre de progression")
	detectCmd.Flags().StringVarP(&inputPath, "input", "i", "", "fichier JSON {subscriptions, add_churn}")
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "adresse d'écoute (défaut : server.addr)")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(analyzeCmd, detectCmd, forecastCmd, serveCmd, configCmd)
}

func loadModels(deps *analysis.Deps) error {
	subs, err := forecast.LoadSubscriptionModels(appCfg.Forecast.SubscriptionModel)
	if err != nil {
		return err
	}
	ac, err := forecast.LoadAddChurnModels(appCfg.Forecast.AddChurnModel)
	if err != nil {
		return err
	}
	deps.Subscriptions, deps.AddChurn = &subs, &ac
	return nil
}

func runConfig(today time.Time) models.Config {
	return models.Config{
		Detection:     appCfg.Detection,
		HorizonDays:   horizon(),
		Today:         today,
		LookbackWeeks: lookback(),
		Verbose:       verbose,
		Quiet:         quiet,
	}
}

func parseToday() (time.Time, error) {
	if todayFlag == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", todayFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: %w", err)
	}
	return t, nil
}

func horizon() int {
	if horizonFlag > 0 {
		return horizonFlag
	}
	return appCfg.Forecast.HorizonDays
}

func lookback() int {
	if lookbackFlag > 0 {
		return lookbackFlag
	}
	return appCfg.Database.LookbackWeeks
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
