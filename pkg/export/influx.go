// Package export écrit les métriques de drivers et les prévisions dans InfluxDB.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"subscriber-drivers/pkg/config"
	"subscriber-drivers/pkg/forecast"
	"subscriber-drivers/pkg/models"
)

const (
	driverMeasurement   = "driver_metrics"
	forecastMeasurement = "volume_forecast"
)

// Sink pousse des points vers un bucket InfluxDB.
type Sink struct {
	writer api.WriteAPIBlocking
	close  func()
}

// NewSink ouvre un client InfluxDB et vérifie sa santé.
func NewSink(ctx context.Context, cfg config.InfluxConfig) (*Sink, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influx health: %w", err)
	}
	slog.Info("influx connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket, "status", health.Status)
	return &Sink{writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket), close: client.Close}, nil
}

// NewSinkWithWriter construit un Sink sur un writer existant.
func NewSinkWithWriter(w api.WriteAPIBlocking) *Sink {
	return &Sink{writer: w}
}

// Close libère le client sous-jacent.
func (s *Sink) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// WriteDrivers écrit un point par check évalué ; les checks non évalués n'ont pas de métriques.
func (s *Sink) WriteDrivers(ctx context.Context, runID string, at time.Time, report models.DriverReport) (int, error) {
	points := DriverPoints(runID, at, report)
	if len(points) == 0 {
		return 0, nil
	}
	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return 0, fmt.Errorf("write driver points: %w", err)
	}
	return len(points), nil
}

// WriteSubscriptionForecast écrit une ligne de prévision par jour.
func (s *Sink) WriteSubscriptionForecast(ctx context.Context, runID string, rows []forecast.SubscriptionRow) (int, error) {
	points := make([]*write.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, influxdb2.NewPoint(forecastMeasurement,
			map[string]string{"run_id": runID, "series": "subscriptions"},
			map[string]interface{}{"prepaid": r.Prepaid, "postpaid": r.Postpaid, "total": r.Total},
			r.Date))
	}
	return s.writeAll(ctx, points)
}

// WriteAddChurnForecast écrit les quatre séries adds/churn par jour.
func (s *Sink) WriteAddChurnForecast(ctx context.Context, runID string, rows []forecast.AddChurnRow) (int, error) {
	points := make([]*write.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, influxdb2.NewPoint(forecastMeasurement,
			map[string]string{"run_id": runID, "series": "add_churn"},
			map[string]interface{}{
				"prepaid_adds":   r.PrepaidAdds,
				"prepaid_churn":  r.PrepaidChurn,
				"postpaid_adds":  r.PostpaidAdds,
				"postpaid_churn": r.PostpaidChurn,
			},
			r.Date))
	}
	return s.writeAll(ctx, points)
}

func (s *Sink) writeAll(ctx context.Context, points []*write.Point) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return 0, fmt.Errorf("write forecast points: %w", err)
	}
	return len(points), nil
}

// DriverPoints convertit le rapport en points ; les métriques nulles sont omises.
func DriverPoints(runID string, at time.Time, report models.DriverReport) []*write.Point {
	var points []*write.Point
	add := func(segment, check string, r models.DriverResult) {
		e, ok := r.(models.Evaluated)
		if !ok {
			return
		}
		fields := map[string]interface{}{
			"detected":   e.Confirmed,
			"confidence": string(e.Confidence),
		}
		for name, v := range e.Metrics {
			if v.Valid {
				fields[name] = v.Float64
			}
		}
		points = append(points, influxdb2.NewPoint(driverMeasurement,
			map[string]string{"run_id": runID, "segment": segment, "check": check, "driver": e.Name},
			fields, at))
	}
	report.Subscriptions.Analysis.Each(add)
	report.AddChurn.Analysis.Each(add)
	return points
}
