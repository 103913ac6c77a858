package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"subscriber-drivers/pkg/config"
	"subscriber-drivers/pkg/models"
)

var tableExpr = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Loader lit les tables brutes et les ramène à la granularité hebdomadaire.
type Loader struct {
	DB                 *sql.DB
	OrdersTable        string
	SubscriptionsTable string
	WeekEnd            time.Weekday
}

// Connect ouvre la base décrite par cfg, vérifie qu'elle répond et renvoie le Loader
// configuré sur ses tables et son jour de fin de semaine.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (Loader, error) {
	if cfg.DSN == "" {
		return Loader{}, fmt.Errorf("database dsn is empty (set %s or database.dsn)", config.EnvDSN)
	}
	mc, err := driverConfig(cfg.DSN)
	if err != nil {
		return Loader{}, err
	}
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return Loader{}, fmt.Errorf("open db: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return Loader{}, fmt.Errorf("ping %s: %w", redact(mc), err)
	}
	slog.Info("database connected", "dsn", redact(mc), "orders", cfg.OrdersTable, "subscriptions", cfg.SubscriptionsTable)

	return Loader{
		DB:                 db,
		OrdersTable:        cfg.OrdersTable,
		SubscriptionsTable: cfg.SubscriptionsTable,
		WeekEnd:            cfg.WeekEndDay(),
	}, nil
}

// Close libère le pool de connexions.
func (l Loader) Close() error {
	if l.DB == nil {
		return nil
	}
	return l.DB.Close()
}

// driverConfig accepte une URL mariadb:// ou mysql:// ou un DSN natif du driver.
// Les dates sont toujours lues en UTC.
func driverConfig(dsn string) (*mysql.Config, error) {
	var mc *mysql.Config
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		mc = mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = u.Host
		mc.DBName = strings.TrimPrefix(u.Path, "/")
		if u.User != nil {
			mc.User = u.User.Username()
			mc.Passwd, _ = u.User.Password()
		}
		if mc.User == "" || mc.Addr == "" || mc.DBName == "" {
			return nil, fmt.Errorf("dsn incomplet (user/host/db)")
		}
	} else {
		var err error
		if mc, err = mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.InterpolateParams = true
	return mc, nil
}

// redact formate le DSN sans le mot de passe, pour les journaux.
func redact(mc *mysql.Config) string {
	c := *mc
	if c.Passwd != "" {
		c.Passwd = "***"
	}
	return c.FormatDSN()
}

// LoadOrders lit les commandes activées dans [from, to). Les dates absentes sont écartées.
func (l Loader) LoadOrders(ctx context.Context, from, to time.Time) ([]models.OrderRecord, error) {
	if !tableExpr.MatchString(l.OrdersTable) {
		return nil, fmt.Errorf("table invalide: %q", l.OrdersTable)
	}

	q := fmt.Sprintf(`
		SELECT
			o.orderid,
			o.ordernumber,
			o.activateddate,
			COALESCE(o.segment__c, ''),
			COALESCE(o.vlocity_cmt__accountpaymenttype__c, ''),
			COALESCE(o.type, ''),
			COALESCE(o.account_classification_order, ''),
			COALESCE(o.vlocity_cmt__originatingchannel__c, ''),
			COALESCE(o.vlocity_cmt__reason__c, '')
		FROM %s o
		WHERE o.activateddate >= ? AND o.activateddate < ?
	`, l.OrdersTable)

	const layout = "2006-01-02 15:04:05"
	rows, err := l.DB.QueryContext(ctx, q, from.UTC().Format(layout), to.UTC().Format(layout))
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var (
		out     []models.OrderRecord
		read    int
		dropped int
	)
	for rows.Next() {
		read++
		var (
			orderID, orderNumber sql.NullString
			activated            sql.NullTime
			rec                  models.OrderRecord
		)
		if err := rows.Scan(&orderID, &orderNumber, &activated,
			&rec.CustomerSegment, &rec.PaymentType, &rec.Type,
			&rec.AccountClassification, &rec.Channel, &rec.Reason); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if !activated.Valid {
			dropped++
			continue
		}
		rec.OrderKey = orderID.String + "_" + orderNumber.String
		rec.ActivatedAt = activated.Time.UTC()
		rec.Week = WeekStart(rec.ActivatedAt, l.WeekEnd)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slog.Debug("orders loaded", "table", l.OrdersTable, "read", read, "kept", len(out), "dropped_no_date", dropped)
	return out, nil
}

// LoadSubscriptions lit la table maître des souscriptions créées dans [from, to).
// Le segment est le type de paiement en minuscules ; l'identifiant unique concatène
// msisdn, asset, compte et souscription.
func (l Loader) LoadSubscriptions(ctx context.Context, from, to time.Time) ([]models.SubscriptionRecord, error) {
	if !tableExpr.MatchString(l.SubscriptionsTable) {
		return nil, fmt.Errorf("table invalide: %q", l.SubscriptionsTable)
	}

	q := fmt.Sprintf(`
		SELECT
			s.created_date,
			COALESCE(s.vlocity_account_payment_type, ''),
			COALESCE(s.asset_msisdn, ''),
			COALESCE(s.asset_id, ''),
			COALESCE(s.account_id, ''),
			COALESCE(s.subscription_id, ''),
			s.product_name
		FROM %s s
		WHERE s.created_date >= ? AND s.created_date < ?
	`, l.SubscriptionsTable)

	const layout = "2006-01-02 15:04:05"
	rows, err := l.DB.QueryContext(ctx, q, from.UTC().Format(layout), to.UTC().Format(layout))
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []models.SubscriptionRecord
	for rows.Next() {
		var (
			created                             sql.NullTime
			payment, msisdn, asset, acct, subID string
			product                             sql.NullString
		)
		if err := rows.Scan(&created, &payment, &msisdn, &asset, &acct, &subID, &product); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if !created.Valid {
			continue
		}
		out = append(out, models.SubscriptionRecord{
			Week:        WeekStart(created.Time.UTC(), l.WeekEnd),
			RecordID:    SubscriptionKey(msisdn, asset, acct, subID),
			ProductName: product.String,
			Segment:     strings.ToLower(payment),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slog.Debug("subscriptions loaded", "table", l.SubscriptionsTable, "rows", len(out))
	return out, nil
}

// SubscriptionKey construit l'identifiant unique d'une souscription.
func SubscriptionKey(msisdn, assetID, accountID, subscriptionID string) string {
	return strings.Join([]string{msisdn, assetID, accountID, subscriptionID}, "|")
}
