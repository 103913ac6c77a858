package database

import (
	"sort"
	"time"

	"subscriber-drivers/pkg/models"
)

var (
	addTypes          = map[string]bool{"Sales": true, "Add": true}
	competitiveReason = map[string]bool{"Port Out": true, "Competitive offer": true}
	financialReason   = map[string]bool{"Non-Pay": true, "Billing Cancel": true, "Cutting back": true}
)

const (
	consumerSegment = "B2C"
	prodAccounts    = "Prod Accounts"
	disconnectType  = "Disconnect"
	retailChannel   = "Retail"
	portInReason    = "Port In"
)

// PrepareAddChurnFrames filtre les commandes par segment et type puis agrège par semaine :
// Count = commandes uniques (OrderKey) ; colonnes driver = nombre de lignes portant le motif.
func PrepareAddChurnFrames(orders []models.OrderRecord) models.AddChurnFrames {
	return models.AddChurnFrames{
		PostpaidAdds: weekly(orders, func(o models.OrderRecord) bool {
			return o.CustomerSegment == consumerSegment &&
				o.PaymentType == "Postpaid" &&
				addTypes[o.Type] &&
				o.AccountClassification == prodAccounts
		}),
		PostpaidChurn: weekly(orders, func(o models.OrderRecord) bool {
			return o.Type == disconnectType && o.PaymentType == "Postpaid" && o.CustomerSegment == consumerSegment
		}),
		PrepaidAdds: weekly(orders, func(o models.OrderRecord) bool {
			return o.CustomerSegment == consumerSegment && o.PaymentType == "Prepaid" && addTypes[o.Type]
		}),
		PrepaidChurn: weekly(orders, func(o models.OrderRecord) bool {
			return o.Type == disconnectType && o.PaymentType == "Prepaid" && o.CustomerSegment == consumerSegment
		}),
	}
}

func weekly(orders []models.OrderRecord, keep func(models.OrderRecord) bool) []models.WeeklyOrders {
	type bucket struct {
		row  models.WeeklyOrders
		keys map[string]struct{}
	}
	buckets := map[int64]*bucket{}
	for _, o := range orders {
		if !keep(o) {
			continue
		}
		k := o.Week.Unix()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{row: models.WeeklyOrders{Week: o.Week}, keys: map[string]struct{}{}}
			buckets[k] = b
		}
		b.keys[o.OrderKey] = struct{}{}
		if o.Channel == retailChannel {
			b.row.Retail++
		}
		if o.Reason == portInReason {
			b.row.PortIn++
		}
		if competitiveReason[o.Reason] {
			b.row.Competitive++
		}
		if financialReason[o.Reason] {
			b.row.Financial++
		}
	}

	out := make([]models.WeeklyOrders, 0, len(buckets))
	for _, b := range buckets {
		b.row.Count = float64(len(b.keys))
		out = append(out, b.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week.Before(out[j].Week) })
	return out
}

// Range renvoie la plage [from, to) couvrant lookbackWeeks semaines complètes jusqu'à la semaine de today exclue.
func Range(today time.Time, lookbackWeeks int, weekEnd time.Weekday) (time.Time, time.Time) {
	to := WeekStart(today, weekEnd)
	return to.AddDate(0, 0, -7*lookbackWeeks), to
}
