package report

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/aquamanager/internal/balance"
	"github.com/iurnickita/aquamanager/internal/model"
)

type Timeframe string

const (
	Daily   Timeframe = "DAILY"
	Weekly  Timeframe = "WEEKLY"
	Monthly Timeframe = "MONTHLY"
	All     Timeframe = "ALL"
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

// Days - глубина отчета в днях, включая сегодняшний
func (tf Timeframe) Days() int {
	switch tf {
	case Daily:
		return 1
	case Monthly:
		return 30
	case All:
		return 365
	default:
		return 7
	}
}

func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return Weekly, nil
	}
	tf := Timeframe(strings.ToUpper(s))
	switch tf {
	case Daily, Weekly, Monthly, All:
		return tf, nil
	}
	return "", ErrUnknownTimeframe
}

type Dashboard struct {
	TodayJars       int             `json:"todayJars"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	MonthCollection decimal.Decimal `json:"monthCollection"`
	PendingBookings int             `json:"pendingBookings"`
}

func BuildDashboard(s *model.State, now time.Time) Dashboard {
	today := model.FormatDate(now)
	month := now.Format("2006-01")

	dash := Dashboard{
		Outstanding:     balance.Outstanding(s.Customers),
		MonthCollection: decimal.Zero,
	}
	for _, d := range s.Deliveries {
		if d.Date == today {
			dash.TodayJars += d.Quantity
		}
	}
	for _, tx := range s.Transactions {
		if tx.Type == model.TransactionPayment && strings.HasPrefix(tx.Date, month) {
			dash.MonthCollection = dash.MonthCollection.Add(tx.Amount)
		}
	}
	for _, b := range s.Bookings {
		if b.Status == model.BookingPending {
			dash.PendingBookings++
		}
	}
	return dash
}

// Bucket - продажи (BILL) и сборы (PAYMENT) за один день
type Bucket struct {
	Date       string          `json:"date"`
	Label      string          `json:"label"`
	Sales      decimal.Decimal `json:"sales"`
	Collection decimal.Decimal `json:"collection"`
}

// Totals - итоги за все время, без учета периода
type Totals struct {
	Sales       decimal.Decimal `json:"sales"`
	Collection  decimal.Decimal `json:"collection"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type Analytics struct {
	Timeframe Timeframe `json:"timeframe"`
	Buckets   []Bucket  `json:"buckets"`
	Totals    Totals    `json:"totals"`
}

// BuildAnalytics раскладывает операции по дням периода, от старых к новым.
// Операции вне периода в дни не попадают, но входят в итоги.
func BuildAnalytics(s *model.State, tf Timeframe, now time.Time) Analytics {
	days := tf.Days()
	buckets := make([]Bucket, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := model.FormatDate(now.AddDate(0, 0, i-days+1))
		buckets[i] = Bucket{Date: date, Label: date[5:], Sales: decimal.Zero, Collection: decimal.Zero}
		index[date] = i
	}

	for _, tx := range s.Transactions {
		i, ok := index[tx.Date]
		if !ok {
			continue
		}
		switch tx.Type {
		case model.TransactionBill:
			buckets[i].Sales = buckets[i].Sales.Add(tx.Amount)
		case model.TransactionPayment:
			buckets[i].Collection = buckets[i].Collection.Add(tx.Amount)
		}
	}

	return Analytics{
		Timeframe: tf,
		Buckets:   buckets,
		Totals: Totals{
			Sales:       balance.Total(s.Transactions, model.TransactionBill),
			Collection:  balance.Total(s.Transactions, model.TransactionPayment),
			Outstanding: balance.Outstanding(s.Customers),
		},
	}
}
