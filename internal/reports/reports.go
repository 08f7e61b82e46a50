package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"canchero/internal/db"
	"canchero/internal/grid"
	"canchero/internal/models"
)

// Period selects the aggregation window of a usage report.
type Period string

const (
	PeriodDay   Period = "dia"
	PeriodWeek  Period = "semana"
	PeriodMonth Period = "mes"
)

// ValidPeriod reports whether p is a known period.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// UsagePoint is one bucket of a usage series.
type UsagePoint struct {
	Label    string  `json:"etiqueta"`
	Bookings int     `json:"reservas"`
	Revenue  float64 `json:"ingresos"`
}

// UsageReport aggregates bookings of a facility over a period.
type UsageReport struct {
	FacilityID       int64        `json:"cancha_id"`
	FacilityName     string       `json:"cancha"`
	Period           Period       `json:"periodo"`
	Series           []UsagePoint `json:"serie"`
	TotalBookings    int          `json:"total_reservas"`
	TotalRevenue     float64      `json:"ingresos_totales"`
	OccupancyPercent int          `json:"ocupacion_pct"`
}

// Summary is the dashboard headline: facility count, booking counts by
// status and realized revenue.
type Summary struct {
	TotalFacilities int     `json:"total_canchas"`
	ConfirmedCount  int     `json:"reservas_confirmadas"`
	PendingCount    int     `json:"reservas_pendientes"`
	PlayedRevenue   float64 `json:"ingresos_jugados"`
}

// DataSource provides the booking and facility data reports are built
// from. *db.DB satisfies it.
type DataSource interface {
	ListBookings(ctx context.Context, filter db.BookingFilter) ([]models.Booking, error)
	ListFacilities(ctx context.Context) ([]models.Facility, error)
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)
}

// Reporter computes usage and revenue reports in memory from booking
// lists.
type Reporter struct {
	source DataSource
	logger *zerolog.Logger
}

// NewReporter creates a reporter.
func NewReporter(source DataSource, logger *zerolog.Logger) *Reporter {
	return &Reporter{source: source, logger: logger}
}

// Usage builds a usage series for one facility around the anchor date.
// Day reports bucket by display hour, week reports by weekday from the
// Monday of the anchor's week, month reports by four week blocks from
// the first of the month.
func (r *Reporter) Usage(ctx context.Context, facilityID int64, period Period, anchor time.Time) (*UsageReport, error) {
	if !ValidPeriod(period) {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	facility, err := r.source.GetFacility(ctx, facilityID)
	if err != nil {
		return nil, fmt.Errorf("get facility: %w", err)
	}

	from, to := periodRange(period, anchor)
	bookings, err := r.source.ListBookings(ctx, db.BookingFilter{
		FacilityID: facilityID,
		DateFrom:   from,
		DateTo:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	report := &UsageReport{
		FacilityID:   facilityID,
		FacilityName: facility.Name,
		Period:       period,
	}

	switch period {
	case PeriodDay:
		report.Series = dayBuckets(bookings, anchor)
	case PeriodWeek:
		report.Series = weekBuckets(bookings, anchor)
	case PeriodMonth:
		report.Series = monthBuckets(bookings, anchor)
	}

	for _, p := range report.Series {
		report.TotalBookings += p.Bookings
		report.TotalRevenue += p.Revenue
	}
	report.OccupancyPercent = occupancyPercent(report.TotalBookings, capacityFor(period))

	r.logger.Debug().
		Int64("facility_id", facilityID).
		Str("period", string(period)).
		Int("bookings", report.TotalBookings).
		Msg("usage report built")
	return report, nil
}

// BuildSummary computes the dashboard headline from in-memory lists.
func BuildSummary(bookings []models.Booking, facilities []models.Facility, now time.Time) Summary {
	s := Summary{TotalFacilities: len(facilities)}
	for i := range bookings {
		b := &bookings[i]
		switch b.Status {
		case models.StatusConfirmed:
			s.ConfirmedCount++
		case models.StatusPending:
			s.PendingCount++
		}
		if b.IsPlayed(now) {
			s.PlayedRevenue += b.Amount
		}
	}
	return s
}

// Summary loads bookings and facilities and computes the headline.
func (r *Reporter) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	facilities, err := r.source.ListFacilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	bookings, err := r.source.ListBookings(ctx, db.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	s := BuildSummary(bookings, facilities, now)
	return &s, nil
}

func periodRange(period Period, anchor time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeek:
		days := grid.WeekOf(anchor, 0)
		return days[0], days[6]
	case PeriodMonth:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return first, first.AddDate(0, 0, 27)
	default:
		return anchor, anchor
	}
}

func dayBuckets(bookings []models.Booking, anchor time.Time) []UsagePoint {
	hours := grid.Hours(grid.DefaultOpenHour, grid.DefaultCloseHour)
	points := make([]UsagePoint, len(hours))
	index := make(map[string]int, len(hours))
	for i, h := range hours {
		points[i].Label = h
		index[h] = i
	}

	key := grid.LocalDateKey(anchor)
	for i := range bookings {
		b := &bookings[i]
		if !b.IsActive() || grid.LocalDateKey(b.Date) != key {
			continue
		}
		label := models.FormatClock(b.StartMinutes() / 60 * 60)
		if idx, ok := index[label]; ok {
			points[idx].Bookings++
			points[idx].Revenue += b.Amount
		}
	}
	return points
}

func weekBuckets(bookings []models.Booking, anchor time.Time) []UsagePoint {
	days := grid.WeekOf(anchor, 0)
	points := make([]UsagePoint, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		key := grid.LocalDateKey(d)
		points[i].Label = key
		index[key] = i
	}

	for i := range bookings {
		b := &bookings[i]
		if !b.IsActive() {
			continue
		}
		if idx, ok := index[grid.LocalDateKey(b.Date)]; ok {
			points[idx].Bookings++
			points[idx].Revenue += b.Amount
		}
	}
	return points
}

func monthBuckets(bookings []models.Booking, anchor time.Time) []UsagePoint {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	points := make([]UsagePoint, 4)
	for i := range points {
		points[i].Label = fmt.Sprintf("Semana %d", i+1)
	}

	for i := range bookings {
		b := &bookings[i]
		if !b.IsActive() {
			continue
		}
		day := time.Date(b.Date.Year(), b.Date.Month(), b.Date.Day(), 0, 0, 0, 0, first.Location())
		offset := int(day.Sub(first).Hours() / 24)
		if offset < 0 || offset >= 28 {
			continue
		}
		week := offset / 7
		points[week].Bookings++
		points[week].Revenue += b.Amount
	}
	return points
}

// capacityFor returns the number of bookable slots in the period, using
// the default display window.
func capacityFor(period Period) int {
	perDay := len(grid.Hours(grid.DefaultOpenHour, grid.DefaultCloseHour))
	switch period {
	case PeriodWeek:
		return perDay * 7
	case PeriodMonth:
		return perDay * 28
	default:
		return perDay
	}
}

func occupancyPercent(bookings, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	pct := int(math.Round(float64(bookings) / float64(capacity) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
