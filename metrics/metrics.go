package metrics

import (
	"time"

	"gorm.io/gorm"

	"seodesk/models"
)

// MetricsModule stores and aggregates per-client SEO snapshots. Snapshots are
// recorded manually from the admin area; there is no background collection.
type MetricsModule struct {
	db *gorm.DB
}

func NewMetricsModule(db *gorm.DB) *MetricsModule {
	return &MetricsModule{db: db}
}

// Record stores one snapshot for the client, stamped now unless recordedAt
// is provided.
func (m *MetricsModule) Record(clientID, organicVisits, backlinkCount int, recordedAt *time.Time) (*models.SEOMetric, error) {
	at := time.Now()
	if recordedAt != nil {
		at = *recordedAt
	}

	metric := models.SEOMetric{
		ClientID:      clientID,
		OrganicVisits: organicVisits,
		BacklinkCount: backlinkCount,
		RecordedAt:    at,
	}

	if err := m.db.Create(&metric).Error; err != nil {
		return nil, err
	}
	return &metric, nil
}

// Latest returns the most recent snapshot for a client, or nil when none
// has been recorded yet.
func (m *MetricsModule) Latest(clientID int) *models.SEOMetric {
	var metric models.SEOMetric
	err := m.db.Where("client_id = ?", clientID).
		Order("recorded_at DESC").
		First(&metric).Error
	if err != nil {
		return nil
	}
	return &metric
}

// History returns up to limit snapshots for a client, newest first.
func (m *MetricsModule) History(clientID, limit int) []models.SEOMetric {
	var metrics []models.SEOMetric
	m.db.Where("client_id = ?", clientID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&metrics)
	return metrics
}

// DayTraffic is one point of the dashboard traffic chart.
type DayTraffic struct {
	Date   string
	Visits int64
}

// TrafficByDay returns organic visits summed per day over the last N days.
// Days without a snapshot are zero-filled so charts keep a continuous axis.
func (m *MetricsModule) TrafficByDay(clientID int, days int) []DayTraffic {
	startDate := time.Now().AddDate(0, 0, -days)

	var results []struct {
		Date   string
		Visits int64
	}

	m.db.Model(&models.SEOMetric{}).
		Select("DATE(recorded_at) as date, SUM(organic_visits) as visits").
		Where("client_id = ? AND recorded_at >= ?", clientID, startDate).
		Group("DATE(recorded_at)").
		Order("date ASC").
		Scan(&results)

	series := make([]DayTraffic, days)
	for i := 0; i < days; i++ {
		date := time.Now().AddDate(0, 0, -(days - 1 - i))
		series[i] = DayTraffic{Date: date.Format("2006-01-02")}
	}

	for _, result := range results {
		for i := range series {
			if series[i].Date == result.Date {
				series[i].Visits = result.Visits
				break
			}
		}
	}

	return series
}

// ChartPoint carries a bar height normalized against the series maximum.
type ChartPoint struct {
	Date       string
	Visits     int64
	Percentage float64
}

// NormalizeChart converts a day series into percentages of its maximum so
// templates can render bars without doing arithmetic.
func NormalizeChart(series []DayTraffic) []ChartPoint {
	max := int64(1)
	for _, day := range series {
		if day.Visits > max {
			max = day.Visits
		}
	}

	points := make([]ChartPoint, len(series))
	for i, day := range series {
		points[i] = ChartPoint{
			Date:       day.Date,
			Visits:     day.Visits,
			Percentage: float64(day.Visits) / float64(max) * 100,
		}
	}
	return points
}
