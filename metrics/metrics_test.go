package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"seodesk/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.SEOMetric{})
	return db
}

func TestRecordAndLatest(t *testing.T) {
	db := setupTestDB()
	m := NewMetricsModule(db)

	older := time.Now().AddDate(0, 0, -2)
	_, err := m.Record(1, 100, 5, &older)
	assert.NoError(t, err)

	newer := time.Now().AddDate(0, 0, -1)
	_, err = m.Record(1, 250, 8, &newer)
	assert.NoError(t, err)

	latest := m.Latest(1)
	assert.NotNil(t, latest)
	assert.Equal(t, 250, latest.OrganicVisits)
	assert.Equal(t, 8, latest.BacklinkCount)
}

func TestLatest_NoSnapshots(t *testing.T) {
	db := setupTestDB()
	m := NewMetricsModule(db)

	assert.Nil(t, m.Latest(42))
}

func TestHistory_NewestFirst(t *testing.T) {
	db := setupTestDB()
	m := NewMetricsModule(db)

	for i := 1; i <= 5; i++ {
		at := time.Now().AddDate(0, 0, -i)
		m.Record(1, i*100, i, &at)
	}

	history := m.History(1, 3)
	assert.Equal(t, 3, len(history))
	assert.Equal(t, 100, history[0].OrganicVisits)
	assert.Equal(t, 300, history[2].OrganicVisits)
}

func TestTrafficByDay_ZeroFillsMissingDays(t *testing.T) {
	db := setupTestDB()
	m := NewMetricsModule(db)

	yesterday := time.Now().AddDate(0, 0, -1)
	m.Record(1, 500, 0, &yesterday)

	series := m.TrafficByDay(1, 7)
	assert.Equal(t, 7, len(series))

	var total int64
	for _, day := range series {
		total += day.Visits
	}
	assert.Equal(t, int64(500), total)
	assert.Equal(t, int64(500), series[5].Visits) // yesterday is second to last
	assert.Equal(t, int64(0), series[6].Visits)
}

func TestTrafficByDay_IgnoresOtherClients(t *testing.T) {
	db := setupTestDB()
	m := NewMetricsModule(db)

	yesterday := time.Now().AddDate(0, 0, -1)
	m.Record(1, 500, 0, &yesterday)
	m.Record(2, 900, 0, &yesterday)

	series := m.TrafficByDay(1, 7)

	var total int64
	for _, day := range series {
		total += day.Visits
	}
	assert.Equal(t, int64(500), total)
}

func TestNormalizeChart(t *testing.T) {
	series := []DayTraffic{
		{Date: "2026-08-01", Visits: 0},
		{Date: "2026-08-02", Visits: 50},
		{Date: "2026-08-03", Visits: 200},
	}

	points := NormalizeChart(series)
	assert.Equal(t, 3, len(points))
	assert.Equal(t, 0.0, points[0].Percentage)
	assert.Equal(t, 25.0, points[1].Percentage)
	assert.Equal(t, 100.0, points[2].Percentage)
}

func TestNormalizeChart_AllZero(t *testing.T) {
	series := []DayTraffic{{Date: "2026-08-01"}, {Date: "2026-08-02"}}

	points := NormalizeChart(series)
	for _, p := range points {
		assert.Equal(t, 0.0, p.Percentage)
	}
}
