// Package analytics records traffic events and aggregates them into the
// 30-day report consumed by the admin dashboard.
package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/models"
)

const geoEndpoint = "http://ip-api.com/json/"

// timelineDays — size of the report window, today included.
const timelineDays = 30

type Service struct {
	db *gorm.DB
	// overridable in tests
	now        func() time.Time
	lookupCity func(ctx context.Context, ip string) string
}

func NewService(db *gorm.DB) *Service {
	s := &Service{db: db, now: time.Now}
	s.lookupCity = s.cityFromIP
	return s
}

// cityFromIP resolves the request IP to a city. Best-effort: any failure
// yields "Unknown".
func (s *Service) cityFromIP(ctx context.Context, ip string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoEndpoint+ip+"/", nil)
	if err != nil {
		return "Unknown"
	}
	client := &http.Client{Timeout: 3 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return "Unknown"
	}
	defer res.Body.Close()
	var payload struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.City == "" {
		return "Unknown"
	}
	return payload.City
}

// RecordInput is one incoming traffic event.
type RecordInput struct {
	Type      models.AnalyticType
	TargetID  uuid.UUID
	URL       string
	IPAddress string
}

// Record geolocates the visitor and stores the event.
func (s *Service) Record(ctx context.Context, in RecordInput) (*models.Analytic, error) {
	row := models.Analytic{
		Type:      in.Type,
		TargetID:  in.TargetID,
		URL:       in.URL,
		IPAddress: in.IPAddress,
		Location:  s.lookupCity(ctx, in.IPAddress),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ProductClicks aggregates clicks on one product.
type ProductClicks struct {
	Clicks      int    `json:"clicks"`
	LastClicked string `json:"lastClicked"`
}

// DayStats is one timeline bucket.
type DayStats struct {
	Visitors      int `json:"visitors"`
	PageViews     int `json:"pageViews"`
	ProductClicks int `json:"productClicks"`
}

// TrafficReport is the 30-day aggregate.
type TrafficReport struct {
	Visitors         int                      `json:"visitors"`
	PageViews        int                      `json:"pageViews"`
	ProductClicks    int                      `json:"productClicks"`
	ClicksPerProduct map[string]ProductClicks `json:"clicksPerProduct"`
	Timeline         map[string]DayStats      `json:"timeline"`
}

// Traffic buckets the last 30 days of records into the dashboard report:
// overall unique visitors (distinct IPs), page view and product click
// totals, per-product click counts with the last click time, and a per-day
// timeline keyed by UTC day (YYYY-MM-DD).
func (s *Service) Traffic(ctx context.Context) (*TrafficReport, error) {
	today := s.now().UTC()
	start := today.Truncate(24 * time.Hour).AddDate(0, 0, -(timelineDays - 1))

	var rows []models.Analytic
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, today).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	report := &TrafficReport{
		ClicksPerProduct: map[string]ProductClicks{},
		Timeline:         map[string]DayStats{},
	}

	ips := map[string]bool{}
	for _, r := range rows {
		ips[r.IPAddress] = true
		switch r.Type {
		case models.AnalyticPage:
			report.PageViews++
		case models.AnalyticProduct:
			report.ProductClicks++
			key := r.TargetID.String()
			entry := report.ClicksPerProduct[key]
			entry.Clicks++
			clicked := r.CreatedAt.UTC().Format(time.RFC3339)
			if entry.LastClicked == "" || clicked > entry.LastClicked {
				entry.LastClicked = clicked
			}
			report.ClicksPerProduct[key] = entry
		}
	}
	report.Visitors = len(ips)

	for i := 0; i < timelineDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		var stats DayStats
		dayIPs := map[string]bool{}
		for _, r := range rows {
			if r.CreatedAt.UTC().Format("2006-01-02") != key {
				continue
			}
			dayIPs[r.IPAddress] = true
			switch r.Type {
			case models.AnalyticPage:
				stats.PageViews++
			case models.AnalyticProduct:
				stats.ProductClicks++
			}
		}
		stats.Visitors = len(dayIPs)
		report.Timeline[key] = stats
	}
	return report, nil
}
