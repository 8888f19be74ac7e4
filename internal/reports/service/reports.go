package service

import (
	"context"
	"fmt"
	"math"
	"time"

	apperrors "groundbook/pkg/errors"
	"groundbook/pkg/logger"
	"groundbook/pkg/model"
)

// TimeFrame selects the reporting window and its bucketing.
type TimeFrame string

const (
	TimeFrameWeekly  TimeFrame = "weekly"  // last 7 days, one bucket per weekday
	TimeFrameMonthly TimeFrame = "monthly" // last 30 days, one bucket per week
	TimeFrameYearly  TimeFrame = "yearly"  // last 12 months, one bucket per month
)

func (tf TimeFrame) Valid() bool {
	switch tf {
	case TimeFrameWeekly, TimeFrameMonthly, TimeFrameYearly:
		return true
	}
	return false
}

// GroundFilter optionally narrows the report to one ground.
type GroundFilter string

const (
	GroundFilterAll      GroundFilter = "all"
	GroundFilterCricket  GroundFilter = "cricket"
	GroundFilterFootball GroundFilter = "football"
)

func (gf GroundFilter) Valid() bool {
	switch gf {
	case GroundFilterAll, GroundFilterCricket, GroundFilterFootball:
		return true
	}
	return false
}

func (gf GroundFilter) matches(g model.GroundType) bool {
	return gf == GroundFilterAll || string(gf) == string(g)
}

// Report is the pre-aggregated shape the charting layer consumes: parallel
// count series per bucket label plus the overall tallies.
type Report struct {
	TimeFrame TimeFrame `json:"time_frame"`
	Labels    []string  `json:"labels"`
	Approved  []int     `json:"approved"`
	Rejected  []int     `json:"rejected"`
	Pending   []int     `json:"pending"`

	TotalCount    int `json:"total_count"`
	ApprovedCount int `json:"approved_count"`
	RejectedCount int `json:"rejected_count"`
	PendingCount  int `json:"pending_count"`
	CricketCount  int `json:"cricket_count"`
	FootballCount int `json:"football_count"`
}

// RecordSource is the unfiltered fetch the aggregator folds over.
type RecordSource interface {
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
}

type ReportService interface {
	Aggregate(ctx context.Context, timeFrame TimeFrame, groundFilter GroundFilter) (*Report, error)
}

type reportService struct {
	source RecordSource
	log    *logger.Logger
}

func NewReportService(source RecordSource, log *logger.Logger) ReportService {
	return &reportService{
		source: source,
		log:    log,
	}
}

func (s *reportService) Aggregate(ctx context.Context, timeFrame TimeFrame, groundFilter GroundFilter) (*Report, error) {
	if !timeFrame.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown time frame: %s", timeFrame))
	}
	if !groundFilter.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown ground filter: %s", groundFilter))
	}

	records, err := s.source.FindAll(ctx, 0, 0)
	if err != nil {
		s.log.Error("Failed to fetch bookings for report", "error", err)
		return nil, apperrors.Internal("Failed to aggregate report", err)
	}

	report := aggregate(records, timeFrame, groundFilter, time.Now())
	s.log.Debug("Report aggregated",
		"time_frame", timeFrame,
		"ground_filter", groundFilter,
		"total_count", report.TotalCount,
	)
	return report, nil
}

var monthAbbrevs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// aggregate is a pure fold over the record set. Bucket labels and membership
// rules mirror the admin report charts: weekday names over the trailing week,
// "Week 1".."Week 4" over the trailing 30 days, month names over the trailing
// year. Ground tallies count every record passing the ground filter; status
// tallies count only records that landed in a bucket, so the status counts
// always sum to TotalCount.
func aggregate(records []*model.Booking, timeFrame TimeFrame, groundFilter GroundFilter, now time.Time) *Report {
	labels := bucketLabels(timeFrame, now)

	approved := make(map[string]int, len(labels))
	rejected := make(map[string]int, len(labels))
	pending := make(map[string]int, len(labels))
	inLabels := make(map[string]bool, len(labels))
	for _, label := range labels {
		inLabels[label] = true
	}

	report := &Report{
		TimeFrame: timeFrame,
		Labels:    labels,
	}

	for _, b := range records {
		if !groundFilter.matches(b.GroundType) {
			continue
		}

		switch b.GroundType {
		case model.GroundCricket:
			report.CricketCount++
		case model.GroundFootball:
			report.FootballCount++
		}

		label, include := bucketFor(timeFrame, b.Date, now)
		if !include || !inLabels[label] {
			continue
		}

		switch b.Status {
		case model.StatusApproved:
			approved[label]++
			report.ApprovedCount++
		case model.StatusRejected:
			rejected[label]++
			report.RejectedCount++
		default:
			pending[label]++
			report.PendingCount++
		}
	}

	report.TotalCount = report.ApprovedCount + report.RejectedCount + report.PendingCount

	report.Approved = make([]int, len(labels))
	report.Rejected = make([]int, len(labels))
	report.Pending = make([]int, len(labels))
	for i, label := range labels {
		report.Approved[i] = approved[label]
		report.Rejected[i] = rejected[label]
		report.Pending[i] = pending[label]
	}

	return report
}

// bucketLabels produces the chronological bucket labels ending at now.
func bucketLabels(timeFrame TimeFrame, now time.Time) []string {
	switch timeFrame {
	case TimeFrameWeekly:
		labels := make([]string, 0, 7)
		for i := 6; i >= 0; i-- {
			labels = append(labels, now.AddDate(0, 0, -i).Format("Mon"))
		}
		return labels
	case TimeFrameMonthly:
		return []string{"Week 1", "Week 2", "Week 3", "Week 4"}
	case TimeFrameYearly:
		labels := make([]string, 0, 12)
		for i := 11; i >= 0; i-- {
			idx := (int(now.Month()) - 1 - i + 24) % 12
			labels = append(labels, monthAbbrevs[idx])
		}
		return labels
	}
	return nil
}

// bucketFor maps a record's date into a bucket label, or include=false when
// the record falls outside the window.
func bucketFor(timeFrame TimeFrame, date, now time.Time) (string, bool) {
	switch timeFrame {
	case TimeFrameWeekly:
		daysDiff := now.Sub(date).Hours() / 24
		return date.Format("Mon"), daysDiff <= 7
	case TimeFrameMonthly:
		daysDiff := now.Sub(date).Hours() / 24
		if daysDiff > 30 {
			return "", false
		}
		weekNum := int(math.Floor(daysDiff / 7))
		if weekNum < 0 || weekNum >= 4 {
			return "", false
		}
		return fmt.Sprintf("Week %d", 4-weekNum), true
	case TimeFrameYearly:
		monthDiff := (int(now.Month()) - int(date.Month()) + 12) % 12
		yearDiff := now.Year() - date.Year()
		if yearDiff == 0 || (yearDiff == 1 && monthDiff == 0) {
			return monthAbbrevs[int(date.Month())-1], true
		}
		return "", false
	}
	return "", false
}
