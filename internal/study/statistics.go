package study

import (
	"time"

	"github.com/lsk/studytrackr/internal/store"
)

// Statistics is an ephemeral rollup over one or more study records. It is
// never persisted.
type Statistics struct {
	TotalStudySeconds   int
	TotalTodoCount      int
	CompletedTodoCount  int
	AverageStudySeconds int
	StudyDayCount       int
}

// CompletionRate is the completed/total percentage, 0 when there are no
// todos.
func (s Statistics) CompletionRate() float64 {
	if s.TotalTodoCount == 0 {
		return 0
	}
	return float64(s.CompletedTodoCount) / float64(s.TotalTodoCount) * 100
}

// StatisticsService rolls study records up over day, week and month windows.
type StatisticsService struct {
	records *RecordService
}

func NewStatisticsService(records *RecordService) *StatisticsService {
	return &StatisticsService{records: records}
}

// Daily returns the single day's rollup; all zeros when the day has no data.
// For a single day the average equals the raw total.
func (s *StatisticsService) Daily(userID int64, date time.Time) (Statistics, error) {
	record, err := s.records.RecordOrComputed(userID, date)
	if err != nil {
		return Statistics{}, err
	}
	if record == nil {
		return Statistics{}, nil
	}

	dayCount := 0
	if record.TotalTodoCount > 0 {
		dayCount = 1
	}
	return Statistics{
		TotalStudySeconds:   record.TotalStudySeconds,
		TotalTodoCount:      record.TotalTodoCount,
		CompletedTodoCount:  record.CompletedTodoCount,
		AverageStudySeconds: record.TotalStudySeconds,
		StudyDayCount:       dayCount,
	}, nil
}

// Weekly aggregates Monday through Sunday of the week containing date.
func (s *StatisticsService) Weekly(userID int64, date time.Time) (Statistics, error) {
	start := StartOfWeek(date)
	return s.rangeStatistics(userID, start, start.AddDate(0, 0, 6))
}

// Monthly aggregates the first through last day of date's month.
func (s *StatisticsService) Monthly(userID int64, date time.Time) (Statistics, error) {
	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 1, -1)
	return s.rangeStatistics(userID, start, end)
}

func (s *StatisticsService) rangeStatistics(userID int64, start, end time.Time) (Statistics, error) {
	records, err := s.records.RecordsInRange(userID, start, end)
	if err != nil {
		return Statistics{}, err
	}

	var stats Statistics
	for _, r := range records {
		stats.TotalStudySeconds += r.TotalStudySeconds
		stats.TotalTodoCount += r.TotalTodoCount
		stats.CompletedTodoCount += r.CompletedTodoCount
		if r.TotalTodoCount > 0 {
			stats.StudyDayCount++
		}
	}
	if stats.StudyDayCount > 0 {
		stats.AverageStudySeconds = stats.TotalStudySeconds / stats.StudyDayCount
	}
	return stats, nil
}

// StartOfWeek returns the Monday of the week containing date.
func StartOfWeek(date time.Time) time.Time {
	d := store.DateOf(date)
	weekday := d.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	return d.AddDate(0, 0, -int(weekday-time.Monday))
}
