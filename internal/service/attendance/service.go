package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
)

// Rules decide which local day a timestamp belongs to and whether a check-in is late.
type Rules struct {
	Location     *time.Location
	OfficeHour   int
	OfficeMinute int
	Grace        time.Duration
	Office       geo.Fence
}

// RulesFromConfig parses the attendance section of the configuration.
func RulesFromConfig(cfg config.AttendanceConfig) (Rules, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Rules{}, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	start, err := time.Parse("15:04", cfg.OfficeStart)
	if err != nil {
		return Rules{}, fmt.Errorf("parse office start %q: %w", cfg.OfficeStart, err)
	}
	return Rules{
		Location:     loc,
		OfficeHour:   start.Hour(),
		OfficeMinute: start.Minute(),
		Grace:        time.Duration(cfg.LateGraceMinutes) * time.Minute,
		Office: geo.Fence{
			Center: geo.Point{Latitude: cfg.OfficeLatitude, Longitude: cfg.OfficeLongitude},
			Radius: cfg.RadiusMeters,
		},
	}, nil
}

// statusAt returns late when t falls after office start plus grace on its local day.
func (r Rules) statusAt(t time.Time) attendance.Status {
	local := t.In(r.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), r.OfficeHour, r.OfficeMinute, 0, 0, r.Location)
	if local.After(start.Add(r.Grace)) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

func (r Rules) checkLocation(loc *attendance.Location) error {
	if !r.Office.Enabled() {
		return nil
	}
	if loc == nil {
		return attendance.ErrLocationRequired
	}
	if !r.Office.Contains(geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}) {
		return attendance.ErrOutsideOffice
	}
	return nil
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	publisher realtime.Publisher
	rules     Rules
	now       func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	publisher realtime.Publisher,
	rules Rules,
) attendance.AttendanceService {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		publisher:            publisher,
		rules:                rules,
		now:                  time.Now,
	}
}

func (a *AttendanceServiceImpl) at(ts *time.Time) time.Time {
	if ts != nil {
		return ts.UTC()
	}
	return a.now().UTC()
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := a.rules.checkLocation(req.Location); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	checkedAt := a.at(req.Timestamp)
	date := attendance.DateOf(checkedAt, a.rules.Location)

	existing, err := a.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		UserID:          req.UserID,
		Date:            date,
		CheckInTime:     &checkedAt,
		Status:          a.rules.statusAt(checkedAt),
		CheckInLocation: req.Location,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	slog.Info("attendance check-in", "user_id", created.UserID, "date", created.Date.Format("2006-01-02"), "status", created.Status)
	a.publish("attendance.checked_in", created)
	return attendance.NewAttendanceResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	checkedAt := a.at(req.Timestamp)
	date := attendance.DateOf(checkedAt, a.rules.Location)

	att, err := a.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if att == nil || att.CheckInTime == nil {
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}
	if att.CheckOutTime != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
	}

	att.CheckOutTime = &checkedAt
	att.CheckOutLocation = req.Location
	if err := a.AttendanceRepository.Update(ctx, *att); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	a.publish("attendance.checked_out", *att)
	return attendance.NewAttendanceResponse(*att), nil
}

// Mark implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if !req.Status.IsValid() {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidStatus
	}

	date := attendance.DateOf(a.now(), a.rules.Location)
	if req.Date != nil {
		date = time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC)
	}

	att, err := a.AttendanceRepository.GetByUserAndDate(ctx, req.UserID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	var result attendance.Attendance
	if att == nil {
		result, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			UserID: req.UserID,
			Date:   date,
			Status: req.Status,
		})
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	} else {
		att.Status = req.Status
		if err := a.AttendanceRepository.Update(ctx, *att); err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		result = *att
	}

	a.publish("attendance.marked", result)
	return attendance.NewAttendanceResponse(result), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return attendance.NewAttendanceResponse(att), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, attendance.NewAttendanceResponse(rec))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// MonthlySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MonthlySummary(ctx context.Context, userID string, month, year int) (attendance.MonthlySummary, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	records, err := a.AttendanceRepository.ListByUserBetween(ctx, userID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to load attendance for %04d-%02d: %w", year, month, err)
	}
	return attendance.Aggregate(userID, records, month, year), nil
}

// Dedupe implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Dedupe(ctx context.Context, dryRun bool) (attendance.DedupeResult, error) {
	dups, err := a.AttendanceRepository.ListDuplicates(ctx)
	if err != nil {
		return attendance.DedupeResult{}, fmt.Errorf("failed to list duplicate attendance: %w", err)
	}

	ids := attendance.DuplicatesToRemove(dups)
	result := attendance.DedupeResult{Duplicates: len(ids), IDs: ids, DryRun: dryRun}
	if dryRun || len(ids) == 0 {
		return result, nil
	}

	removed, err := a.AttendanceRepository.DeleteByIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("failed to delete duplicate attendance: %w", err)
	}
	result.Removed = removed
	slog.Info("attendance duplicates removed", "count", removed)
	return result, nil
}

func (a *AttendanceServiceImpl) publish(event string, att attendance.Attendance) {
	if a.publisher == nil {
		return
	}
	a.publisher.PublishToMany(realtime.Topics(realtime.TopicAttendance, att.UserID), realtime.Event{
		Event: event,
		Data:  attendance.NewAttendanceResponse(att),
	})
}
