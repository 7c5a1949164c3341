package reports

import (
	"time"

	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
	"github.com/rodrigoinhaia/DiinPonto/utils"
)

type Filter struct {
	From         *time.Time
	To           *time.Time
	UserID       *string
	DepartmentID *string
}

func applyFilter(db *gorm.DB, f Filter) *gorm.DB {
	q := db.Model(&models.TimeRecord{})
	if f.From != nil {
		q = q.Where("time_records.timestamp >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("time_records.timestamp <= ?", *f.To)
	}
	if f.UserID != nil {
		q = q.Where("time_records.user_id = ?", *f.UserID)
	}
	if f.DepartmentID != nil {
		q = q.Joins("JOIN users ON users.id = time_records.user_id").
			Where("users.department_id = ?", *f.DepartmentID)
	}
	return q
}

// Records returns the detailed punch listing, newest first.
func Records(db *gorm.DB, f Filter) ([]models.TimeRecord, error) {
	var records []models.TimeRecord
	err := applyFilter(db, f).
		Preload("User.Department").
		Order("time_records.timestamp desc").
		Find(&records).Error
	return records, err
}

type UserSummary struct {
	UserID         string     `json:"userId"`
	UserName       string     `json:"userName"`
	EmployeeID     string     `json:"employeeId"`
	DepartmentName string     `json:"departmentName"`
	TotalRecords   int        `json:"totalRecords"`
	EntryRecords   int        `json:"entryRecords"`
	ExitRecords    int        `json:"exitRecords"`
	FirstRecord    *time.Time `json:"firstRecord"`
	LastRecord     *time.Time `json:"lastRecord"`
}

// Summary aggregates the filtered punches per user.
func Summary(db *gorm.DB, f Filter) ([]UserSummary, error) {
	records, err := Records(db, f)
	if err != nil {
		return nil, err
	}

	grouped := utils.GroupBy(records, func(r models.TimeRecord) string { return r.UserID })

	summaries := make([]UserSummary, 0, len(grouped))
	for userID, userRecords := range grouped {
		s := UserSummary{
			UserID:         userID,
			UserName:       userRecords[0].User.Name,
			EmployeeID:     userRecords[0].User.EmployeeID,
			DepartmentName: departmentName(&userRecords[0].User),
		}
		for _, r := range userRecords {
			s.TotalRecords++
			switch r.Type {
			case models.RecordEntry:
				s.EntryRecords++
			case models.RecordExit:
				s.ExitRecords++
			}
			ts := r.Timestamp
			if s.FirstRecord == nil || ts.Before(*s.FirstRecord) {
				first := ts
				s.FirstRecord = &first
			}
			if s.LastRecord == nil || ts.After(*s.LastRecord) {
				last := ts
				s.LastRecord = &last
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

type LateEntry struct {
	Date           string    `json:"date"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	DepartmentName string    `json:"departmentName"`
	Timestamp      time.Time `json:"timestamp"`
	DelayMinutes   int       `json:"delayMinutes"`
}

// LateReport lists ENTRY punches arriving after the scheduled start,
// for users with a schedule. Administrators are excluded as in the
// attendance views.
func LateReport(db *gorm.DB, from, to time.Time) ([]LateEntry, error) {
	var records []models.TimeRecord
	err := db.Model(&models.TimeRecord{}).
		Joins("JOIN users ON users.id = time_records.user_id").
		Where("users.role <> ?", models.RoleAdmin).
		Where("time_records.type = ?", models.RecordEntry).
		Where("time_records.timestamp >= ? AND time_records.timestamp <= ?", from, to).
		Preload("User.WorkSchedule").
		Preload("User.Department").
		Order("time_records.timestamp asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	var entries []LateEntry
	for _, r := range records {
		delay, ok := Delay(r.Timestamp, r.User.WorkSchedule)
		if !ok {
			continue
		}
		entries = append(entries, LateEntry{
			Date:           r.Timestamp.Format("2006-01-02"),
			UserID:         r.UserID,
			UserName:       r.User.Name,
			DepartmentName: departmentName(&r.User),
			Timestamp:      r.Timestamp,
			DelayMinutes:   int(delay.Minutes()),
		})
	}
	return entries, nil
}

type OvertimeEntry struct {
	Date           string    `json:"date"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	DepartmentName string    `json:"departmentName"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	OvertimeHours  float64   `json:"overtimeHours"`
}

// OvertimeReport lists per-user, per-day worked time outside the
// scheduled window.
func OvertimeReport(db *gorm.DB, from, to time.Time) ([]OvertimeEntry, error) {
	var records []models.TimeRecord
	err := db.Model(&models.TimeRecord{}).
		Joins("JOIN users ON users.id = time_records.user_id").
		Where("users.role <> ?", models.RoleAdmin).
		Where("time_records.timestamp >= ? AND time_records.timestamp <= ?", from, to).
		Preload("User.WorkSchedule").
		Preload("User.Department").
		Order("time_records.timestamp asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	grouped := utils.GroupBy(records, func(r models.TimeRecord) string {
		return r.UserID + "|" + r.Timestamp.Format("2006-01-02")
	})

	var entries []OvertimeEntry
	for _, dayRecords := range grouped {
		user := dayRecords[0].User
		date := utils.StartOfDay(dayRecords[0].Timestamp)

		overtime, ok := Overtime(dayRecords, user.WorkSchedule, date)
		if !ok || overtime <= 0 {
			continue
		}

		segments := WorkedSegments(dayRecords)
		if len(segments) == 0 {
			continue
		}

		entries = append(entries, OvertimeEntry{
			Date:           date.Format("2006-01-02"),
			UserID:         user.ID,
			UserName:       user.Name,
			DepartmentName: departmentName(&user),
			StartTime:      segments[0].Start,
			EndTime:        segments[len(segments)-1].End,
			OvertimeHours:  overtime.Hours(),
		})
	}
	return entries, nil
}

func departmentName(user *models.User) string {
	if user.Department == nil {
		return "Sem departamento"
	}
	return user.Department.Name
}
