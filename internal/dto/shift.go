package dto

import "timeclock/backend/internal/model"

// ── 班次模块 DTO ──

// ShiftConfigResponse 员工班次配置响应
type ShiftConfigResponse struct {
	EmployeeID         string               `json:"employee_id"`
	Name               string               `json:"name"`
	DefaultShift       model.ShiftTimes     `json:"default_shift"`
	WeeklySchedule     model.WeeklySchedule `json:"weekly_schedule,omitempty"`
	GracePeriodMinutes *int                 `json:"grace_period_minutes,omitempty"`
	AbsentThreshold    *float64             `json:"absent_threshold,omitempty"`
}

// UpdateShiftRequest 更新员工班次配置请求
// WeeklySchedule 传入空 map 表示清除周班表（回落默认班次）
type UpdateShiftRequest struct {
	From               *string               `json:"from" binding:"omitempty,len=5"`
	To                 *string               `json:"to"   binding:"omitempty,len=5"`
	WeeklySchedule     *model.WeeklySchedule `json:"weekly_schedule"`
	GracePeriodMinutes *int                  `json:"grace_period_minutes" binding:"omitempty,min=0,max=240"`
	AbsentThreshold    *float64              `json:"absent_threshold"     binding:"omitempty,gt=0,lte=1"`
}

// ShiftForDateResponse 指定日期的生效班次
type ShiftForDateResponse struct {
	Date      string            `json:"date"`
	DayOfWeek string            `json:"day_of_week"`
	IsDayOff  bool              `json:"is_day_off"`
	Shift     *model.ShiftTimes `json:"shift,omitempty"`
}
