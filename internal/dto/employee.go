package dto

import "timeclock/backend/internal/model"

// ── 员工模块 DTO ──

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	Job      string `form:"job"       binding:"omitempty,max=100"`
	Gender   string `form:"gender"    binding:"omitempty,oneof=male female other"`
	IsActive *bool  `form:"is_active"`
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID                 string               `json:"id"`
	EmployeeID         string               `json:"employee_id"`
	Name               string               `json:"name"`
	Job                string               `json:"job"`
	Gender             string               `json:"gender"`
	DefaultShift       model.ShiftTimes     `json:"default_shift"`
	WeeklySchedule     model.WeeklySchedule `json:"weekly_schedule,omitempty"`
	GracePeriodMinutes *int                 `json:"grace_period_minutes,omitempty"`
	AbsentThreshold    *float64             `json:"absent_threshold,omitempty"`
	IsActive           bool                 `json:"is_active"`
	CreatedAt          string               `json:"created_at"`
}

// UpdateEmployeeRequest 更新员工信息请求
type UpdateEmployeeRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Job      *string `json:"job"       binding:"omitempty,max=100"`
	Gender   *string `json:"gender"    binding:"omitempty,oneof=male female other"`
	IsActive *bool   `json:"is_active"`
}

// ImportEmployeeRow 批量导入的单行员工数据
type ImportEmployeeRow struct {
	EmployeeID         string               `json:"employee_id"`
	Name               string               `json:"name"`
	Job                string               `json:"job"`
	Gender             string               `json:"gender"`
	From               string               `json:"from"`
	To                 string               `json:"to"`
	WeeklySchedule     model.WeeklySchedule `json:"weekly_schedule,omitempty"`
	GracePeriodMinutes *int                 `json:"grace_period_minutes,omitempty"`
	AbsentThreshold    *float64             `json:"absent_threshold,omitempty"`
}

// ImportEmployeesRequest 批量导入请求（JSON 载荷）
type ImportEmployeesRequest struct {
	FileName  string              `json:"file_name"`
	Employees []ImportEmployeeRow `json:"employees" binding:"required,min=1"`
}

// ImportError 单行导入失败明细
type ImportError struct {
	Line    int    `json:"line"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

// ImportEmployeesResponse 批量导入结果
type ImportEmployeesResponse struct {
	BatchID    string        `json:"batch_id"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Errors     []ImportError `json:"errors,omitempty"`
}

// EmployeeStatsResponse 员工统计
type EmployeeStatsResponse struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}
