package dto

import "timeclock/backend/internal/model"

// ── 考勤模块 DTO ──

// PunchInput 结构化打卡记录（前端已解析）
type PunchInput struct {
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"` // RFC3339 或 "YYYY-MM-DD HH:mm:ss"（按配置时区解释）
	Type       string `json:"type"`      // in | out | unknown
}

// UploadPunchesRequest 打卡上传请求
// Punches 与 Lines 二选一：Lines 为打卡机导出的原始 .dat 行
type UploadPunchesRequest struct {
	FileName string       `json:"file_name"`
	Punches  []PunchInput `json:"punches"`
	Lines    []string     `json:"lines"`
}

// ProcessResult 批次核算计数
// Processed 为本轮扫描的打卡条数（含未知员工组），Created/Updated 按日记录计
type ProcessResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
}

// UploadPunchesResponse 打卡上传结果
type UploadPunchesResponse struct {
	BatchID    string        `json:"batch_id"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Inserted   int           `json:"inserted"`
	Processing ProcessResult `json:"processing"`
	Errors     []ImportError `json:"errors,omitempty"`
}

// ReprocessRequest 重新核算日期范围请求（含两端）
type ReprocessRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
}

// DailyListRequest 日考勤列表查询参数
// Month（YYYY-MM）优先于 StartDate/EndDate
type DailyListRequest struct {
	PaginationRequest
	StartDate  string `form:"start_date"  binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `form:"end_date"    binding:"omitempty,datetime=2006-01-02"`
	Month      string `form:"month"       binding:"omitempty,datetime=2006-01"`
	EmployeeID string `form:"employee_id" binding:"omitempty,max=20"`
	Status     string `form:"status"      binding:"omitempty,oneof=Present Absent Late DayOff"`
	SortBy     string `form:"sort_by"     binding:"omitempty,oneof=date employee_id status total_hours late_minutes"`
	SortOrder  string `form:"sort_order"  binding:"omitempty,oneof=asc desc"`
}

// StatsRequest 统计查询参数
type StatsRequest struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Month     string `form:"month"      binding:"omitempty,datetime=2006-01"`
}

// LateRanking 迟到排行条目
type LateRanking struct {
	EmployeeID       string `json:"employee_id"`
	Name             string `json:"name"`
	TotalLateMinutes int64  `json:"total_late_minutes"`
	LateCount        int64  `json:"late_count"`
}

// SummaryStatsResponse 汇总统计响应
type SummaryStatsResponse struct {
	TotalRecords   int64            `json:"total_records"`
	StatusCounts   map[string]int64 `json:"status_counts"`
	AttendanceRate float64          `json:"attendance_rate"` // 百分比，两位小数
	AvgLateMinutes float64          `json:"avg_late_minutes"`
	AvgWorkHours   float64          `json:"avg_work_hours"`
	TopLate        []LateRanking    `json:"top_late"`
}

// EmployeeReportStats 单员工区间统计
type EmployeeReportStats struct {
	TotalDays        int     `json:"total_days"`
	Present          int     `json:"present"`
	Absent           int     `json:"absent"`
	Late             int     `json:"late"`
	DayOff           int     `json:"day_off"`
	TotalLateMinutes int     `json:"total_late_minutes"`
	TotalWorkHours   float64 `json:"total_work_hours"`
	AvgWorkHours     float64 `json:"avg_work_hours"`
	AttendanceRate   float64 `json:"attendance_rate"`
}

// EmployeeReportResponse 单员工考勤报表
type EmployeeReportResponse struct {
	Records []model.DailyRecord `json:"records"`
	Stats   EmployeeReportStats `json:"stats"`
}

// UploadListRequest 上传历史查询参数
type UploadListRequest struct {
	PaginationRequest
	FileType string `form:"file_type" binding:"omitempty,oneof=users attendance"`
}
