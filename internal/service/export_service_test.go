package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timeclock/backend/internal/dto"
	"timeclock/backend/internal/model"
	"timeclock/backend/internal/repository"
)

func setupTestExportService() (ExportService, *repository.Repository) {
	repo := newMockRepository()
	svc := NewExportService(repo, testAttendanceConfig(), zap.NewNop())
	return svc, repo
}

func seedDailyRecord(repo *repository.Repository, employeeID, name, date, status string, hours float64) {
	_, _ = repo.DailyRecord.Upsert(context.Background(), &model.DailyRecord{
		EmployeeID: employeeID,
		Name:       name,
		Date:       date,
		Status:     status,
		TotalHours: hours,
		AppliedShift: &model.AppliedShift{
			From: "08:00",
			To:   "16:00",
		},
	})
}

// ── ExportDaily 测试 ──

func TestExportService_ExportDaily(t *testing.T) {
	svc, repo := setupTestExportService()
	seedDailyRecord(repo, "118", "张三", "2025-11-17", model.StatusPresent, 8.12)
	seedDailyRecord(repo, "119", "李四", "2025-11-17", model.StatusLate, 7.5)

	buf, filename, err := svc.ExportDaily(context.Background(), &dto.StatsRequest{Month: "2025-11"})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "daily_2025-11-01_2025-11-30.xlsx" {
		t.Errorf("文件名不符，实际=%s", filename)
	}

	// 回读校验表头与数据行
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("日考勤")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头+2数据行，实际=%d", len(rows))
	}
	if rows[0][0] != "日期" || rows[0][8] != "状态" {
		t.Errorf("表头不符: %v", rows[0])
	}
	if rows[1][1] != "118" || rows[1][8] != "正常" {
		t.Errorf("首行数据不符: %v", rows[1])
	}
	if rows[2][8] != "迟到" {
		t.Errorf("次行状态不符: %v", rows[2])
	}
	if rows[1][3] != "08:00-16:00" {
		t.Errorf("班次列不符: %v", rows[1][3])
	}
}

// 记录数超过单页拉取量时应全量导出，不得截断
func TestExportService_ExportDaily_SpansPages(t *testing.T) {
	svc, repo := setupTestExportService()
	total := exportPageSize + 3
	for i := 0; i < total; i++ {
		empID := fmt.Sprintf("%05d", i+1)
		seedDailyRecord(repo, empID, "员工"+empID, "2025-11-17", model.StatusPresent, 8)
	}

	buf, _, err := svc.ExportDaily(context.Background(), &dto.StatsRequest{Month: "2025-11"})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("导出文件应可打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("日考勤")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != total+1 {
		t.Errorf("期望表头+%d数据行，实际=%d", total, len(rows))
	}
}

func TestExportService_ExportDaily_NoRecords(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportDaily(context.Background(), &dto.StatsRequest{Month: "2025-11"})
	if !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("期望 ErrExportNoRecords，实际=%v", err)
	}
}

// ── ExportScheduleICS 测试 ──

func TestExportService_ExportScheduleICS(t *testing.T) {
	svc, repo := setupTestExportService()
	seedEmployee(repo, "118", "张三")

	buf, filename, err := svc.ExportScheduleICS(context.Background(), "118")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if filename != "schedule_118.ics" {
		t.Errorf("文件名不符，实际=%s", filename)
	}

	out := buf.String()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Errorf("输出不是合法 iCalendar: %.80s", out)
	}
	// 默认班次无休息日：四周应展开 28 个事件
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 28 {
		t.Errorf("期望 28 个事件，实际=%d", n)
	}
	if !strings.Contains(out, "张三 班次 08:00-16:00") {
		t.Errorf("事件标题缺失班次信息")
	}
}

func TestExportService_ExportScheduleICS_WeeklySchedule(t *testing.T) {
	svc, repo := setupTestExportService()
	_ = repo.Employee.Create(context.Background(), &model.Employee{
		EmployeeID: "120",
		Name:       "王五",
		ShiftFrom:  "08:00",
		ShiftTo:    "16:00",
		IsActive:   true,
		WeeklySchedule: model.WeeklySchedule{
			"mon": {From: "09:00", To: "17:00"},
			"wed": {From: "09:00", To: "17:00"},
		},
	})

	buf, _, err := svc.ExportScheduleICS(context.Background(), "120")
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}

	// 周班表仅周一/周三有班：四周应展开 8 个事件
	if n := strings.Count(buf.String(), "BEGIN:VEVENT"); n != 8 {
		t.Errorf("期望 8 个事件，实际=%d", n)
	}
}

func TestExportService_ExportScheduleICS_NoEmployee(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportScheduleICS(context.Background(), "999")
	if !errors.Is(err, ErrExportNoEmployee) {
		t.Errorf("期望 ErrExportNoEmployee，实际=%v", err)
	}
}
