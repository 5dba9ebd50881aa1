package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"timeclock/backend/config"
	"timeclock/backend/internal/model"
)

// ── 考勤核算引擎 ──────────────────────────────────────────────
//
// 职责：将某员工某自然日的一组原始打卡，结合其班次配置，
// 核算为唯一一条日考勤记录（状态 + 工时 + 迟到分钟）。
//
// 设计决策：
//   - 纯函数实现，不触达数据库，便于独立单测
//   - 分组严格按打卡自带的本地日期字段，不按班次窗口过滤
//     （窗口过滤会丢弃合法的超早/超晚打卡，历史上已弃用）
//   - 单次打卡或首末间隔不足 30 分钟时工时记 0，不做自动签退补全
//   - 宽限期是死区：未超过宽限期的迟到归零，超过则按班次开始
//     时间全额计算（而非仅计超出宽限的部分）
//   - 跨午夜班次：nextDay 显式标记，或 to < from 字典序推断
// ─────────────────────────────────────────────────────────────

// 打卡首末间隔低于该值时视为单次打卡日（工时记 0）
const minPunchSpanMinutes = 30

// weekdayKeys 周班表键，下标对齐 time.Weekday（周日为 0）
var weekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// EngineConfig 单次核算的生效配置（环境默认值叠加员工级覆盖后的结果）
type EngineConfig struct {
	GracePeriodMinutes  int
	AbsentThreshold     float64
	PreWindowMinutes    int
	PostWindowMinutes   int
	AutoCheckoutMinutes int
	Location            *time.Location
}

// ResolveEngineConfig 合并环境级默认值与员工级覆盖
func ResolveEngineConfig(cfg *config.AttendanceConfig, emp *model.Employee) EngineConfig {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	ec := EngineConfig{
		GracePeriodMinutes:  cfg.GracePeriodMinutes,
		AbsentThreshold:     cfg.AbsentThreshold,
		PreWindowMinutes:    cfg.PreWindowMinutes,
		PostWindowMinutes:   cfg.PostWindowMinutes,
		AutoCheckoutMinutes: cfg.AutoCheckoutMinutes,
		Location:            loc,
	}

	if emp != nil {
		if emp.GracePeriodMinutes != nil {
			ec.GracePeriodMinutes = *emp.GracePeriodMinutes
		}
		if emp.AbsentThreshold != nil {
			ec.AbsentThreshold = *emp.AbsentThreshold
		}
	}

	return ec
}

// ────────────────────── 班次解析 ──────────────────────

// ResolveShift 解析员工在指定日期的生效班次
//
// 规则：
//   - 有周班表：按 date 的星期查条目；条目缺失或 from/to 为空 ⇒ 休息日（返回 nil）
//   - 无周班表：回落默认班次
//   - 两种来源都做跨午夜推断：显式 next_day 或 to < from（字典序）
//
// 返回 nil 表示休息日（哨兵值，不是错误）；非 nil 时 From/To 必然均非空
func ResolveShift(emp *model.Employee, date time.Time) *model.ShiftTimes {
	if emp.WeeklySchedule != nil {
		day, ok := emp.WeeklySchedule[weekdayKeys[date.Weekday()]]
		if !ok || day.From == "" || day.To == "" {
			return nil
		}
		return &model.ShiftTimes{
			From:    day.From,
			To:      day.To,
			NextDay: day.NextDay || day.To < day.From,
		}
	}

	if emp.ShiftFrom == "" || emp.ShiftTo == "" {
		return nil
	}
	return &model.ShiftTimes{
		From:    emp.ShiftFrom,
		To:      emp.ShiftTo,
		NextDay: emp.ShiftTo < emp.ShiftFrom,
	}
}

// ShiftWindow 指定日期的班次绝对时刻
// WindowStart/WindowEnd 为班次前后扩展窗口；当前分组策略不用其过滤打卡，仅保留供展示
type ShiftWindow struct {
	ShiftStart  time.Time
	ShiftEnd    time.Time
	WindowStart time.Time
	WindowEnd   time.Time
}

// CalcShiftWindow 计算班次在 date（YYYY-MM-DD）当天的绝对时刻
func CalcShiftWindow(date string, shift *model.ShiftTimes, cfg EngineConfig) (ShiftWindow, error) {
	shiftStart, err := time.ParseInLocation("2006-01-02 15:04", date+" "+shift.From, cfg.Location)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("解析班次开始时间失败: %w", err)
	}
	shiftEnd, err := time.ParseInLocation("2006-01-02 15:04", date+" "+shift.To, cfg.Location)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("解析班次结束时间失败: %w", err)
	}

	// 跨午夜班次结束于次日
	if shift.NextDay || shift.To < shift.From {
		shiftEnd = shiftEnd.AddDate(0, 0, 1)
	}

	return ShiftWindow{
		ShiftStart:  shiftStart,
		ShiftEnd:    shiftEnd,
		WindowStart: shiftStart.Add(-time.Duration(cfg.PreWindowMinutes) * time.Minute),
		WindowEnd:   shiftEnd.Add(time.Duration(cfg.PostWindowMinutes) * time.Minute),
	}, nil
}

// CalcLateMinutes 计算迟到分钟数
// 首次打卡晚于「班次开始 + 宽限期」才算迟到，且按班次开始时间全额计算
func CalcLateMinutes(checkIn, shiftStart time.Time, graceMinutes int) int {
	graceEnd := shiftStart.Add(time.Duration(graceMinutes) * time.Minute)
	if !checkIn.After(graceEnd) {
		return 0
	}
	return int(math.Round(checkIn.Sub(shiftStart).Minutes()))
}

// CalcShiftDurationHours 计算班次名义时长（小时）
// 跨午夜时结束分钟数加 24h，保证结果恒为正
func CalcShiftDurationHours(shift *model.ShiftTimes) float64 {
	fromMinutes := parseClockMinutes(shift.From)
	toMinutes := parseClockMinutes(shift.To)

	if shift.NextDay || toMinutes < fromMinutes {
		toMinutes += 24 * 60
	}

	return float64(toMinutes-fromMinutes) / 60
}

// parseClockMinutes 将 HH:mm 转为当日分钟数；非法输入按 0 处理（入库前已校验格式）
func parseClockMinutes(clock string) int {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

// ────────────────────── 打卡分组 ──────────────────────

// GroupKey 生成 (员工, 自然日) 分组键
func GroupKey(employeeID, date string) string {
	return employeeID + "|" + date
}

// SplitGroupKey 拆分分组键
func SplitGroupKey(key string) (employeeID, date string) {
	idx := strings.IndexByte(key, '|')
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+1:]
}

// GroupPunches 按 (员工, 打卡自带本地日期) 分组
// 不保证组内顺序；排序在核算阶段统一执行
func GroupPunches(punches []model.RawPunch) map[string][]model.RawPunch {
	grouped := make(map[string][]model.RawPunch)
	for _, p := range punches {
		key := GroupKey(p.EmployeeID, p.Date)
		grouped[key] = append(grouped[key], p)
	}
	return grouped
}

// ────────────────────── 单日核算 ──────────────────────

// ReconcileDay 核算单个 (员工, 日期) 组，产出日考勤记录草稿
//
// 算法顺序（首个命中即终止）：
//  1. 休息日 ⇒ DayOff，班次快照为空
//  2. 无打卡 ⇒ Absent
//  3. 按时间升序取首末打卡；单次打卡或首末间隔 < 30 分钟 ⇒ 工时记 0
//  4. 迟到按宽限期死区规则计算
//  5. 状态判定：工时 < 班次时长×缺勤阈值 ⇒ Absent；迟到 > 0 ⇒ Late；否则 Present
//
// 相同输入重复核算产出完全一致的记录（幂等，可安全重复 upsert）
func ReconcileDay(emp *model.Employee, date string, punches []model.RawPunch, cfg EngineConfig) (*model.DailyRecord, error) {
	dateObj, err := time.ParseInLocation("2006-01-02", date, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("解析核算日期失败: %w", err)
	}

	shift := ResolveShift(emp, dateObj)

	// 1. 休息日：无论是否有打卡，状态恒为 DayOff
	if shift == nil {
		return &model.DailyRecord{
			EmployeeID:   emp.EmployeeID,
			Name:         emp.Name,
			Date:         date,
			Status:       model.StatusDayOff,
			AppliedShift: nil,
			TotalHours:   0,
			LateMinutes:  0,
			CheckIns:     model.CheckInList{},
			Notes:        model.NoteDayOff,
		}, nil
	}

	applied := model.AppliedShift(*shift)

	// 2. 无打卡：缺勤
	if len(punches) == 0 {
		return &model.DailyRecord{
			EmployeeID:   emp.EmployeeID,
			Name:         emp.Name,
			Date:         date,
			Status:       model.StatusAbsent,
			AppliedShift: &applied,
			TotalHours:   0,
			LateMinutes:  0,
			CheckIns:     model.CheckInList{},
			Notes:        model.NoteNoRecords,
		}, nil
	}

	// 3. 时间升序，取首末打卡
	sorted := make([]model.RawPunch, len(punches))
	copy(sorted, punches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	firstCheckIn := sorted[0].Timestamp
	lastCheckOut := sorted[len(sorted)-1].Timestamp

	// 单次打卡或首末间隔不足 30 分钟：工时记 0，不做自动签退补全
	autoCheckOut := false
	span := lastCheckOut.Sub(firstCheckIn)
	if len(sorted) == 1 || span < minPunchSpanMinutes*time.Minute {
		lastCheckOut = firstCheckIn
	}

	totalHours := roundHours(lastCheckOut.Sub(firstCheckIn).Hours())
	if totalHours < 0 {
		// 30 分钟护栏下不应出现；出现视为缺陷，钳制为 0 而非落库负值
		totalHours = 0
	}

	// 4. 迟到核算
	window, err := CalcShiftWindow(date, shift, cfg)
	if err != nil {
		return nil, err
	}
	lateMinutes := CalcLateMinutes(firstCheckIn, window.ShiftStart, cfg.GracePeriodMinutes)

	// 5. 状态判定（按序，首个命中即止）
	shiftDuration := CalcShiftDurationHours(shift)
	status := model.StatusPresent
	if totalHours < shiftDuration*cfg.AbsentThreshold {
		status = model.StatusAbsent
	} else if lateMinutes > 0 {
		status = model.StatusLate
	}

	// 审计：保留当日全部打卡，与首末计算无关
	checkIns := make(model.CheckInList, 0, len(sorted))
	for _, p := range sorted {
		checkIns = append(checkIns, model.CheckIn{Timestamp: p.Timestamp, Type: p.Type})
	}

	notes := ""
	if len(sorted) == 1 {
		notes = model.NoteSingleCheckIn
	}

	return &model.DailyRecord{
		EmployeeID:   emp.EmployeeID,
		Name:         emp.Name,
		Date:         date,
		FirstCheckIn: &firstCheckIn,
		LastCheckOut: &lastCheckOut,
		TotalHours:   totalHours,
		LateMinutes:  lateMinutes,
		Status:       status,
		AppliedShift: &applied,
		CheckIns:     checkIns,
		AutoCheckOut: autoCheckOut,
		Notes:        notes,
	}, nil
}

// roundHours 四舍五入到两位小数
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
