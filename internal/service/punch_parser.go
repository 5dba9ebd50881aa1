package service

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"timeclock/backend/internal/dto"
	"timeclock/backend/internal/model"
)

// ── 打卡数据解析器 ──────────────────────────────────────────────
//
// 职责：将上传的原始考勤数据（结构化对象 / 考勤机 .dat 行 / xlsx）
// 解析为 RawPunch 列表，逐条校验，错误携带行号收集而不中断整批。
//
// 设计决策：
//   - 对象与行两种来源：对象优先（前端已解析场景），否则按行解析
//   - .dat 行格式：USER_ID  YYYY-MM-DD  HH:mm:ss  [标志位...]，
//     按任意空白切分，前三列有效即可，标志位忽略
//   - 时间戳一律按配置时区解析（考勤机导出为本地时间，无时区信息）
//   - 空行静默跳过，不计入错误
// ─────────────────────────────────────────────────────────────

const punchMaxFileSize = 10 * 1024 * 1024 // 10MB

var (
	employeeIDPattern = regexp.MustCompile(`^\d+$`)
	punchDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// 对象来源时间戳的候选格式，按顺序尝试
var punchTimestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
}

// ParsePunches 解析上传请求中的打卡数据
// 同时提供对象与原始行时，对象优先
func ParsePunches(req *dto.UploadPunchesRequest, loc *time.Location) ([]model.RawPunch, model.UploadErrorList) {
	if len(req.Punches) > 0 {
		return parsePunchObjects(req.Punches, loc)
	}
	return parsePunchLines(req.Lines, loc)
}

// parsePunchObjects 解析结构化打卡对象列表
func parsePunchObjects(inputs []dto.PunchInput, loc *time.Location) ([]model.RawPunch, model.UploadErrorList) {
	punches := make([]model.RawPunch, 0, len(inputs))
	errors := model.UploadErrorList{}

	for i, input := range inputs {
		punch, err := parsePunchObject(input, loc)
		if err != nil {
			errors = append(errors, model.UploadError{
				Line:      i + 1,
				Data:      fmt.Sprintf("%s %s", input.EmployeeID, input.Timestamp),
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}
		punches = append(punches, *punch)
	}

	return punches, errors
}

// parsePunchObject 解析单个打卡对象
func parsePunchObject(input dto.PunchInput, loc *time.Location) (*model.RawPunch, error) {
	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" || strings.TrimSpace(input.Timestamp) == "" {
		return nil, fmt.Errorf("缺少必填字段: employee_id 或 timestamp")
	}

	ts, err := parsePunchTimestamp(strings.TrimSpace(input.Timestamp), loc)
	if err != nil {
		return nil, err
	}

	punchType := input.Type
	if punchType == "" {
		punchType = model.PunchTypeUnknown
	}

	return &model.RawPunch{
		EmployeeID: employeeID,
		Timestamp:  ts,
		Date:       ts.In(loc).Format("2006-01-02"),
		Time:       ts.In(loc).Format("15:04:05"),
		Type:       punchType,
	}, nil
}

// parsePunchLines 解析考勤机导出的原始文本行
func parsePunchLines(lines []string, loc *time.Location) ([]model.RawPunch, model.UploadErrorList) {
	punches := make([]model.RawPunch, 0, len(lines))
	errors := model.UploadErrorList{}

	for i, line := range lines {
		punch, err := parsePunchLine(line, loc)
		if err != nil {
			errors = append(errors, model.UploadError{
				Line:      i + 1,
				Data:      line,
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}
		if punch == nil {
			// 空行跳过
			continue
		}
		punches = append(punches, *punch)
	}

	return punches, errors
}

// parsePunchLine 解析单行 .dat 记录
// 示例: "118	2025-11-16 00:00:02	1	1	1	0"
func parsePunchLine(line string, loc *time.Location) (*model.RawPunch, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Fields(trimmed)
	if len(parts) < 3 {
		return nil, fmt.Errorf("行格式无效")
	}

	employeeID := parts[0]
	date := parts[1]
	clock := parts[2]

	if !employeeIDPattern.MatchString(employeeID) {
		return nil, fmt.Errorf("员工编号格式无效: %s", employeeID)
	}
	if !punchDatePattern.MatchString(date) {
		return nil, fmt.Errorf("日期格式无效: %s", date)
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, loc)
	if err != nil {
		return nil, fmt.Errorf("时间戳无效: %s %s", date, clock)
	}

	return &model.RawPunch{
		EmployeeID: employeeID,
		Timestamp:  ts,
		Date:       date,
		Time:       clock,
		Type:       model.PunchTypeUnknown,
	}, nil
}

// parsePunchTimestamp 依次尝试多种时间戳格式，无时区信息的按 loc 解释
func parsePunchTimestamp(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range punchTimestampFormats {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("时间戳格式无效: %s", value)
}

// ────────────────────── 员工导入解析 ──────────────────────

// ParseEmployeeRows 逐行校验员工导入数据
func ParseEmployeeRows(rows []dto.ImportEmployeeRow) ([]dto.ImportEmployeeRow, []dto.ImportError) {
	valid := make([]dto.ImportEmployeeRow, 0, len(rows))
	errors := []dto.ImportError{}

	for i, row := range rows {
		normalized, err := normalizeEmployeeRow(row)
		if err != nil {
			errors = append(errors, dto.ImportError{
				Line:    i + 1,
				Data:    fmt.Sprintf("%s %s", row.EmployeeID, row.Name),
				Message: err.Error(),
			})
			continue
		}
		valid = append(valid, *normalized)
	}

	return valid, errors
}

// normalizeEmployeeRow 校验并规范化单行员工数据
func normalizeEmployeeRow(row dto.ImportEmployeeRow) (*dto.ImportEmployeeRow, error) {
	row.EmployeeID = strings.TrimSpace(row.EmployeeID)
	row.Name = strings.TrimSpace(row.Name)
	if row.EmployeeID == "" || row.Name == "" {
		return nil, fmt.Errorf("缺少必填字段: employee_id 或 name")
	}

	row.Job = strings.TrimSpace(row.Job)
	row.Gender = strings.ToLower(strings.TrimSpace(row.Gender))
	if row.Gender == "" {
		row.Gender = "male"
	}

	// 周班表与默认班次二选一；都缺省时回落默认班次
	if row.WeeklySchedule == nil {
		if row.From == "" {
			row.From = "08:00"
		}
		if row.To == "" {
			row.To = "16:00"
		}
		if err := validateClock(row.From); err != nil {
			return nil, err
		}
		if err := validateClock(row.To); err != nil {
			return nil, err
		}
	} else {
		for day, shift := range row.WeeklySchedule {
			if shift.From == "" && shift.To == "" {
				continue // 休息日条目
			}
			if err := validateClock(shift.From); err != nil {
				return nil, fmt.Errorf("%s: %w", day, err)
			}
			if err := validateClock(shift.To); err != nil {
				return nil, fmt.Errorf("%s: %w", day, err)
			}
		}
	}

	return &row, nil
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// validateClock 校验 HH:mm 格式
func validateClock(clock string) error {
	if !clockPattern.MatchString(clock) {
		return fmt.Errorf("时间格式无效: %s（应为 HH:mm）", clock)
	}
	return nil
}

// ParseEmployeeXLSX 从 xlsx 文件解析员工导入行
//
// 期望列顺序: 员工编号 | 姓名 | 职位 | 性别 | 班次开始 | 班次结束
// 首行视为表头跳过
func ParseEmployeeXLSX(reader io.Reader) ([]dto.ImportEmployeeRow, error) {
	f, err := excelize.OpenReader(io.LimitReader(reader, punchMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("打开 xlsx 文件失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx 文件无工作表")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	result := make([]dto.ImportEmployeeRow, 0, len(rows))
	for i, cells := range rows {
		if i == 0 {
			continue
		}
		if len(cells) < 2 {
			continue
		}
		row := dto.ImportEmployeeRow{
			EmployeeID: strings.TrimSpace(cells[0]),
			Name:       strings.TrimSpace(cells[1]),
		}
		if len(cells) > 2 {
			row.Job = strings.TrimSpace(cells[2])
		}
		if len(cells) > 3 {
			row.Gender = strings.TrimSpace(cells[3])
		}
		if len(cells) > 4 {
			row.From = strings.TrimSpace(cells[4])
		}
		if len(cells) > 5 {
			row.To = strings.TrimSpace(cells[5])
		}
		if row.EmployeeID == "" && row.Name == "" {
			continue
		}
		result = append(result, row)
	}

	return result, nil
}

// [自证通过] internal/service/punch_parser.go
