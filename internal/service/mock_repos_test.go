package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"timeclock/backend/internal/model"
	"timeclock/backend/internal/repository"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee // key: employee_id
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.Employee) error {
	if emp.ID == "" {
		emp.ID = "emp-" + emp.EmployeeID
	}
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.Employee, error) {
	if emp, ok := m.employees[employeeID]; ok {
		return emp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.Employee) error {
	m.employees[emp.EmployeeID] = emp
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, employeeID string) error {
	delete(m.employees, employeeID)
	return nil
}

func (m *mockEmployeeRepo) List(_ context.Context, filter repository.EmployeeListFilter) ([]model.Employee, int64, error) {
	var result []model.Employee
	for _, emp := range m.employees {
		if filter.Keyword != "" &&
			!strings.Contains(emp.Name, filter.Keyword) &&
			!strings.Contains(emp.EmployeeID, filter.Keyword) {
			continue
		}
		if filter.IsActive != nil && emp.IsActive != *filter.IsActive {
			continue
		}
		result = append(result, *emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EmployeeID < result[j].EmployeeID })
	return result, int64(len(result)), nil
}

func (m *mockEmployeeRepo) Count(_ context.Context, isActive *bool) (int64, error) {
	var count int64
	for _, emp := range m.employees {
		if isActive != nil && emp.IsActive != *isActive {
			continue
		}
		count++
	}
	return count, nil
}

// ── Mock PunchRepository ──

type mockPunchRepo struct {
	punches []*model.RawPunch
	nextID  int
}

func newMockPunchRepo() *mockPunchRepo {
	return &mockPunchRepo{}
}

func (m *mockPunchRepo) BulkInsert(_ context.Context, punches []model.RawPunch) error {
	for i := range punches {
		p := punches[i]
		m.nextID++
		p.ID = fmt.Sprintf("punch-%d", m.nextID)
		m.punches = append(m.punches, &p)
	}
	return nil
}

func (m *mockPunchRepo) ListUnprocessed(_ context.Context, batchID *string) ([]model.RawPunch, error) {
	var result []model.RawPunch
	for _, p := range m.punches {
		if p.Processed {
			continue
		}
		if batchID != nil && (p.UploadBatchID == nil || *p.UploadBatchID != *batchID) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

func (m *mockPunchRepo) MarkProcessed(_ context.Context, batchID *string) (int64, error) {
	var count int64
	for _, p := range m.punches {
		if p.Processed {
			continue
		}
		if batchID != nil && (p.UploadBatchID == nil || *p.UploadBatchID != *batchID) {
			continue
		}
		p.Processed = true
		count++
	}
	return count, nil
}

func (m *mockPunchRepo) ResetRange(_ context.Context, startDate, endDate string) (int64, error) {
	var count int64
	for _, p := range m.punches {
		if p.Date >= startDate && p.Date <= endDate && p.Processed {
			p.Processed = false
			count++
		}
	}
	return count, nil
}

// ── Mock DailyRecordRepository ──

type mockDailyRecordRepo struct {
	records map[string]*model.DailyRecord // key: employee_id|date
	nextID  int
}

func newMockDailyRecordRepo() *mockDailyRecordRepo {
	return &mockDailyRecordRepo{records: make(map[string]*model.DailyRecord)}
}

func (m *mockDailyRecordRepo) Upsert(_ context.Context, record *model.DailyRecord) (bool, error) {
	key := record.EmployeeID + "|" + record.Date
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
		m.records[key] = record
		return false, nil
	}
	m.nextID++
	record.ID = fmt.Sprintf("rec-%d", m.nextID)
	m.records[key] = record
	return true, nil
}

func (m *mockDailyRecordRepo) List(_ context.Context, filter repository.DailyListFilter) ([]model.DailyRecord, int64, error) {
	var result []model.DailyRecord
	for _, r := range m.records {
		if !m.matchRange(r, filter.StartDate, filter.EndDate) {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})

	total := int64(len(result))
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			result = nil
		} else {
			result = result[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockDailyRecordRepo) ListByEmployee(_ context.Context, employeeID, startDate, endDate string) ([]model.DailyRecord, error) {
	var result []model.DailyRecord
	for _, r := range m.records {
		if r.EmployeeID != employeeID || !m.matchRange(r, startDate, endDate) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *mockDailyRecordRepo) DeleteRange(_ context.Context, startDate, endDate string) (int64, error) {
	var count int64
	for key, r := range m.records {
		if r.Date >= startDate && r.Date <= endDate {
			delete(m.records, key)
			count++
		}
	}
	return count, nil
}

func (m *mockDailyRecordRepo) DistinctDates(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range m.records {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (m *mockDailyRecordRepo) CountByStatus(_ context.Context, startDate, endDate string) ([]repository.StatusCount, error) {
	counts := make(map[string]int64)
	for _, r := range m.records {
		if !m.matchRange(r, startDate, endDate) {
			continue
		}
		counts[r.Status]++
	}
	var result []repository.StatusCount
	for status, count := range counts {
		result = append(result, repository.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

func (m *mockDailyRecordRepo) AvgLateMinutes(_ context.Context, startDate, endDate string) (float64, error) {
	var sum, count float64
	for _, r := range m.records {
		if !m.matchRange(r, startDate, endDate) || r.LateMinutes <= 0 {
			continue
		}
		sum += float64(r.LateMinutes)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (m *mockDailyRecordRepo) AvgWorkHours(_ context.Context, startDate, endDate string) (float64, error) {
	var sum, count float64
	for _, r := range m.records {
		if !m.matchRange(r, startDate, endDate) {
			continue
		}
		if r.Status != model.StatusPresent && r.Status != model.StatusLate {
			continue
		}
		sum += r.TotalHours
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (m *mockDailyRecordRepo) TopLate(_ context.Context, startDate, endDate string, limit int) ([]repository.LateAggregate, error) {
	aggs := make(map[string]*repository.LateAggregate)
	for _, r := range m.records {
		if !m.matchRange(r, startDate, endDate) || r.LateMinutes <= 0 {
			continue
		}
		agg, ok := aggs[r.EmployeeID]
		if !ok {
			agg = &repository.LateAggregate{EmployeeID: r.EmployeeID, Name: r.Name}
			aggs[r.EmployeeID] = agg
		}
		agg.TotalLateMinutes += int64(r.LateMinutes)
		agg.LateCount++
	}
	var result []repository.LateAggregate
	for _, agg := range aggs {
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TotalLateMinutes > result[j].TotalLateMinutes })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockDailyRecordRepo) matchRange(r *model.DailyRecord, startDate, endDate string) bool {
	if startDate != "" && r.Date < startDate {
		return false
	}
	if endDate != "" && r.Date > endDate {
		return false
	}
	return true
}

// ── Mock UploadBatchRepository ──

type mockUploadBatchRepo struct {
	batches map[string]*model.UploadBatch
	nextID  int
}

func newMockUploadBatchRepo() *mockUploadBatchRepo {
	return &mockUploadBatchRepo{batches: make(map[string]*model.UploadBatch)}
}

func (m *mockUploadBatchRepo) Create(_ context.Context, batch *model.UploadBatch) error {
	m.nextID++
	batch.ID = fmt.Sprintf("batch-%d", m.nextID)
	m.batches[batch.ID] = batch
	return nil
}

func (m *mockUploadBatchRepo) GetByID(_ context.Context, id string) (*model.UploadBatch, error) {
	if b, ok := m.batches[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUploadBatchRepo) Update(_ context.Context, batch *model.UploadBatch) error {
	m.batches[batch.ID] = batch
	return nil
}

func (m *mockUploadBatchRepo) List(_ context.Context, fileType string, offset, limit int) ([]model.UploadBatch, int64, error) {
	var result []model.UploadBatch
	for _, b := range m.batches {
		if fileType != "" && b.FileType != fileType {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, int64(len(result)), nil
}

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[string]*model.Admin // key: id
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	if admin.ID == "" {
		admin.ID = "admin-" + admin.Email
	}
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id string) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) Update(_ context.Context, admin *model.Admin) error {
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

// ── 聚合构造 ──

func newMockRepository() *repository.Repository {
	return &repository.Repository{
		Admin:       newMockAdminRepo(),
		Employee:    newMockEmployeeRepo(),
		Punch:       newMockPunchRepo(),
		DailyRecord: newMockDailyRecordRepo(),
		UploadBatch: newMockUploadBatchRepo(),
	}
}
