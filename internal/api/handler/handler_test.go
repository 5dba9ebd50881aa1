package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"timeclock/backend/internal/dto"
	"timeclock/backend/internal/model"
	"timeclock/backend/internal/service"
	"timeclock/backend/pkg/jwt"
	"timeclock/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	meResult    *dto.AdminResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.AdminResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock EmployeeService ──

type mockEmployeeService struct {
	listResult   []dto.EmployeeResponse
	listTotal    int64
	listErr      error
	getResult    *dto.EmployeeResponse
	getErr       error
	updateResult *dto.EmployeeResponse
	updateErr    error
	deleteErr    error
	importResult *dto.ImportEmployeesResponse
	importErr    error
	statsResult  *dto.EmployeeStatsResponse
	statsErr     error
}

func (m *mockEmployeeService) List(_ context.Context, _ *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	return m.listResult, m.listTotal, m.listErr
}
func (m *mockEmployeeService) Get(_ context.Context, _ string) (*dto.EmployeeResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockEmployeeService) Update(_ context.Context, _ string, _ *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockEmployeeService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockEmployeeService) Import(_ context.Context, _ *dto.ImportEmployeesRequest, _ string) (*dto.ImportEmployeesResponse, error) {
	return m.importResult, m.importErr
}
func (m *mockEmployeeService) ImportXLSX(_ context.Context, _ io.Reader, _, _ string) (*dto.ImportEmployeesResponse, error) {
	return m.importResult, m.importErr
}
func (m *mockEmployeeService) Stats(_ context.Context) (*dto.EmployeeStatsResponse, error) {
	return m.statsResult, m.statsErr
}

// ── Mock ShiftService ──

type mockShiftService struct {
	getResult     *dto.ShiftConfigResponse
	getErr        error
	updateResult  *dto.ShiftConfigResponse
	updateErr     error
	forDateResult *dto.ShiftForDateResponse
	forDateErr    error
}

func (m *mockShiftService) GetConfig(_ context.Context, _ string) (*dto.ShiftConfigResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockShiftService) UpdateConfig(_ context.Context, _ string, _ *dto.UpdateShiftRequest) (*dto.ShiftConfigResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockShiftService) ShiftForDate(_ context.Context, _, _ string) (*dto.ShiftForDateResponse, error) {
	return m.forDateResult, m.forDateErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	uploadResult  *dto.UploadPunchesResponse
	uploadErr     error
	processResult *dto.ProcessResult
	processErr    error
	dailyResult   []model.DailyRecord
	dailyTotal    int64
	dailyErr      error
	statsResult   *dto.SummaryStatsResponse
	statsErr      error
	monthsResult  []string
	monthsErr     error
	reportResult  *dto.EmployeeReportResponse
	reportErr     error
	uploadsResult []model.UploadBatch
	uploadsTotal  int64
	uploadsErr    error
}

func (m *mockAttendanceService) UploadPunches(_ context.Context, _ *dto.UploadPunchesRequest, _ string) (*dto.UploadPunchesResponse, error) {
	return m.uploadResult, m.uploadErr
}
func (m *mockAttendanceService) ProcessPending(_ context.Context) (*dto.ProcessResult, error) {
	return m.processResult, m.processErr
}
func (m *mockAttendanceService) Reprocess(_ context.Context, _ *dto.ReprocessRequest) (*dto.ProcessResult, error) {
	return m.processResult, m.processErr
}
func (m *mockAttendanceService) ListDaily(_ context.Context, _ *dto.DailyListRequest) ([]model.DailyRecord, int64, error) {
	return m.dailyResult, m.dailyTotal, m.dailyErr
}
func (m *mockAttendanceService) SummaryStats(_ context.Context, _ *dto.StatsRequest) (*dto.SummaryStatsResponse, error) {
	return m.statsResult, m.statsErr
}
func (m *mockAttendanceService) AvailableMonths(_ context.Context) ([]string, error) {
	return m.monthsResult, m.monthsErr
}
func (m *mockAttendanceService) EmployeeReport(_ context.Context, _ string, _ *dto.StatsRequest) (*dto.EmployeeReportResponse, error) {
	return m.reportResult, m.reportErr
}
func (m *mockAttendanceService) ListUploads(_ context.Context, _ *dto.UploadListRequest) ([]model.UploadBatch, int64, error) {
	return m.uploadsResult, m.uploadsTotal, m.uploadsErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportDaily(_ context.Context, _ *dto.StatsRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportScheduleICS(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setupRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func setAuth(c *gin.Context) {
	c.Set("admin_id", "test-admin-id")
	c.Set("role", "super_admin")
	c.Set("claims", &jwt.Claims{
		AdminID:   "test-admin-id",
		Role:      "super_admin",
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken: "test-access-token",
			ExpiresIn:   3600,
			Admin:       dto.AdminResponse{ID: "a1", Email: "admin@example.com", Role: "super_admin"},
		},
	}
	h := NewAuthHandler(mock)

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong-pass",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_Disabled(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrAdminDisabled})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11002 {
		t.Errorf("expected error code 11002, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		meResult: &dto.AdminResponse{ID: "test-admin-id", Email: "admin@example.com"},
	})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", func(c *gin.Context) {
		setAuth(c)
		h.Me(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.Me)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10002 {
		t.Errorf("expected error code 10002, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EmployeeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEmployeeHandler_List_Success(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{
		listResult: []dto.EmployeeResponse{{EmployeeID: "118", Name: "张三"}},
		listTotal:  1,
	})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/employees?page=1&page_size=20", nil)

	r := gin.New()
	r.GET("/employees", h.List)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestEmployeeHandler_Get_NotFound(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{getErr: service.ErrEmployeeNotFound})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/employees/999", nil)

	r := gin.New()
	r.GET("/employees/:employee_id", h.Get)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

func TestEmployeeHandler_Import_Empty(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{importErr: service.ErrEmployeeEmptyImport})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees/import", jsonBody(dto.ImportEmployeesRequest{
		Employees: []dto.ImportEmployeeRow{{EmployeeID: "118"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/employees/import", func(c *gin.Context) {
		setAuth(c)
		h.Import(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12001 {
		t.Errorf("expected error code 12001, got %d", resp.Code)
	}
}

func TestEmployeeHandler_ImportFile_MissingFile(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees/import/file", nil)

	r := gin.New()
	r.POST("/employees/import/file", func(c *gin.Context) {
		setAuth(c)
		h.ImportFile(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestEmployeeHandler_ImportFile_Success(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{
		importResult: &dto.ImportEmployeesResponse{Total: 2, Successful: 2},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "employees.xlsx")
	fw.Write([]byte("fake xlsx content"))
	mw.Close()

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/employees/import/file", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	r := gin.New()
	r.POST("/employees/import/file", func(c *gin.Context) {
		setAuth(c)
		h.ImportFile(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestEmployeeHandler_Delete_NotFound(t *testing.T) {
	h := NewEmployeeHandler(&mockEmployeeService{deleteErr: service.ErrEmployeeNotFound})

	w := setupRecorder()
	req := httptest.NewRequest("DELETE", "/employees/999", nil)

	r := gin.New()
	r.DELETE("/employees/:employee_id", h.Delete)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftHandler Tests
// ═══════════════════════════════════════════════════════════

func TestShiftHandler_GetConfig_NotFound(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{getErr: service.ErrShiftEmployeeNotFound})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/shifts/999", nil)

	r := gin.New()
	r.GET("/shifts/:employee_id", h.GetConfig)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestShiftHandler_UpdateConfig_InvalidClock(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{updateErr: service.ErrShiftInvalidClock})

	from := "25:00"
	w := setupRecorder()
	req := httptest.NewRequest("PUT", "/shifts/118", jsonBody(dto.UpdateShiftRequest{From: &from}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/shifts/:employee_id", h.UpdateConfig)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13001 {
		t.Errorf("expected error code 13001, got %d", resp.Code)
	}
}

func TestShiftHandler_ShiftForDate_MissingDate(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/shifts/118/for-date", nil)

	r := gin.New()
	r.GET("/shifts/:employee_id/for-date", h.ShiftForDate)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShiftHandler_ShiftForDate_InvalidDate(t *testing.T) {
	h := NewShiftHandler(&mockShiftService{forDateErr: service.ErrShiftInvalidDate})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/shifts/118/for-date?date=2025-13-99", nil)

	r := gin.New()
	r.GET("/shifts/:employee_id/for-date", h.ShiftForDate)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13002 {
		t.Errorf("expected error code 13002, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Upload_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{
		uploadResult: &dto.UploadPunchesResponse{
			BatchID:    "batch-1",
			Total:      3,
			Successful: 3,
			Processing: dto.ProcessResult{Processed: 1, Created: 1},
		},
	})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/attendance/upload", jsonBody(dto.UploadPunchesRequest{
		FileName: "1_attlog.dat",
		Lines:    []string{"118\t2025-11-17 07:58:00\t1\t0"},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/upload", func(c *gin.Context) {
		setAuth(c)
		h.Upload(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Upload_Empty(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{uploadErr: service.ErrAttendanceEmptyUpload})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/attendance/upload", jsonBody(dto.UploadPunchesRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/upload", func(c *gin.Context) {
		setAuth(c)
		h.Upload(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Reprocess_InvalidRange(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{processErr: service.ErrAttendanceInvalidRange})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/attendance/reprocess", jsonBody(dto.ReprocessRequest{
		StartDate: "2025-11-30",
		EndDate:   "2025-11-01",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/reprocess", h.Reprocess)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14003 {
		t.Errorf("expected error code 14003, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Reprocess_BadDateFormat(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := setupRecorder()
	req := httptest.NewRequest("POST", "/attendance/reprocess", jsonBody(map[string]string{
		"start_date": "11/01/2025",
		"end_date":   "2025-11-30",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/reprocess", h.Reprocess)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10001 {
		t.Errorf("expected error code 10001, got %d", resp.Code)
	}
}

func TestAttendanceHandler_ListDaily_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{
		dailyResult: []model.DailyRecord{{EmployeeID: "118", Date: "2025-11-17", Status: model.StatusPresent}},
		dailyTotal:  1,
	})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/attendance/daily?month=2025-11&employee_id=118", nil)

	r := gin.New()
	r.GET("/attendance/daily", h.ListDaily)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_ListDaily_InvalidStatus(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/attendance/daily?status=Unknown", nil)

	r := gin.New()
	r.GET("/attendance/daily", h.ListDaily)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_EmployeeReport_NotFound(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{reportErr: service.ErrAttendanceEmployeeNotFound})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/attendance/employees/999/report", nil)

	r := gin.New()
	r.GET("/attendance/employees/:employee_id/report", h.EmployeeReport)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Months_Success(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{monthsResult: []string{"2025-11", "2025-10"}})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/attendance/months", nil)

	r := gin.New()
	r.GET("/attendance/months", h.Months)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportDaily_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "daily_2025-11-01_2025-11-30.xlsx",
	})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/exports/daily?month=2025-11", nil)

	r := gin.New()
	r.GET("/exports/daily", h.ExportDaily)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != contentTypeXLSX {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_ExportDaily_NoRecords(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRecords})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/exports/daily?month=2025-11", nil)

	r := gin.New()
	r.GET("/exports/daily", h.ExportDaily)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 16001 {
		t.Errorf("expected error code 16001, got %d", resp.Code)
	}
}

func TestExportHandler_ExportScheduleICS_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"),
		filename: "schedule_118.ics",
	})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/exports/schedule/118/calendar.ics", nil)

	r := gin.New()
	r.GET("/exports/schedule/:employee_id/calendar.ics", h.ExportScheduleICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != contentTypeICS {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestExportHandler_ExportScheduleICS_NoEmployee(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoEmployee})

	w := setupRecorder()
	req := httptest.NewRequest("GET", "/exports/schedule/999/calendar.ics", nil)

	r := gin.New()
	r.GET("/exports/schedule/:employee_id/calendar.ics", h.ExportScheduleICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// 错误映射全表
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_UploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"EmptyUpload", service.ErrAttendanceEmptyUpload, 400, 14001},
		{"NoValidPunches", service.ErrAttendanceNoValidPunches, 400, 14002},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAttendanceHandler(&mockAttendanceService{uploadErr: tt.err})

			w := setupRecorder()
			req := httptest.NewRequest("POST", "/attendance/upload", jsonBody(dto.UploadPunchesRequest{
				Lines: []string{"118\t2025-11-17 07:58:00"},
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/attendance/upload", func(c *gin.Context) {
				setAuth(c)
				h.Upload(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}
