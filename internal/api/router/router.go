package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timeclock/backend/config"
	"timeclock/backend/internal/api/handler"
	"timeclock/backend/internal/api/middleware"
	"timeclock/backend/pkg/jwt"
	"timeclock/backend/pkg/redis"
)

const (
	// 请求体上限：员工名册 / 打卡文件上传不超过 10MB，留出报文余量
	maxBodyBytes = 12 << 20

	// 登录接口限流：同一来源每分钟最多 10 次
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 员工模块
			employees := authorized.Group("/employees")
			{
				employees.GET("", h.Employee.List)
				employees.GET("/stats", h.Employee.Stats)
				employees.GET("/:employee_id", h.Employee.Get)
				employees.PUT("/:employee_id", h.Employee.Update)
				employees.DELETE("/:employee_id", middleware.RoleAuth("super_admin"), h.Employee.Delete)
				employees.POST("/import", h.Employee.Import)
				employees.POST("/import/file", h.Employee.ImportFile)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("/:employee_id", h.Shift.GetConfig)
				shifts.PUT("/:employee_id", h.Shift.UpdateConfig)
				shifts.GET("/:employee_id/for-date", h.Shift.ShiftForDate)
			}

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/upload", h.Attendance.Upload)
				attendance.POST("/process", h.Attendance.Process)
				attendance.POST("/reprocess", h.Attendance.Reprocess)
				attendance.GET("/daily", h.Attendance.ListDaily)
				attendance.GET("/stats", h.Attendance.Stats)
				attendance.GET("/months", h.Attendance.Months)
				attendance.GET("/uploads", h.Attendance.ListUploads)
				attendance.GET("/employees/:employee_id/report", h.Attendance.EmployeeReport)
			}

			// 导出模块
			exports := authorized.Group("/exports")
			{
				exports.GET("/daily", h.Export.ExportDaily)
				exports.GET("/schedule/:employee_id/calendar.ics", h.Export.ExportScheduleICS)
			}
		}
	}

	return r
}
