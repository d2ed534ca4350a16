package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under the API prefix.
type Handlers struct {
	Sessions   *SessionHandler
	Classes    *ClassHandler
	Attendance *AttendanceHandler
}

// RegisterRoutes mounts the attendance API on the group.
func RegisterRoutes(api gin.IRouter, h Handlers) {
	sessions := api.Group("/sessions")
	sessions.GET("", h.Sessions.List)
	sessions.POST("", h.Sessions.Import)
	sessions.GET("/:name", h.Sessions.Get)

	classes := api.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.DELETE("/:id", h.Classes.Delete)
	classes.GET("/:id/attendance", h.Classes.Attendance)
	classes.GET("/:id/attendance/export", h.Classes.Export)

	attendance := api.Group("/attendance")
	attendance.POST("", h.Attendance.Upsert)
	attendance.GET("", h.Attendance.List)
	attendance.GET("/summary", h.Attendance.Summary)
	attendance.GET("/stats", h.Attendance.Stats)
	attendance.GET("/status-info", h.Attendance.StatusInfo)
	attendance.GET("/:date", h.Attendance.Find)
	attendance.PUT("/:date", h.Attendance.Update)
	attendance.DELETE("/:date", h.Attendance.Delete)
}

// RegisterOps mounts health, readiness and metrics outside the API prefix.
func RegisterOps(r gin.IRouter, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
