package app

import (
	"database/sql"
	"path/filepath"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	"github.com/k-obata-3/leave-connect-api/internal/approval"
	"github.com/k-obata-3/leave-connect-api/internal/approvalgroup"
	"github.com/k-obata-3/leave-connect-api/internal/auth"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/middleware"
	"github.com/k-obata-3/leave-connect-api/internal/rbac"
	"github.com/k-obata-3/leave-connect-api/internal/rbac/infra"
	"github.com/k-obata-3/leave-connect-api/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	userRepo := user.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	approvalGroupRepo := approvalgroup.NewRepository(gormDB)
	applicationRepo := application.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	authService := auth.NewService(userRepo)
	userService := user.NewService(userRepo)
	balanceService := balance.NewService(balanceRepo)
	approvalGroupService := approvalgroup.NewService(approvalGroupRepo, userRepo)
	applicationService := application.NewService(db, applicationRepo, approvalGroupService, balanceRepo, userRepo, outboxRepo)
	approvalService := approval.NewService(db, approvalRepo, balanceRepo, userRepo, outboxRepo)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	balanceHandler := balance.NewHandler(balanceService)
	approvalGroupHandler := approvalgroup.NewHandler(approvalGroupService)
	applicationHandler := application.NewHandler(applicationService)
	approvalHandler := approval.NewHandler(approvalService)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler)
		balance.RegisterRoutes(api, balanceHandler)
		approvalgroup.RegisterRoutes(api, approvalGroupHandler, rbacService)
		application.RegisterRoutes(api, applicationHandler, rdb)
		approval.RegisterRoutes(api, approvalHandler, rdb)
	}

	return nil
}
