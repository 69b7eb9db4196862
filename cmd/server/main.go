package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgchart_go/internal/config"
	"orgchart_go/internal/handler"
	"orgchart_go/internal/middleware"
	"orgchart_go/internal/recon"
	"orgchart_go/internal/repository"
	"orgchart_go/internal/service"
	"orgchart_go/pkg/database"
	"orgchart_go/pkg/log"
	"orgchart_go/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Init("configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Info("Server started")

	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.RunMigrate(); err != nil {
		log.Fatal("Failed to run migrations", err)
		return
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	jwtManager := token.NewJWTManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpireHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshTokenExpireDays)*24*time.Hour,
	)

	// 仓储层
	userRepo := repository.NewUserRepository(database.DB)
	employeeRepo := repository.NewEmployeeRepository(database.DB)
	positionRepo := repository.NewPositionRepository(database.DB)
	dimensionRepo := repository.NewDimensionRepository(database.DB)
	levelRepo := repository.NewJobTitleLevelRepository(database.DB)
	assignmentRepo := repository.NewAssignmentRepository(database.DB)
	aliasRepo := repository.NewManagerAliasRepository(database.DB)

	// 协调引擎
	runner := recon.NewRunner(employeeRepo, positionRepo, dimensionRepo, levelRepo, assignmentRepo, aliasRepo, database.RDB)
	projector := recon.NewProjector(positionRepo, assignmentRepo, dimensionRepo, recon.VacancyConfig{
		HighDays:             cfg.Reconcile.VacancyHighDays,
		MediumDays:           cfg.Reconcile.VacancyMediumDays,
		ImportantDepartments: cfg.Reconcile.ImportantDepartments,
	})

	// 服务层
	userService := service.NewUserService(userRepo, jwtManager, database.RDB)
	orgChartService := service.NewOrgChartService(employeeRepo, positionRepo, assignmentRepo, levelRepo, projector)
	reconService := service.NewReconService(runner, aliasRepo, employeeRepo)

	// 处理器层
	userHandler := handler.NewUserHandler(userService)
	orgChartHandler := handler.NewOrgChartHandler(orgChartService)
	reconHandler := handler.NewReconHandler(reconService)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})

	api := r.Group("/api/v1")
	{
		// 公开接口
		api.POST("/register", userHandler.Register)
		api.POST("/login", userHandler.Login)

		// 需要登录的接口
		auth := api.Group("")
		auth.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			auth.POST("/logout", userHandler.Logout)
			auth.GET("/profile", userHandler.GetProfile)

			auth.GET("/orgchart/tree", orgChartHandler.GetTree)
			auth.GET("/employees", orgChartHandler.ListEmployees)
			auth.GET("/vacancies", orgChartHandler.ListVacancies)
			auth.GET("/positions/:code/assignments", orgChartHandler.ListActiveAssignments)
			auth.GET("/levels", orgChartHandler.ListLevels)
		}

		// 管理员接口：导入、别名维护、职级排序、重置
		admin := api.Group("")
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
		{
			admin.POST("/reconcile/import", reconHandler.Import)
			admin.GET("/reconcile/report", reconHandler.LatestReport)
			admin.GET("/aliases", reconHandler.ListAliases)
			admin.POST("/aliases", reconHandler.CreateAlias)
			admin.DELETE("/aliases/:id", reconHandler.DeleteAlias)
			admin.PUT("/levels/reorder", orgChartHandler.ReorderLevels)
			admin.POST("/reconcile/reset", reconHandler.ResetEmployees)
		}
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
