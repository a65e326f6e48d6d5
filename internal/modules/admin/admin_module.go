package admin

import (
	"context"
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"

	custommiddleware "taxonomy-editor/internal/middleware"
	"taxonomy-editor/internal/modules/admin/handler"
	"taxonomy-editor/internal/modules/admin/service"
	"taxonomy-editor/internal/modules/admin/tasks"
	"taxonomy-editor/internal/pkg/authz"
	"taxonomy-editor/internal/pkg/config"
	"taxonomy-editor/internal/pkg/log"
	"taxonomy-editor/internal/pkg/metrics"
	"taxonomy-editor/internal/pkg/redis"
	"taxonomy-editor/internal/pkg/response"
	"taxonomy-editor/internal/pkg/termcache"
	"taxonomy-editor/internal/pkg/validator"
)

const dbPoolReportInterval = 30 * time.Second

// AdminModule 分类法管理后台模块
type AdminModule struct {
	basemodule.BaseModule

	cfg        *config.Config
	logger     log.Logger
	db         *sql.DB
	redis      *redis.Client
	checker    authz.Checker
	keto       *authz.KetoChecker
	httpServer *echo.Echo
	respWriter response.Writer
	termTask   *tasks.TermCountTask

	termHandler *handler.TermHandler
	stopMonitor context.CancelFunc
}

// GetType returns module type
func (m *AdminModule) GetType() string {
	return "admin"
}

// Version returns module version
func (m *AdminModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *AdminModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *AdminModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("admin")
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	var raw map[string]interface{}
	if settings != nil {
		raw = settings.Settings
	}
	cfg, cfgErr := config.Load(raw)
	m.cfg = cfg

	log.Init(log.ParseLevel(cfg.LogLevel), cfg.Environment)
	m.logger = log.GetLogger().With("module", "admin")
	m.logger.Info("[Admin Module] 配置加载完成", "config", cfg.LogFields())

	// 1. 响应写入器
	m.respWriter = response.NewResponseHandler(m.logger, cfg.Environment)

	// 2. 数据库（必需）
	dbReady := false
	if cfgErr != nil {
		m.logger.Error("[Admin Module] 配置不完整", cfgErr)
	} else if err := m.initDatabase(); err != nil {
		m.logger.Error("[Admin Module] 数据库初始化失败", err)
	} else {
		dbReady = true
	}

	// 3. Redis（可选，不可用时不走缓存）
	m.initRedis()

	// 4. Keto 能力检查
	m.initAuthz()

	// 5. HTTP 服务
	m.initHTTPServer()
	if dbReady {
		m.initHandlers()
		m.setupRoutes()
		m.startTasks()
	}
	m.setupSystemRoutes(dbReady)

	go m.startHTTPServer()

	m.GetServer().Options()
}

// initDatabase 打开连接池并启动监控
func (m *AdminModule) initDatabase() error {
	db, err := sql.Open("postgres", m.cfg.DatabaseURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	db.SetMaxOpenConns(m.cfg.MaxOpenConns)
	db.SetMaxIdleConns(m.cfg.MaxIdleConns)
	db.SetConnMaxLifetime(m.cfg.ConnMaxLifetime)

	m.db = db
	m.logger.Info("[Admin Module] 数据库连接成功")

	monitorCtx, stop := context.WithCancel(context.Background())
	m.stopMonitor = stop
	go m.startPoolMonitoring(monitorCtx)
	return nil
}

func (m *AdminModule) initRedis() {
	client, err := redis.NewClient(redis.Config{
		Host:     m.cfg.RedisHost,
		Port:     m.cfg.RedisPort,
		Password: m.cfg.RedisPassword,
		DB:       m.cfg.RedisDB,
	}, metrics.GetServiceName())
	if err != nil {
		m.logger.Warn("[Admin Module] Redis 不可用，词条缓存已禁用", log.Err(err))
		return
	}
	m.redis = client
	m.logger.Info("[Admin Module] Redis 连接成功")
}

func (m *AdminModule) initAuthz() {
	keto, err := authz.NewKetoChecker(m.cfg.KetoReadAddress)
	if err == nil {
		m.keto = keto
		m.checker = keto
		return
	}

	m.logger.Error("[Admin Module] Keto 初始化失败", err)
	if m.cfg.Environment == "development" {
		m.logger.Warn("[Admin Module] 开发环境放行全部能力")
		m.checker = authz.StaticChecker{"*": {authz.CapabilityManageCategories, authz.CapabilityEditPosts}}
		return
	}
	m.checker = authz.StaticChecker{}
}

// initHTTPServer 中间件顺序见 custommiddleware.Standard
func (m *AdminModule) initHTTPServer() {
	m.httpServer = echo.New()
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true
	m.httpServer.Validator = validator.New()

	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if m.cfg.Environment == "development" {
		loggingConfig.DetailedLog = true
		loggingConfig.LogRequestBody = true
	}

	m.httpServer.Use(custommiddleware.Standard(custommiddleware.Config{
		Logger:     m.logger,
		RespWriter: m.respWriter,
		Logging:    loggingConfig,
	})...)
}

func (m *AdminModule) initHandlers() {
	// 避免把 nil *termcache.Cache 装进接口
	var viewCache service.TermViewCache
	if m.redis != nil {
		viewCache = termcache.New(m.redis, m.cfg.TermCacheTTL, m.logger)
	}

	m.termHandler = handler.NewTermHandler(
		service.NewTermMergeService(m.db, viewCache),
		service.NewContentTermService(m.db, viewCache),
		m.respWriter,
	)
}

func (m *AdminModule) startTasks() {
	m.termTask = tasks.NewTermCountTask(
		service.NewTermCountService(m.db),
		m.cfg.TermCountCron,
		service.DefaultRepairBatch,
		m.logger,
	)
	if err := m.termTask.Start(); err != nil {
		m.termTask = nil
	}
}

func (m *AdminModule) startHTTPServer() {
	m.logger.Info("[Admin Module] HTTP 服务启动", "port", m.cfg.HTTPPort)
	if err := m.httpServer.Start(":" + m.cfg.HTTPPort); err != nil {
		m.logger.Warn("[Admin Module] HTTP 服务退出", log.Err(err))
	}
}

// Run module run
func (m *AdminModule) Run(closeSig chan bool) {
	m.logger.Info("[Admin Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *AdminModule) OnDestroy() {
	if m.termTask != nil {
		m.termTask.Stop()
	}

	if m.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := m.httpServer.Shutdown(ctx); err != nil {
			m.logger.Error("[Admin Module] 关闭 HTTP 服务失败", err)
		}
		cancel()
	}

	if m.stopMonitor != nil {
		m.stopMonitor()
	}

	if m.keto != nil {
		if err := m.keto.Close(); err != nil {
			m.logger.Error("[Admin Module] 关闭 Keto 连接失败", err)
		}
	}

	if m.redis != nil {
		if err := m.redis.Close(); err != nil {
			m.logger.Error("[Admin Module] 关闭 Redis 失败", err)
		}
	}

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			m.logger.Error("[Admin Module] 关闭数据库失败", err)
		}
	}

	m.BaseModule.OnDestroy()
	m.logger.Info("[Admin Module] Destroyed")
}

// startPoolMonitoring 每 30 秒把连接池统计写入 Prometheus
func (m *AdminModule) startPoolMonitoring(ctx context.Context) {
	ticker := time.NewTicker(dbPoolReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		stats := m.db.Stats()
		metrics.DefaultResourceMetrics.RecordDBPoolStats(
			metrics.GetServiceName(),
			"postgres",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle,
			m.cfg.MaxOpenConns,
			stats.WaitCount,
			stats.WaitDuration,
		)
		if m.redis != nil {
			m.redis.RecordPoolStats()
		}
	}
}

// Module creates Admin module instance
func Module() module.Module {
	return new(AdminModule)
}
