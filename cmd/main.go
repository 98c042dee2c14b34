package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/handoc-ai/doc-analysis-system/api"
	"github.com/handoc-ai/doc-analysis-system/api/handler"
	"github.com/handoc-ai/doc-analysis-system/api/middleware"
	appconfig "github.com/handoc-ai/doc-analysis-system/config"
	"github.com/handoc-ai/doc-analysis-system/internal/analyzer"
	"github.com/handoc-ai/doc-analysis-system/internal/cache"
	"github.com/handoc-ai/doc-analysis-system/internal/cleaner"
	"github.com/handoc-ai/doc-analysis-system/internal/database"
	"github.com/handoc-ai/doc-analysis-system/internal/document"
	"github.com/handoc-ai/doc-analysis-system/internal/llm"
	"github.com/handoc-ai/doc-analysis-system/internal/repository"
	"github.com/handoc-ai/doc-analysis-system/internal/services"
	"github.com/handoc-ai/doc-analysis-system/internal/tokenizer"
	"github.com/handoc-ai/doc-analysis-system/pkg/storage"
	"github.com/handoc-ai/doc-analysis-system/pkg/taskqueue"
)

// tokenizerEncoding 分词器使用的编码名称
const tokenizerEncoding = "cl100k_base"

func main() {
	// 加载.env文件（如果存在）
	_ = godotenv.Load()

	// 解析命令行参数
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "release", "Run mode (debug/release)")
	logLevel := flag.String("log-level", "info", "Log level (debug/info/warn/error)")
	flag.Parse()

	// 加载配置
	cfg, err := appconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 设置Gin模式
	gin.SetMode(*mode)

	// 初始化日志
	logger := setupLogger(*logLevel)
	logger.Info("Starting document analysis service...")

	// 初始化数据库
	db, err := database.Connect(&database.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.DSN,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}()

	// 创建文件存储服务
	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 创建大语言模型客户端
	llmClient, err := setupLLM(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// 创建缓存服务
	var cacheService cache.Cache
	if cfg.Cache.Enable {
		cacheService, err = setupCache(cfg)
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
	}

	// 初始化任务队列（如果启用）
	var queue taskqueue.Queue
	if cfg.Queue.Enable {
		queue, err = setupTaskQueue(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()
		logger.Info("Task queue initialized")
	}

	// 创建流水线组件
	extractor := document.NewPDFExtractor(
		document.WithMaxFileSize(cfg.Document.MaxFileSize),
		document.WithExtractorLogger(logger),
	)

	cleanerOptions := cleaner.DefaultOptions()
	cleanerOptions.SpellCheck = cfg.Cleaner.SpellCheck
	textCleaner := cleaner.NewTextCleaner(
		cleaner.WithOptions(cleanerOptions),
		cleaner.WithLogger(logger),
	)

	counter := tokenizer.NewCounter(tokenizerEncoding, logger)

	docAnalyzer := analyzer.NewAnalyzer(llmClient, counter,
		analyzer.WithConfig(analyzer.Config{
			ChunkTokens:    cfg.Document.ChunkTokens,
			MaxConcurrency: cfg.Analyzer.MaxConcurrency,
			QACount:        cfg.Analyzer.QACount,
			MaxKeywords:    cfg.Analyzer.MaxKeywords,
			MaxSentences:   cfg.Analyzer.MaxSentences,
			PremiumModel:   cfg.LLM.PremiumModel,
		}),
		analyzer.WithAnalyzerLogger(logger),
	)

	// 初始化仓储和业务服务
	docRepo := repository.NewDocumentRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	statusManager := services.NewDocumentStatusManager(docRepo, logger)

	documentServiceOptions := []services.DocumentServiceOption{
		services.WithLogger(logger),
		services.WithAllowDuplicate(cfg.Document.AllowDuplicate),
	}
	if queue != nil {
		documentServiceOptions = append(documentServiceOptions, services.WithTaskQueue(queue))
		logger.Info("Document processing will use async task queue")
	}

	documentService := services.NewDocumentService(
		fileStorage,
		extractor,
		textCleaner,
		docAnalyzer,
		docRepo,
		analysisRepo,
		statusManager,
		documentServiceOptions...,
	)

	analysisServiceOptions := []services.AnalysisServiceOption{
		services.WithAnalysisServiceLogger(logger),
	}
	if cacheService != nil {
		analysisServiceOptions = append(analysisServiceOptions, services.WithAnalysisCache(cacheService))
	}

	analysisService := services.NewAnalysisService(
		docRepo,
		analysisRepo,
		docAnalyzer,
		textCleaner,
		analysisServiceOptions...,
	)

	// 启动任务工作者（如果启用队列）
	if queue != nil {
		worker := setupWorker(queue, cfg, documentService, analysisService, logger)
		if worker != nil {
			defer worker.Stop()
		}
	}

	// 初始化API处理器
	docHandler := handler.NewDocumentHandler(documentService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	var taskHandler *handler.TaskHandler
	if queue != nil {
		taskHandler = handler.NewTaskHandler(queue)
	}

	// 设置路由
	r := api.SetupRouter(docHandler, analysisHandler, taskHandler)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger 设置日志系统
// 日志同时输出到标准输出和滚动文件
func setupLogger(level string) *logrus.Logger {
	logger := middleware.GetLogger()

	switch level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	// 日志文件按大小滚动
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join("logs", "handoc.log"),
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // 天
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, fileWriter))

	return logger
}

// setupStorage 设置文件存储服务
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
	default:
		if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %v", err)
		}
		return storage.NewLocalStorage(storage.LocalConfig{
			Path: cfg.Storage.Path,
		})
	}
}

// setupLLM 设置大语言模型客户端
func setupLLM(cfg *appconfig.Config) (llm.Client, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	return llm.NewClient(cfg.LLM.Provider,
		llm.WithAPIKey(cfg.LLM.APIKey),
		llm.WithBaseURL(cfg.LLM.Endpoint),
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxTokens(cfg.LLM.MaxTokens),
		llm.WithTemperature(cfg.LLM.Temperature),
		llm.WithTimeout(time.Duration(cfg.LLM.Timeout)*time.Second),
		llm.WithMaxRetries(cfg.LLM.MaxRetries),
	)
}

// setupCache 设置缓存服务
func setupCache(cfg *appconfig.Config) (cache.Cache, error) {
	cacheConfig := cache.Config{
		Type:            cfg.Cache.Type,
		DefaultTTL:      time.Duration(cfg.Cache.TTL) * time.Second,
		CleanupInterval: 10 * time.Minute,
	}

	if cfg.Cache.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Cache.Address
		cacheConfig.RedisPassword = cfg.Cache.Password
		cacheConfig.RedisDB = cfg.Cache.DB
	}

	return cache.NewCache(cacheConfig)
}

// setupTaskQueue 设置任务队列
func setupTaskQueue(cfg *appconfig.Config, logger *logrus.Logger) (taskqueue.Queue, error) {
	queueConfig := &taskqueue.Config{
		RedisAddr:     cfg.Queue.RedisAddr,
		RedisPassword: cfg.Queue.RedisPassword,
		RedisDB:       cfg.Queue.RedisDB,
		Concurrency:   cfg.Queue.Concurrency,
		RetryLimit:    cfg.Queue.RetryLimit,
		RetryDelay:    time.Duration(cfg.Queue.RetryDelay) * time.Second,
		Queues:        taskqueue.DefaultConfig().Queues,
	}

	logger.WithFields(logrus.Fields{
		"type":        cfg.Queue.Type,
		"redis_addr":  cfg.Queue.RedisAddr,
		"concurrency": cfg.Queue.Concurrency,
	}).Info("Setting up task queue")

	return taskqueue.NewQueue(cfg.Queue.Type, queueConfig)
}

// setupWorker 启动任务队列工作者
func setupWorker(
	queue taskqueue.Queue,
	cfg *appconfig.Config,
	documentService *services.DocumentService,
	analysisService *services.AnalysisService,
	logger *logrus.Logger,
) taskqueue.Worker {
	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		logger.Warn("Task queue does not support in-process workers, skipping worker startup")
		return nil
	}

	worker := taskqueue.NewRedisWorker(redisQueue, nil)

	taskHandler := services.NewDocumentTaskHandler(documentService, analysisService, queue, logger)
	for _, taskType := range taskHandler.GetTaskTypes() {
		worker.RegisterHandler(taskType, taskHandler)
	}

	go func() {
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
	}()
	logger.Info("Task worker started")

	return worker
}
