package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Document DocumentConfig `mapstructure:"document"`
	Cleaner  CleanerConfig  `mapstructure:"cleaner"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地存储路径
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Provider     string  `mapstructure:"provider"`      // 提供商：openai 或兼容端点
	Model        string  `mapstructure:"model"`         // 默认模型名称
	PremiumModel string  `mapstructure:"premium_model"` // premium档位使用的模型名称
	APIKey       string  `mapstructure:"api_key"`       // API密钥
	Endpoint     string  `mapstructure:"endpoint"`      // API端点
	MaxTokens    int     `mapstructure:"max_tokens"`    // 最大生成token数量
	Temperature  float32 `mapstructure:"temperature"`   // 采样温度
	Timeout      int     `mapstructure:"timeout"`       // 单次调用超时（秒）
	MaxRetries   int     `mapstructure:"max_retries"`   // 最大重试次数
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`   // 是否启用缓存
	Type     string `mapstructure:"type"`     // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`  // Redis地址
	Password string `mapstructure:"password"` // Redis密码
	DB       int    `mapstructure:"db"`       // Redis数据库
	TTL      int    `mapstructure:"ttl"`      // 缓存TTL（秒）
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否启用任务队列
	Type          string `mapstructure:"type"`           // 队列类型：redis
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type string `mapstructure:"type"` // 数据库类型: sqlite, mysql
	DSN  string `mapstructure:"dsn"`  // 数据源名称
}

// DocumentConfig 文档处理配置
type DocumentConfig struct {
	MaxFileSize    int64 `mapstructure:"max_file_size"`    // 上传文件大小上限（字节）
	ChunkTokens    int   `mapstructure:"chunk_tokens"`     // 分块token预算
	AllowDuplicate bool  `mapstructure:"allow_duplicate"`  // 是否允许重复指纹的文档
}

// CleanerConfig 文本清洗配置
type CleanerConfig struct {
	SpellCheck bool `mapstructure:"spell_check"` // 是否启用拼写检查（默认关闭）
}

// AnalyzerConfig 分析器配置
type AnalyzerConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"` // 分块摘要并发上限
	QACount        int `mapstructure:"qa_count"`        // 生成问答对数量
	MaxKeywords    int `mapstructure:"max_keywords"`    // 关键词数量上限
	MaxSentences   int `mapstructure:"max_sentences"`   // 核心句数量上限
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果找不到配置文件，创建一个默认配置文件
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
			setDefaults(v)
			// 创建默认配置文件
			dir := filepath.Dir(configPath)
			if err := os.MkdirAll(dir, 0755); err == nil {
				if err := v.WriteConfigAs(configPath); err != nil {
					log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
				}
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 密钥类配置支持 ${ENV_VAR} 形式引用
	config.LLM.APIKey = expandEnvRef(config.LLM.APIKey)
	config.Storage.SecretKey = expandEnvRef(config.Storage.SecretKey)

	return &config, nil
}

// expandEnvRef 展开 ${ENV_VAR} 形式的环境变量引用
// 环境变量未设置或值不是引用形式时原样返回
func expandEnvRef(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
		return envVal
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./uploads")
	v.SetDefault("storage.bucket", "handoc")
	v.SetDefault("storage.use_ssl", false)

	// LLM默认配置
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.premium_model", "gpt-4")
	v.SetDefault("llm.endpoint", "https://api.openai.com/v1")
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 60)
	v.SetDefault("llm.max_retries", 2)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 60) // 60秒

	// 数据库默认配置
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/handoc.db")

	// 文档处理默认配置
	v.SetDefault("document.max_file_size", 50*1024*1024) // 50MB
	v.SetDefault("document.chunk_tokens", 3000)
	v.SetDefault("document.allow_duplicate", false)

	// 文本清洗默认配置
	v.SetDefault("cleaner.spell_check", false)

	// 分析器默认配置
	v.SetDefault("analyzer.max_concurrency", 4)
	v.SetDefault("analyzer.qa_count", 5)
	v.SetDefault("analyzer.max_keywords", 15)
	v.SetDefault("analyzer.max_sentences", 8)
}
