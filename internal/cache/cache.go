package cache

import (
	"strings"
	"time"
)

// Cache 字符串键值缓存接口
// 用于缓存Markdown导出等计算代价较高的结果
type Cache interface {
	// Get 读取缓存值，found为false表示键不存在或已过期
	Get(key string) (value string, found bool, err error)
	// Set 写入缓存值，ttl为0时使用默认过期时间
	Set(key string, value string, ttl time.Duration) error
	// Delete 删除指定键
	Delete(key string) error
	// Clear 清空全部缓存
	Clear() error
}

// Factory 缓存实现的工厂函数
type Factory func(config Config) (Cache, error)

// registry 已注册的缓存实现
var registry = make(map[string]Factory)

// RegisterCache 注册缓存实现
// 各实现在自己的init函数中调用
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache 根据配置创建缓存实例
// 未注册的类型回退到内存缓存
func NewCache(config Config) (Cache, error) {
	if factory, ok := registry[config.Type]; ok {
		return factory(config)
	}
	return NewMemoryCache(config)
}

// Config 缓存配置
type Config struct {
	Type            string        // 缓存类型，"memory"或"redis"
	RedisAddr       string        // Redis连接地址
	RedisPassword   string        // Redis密码
	RedisDB         int           // Redis数据库编号
	DefaultTTL      time.Duration // 默认过期时间
	CleanupInterval time.Duration // 过期项清理间隔，仅内存缓存使用
}

// DefaultConfig 返回默认的内存缓存配置
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// GenerateCacheKey 用冒号拼接前缀和各部分，生成统一格式的缓存键
func GenerateCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}
