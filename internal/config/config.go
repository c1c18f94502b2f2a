package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации слоя кодирования исходящих пакетов.
type Config struct {
	Protocol ProtocolConfig `yaml:"protocol"`
	Batch    BatchConfig    `yaml:"batch"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Cache    CacheConfig    `yaml:"cache"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type ProtocolConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	LocalizationDir string `yaml:"localization_dir"`
}

type BatchConfig struct {
	FlushEveryMs int `yaml:"flush_every_ms"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто - in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
}

// CacheConfig - общий каталог переводов в Redis.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"` // пусто - только локальные файлы
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix"`
	Subject       string `yaml:"invalidation_subject"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"` // OTLP/HTTP host:port; пусто - без трассировки
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
}

// GetDefaultLanguage возвращает язык клиента по умолчанию
func (p *ProtocolConfig) GetDefaultLanguage() string {
	return getStringWithEnvFallback(p.DefaultLanguage, "GAME_WIRE_LANG", "en")
}

// GetLocalizationDir возвращает каталог словарей локализации; пусто - локализация выключена
func (p *ProtocolConfig) GetLocalizationDir() string {
	return getStringWithEnvFallback(p.LocalizationDir, "GAME_WIRE_LOCALE_DIR", "")
}

// GetFlushEvery возвращает интервал сброса накопленных изменений инвентаря
func (b *BatchConfig) GetFlushEvery() time.Duration {
	ms := getIntWithEnvFallback(b.FlushEveryMs, "GAME_WIRE_FLUSH_MS", 200)
	return time.Duration(ms) * time.Millisecond
}

// GetURL возвращает адрес NATS; пусто - in-memory шина
func (e *EventBusConfig) GetURL() string {
	return getStringWithEnvFallback(e.URL, "GAME_WIRE_NATS_URL", "")
}

// GetStream возвращает имя стрима JetStream
func (e *EventBusConfig) GetStream() string {
	return getStringWithEnvFallback(e.Stream, "GAME_WIRE_STREAM", "ITEMS")
}

// GetRetention возвращает время хранения событий в стриме
func (e *EventBusConfig) GetRetention() time.Duration {
	return time.Duration(getIntWithEnvFallback(e.Retention, "GAME_WIRE_RETENTION_HOURS", 24)) * time.Hour
}

// GetBuffer возвращает размер буфера in-memory шины
func (e *EventBusConfig) GetBuffer() int {
	return getIntWithEnvFallback(e.Buffer, "GAME_WIRE_BUS_BUFFER", 1024)
}

// GetNamespace возвращает namespace Prometheus-метрик
func (m *MetricsConfig) GetNamespace() string {
	return getStringWithEnvFallback(m.Namespace, "GAME_WIRE_METRICS_NS", "wire")
}

// GetAddr возвращает адрес HTTP-эндпоинта /metrics
func (m *MetricsConfig) GetAddr() string {
	return getStringWithEnvFallback(m.Addr, "GAME_WIRE_METRICS_ADDR", ":2112")
}

// GetDir возвращает каталог файлов логов; пусто - только консоль
func (l *LoggingConfig) GetDir() string {
	return getStringWithEnvFallback(l.Dir, "GAME_WIRE_LOG_DIR", "")
}

// GetConsoleLevel возвращает имя минимального уровня консольного лога
func (l *LoggingConfig) GetConsoleLevel() string {
	return getStringWithEnvFallback(l.ConsoleLevel, "GAME_WIRE_LOG_LEVEL", "INFO")
}

// GetRedisAddr возвращает адрес Redis с каталогами переводов
func (c *CacheConfig) GetRedisAddr() string {
	return getStringWithEnvFallback(c.RedisAddr, "GAME_WIRE_REDIS_ADDR", "")
}

// GetPrefix возвращает префикс ключей каталогов
func (c *CacheConfig) GetPrefix() string {
	return getStringWithEnvFallback(c.Prefix, "GAME_WIRE_REDIS_PREFIX", "wire:locale")
}

// GetSubject возвращает NATS-тему уведомлений об обновлении каталогов
func (c *CacheConfig) GetSubject() string {
	return getStringWithEnvFallback(c.Subject, "GAME_WIRE_LOCALE_SUBJECT", "wire.locale.invalidate")
}

// GetEndpoint возвращает адрес OTLP-коллектора
func (t *TracingConfig) GetEndpoint() string {
	return getStringWithEnvFallback(t.Endpoint, "GAME_WIRE_OTLP_ENDPOINT", "")
}

// GetServiceName возвращает имя сервиса в трассах
func (t *TracingConfig) GetServiceName() string {
	return getStringWithEnvFallback(t.ServiceName, "GAME_WIRE_SERVICE", "mmo-wire")
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	if configVal > 0 {
		return configVal
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultVal
}

// getStringWithEnvFallback - то же для строковых значений
func getStringWithEnvFallback(configVal, envVar, defaultVal string) string {
	if strings.TrimSpace(configVal) != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAME_WIRE_CONFIG; если и там пусто,
// возвращает пустую конфигурацию (геттеры отдадут значения по умолчанию).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_WIRE_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
