package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/mmo-wire/internal/localization"
	"github.com/annel0/mmo-wire/internal/logging"
)

// RedisConfig - параметры подключения к Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // префикс ключей, например "wire:locale"
}

// RedisCatalog хранит каталоги в Redis:
// <prefix>:langs - множество языков, <prefix>:<lang>:names и
// <prefix>:<lang>:titles - хэши templateID → текст.
type RedisCatalog struct {
	client *redis.Client
	prefix string
	logger *logging.Logger
}

// NewRedisCatalog подключается к Redis и проверяет соединение.
func NewRedisCatalog(cfg RedisConfig) (*RedisCatalog, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "wire:locale"
	}
	logging.GetProtocolLogger().Info("каталоги переводов в Redis: %s (prefix=%s)", cfg.Addr, cfg.Prefix)
	return &RedisCatalog{client: rdb, prefix: cfg.Prefix, logger: logging.GetProtocolLogger()}, nil
}

func (r *RedisCatalog) langsKey() string            { return r.prefix + ":langs" }
func (r *RedisCatalog) namesKey(lang string) string  { return r.prefix + ":" + lang + ":names" }
func (r *RedisCatalog) titlesKey(lang string) string { return r.prefix + ":" + lang + ":titles" }

// Push атомарно заменяет оба хэша языка.
func (r *RedisCatalog) Push(ctx context.Context, lang string, c localization.Catalog) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.namesKey(lang), r.titlesKey(lang))
	if len(c.NpcNames) > 0 {
		pipe.HSet(ctx, r.namesKey(lang), toHash(c.NpcNames))
	}
	if len(c.NpcTitles) > 0 {
		pipe.HSet(ctx, r.titlesKey(lang), toHash(c.NpcTitles))
	}
	pipe.SAdd(ctx, r.langsKey(), lang)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push catalog %s: %w", lang, err)
	}
	r.logger.Debug("каталог %s записан в Redis: %d переводов", lang, c.Len())
	return nil
}

// Fetch читает каталог языка.
func (r *RedisCatalog) Fetch(ctx context.Context, lang string) (localization.Catalog, error) {
	var c localization.Catalog
	names, err := r.client.HGetAll(ctx, r.namesKey(lang)).Result()
	if err != nil {
		return c, fmt.Errorf("fetch names %s: %w", lang, err)
	}
	titles, err := r.client.HGetAll(ctx, r.titlesKey(lang)).Result()
	if err != nil {
		return c, fmt.Errorf("fetch titles %s: %w", lang, err)
	}
	if c.NpcNames, err = fromHash(names); err != nil {
		return c, fmt.Errorf("catalog %s: %w", lang, err)
	}
	if c.NpcTitles, err = fromHash(titles); err != nil {
		return c, fmt.Errorf("catalog %s: %w", lang, err)
	}
	return c, nil
}

// Languages возвращает языки из множества <prefix>:langs.
func (r *RedisCatalog) Languages(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, r.langsKey()).Result()
}

func (r *RedisCatalog) Close() error { return r.client.Close() }

func toHash(m map[int32]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for id, text := range m {
		out[strconv.FormatInt(int64(id), 10)] = text
	}
	return out
}

func fromHash(h map[string]string) (map[int32]string, error) {
	out := make(map[int32]string, len(h))
	for field, text := range h {
		id, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad template id %q", field)
		}
		out[int32(id)] = text
	}
	return out, nil
}
