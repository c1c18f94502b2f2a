// Package cache раздаёт каталоги переводов между узлами: Redis хранит общие
// каталоги, NATS рассылает уведомления об их обновлении, а каждый узел
// перечитывает изменённый язык в свой localization.Store.
package cache

import (
	"context"

	"github.com/annel0/mmo-wire/internal/localization"
)

// CatalogRepo - общее хранилище каталогов.
type CatalogRepo interface {
	// Push заменяет каталог языка lang.
	Push(ctx context.Context, lang string, c localization.Catalog) error

	// Fetch возвращает каталог языка lang; пустой, если его нет.
	Fetch(ctx context.Context, lang string) (localization.Catalog, error)

	// Languages возвращает языки, для которых есть каталоги.
	Languages(ctx context.Context) ([]string, error)

	Close() error
}

// CatalogInvalidator рассылает и принимает уведомления об обновлении языка.
type CatalogInvalidator interface {
	PublishInvalidation(ctx context.Context, lang string) error
	SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error
	Close() error
}

// InvalidationHandler обрабатывает уведомление об обновлении языка.
type InvalidationHandler func(lang string) error
