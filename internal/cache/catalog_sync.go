package cache

import (
	"context"
	"fmt"

	"github.com/annel0/mmo-wire/internal/localization"
	"github.com/annel0/mmo-wire/internal/logging"
)

// CatalogSync держит localization.Store узла в согласии с общим хранилищем.
type CatalogSync struct {
	repo  CatalogRepo
	inv   CatalogInvalidator // может быть nil: только начальная загрузка
	store *localization.Store
}

func NewCatalogSync(repo CatalogRepo, inv CatalogInvalidator, store *localization.Store) *CatalogSync {
	return &CatalogSync{repo: repo, inv: inv, store: store}
}

// Start загружает все языки и подписывается на обновления до отмены ctx.
func (s *CatalogSync) Start(ctx context.Context) (int, error) {
	langs, err := s.repo.Languages(ctx)
	if err != nil {
		return 0, fmt.Errorf("list catalog languages: %w", err)
	}
	total := 0
	for _, lang := range langs {
		n, err := s.Reload(ctx, lang)
		if err != nil {
			return total, err
		}
		total += n
	}
	if s.inv != nil {
		err = s.inv.SubscribeInvalidations(ctx, func(lang string) error {
			_, err := s.Reload(ctx, lang)
			return err
		})
	}
	return total, err
}

// Reload перечитывает один язык. Переводы, удалённые из хранилища, остаются
// в Store до перезапуска.
func (s *CatalogSync) Reload(ctx context.Context, lang string) (int, error) {
	c, err := s.repo.Fetch(ctx, lang)
	if err != nil {
		return 0, err
	}
	n := s.store.Merge(lang, c)
	logging.GetProtocolLogger().Info("каталог %s обновлён из Redis: %d переводов", lang, n)
	return n, nil
}

// Publish записывает каталог в хранилище и оповещает остальные узлы.
func (s *CatalogSync) Publish(ctx context.Context, lang string, c localization.Catalog) error {
	if err := s.repo.Push(ctx, lang, c); err != nil {
		return err
	}
	s.store.Merge(lang, c)
	if s.inv == nil {
		return nil
	}
	return s.inv.PublishInvalidation(ctx, lang)
}
