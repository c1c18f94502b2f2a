// Package localization хранит переводы имён и титулов NPC по языкам.
// Каталог языка - файл <lang>.yaml:
//
//	npc_names:
//	  20120: Серый волк
//	npc_titles:
//	  20120: Страж леса
package localization

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
	"gopkg.in/yaml.v3"

	"github.com/annel0/mmo-wire/internal/logging"
)

type field uint8

const (
	fieldName field = iota
	fieldTitle
)

type key struct {
	lang string
	id   int32
	f    field
}

// Catalog - переводы одного языка; формат файла каталога.
type Catalog struct {
	NpcNames  map[int32]string `yaml:"npc_names"`
	NpcTitles map[int32]string `yaml:"npc_titles"`
}

// Store - потокобезопасный каталог переводов. Чтения не блокируют друг друга
// и могут идти из любого числа горутин кодирования.
type Store struct {
	entries *xsync.MapOf[key, string]
	langs   *xsync.MapOf[string, struct{}]
}

// NewStore создаёт пустой каталог.
func NewStore() *Store {
	return &Store{
		entries: xsync.NewMapOf[key, string](),
		langs:   xsync.NewMapOf[string, struct{}](),
	}
}

// SetName задаёт перевод имени NPC.
func (s *Store) SetName(lang string, templateID int32, text string) {
	s.set(key{lang: lang, id: templateID, f: fieldName}, text)
}

// SetTitle задаёт перевод титула NPC.
func (s *Store) SetTitle(lang string, templateID int32, text string) {
	s.set(key{lang: lang, id: templateID, f: fieldTitle}, text)
}

func (s *Store) set(k key, text string) {
	s.entries.Store(k, text)
	s.langs.Store(k.lang, struct{}{})
}

// NpcName возвращает перевод имени; ok=false, если перевода нет.
func (s *Store) NpcName(lang string, templateID int32) (string, bool) {
	return s.entries.Load(key{lang: lang, id: templateID, f: fieldName})
}

// NpcTitle возвращает перевод титула.
func (s *Store) NpcTitle(lang string, templateID int32) (string, bool) {
	return s.entries.Load(key{lang: lang, id: templateID, f: fieldTitle})
}

// Languages возвращает загруженные языки по алфавиту.
func (s *Store) Languages() []string {
	var out []string
	s.langs.Range(func(lang string, _ struct{}) bool {
		out = append(out, lang)
		return true
	})
	sort.Strings(out)
	return out
}

// Len возвращает общее число переводов.
func (s *Store) Len() int { return s.entries.Size() }

// Len возвращает число переводов в каталоге.
func (c Catalog) Len() int { return len(c.NpcNames) + len(c.NpcTitles) }

// ReadCatalog читает файл каталога.
func ReadCatalog(path string) (Catalog, error) {
	var c Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Merge добавляет переводы языка lang поверх имеющихся.
func (s *Store) Merge(lang string, c Catalog) int {
	for id, text := range c.NpcNames {
		s.SetName(lang, id, text)
	}
	for id, text := range c.NpcTitles {
		s.SetTitle(lang, id, text)
	}
	return c.Len()
}

// Catalog возвращает копию переводов языка lang.
func (s *Store) Catalog(lang string) Catalog {
	c := Catalog{NpcNames: map[int32]string{}, NpcTitles: map[int32]string{}}
	s.entries.Range(func(k key, text string) bool {
		if k.lang != lang {
			return true
		}
		if k.f == fieldName {
			c.NpcNames[k.id] = text
		} else {
			c.NpcTitles[k.id] = text
		}
		return true
	})
	return c
}

// LoadFile загружает каталог одного языка.
func (s *Store) LoadFile(lang, path string) (int, error) {
	c, err := ReadCatalog(path)
	if err != nil {
		return 0, err
	}
	return s.Merge(lang, c), nil
}

// LoadDir загружает все каталоги <lang>.yaml из каталога dir.
func (s *Store) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	log := logging.GetProtocolLogger()
	for _, path := range paths {
		lang := strings.TrimSuffix(filepath.Base(path), ".yaml")
		n, err := s.LoadFile(lang, path)
		if err != nil {
			return err
		}
		log.Info("каталог %s: %d переводов", lang, n)
	}
	if len(paths) == 0 {
		log.Warn("в %s нет каталогов переводов", dir)
	}
	return nil
}
