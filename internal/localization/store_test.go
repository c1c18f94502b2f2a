package localization

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-wire/internal/protocol/packets"
)

var _ packets.Localizer = (*Store)(nil)

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte(`
npc_names:
  20120: Серый волк
npc_titles:
  20120: Страж леса
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.yaml"), []byte(`
npc_names:
  20120: Grauer Wolf
`), 0o644))

	s := NewStore()
	require.NoError(t, s.LoadDir(dir))

	name, ok := s.NpcName("ru", 20120)
	require.True(t, ok)
	assert.Equal(t, "Серый волк", name)

	_, ok = s.NpcTitle("de", 20120)
	assert.False(t, ok)
	_, ok = s.NpcName("fr", 20120)
	assert.False(t, ok)

	assert.Equal(t, []string{"de", "ru"}, s.Languages())
	assert.Equal(t, 3, s.Len())
}

func TestLoadFileErrors(t *testing.T) {
	s := NewStore()
	_, err := s.LoadFile("ru", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("npc_names: [1, 2"), 0o644))
	_, err = s.LoadFile("ru", bad)
	assert.Error(t, err)
}

func TestLocalizesNpcInfo(t *testing.T) {
	s := NewStore()
	s.SetName("ru", 7, "Торговец")

	p := packets.NewNpcInfo(nil, packets.NpcView{ObjectID: 1, TemplateID: 7, Name: "Merchant"}, false)
	p.Localize(s, "ru")
	assert.Equal(t, "Торговец", p.View().Name)

	_, err := packets.Encode(p)
	assert.NoError(t, err)
}

func TestConcurrentLookups(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := int32(0); i < 200; i++ {
				s.SetTitle("en", i, "title")
				s.NpcTitle("en", i)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 200, s.Len())
}

func TestCatalogMergeAndExport(t *testing.T) {
	s := NewStore()
	n := s.Merge("de", Catalog{
		NpcNames:  map[int32]string{1: "Händler", 2: "Wache"},
		NpcTitles: map[int32]string{2: "Stadtwache"},
	})
	assert.Equal(t, 3, n)
	s.SetName("fr", 1, "Marchand")

	c := s.Catalog("de")
	assert.Equal(t, map[int32]string{1: "Händler", 2: "Wache"}, c.NpcNames)
	assert.Equal(t, map[int32]string{2: "Stadtwache"}, c.NpcTitles)
	assert.Equal(t, 3, c.Len())
	assert.Zero(t, s.Catalog("it").Len())
}
