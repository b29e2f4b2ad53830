package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	openTestStore(t, dir)

	_, err := os.Stat(filepath.Join(dir, DBFileName))
	assert.NoError(t, err)
}

func TestSaveAndLoadAll(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	require.NoError(t, s.Save(types.Record{ID: "ROOT", Parent: types.NoParent, Children: []string{"B", "A"}, Height: 0}))
	require.NoError(t, s.Save(types.Record{ID: "B", Parent: "ROOT", Height: 1}))
	require.NoError(t, s.Save(types.Record{ID: "A", Parent: "ROOT", Children: []string{}, Height: 1}))

	recs, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)

	byID := map[string]types.Record{}
	for _, r := range recs {
		byID[r.ID] = r
	}
	assert.Equal(t, []string{"B", "A"}, byID["ROOT"].Children, "child order must survive")
	assert.Equal(t, []string{}, byID["B"].Children)
	assert.Equal(t, 1, byID["A"].Height)
}

func TestSaveUpserts(t *testing.T) {
	s := openTestStore(t, t.TempDir())

	require.NoError(t, s.Save(types.Record{ID: "A", Parent: "ROOT", Children: []string{}, Height: 1}))
	require.NoError(t, s.Save(types.Record{ID: "A", Parent: "C", Children: []string{"X"}, Height: 2}))

	recs, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.Record{ID: "A", Parent: "C", Children: []string{"X"}, Height: 2}, recs[0])
}

func TestRecordsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(types.Record{ID: "ROOT", Parent: types.NoParent, Children: []string{}}))
	require.NoError(t, s.Close())

	s2 := openTestStore(t, dir)
	recs, err := s2.LoadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ROOT", recs[0].ID)
}

func TestWipe(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.Save(types.Record{ID: "ROOT", Parent: types.NoParent, Children: []string{}}))

	require.NoError(t, s.Wipe())

	recs, err := s.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	require.NoError(t, s.Save(types.Record{ID: "ROOT", Parent: types.NoParent, Children: []string{}}))
	require.NoError(t, s.Save(types.Record{ID: "H", Parent: "ROOT", Children: []string{}, Height: 1}))

	require.NoError(t, s.Delete("H"))
	require.NoError(t, s.Delete("missing"))

	recs, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ROOT", recs[0].ID)
}

func TestCorruptChildrenColumn(t *testing.T) {
	s := openTestStore(t, t.TempDir())
	_, err := s.db.Exec(upsertNode, "A", "ROOT", "not-json", 1)
	require.NoError(t, err)

	_, err = s.LoadAll()
	assert.ErrorIs(t, err, types.ErrCorruptStore)
}

func TestClosedStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save(types.Record{ID: "A"}), types.ErrStoreClosed)
	assert.ErrorIs(t, s.Delete("A"), types.ErrStoreClosed)
	_, err = s.LoadAll()
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.ErrorIs(t, s.Wipe(), types.ErrStoreClosed)
}
