package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/tap14/tap"
)

func openRunsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func recordSource(t *testing.T, db *sql.DB, source, src string) int64 {
	t.Helper()
	doc, err := tap.ParseDocument(src)
	require.NoError(t, err)
	id, err := RecordRun(db, source, doc)
	require.NoError(t, err)
	return id
}

const nestedRun = `TAP version 14
1..2 # two
not ok 1 - first
  ---
  got: 1
  want: 2
  ...
# Subtest: group
    1..1
    ok 1 - inner # skip later
ok 2 - group
`

func TestRecordRun_StoresCounts(t *testing.T) {
	db := openRunsDB(t)
	id := recordSource(t, db, "ci.tap", nestedRun)

	runs, err := ListRuns(db)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "ci.tap", r.Source)
	assert.Equal(t, "14", r.Version)
	require.NotNil(t, r.Plan.Reason)
	assert.Equal(t, "two", *r.Plan.Reason)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Skipped)
	assert.False(t, r.BailedOut)
	assert.NotEmpty(t, r.RecordedAt)
}

func TestRecordRun_StoresNestedResults(t *testing.T) {
	db := openRunsDB(t)
	id := recordSource(t, db, "ci.tap", nestedRun)

	results, err := Results(db, id)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "", results[0].Path)
	assert.Equal(t, 0, results[0].Depth)
	assert.False(t, results[0].OK)
	assert.Equal(t, []string{"got: 1", "want: 2"}, results[0].YAML)
	assert.Nil(t, results[0].Directive)

	assert.Equal(t, "group", results[1].Path)
	assert.Equal(t, 1, results[1].Depth)
	require.NotNil(t, results[1].Directive)
	assert.Equal(t, "skip", *results[1].Directive)
	assert.Equal(t, "later", *results[1].Reason)

	assert.Equal(t, 3, results[2].Seq)
	assert.Equal(t, "group", *results[2].Description)
	assert.Equal(t, 2, *results[2].Number)
}

func TestRecordRun_DepthCountsEverySubtest(t *testing.T) {
	db := openRunsDB(t)
	id := recordSource(t, db, "ci.tap", `TAP version 14
1..3
ok 1 - top
    1..1
    ok 1 - in unnamed
ok 2
# Subtest: a/b
    1..1
    ok 1 - in slashed
ok 3 - a/b
`)

	results, err := Results(db, id)
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.Equal(t, "", results[1].Path)
	assert.Equal(t, 1, results[1].Depth)
	assert.Equal(t, "a/b", results[3].Path)
	assert.Equal(t, 1, results[3].Depth)
	assert.Equal(t, 0, results[4].Depth)
}

func TestListRuns_OrderedByID(t *testing.T) {
	db := openRunsDB(t)
	recordSource(t, db, "a.tap", "TAP version 14\n1..0\n")
	recordSource(t, db, "b.tap", "TAP version 14\n1..1\nBail out!\n")

	runs, err := ListRuns(db)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a.tap", runs[0].Source)
	assert.Nil(t, runs[0].Plan.Reason)
	assert.Equal(t, "b.tap", runs[1].Source)
	assert.True(t, runs[1].BailedOut)
}

func TestResults_UnknownRun(t *testing.T) {
	db := openRunsDB(t)

	_, err := Results(db, 42)
	assert.EqualError(t, err, "run 42 not found")
}
