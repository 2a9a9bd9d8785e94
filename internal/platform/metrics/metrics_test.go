package metrics

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestNewRegistry_ExposesPoolStats(t *testing.T) {
	db, err := sql.Open("sqlite", "file:metrics?mode=memory")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := NewRegistry(db, "civic")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "go_sql_max_open_connections")
	assert.Contains(t, names, "go_goroutines")
}

func TestRegisterBuildInfo(t *testing.T) {
	reg := NewRegistry(nil, "")
	RegisterBuildInfo(reg, "v1.2.3", "test")

	expected := `
# HELP civic_build_info Build and environment information
# TYPE civic_build_info gauge
civic_build_info{environment="test",version="v1.2.3"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "civic_build_info"))
}
