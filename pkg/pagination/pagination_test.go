package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := paramsFor(t, "")
	require.Equal(t, DefaultPage, p.Page)
	require.Equal(t, DefaultLimit, p.Limit)
	require.Zero(t, p.Offset)
}

func TestParseClampsLimits(t *testing.T) {
	require.Equal(t, MaxLimit, paramsFor(t, "limit=500").Limit)
	require.Equal(t, DefaultLimit, paramsFor(t, "limit=0").Limit)
	require.Equal(t, DefaultPage, paramsFor(t, "page=-3").Page)
}

func TestSlice(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	page := Slice(items, Params{Page: 2, Limit: 20, Offset: 20})
	require.Equal(t, 45, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 20)
	require.Equal(t, 20, page.Items[0])

	last := Slice(items, Params{Page: 3, Limit: 20, Offset: 40})
	require.Len(t, last.Items, 5)

	beyond := Slice(items, Params{Page: 9, Limit: 20, Offset: 160})
	require.Empty(t, beyond.Items)
	require.Equal(t, 45, beyond.Total)
}

func TestSliceEmpty(t *testing.T) {
	page := Slice([]string(nil), Params{Page: 1, Limit: 20})
	require.Empty(t, page.Items)
	require.Zero(t, page.Total)
	require.Zero(t, page.TotalPages)
}
