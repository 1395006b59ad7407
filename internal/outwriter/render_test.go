package outwriter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/pilotkpi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplateHasMarkers(t *testing.T) {
	tmpl, err := LoadTemplate("")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(tmpl, DataMarker))
	assert.Equal(t, 1, strings.Count(tmpl, ChartLibMarker))
}

func TestLoadTemplateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte("<html>"+DataMarker+"</html>"), 0o644))

	tmpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Contains(t, tmpl, DataMarker)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestChartScript(t *testing.T) {
	const cdn = "https://cdn.example.com/chart.js"

	lib := filepath.Join(t.TempDir(), "chart.js")
	require.NoError(t, os.WriteFile(lib, []byte("window.Chart = {};"), 0o644))

	script, inlined, err := ChartScript(lib, cdn)
	require.NoError(t, err)
	assert.True(t, inlined)
	assert.Equal(t, "<script>\nwindow.Chart = {};\n</script>", script)

	script, inlined, err = ChartScript(filepath.Join(t.TempDir(), "missing.js"), cdn)
	assert.Error(t, err)
	assert.False(t, inlined)
	assert.Equal(t, `<script src="`+cdn+`"></script>`, script)

	_, inlined, err = ChartScript("", cdn)
	assert.Error(t, err)
	assert.False(t, inlined)
}

func TestRenderDashboard(t *testing.T) {
	tmpl := "<head>" + ChartLibMarker + "</head><script>" + DataMarker + "</script>"
	payload := schema.DashboardPayload{Meta: schema.PayloadMeta{Title: "</script><b>x</b>"}}

	out, err := RenderDashboard(tmpl, payload, "<script>lib</script>")
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<head><script>lib</script></head><script>const DATA = {"))
	assert.True(t, strings.HasSuffix(html, "};</script>"))
	assert.NotContains(t, html, DataMarker)
	assert.NotContains(t, html, ChartLibMarker)
	// The payload must not be able to close the script element
	assert.Equal(t, 2, strings.Count(html, "</script>"))

	start := strings.Index(html, "const DATA = ") + len("const DATA = ")
	end := strings.LastIndex(html, ";</script>")
	var decoded schema.DashboardPayload
	require.NoError(t, json.Unmarshal([]byte(html[start:end]), &decoded))
	assert.Equal(t, payload.Meta.Title, decoded.Meta.Title)
}

func TestRenderDashboardMissingMarker(t *testing.T) {
	_, err := RenderDashboard("<html></html>", schema.DashboardPayload{}, "")
	assert.ErrorIs(t, err, ErrMissingMarker)
}

func TestWriteDashboard(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Output = filepath.Join(dir, "site", "dashboard.html")
	cfg.ArchiveDir = filepath.Join(dir, "archive")
	cfg.PayloadFile = filepath.Join(dir, "dashboard-data.json")
	cfg.ChartLib = filepath.Join(dir, "missing.js")

	now := time.Date(2025, time.December, 16, 9, 30, 0, 0, time.UTC)
	payload := schema.DashboardPayload{Meta: schema.PayloadMeta{Title: "KPIs"}}

	written, err := WriteDashboard(payload, cfg, now)
	require.NoError(t, err)
	archive := filepath.Join(cfg.ArchiveDir, "dashboard-2025-12-16.html")
	assert.Equal(t, []string{cfg.Output, archive, cfg.PayloadFile}, written)

	primary, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	copied, err := os.ReadFile(archive)
	require.NoError(t, err)
	assert.Equal(t, primary, copied)
	assert.Contains(t, string(primary), `<script src="`+cfg.ChartCDN+`"></script>`)

	data, err := os.ReadFile(cfg.PayloadFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "KPIs"`)
}

func TestArchiveName(t *testing.T) {
	assert.Equal(t, "dashboard-2026-01-05.html", ArchiveName(time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)))
}
