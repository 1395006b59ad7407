package outwriter

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/pilotkpi/schema"
)

// Template markers replaced during rendering.
const (
	DataMarker     = "/*__DASHBOARD_DATA__*/"
	ChartLibMarker = "<!--__CHART_LIB__-->"
)

// ErrMissingMarker is returned when a template lacks the data marker.
var ErrMissingMarker = errors.New("template has no " + DataMarker + " marker")

//go:embed assets/dashboard.html
var defaultTemplate string

// LoadTemplate returns the template at path, or the embedded default when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot read template %s: %w", path, err)
	}
	return string(b), nil
}

// ChartScript returns the script tag for the charting library. The library
// is inlined when libPath can be read; otherwise the CDN URL is referenced
// and inlined is false.
func ChartScript(libPath, cdnURL string) (script string, inlined bool, err error) {
	if libPath != "" {
		b, readErr := os.ReadFile(libPath)
		if readErr == nil {
			return "<script>\n" + string(b) + "\n</script>", true, nil
		}
		err = readErr
	} else {
		err = errors.New("no chart library path configured")
	}
	return fmt.Sprintf(`<script src="%s"></script>`, cdnURL), false, err
}

// RenderDashboard substitutes the payload and chart script into the template.
// The JSON encoder escapes <, > and & so the payload cannot close the script element.
func RenderDashboard(tmpl string, payload schema.DashboardPayload, chartScript string) ([]byte, error) {
	if !strings.Contains(tmpl, DataMarker) {
		return nil, ErrMissingMarker
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	out := strings.Replace(tmpl, DataMarker, "const DATA = "+string(data)+";", 1)
	out = strings.Replace(out, ChartLibMarker, chartScript, 1)
	return []byte(out), nil
}
