package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/pilotkpi/internal/contract"
	"github.com/huangsam/pilotkpi/schema"
)

// ArchiveName returns the file name of the dated archival copy.
func ArchiveName(now time.Time) string {
	return "dashboard-" + now.Format(contract.DateFormat) + ".html"
}

// WriteDashboard renders the payload and writes the HTML to the primary
// output, the archive directory when set, and the payload JSON when requested.
// It returns the paths written.
func WriteDashboard(payload schema.DashboardPayload, cfg *contract.Config, now time.Time) ([]string, error) {
	// 1. Template and chart library
	tmpl, err := LoadTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	script, inlined, libErr := ChartScript(cfg.ChartLib, cfg.ChartCDN)
	if !inlined {
		contract.LogWarn("Chart library not inlined, using CDN "+cfg.ChartCDN, libErr)
	}

	// 2. Render
	html, err := RenderDashboard(tmpl, payload, script)
	if err != nil {
		return nil, err
	}

	// 3. Primary output and archival copy
	written := []string{cfg.Output}
	if err := writeBytes(cfg.Output, html, "Wrote dashboard"); err != nil {
		return nil, err
	}
	if cfg.ArchiveDir != "" {
		archive := filepath.Join(cfg.ArchiveDir, ArchiveName(now))
		if err := writeBytes(archive, html, "Archived dashboard"); err != nil {
			return written, err
		}
		written = append(written, archive)
	}

	// 4. Payload side-output
	if cfg.PayloadFile != "" {
		if err := writeWithFile(cfg.PayloadFile, func(w io.Writer) error {
			return writeJSON(w, payload)
		}, "Wrote payload"); err != nil {
			return written, err
		}
		written = append(written, cfg.PayloadFile)
	}
	return written, nil
}

func writeBytes(path string, data []byte, successMsg string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	contract.LogSuccess("%s to %s", successMsg, path)
	return nil
}
