package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/render"
)

// writeReport renders every match of the referee log at logPath into a
// single HTML page at outPath.
func (a *app) writeReport(logPath, outPath string) error {
	in, err := os.Open(logPath)
	if err != nil {
		return fmt.Errorf("failed to open referee log: %w", err)
	}
	defer in.Close()

	parsed, err := hex.ParseLog(in)
	if err != nil {
		return fmt.Errorf("failed to parse referee log: %w", err)
	}
	a.prometheus.RecordLogParsed(len(parsed.Matches))
	for i := range parsed.Matches {
		if err := parsed.Matches[i].ReplayErr; err != nil {
			a.logger.Warn("Referee log replay problem", "match", parsed.Matches[i].MatchID, "error", err)
		}
	}

	results, err := a.renderer.RenderAll(parsed.Matches)
	if err != nil {
		a.logger.Warn("Some matches could not be rendered", "error", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	w := bufio.NewWriter(out)

	report := render.NewReport(a.cfg.Render.ReportTitle, results)
	if err := render.WriteReport(w, report); err != nil {
		out.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.prometheus.RecordReport(len(results))
	a.publishCacheStats()
	a.logger.Info("Wrote report", "report", report.ID, "path", outPath, "matches", len(results))
	return nil
}
