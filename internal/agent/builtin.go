package agent

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extensions the built-in agents consider source files.
var sourceExtensions = map[string]struct{}{
	".go": {}, ".py": {}, ".js": {}, ".ts": {}, ".rb": {}, ".java": {},
	".rs": {}, ".c": {}, ".h": {}, ".cpp": {}, ".sh": {}, ".sql": {},
	".yaml": {}, ".yml": {}, ".json": {}, ".env": {},
}

var skipDirs = map[string]struct{}{
	".git": {}, "node_modules": {}, "vendor": {}, "dist": {}, "build": {},
}

// lineVisitor receives each line of each source file under the target.
type lineVisitor func(file string, lineNum int, line string)

// walkSource scans every source file under target line by line. Cancellation
// is checked per file; unreadable files are skipped rather than failing the
// whole scan.
func walkSource(ctx context.Context, target string, visit lineVisitor) (filesScanned int, err error) {
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		rel, relErr := filepath.Rel(target, path)
		if relErr != nil {
			rel = path
		}

		filesScanned++
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			visit(rel, lineNum, scanner.Text())
		}
		return nil
	})
	return filesScanned, err
}

// runScan wraps a walk into a timed Report for the named agent.
func runScan(ctx context.Context, name, target string, visit func(report *Report) lineVisitor) (*Report, error) {
	start := time.Now()
	report := &Report{Agent: name, Metrics: map[string]float64{}}

	files, err := walkSource(ctx, target, visit(report))
	report.Duration = time.Since(start)
	report.Metrics["files_scanned"] = float64(files)
	report.Metrics["findings"] = float64(len(report.Findings))
	if err != nil {
		return nil, err
	}
	return report, nil
}
