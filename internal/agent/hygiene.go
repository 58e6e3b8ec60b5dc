package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	todoPattern  = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX)\b`)
	debugPattern = regexp.MustCompile(`(?i)(fmt\.Println|console\.log|print\(|puts |System\.out\.println)`)
)

const maxLineLength = 200

// HygieneAgent flags leftovers that tend to rot: TODO markers, debug prints,
// and very long lines.
type HygieneAgent struct{}

func NewHygieneAgent() *HygieneAgent { return &HygieneAgent{} }

func (a *HygieneAgent) Name() string { return "hygiene" }

func (a *HygieneAgent) Analyze(ctx context.Context, target string) (*Report, error) {
	return runScan(ctx, a.Name(), target, func(report *Report) lineVisitor {
		return func(file string, lineNum int, line string) {
			if m := todoPattern.FindString(line); m != "" {
				report.Findings = append(report.Findings, Finding{
					Severity:       SeverityLow,
					Category:       "hygiene/todo",
					File:           file,
					Line:           lineNum,
					Description:    fmt.Sprintf("%s marker left in source", strings.ToUpper(m)),
					Recommendation: "resolve the marker or file it as a tracked item",
					SourceAgent:    a.Name(),
				})
			}
			if debugPattern.MatchString(line) && !strings.HasSuffix(file, "_test.go") {
				report.Findings = append(report.Findings, Finding{
					Severity:       SeverityInfo,
					Category:       "hygiene/debug",
					File:           file,
					Line:           lineNum,
					Description:    "possible debug print statement",
					Recommendation: "route output through the logger or remove it",
					SourceAgent:    a.Name(),
				})
			}
			if len(line) > maxLineLength {
				report.Findings = append(report.Findings, Finding{
					Severity:       SeverityInfo,
					Category:       "hygiene/long-line",
					File:           file,
					Line:           lineNum,
					Description:    fmt.Sprintf("line is %d characters", len(line)),
					Recommendation: "wrap or restructure the line",
					SourceAgent:    a.Name(),
				})
			}
		}
	})
}
