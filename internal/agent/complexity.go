package agent

import (
	"context"
	"fmt"
)

const (
	maxFileLines = 800
	maxNesting   = 6
)

// ComplexityAgent flags oversized files and deeply nested blocks. Nesting is
// approximated by brace depth, which is crude but language-agnostic.
type ComplexityAgent struct{}

func NewComplexityAgent() *ComplexityAgent { return &ComplexityAgent{} }

func (a *ComplexityAgent) Name() string { return "complexity" }

func (a *ComplexityAgent) Analyze(ctx context.Context, target string) (*Report, error) {
	type fileState struct {
		lines        int
		depth        int
		deepestLine  int
		deepestDepth int
	}
	states := make(map[string]*fileState)

	report, err := runScan(ctx, a.Name(), target, func(report *Report) lineVisitor {
		return func(file string, lineNum int, line string) {
			st := states[file]
			if st == nil {
				st = &fileState{}
				states[file] = st
			}
			st.lines = lineNum
			for _, ch := range line {
				switch ch {
				case '{':
					st.depth++
					if st.depth > st.deepestDepth {
						st.deepestDepth = st.depth
						st.deepestLine = lineNum
					}
				case '}':
					if st.depth > 0 {
						st.depth--
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	// File-level findings are emitted after the walk so each file yields at
	// most one finding per check.
	for file, st := range states {
		if st.lines > maxFileLines {
			report.Findings = append(report.Findings, Finding{
				Severity:       SeverityMedium,
				Category:       "complexity/file-size",
				File:           file,
				Description:    fmt.Sprintf("file has %d lines", st.lines),
				Recommendation: "split the file along its responsibilities",
				SourceAgent:    a.Name(),
			})
		}
		if st.deepestDepth > maxNesting {
			report.Findings = append(report.Findings, Finding{
				Severity:       SeverityMedium,
				Category:       "complexity/nesting",
				File:           file,
				Line:           st.deepestLine,
				Description:    fmt.Sprintf("nesting reaches depth %d", st.deepestDepth),
				Recommendation: "extract helpers to flatten the deepest blocks",
				SourceAgent:    a.Name(),
			})
		}
	}
	report.Metrics["findings"] = float64(len(report.Findings))
	return report, nil
}
