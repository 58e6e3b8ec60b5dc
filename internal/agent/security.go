package agent

import (
	"context"
	"fmt"
	"regexp"
)

// Security-sensitive patterns grouped by category.
var securityChecks = []struct {
	category       string
	pattern        *regexp.Regexp
	severity       Severity
	recommendation string
}{
	{
		category:       "secrets",
		pattern:        regexp.MustCompile(`(?i)(api.?key|secret|password|token)\s*[:=]\s*["'][^"']+["']`),
		severity:       SeverityCritical,
		recommendation: "move the credential to the environment or a secret store",
	},
	{
		category:       "subprocess",
		pattern:        regexp.MustCompile(`(?i)(exec\.Command|os\.system|subprocess|child_process|shell_exec|eval\()`),
		severity:       SeverityHigh,
		recommendation: "validate and constrain inputs before invoking a subprocess",
	},
	{
		category:       "tls",
		pattern:        regexp.MustCompile(`(?i)(InsecureSkipVerify|disable.?ssl|verify.?ssl.*false)`),
		severity:       SeverityHigh,
		recommendation: "enable certificate verification",
	},
	{
		category:       "sql",
		pattern:        regexp.MustCompile(`(?i)(db\.Exec|db\.Query|cursor\.execute)\([^)]*(\+|%s.*%|Sprintf)`),
		severity:       SeverityHigh,
		recommendation: "use parameterized queries instead of string building",
	},
}

// SecurityAgent flags security-sensitive lines in a source tree.
type SecurityAgent struct{}

func NewSecurityAgent() *SecurityAgent { return &SecurityAgent{} }

func (a *SecurityAgent) Name() string { return "security" }

func (a *SecurityAgent) Analyze(ctx context.Context, target string) (*Report, error) {
	return runScan(ctx, a.Name(), target, func(report *Report) lineVisitor {
		return func(file string, lineNum int, line string) {
			for _, check := range securityChecks {
				if check.pattern.MatchString(line) {
					report.Findings = append(report.Findings, Finding{
						Severity:       check.severity,
						Category:       "security/" + check.category,
						File:           file,
						Line:           lineNum,
						Description:    fmt.Sprintf("%s pattern matched", check.category),
						Recommendation: check.recommendation,
						SourceAgent:    a.Name(),
					})
					break
				}
			}
		}
	})
}
