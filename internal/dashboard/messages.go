package dashboard

import "github.com/MLEngineer1/smc-cash-cow/internal/report"

// AnalysisMsg carries a finished analysis.
type AnalysisMsg struct {
	Report *report.Report
}
