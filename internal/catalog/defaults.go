package catalog

import "github.com/leapstack-labs/bankdash/pkg/core"

// Built-in panel identifiers.
const (
	PanelCompliance PanelID = "compliance"
	PanelDormant    PanelID = "dormant"
)

func complianceModules() []core.Module {
	return []core.Module{
		{Title: "Incomplete Contact Attempts", Count: "156", Status: core.StatusPending, StatusText: "Action Needed"},
		{Title: "Flag Candidates (Not Yet Flagged)", Count: "67", Status: core.StatusFlagged, StatusText: "Critical"},
		{Title: "Internal Ledger Candidates (Art. 3.5)", Count: "234", Status: core.StatusComplete, StatusText: "Reviewed"},
		{Title: "Statement Freeze Needed (Art. 7.3)", Count: "89", Status: core.StatusPending, StatusText: "Processing"},
		{Title: "CBUAE Transfer Candidates (Art. 8)", Count: "123", Status: core.StatusFlagged, StatusText: "Urgent"},
		{Title: "Foreign Currency Conversion", Count: "45", Status: core.StatusComplete, StatusText: "Complete"},
		{Title: "SDB Court Application Needed", Count: "12", Status: core.StatusPending, StatusText: "In Review"},
		{Title: "Unclaimed Instruments - Internal", Count: "78", Status: core.StatusFlagged, StatusText: "Action Required"},
		{Title: "Claims Processing Pending", Count: "134", Status: core.StatusComplete, StatusText: "On Track"},
		{Title: "Annual CBUAE Report Summary", Count: "1", Status: core.StatusPending, StatusText: "Due Soon"},
		{Title: "Record Retention Compliance", Count: "98%", Status: core.StatusComplete, StatusText: "Compliant"},
	}
}

func dormantModules() []core.Module {
	return []core.Module{
		{Title: "Safe Deposit Dormancy", Count: "1,247", Status: core.StatusPending, StatusText: "Pending Review"},
		{Title: "Investment Account Inactivity", Count: "892", Status: core.StatusFlagged, StatusText: "Action Required"},
		{Title: "Fixed Deposit Inactivity", Count: "543", Status: core.StatusComplete, StatusText: "Up to Date"},
		{Title: "Demand Deposit Inactivity", Count: "2,156", Status: core.StatusPending, StatusText: "Processing"},
		{Title: "Unclaimed Payment Instruments", Count: "789", Status: core.StatusFlagged, StatusText: "Critical"},
		{Title: "Eligible for CBUAE Transfer", Count: "234", Status: core.StatusComplete, StatusText: "Ready"},
		{Title: "Article 3 Process Needed", Count: "167", Status: core.StatusPending, StatusText: "In Progress"},
		{Title: "Contact Attempts Needed", Count: "445", Status: core.StatusFlagged, StatusText: "Urgent"},
		{Title: "High Value Dormant (≥25K AED)", Count: "89", Status: core.StatusFlagged, StatusText: "Priority"},
		{Title: "Dormant to Active Transitions", Count: "312", Status: core.StatusComplete, StatusText: "Monitored"},
	}
}

// Default returns the built-in catalog: the compliance and dormant analysers
// with their fallback tiles.
func Default() *Catalog {
	return New(
		Panel{
			ID:      PanelCompliance,
			Title:   "Compliance Analyser Dashboard",
			Modules: complianceModules(),
		},
		Panel{
			ID:          PanelDormant,
			Title:       "Dormant Analyser Dashboard",
			Interactive: true,
			Modules:     dormantModules(),
		},
	)
}
