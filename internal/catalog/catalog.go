// Package catalog declares the standard component set for a
// network-services quote and wires it to the rate-card calculation
// functions.
package catalog

import (
	"log/slog"

	"netquote/internal/graph"
	"netquote/internal/orchestrator"
	"netquote/internal/ratecard"
	"netquote/pkg/api"
)

// Categories used by the standard catalog.
const (
	CategoryEquipment  = "equipment"
	CategoryNetwork    = "network"
	CategoryMonitoring = "monitoring"
	CategoryServices   = "services"
	CategoryContract   = "contract"
)

// Definitions returns the standard component declarations. Order is
// significant: it fixes the tie-break for equal-level components.
func Definitions() []graph.Definition {
	return []graph.Definition{
		{ID: "capital", Category: CategoryEquipment},
		{ID: "connectivity", Category: CategoryNetwork},
		{ID: "prtg", Category: CategoryMonitoring},
		{ID: "onboarding", Category: CategoryServices, DependsOn: []graph.Dependency{
			graph.On("capital"),
		}},
		{ID: "support", Category: CategoryServices, DependsOn: []graph.Dependency{
			graph.On("capital"),
			graph.On("prtg"),
		}},
		{ID: "contract1Year", Category: CategoryContract, DependsOn: []graph.Dependency{
			graph.OnAllEnabled(),
		}},
		{ID: "contract3Year", Category: CategoryContract, DependsOn: []graph.Dependency{
			graph.OnAllEnabled(),
		}},
		{ID: "contract5Year", Category: CategoryContract, DependsOn: []graph.Dependency{
			graph.OnAllEnabled(),
		}},
	}
}

// Registry returns the calculation function for each standard component.
func Registry() map[string]api.CalcFunc {
	return map[string]api.CalcFunc{
		"capital":       ratecard.CapitalEquipment,
		"connectivity":  ratecard.Connectivity,
		"prtg":          ratecard.PRTGMonitoring,
		"onboarding":    ratecard.Onboarding,
		"support":       ratecard.SupportServices,
		"contract1Year": ratecard.ContractTerm(1),
		"contract3Year": ratecard.ContractTerm(3),
		"contract5Year": ratecard.ContractTerm(5),
	}
}

// New builds an orchestrator over the standard catalog.
func New(params api.ParamsProvider, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	g, err := graph.New(Definitions())
	if err != nil {
		return nil, err
	}
	return orchestrator.New(g, Registry(), params, logger), nil
}
