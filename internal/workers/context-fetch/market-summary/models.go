// internal/workers/context-fetch/market-summary/models.go
package marketsummary

// Snapshot is the parsed market-summary page. A nil section means its
// markup was absent.
type Snapshot struct {
	Index    *IndexData
	Turnover *TurnoverData
	Gainers  []Mover
	Losers   []Mover

	// HasGainers/HasLosers record the section container, which may be
	// present with no rows.
	HasGainers bool
	HasLosers  bool
}

type IndexData struct {
	Value  string
	Change string
}

type TurnoverData struct {
	Volume string
	Value  string
}

type Mover struct {
	Name   string
	Change string
}
