package model

// MacroObservation is the latest value of one macroeconomic series, with the
// previous observation for change calculation when available.
type MacroObservation struct {
	Name        string
	SeriesID    string
	Value       float64
	Date        string
	HasPrevious bool
	Previous    float64
	Change      float64
	ChangePct   float64
	Source      string
}
