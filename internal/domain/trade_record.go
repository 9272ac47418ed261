package domain

import "time"

// TradeRecord is a closed round-trip, including the names of the five
// components that produced it (for attribution across a sweep).
type TradeRecord struct {
	ID            string
	Symbol        string
	Side          Side
	EntryBar      int
	EntryDate     time.Time
	EntryPrice    float64
	ExitBar       int
	ExitDate      time.Time
	ExitPrice     float64
	Quantity      float64
	GrossPnL      float64
	Commission    float64
	SlippageCost  float64
	NetPnL        float64
	MAE           float64 // maximum adverse excursion
	MFE           float64 // maximum favorable excursion
	BarsHeld      int

	SignalName    string
	FilterName    string
	PMName        string
	ExecModelName string
	SizerName     string
}
