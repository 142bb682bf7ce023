package report

// DailyPoint is one day of a monthly chart. Volume is a fixed-point
// decimal string.
type DailyPoint struct {
	Date   string `json:"date"`
	Volume string `json:"volume"`
	Count  int64  `json:"count"`
}

// ChartData is the aggregate a monthly report is built from. Money fields
// are decimal strings so the chart survives JSON storage without float
// drift.
type ChartData struct {
	Month           string            `json:"month"`
	Role            string            `json:"role"`
	TotalVolume     string            `json:"total_volume"`
	TxCount         int64             `json:"tx_count"`
	AvgTx           string            `json:"avg_tx"`
	ActiveUsers     int64             `json:"active_users"`
	ActiveMerchants int64             `json:"active_merchants"`
	Daily           []DailyPoint      `json:"daily"`
	Categories      map[string]string `json:"categories"`
}

// Renderer turns chart data into a downloadable document. Layout is a
// collaborator concern; the service only stores and serves the bytes.
type Renderer interface {
	Render(chart ChartData) ([]byte, error)
}
