package models

// Chart response statuses understood by the charting client.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusError  = "error"
)

// Data sources reported in the history meta block and diagnostic headers.
const (
	SourceCache    = "cache"
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceEmpty    = "empty"
	SourceTimeout  = "timeout"
	SourceError    = "error"
	SourceCircuit  = "circuit"
)

// HistoryRequest carries the chart client's history query parameters. The
// range bounds stay raw strings at the binding layer: the chart client sends
// unix seconds but RFC3339 timestamps are accepted too.
type HistoryRequest struct {
	Symbol     string `query:"symbol" validate:"required"`
	Resolution string `query:"resolution" validate:"required"`
	From       string `query:"from"`
	To         string `query:"to"`
	Countback  string `query:"countback"`
}

// HistoryMeta describes which path produced the candle data.
type HistoryMeta struct {
	Source string `json:"source"`
	Symbol string `json:"symbol"`
}

// HistoryResponse is the chart-facing payload. Exactly one of the three
// statuses is set; the parallel arrays are present only for StatusOK.
type HistoryResponse struct {
	Status   string       `json:"s"`
	Times    []int64      `json:"t,omitempty"`
	Opens    []float64    `json:"o,omitempty"`
	Highs    []float64    `json:"h,omitempty"`
	Lows     []float64    `json:"l,omitempty"`
	Closes   []float64    `json:"c,omitempty"`
	Volumes  []float64    `json:"v,omitempty"`
	NextTime int64        `json:"nextTime,omitempty"`
	ErrMsg   string       `json:"errmsg,omitempty"`
	Meta     *HistoryMeta `json:"meta,omitempty"`
}

// NewOKHistory serializes candles into the parallel-array form, tagged with
// the producing source.
func NewOKHistory(symbol, source string, candles []Candle) HistoryResponse {
	r := HistoryResponse{
		Status:  StatusOK,
		Times:   make([]int64, len(candles)),
		Opens:   make([]float64, len(candles)),
		Highs:   make([]float64, len(candles)),
		Lows:    make([]float64, len(candles)),
		Closes:  make([]float64, len(candles)),
		Volumes: make([]float64, len(candles)),
		Meta:    &HistoryMeta{Source: source, Symbol: symbol},
	}
	for i, c := range candles {
		r.Times[i] = c.Bucket.Unix()
		r.Opens[i] = c.Open
		r.Highs[i] = c.High
		r.Lows[i] = c.Low
		r.Closes[i] = c.Close
		r.Volumes[i] = c.Volume
	}
	return r
}

// NewNoDataHistory builds the absence response with a hint for the next poll.
func NewNoDataHistory(nextTime int64) HistoryResponse {
	return HistoryResponse{Status: StatusNoData, NextTime: nextTime}
}

// NewErrorHistory builds the hard-failure response.
func NewErrorHistory(msg string) HistoryResponse {
	return HistoryResponse{Status: StatusError, ErrMsg: msg}
}
