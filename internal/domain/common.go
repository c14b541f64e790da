package domain

// Direction is the option direction of a trade recommendation.
type Direction string

const (
	Call Direction = "CALL"
	Put  Direction = "PUT"
)

// Side is the underlying direction of a setup before it maps to an option.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// ToDirection maps a setup side to the option direction used for the trade.
func (s Side) ToDirection() Direction {
	if s == Short {
		return Put
	}
	return Call
}

// Bias is the directional trend classification derived from the EMA pair.
type Bias string

const (
	BiasBull    Bias = "bull"
	BiasBear    Bias = "bear"
	BiasNeutral Bias = "neutral"
)

// SessionID identifies one of the liquidity session windows.
type SessionID string

const (
	SessionAsia   SessionID = "asia"
	SessionLondon SessionID = "london"
	SessionNY     SessionID = "new-york"
	SessionOff    SessionID = "off"
)

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss   CloseReason = "SL"
	CloseReasonTakeProfit CloseReason = "TP"
	CloseReasonTrendFlip  CloseReason = "TREND_FLIP"
	CloseReasonTimeLimit  CloseReason = "TIME_LIMIT"
	CloseReasonSessionEnd CloseReason = "SESSION_END"
	CloseReasonManual     CloseReason = "MANUAL"
	CloseReasonUnknown    CloseReason = "Unknown"
)

// TradeResult classifies a closed trade for the journal.
type TradeResult string

const (
	ResultWin       TradeResult = "win"
	ResultLoss      TradeResult = "loss"
	ResultBreakeven TradeResult = "breakeven"
)

// ResultFromPnL classifies a trade by its realized points.
func ResultFromPnL(pnlPoints float64) TradeResult {
	switch {
	case pnlPoints > 0:
		return ResultWin
	case pnlPoints < 0:
		return ResultLoss
	default:
		return ResultBreakeven
	}
}
