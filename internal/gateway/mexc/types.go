package mexc

// 合约 API 的数字常量。side 编码同时携带方向与开/平仓语义。
const (
	sideOpenLong   = 1
	sideCloseShort = 2
	sideOpenShort  = 3
	sideCloseLong  = 4

	orderTypeMarket = 5 // 市价单

	openTypeIsolated = 1
	openTypeCross    = 2

	positionModeHedge = 1 // 多空分开持仓

	triggerGTE = 1 // 触发条件：价格 >= triggerPrice
	triggerLTE = 2 // 触发条件：价格 <= triggerPrice

	executeCycleUntilCancel = 2
)

// submitOrderRequest 对应 POST /api/v1/private/order/submit。
type submitOrderRequest struct {
	Symbol      string  `json:"symbol"`
	Vol         float64 `json:"vol"`
	Side        int     `json:"side"`
	Type        int     `json:"type"`
	OpenType    int     `json:"openType"`
	Leverage    int     `json:"leverage,omitempty"`
	Price       float64 `json:"price,omitempty"`
	ExternalOid string  `json:"externalOid,omitempty"`
	ReduceOnly  bool    `json:"reduceOnly,omitempty"`
}

// planOrderRequest 对应 POST /api/v1/private/planorder/place（条件单）。
type planOrderRequest struct {
	Symbol       string  `json:"symbol"`
	Vol          float64 `json:"vol"`
	Side         int     `json:"side"`
	OpenType     int     `json:"openType"`
	Leverage     int     `json:"leverage,omitempty"`
	TriggerPrice float64 `json:"triggerPrice"`
	TriggerType  int     `json:"triggerType"`
	ExecuteCycle int     `json:"executeCycle"`
	OrderType    int     `json:"orderType"`
	ExternalOid  string  `json:"externalOid,omitempty"`
	ReduceOnly   bool    `json:"reduceOnly,omitempty"`
}

// changeLeverageRequest 对应 POST /api/v1/private/position/change_leverage。
type changeLeverageRequest struct {
	Symbol       string `json:"symbol"`
	Leverage     int    `json:"leverage"`
	OpenType     int    `json:"openType"`
	PositionType int    `json:"positionType"` // 1 多 2 空；无持仓时必填
}

// changePositionModeRequest 对应 POST /api/v1/private/position/position_mode/change。
type changePositionModeRequest struct {
	PositionMode int `json:"positionMode"`
}
