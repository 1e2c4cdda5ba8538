package symbol

import "strings"

const DefaultMarginAsset = "USDT"

// SwapConverter 将内部 "BASE/QUOTE" 转换为 USDT 本位永续合约标识
// "BASE/QUOTE:USDT"。已带保证金后缀的输入原样返回，转换是幂等的。
type SwapConverter struct {
	MarginAsset string
}

func NewSwapConverter(marginAsset string) SwapConverter {
	return SwapConverter{
		MarginAsset: strings.ToUpper(strings.TrimSpace(marginAsset)),
	}
}

func (c SwapConverter) marginAsset() string {
	if c.MarginAsset == "" {
		return DefaultMarginAsset
	}
	return c.MarginAsset
}

// ToExchange 追加保证金资产后缀：FLOW/USDT -> FLOW/USDT:USDT。
func (c SwapConverter) ToExchange(internal string) string {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(internal), " ", ""))
	if s == "" {
		return ""
	}
	if strings.Contains(s, ":") {
		return s
	}
	return s + ":" + c.marginAsset()
}

// FromExchange 去掉保证金后缀，还原内部形式。
func (c SwapConverter) FromExchange(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	if !strings.Contains(s, "/") {
		sym := Parse(s)
		if sym.Base != "" && sym.Quote != "" {
			return sym.Internal()
		}
	}
	return s
}
