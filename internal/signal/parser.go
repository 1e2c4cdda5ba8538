package signal

import (
	"regexp"
	"strconv"
	"strings"

	"sigbridge/internal/pkg/symbol"
)

// 数值 token：可选符号、小数点、科学计数法（1.455e-05 等）。
const numPattern = `([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)`

var (
	pairRe  = regexp.MustCompile(`(?i)([A-Z0-9]+/[A-Z0-9]+)`)
	dirRe   = regexp.MustCompile(`(?i)\b(LONG|SHORT)\b`)
	entryRe = regexp.MustCompile(`(?i)Entry[:\s]*` + numPattern)
	tpRe    = regexp.MustCompile(`(?i)TP[:\s]*` + numPattern)
	slRe    = regexp.MustCompile(`(?i)SL[:\s]*` + numPattern)
)

// Parse 从原始消息文本中提取信号。交易对、方向或入场价缺失时返回 ok=false，
// 调用方应将其视为"非信号消息"而不是错误。表情和换行等装饰字符被忽略。
func Parse(text string) (Signal, bool) {
	if strings.TrimSpace(text) == "" {
		return Signal{}, false
	}

	pairMatch := pairRe.FindStringSubmatch(text)
	dirMatch := dirRe.FindStringSubmatch(text)
	entryMatch := entryRe.FindStringSubmatch(text)
	if pairMatch == nil || dirMatch == nil || entryMatch == nil {
		return Signal{}, false
	}

	entry, err := strconv.ParseFloat(entryMatch[1], 64)
	if err != nil || entry <= 0 {
		return Signal{}, false
	}
	pair := symbol.Normalize(pairMatch[1])
	if pair == "" {
		return Signal{}, false
	}

	sig := Signal{
		Pair:      pair,
		Direction: Direction(strings.ToUpper(dirMatch[1])),
		Entry:     entry,
	}
	if m := tpRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			sig.TakeProfit = v
		}
	}
	if m := slRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			sig.StopLoss = v
		}
	}
	return sig, true
}
