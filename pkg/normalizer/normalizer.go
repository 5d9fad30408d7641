// pkg/normalizer/normalizer.go
package normalizer

import (
	"strings"

	"StockAtlas/pkg/model"
)

// 可剥离的交易所后缀，计算自然键时去掉，展示代码保持原样
var exchangeSuffixes = map[string]bool{
	"SH": true,
	"SZ": true,
	"BJ": true,
	"HK": true,
}

// Normalize 归一化原始记录并计算自然键。纯函数，对畸形输入不报错，
// 而是清空自然键将记录标记为无效，由流水线丢弃并记日志。
func Normalize(raw model.RawEntity) model.RawEntity {
	raw.Source = strings.TrimSpace(raw.Source)
	raw.Code = strings.TrimSpace(raw.Code)
	raw.DisplayName = strings.TrimSpace(raw.DisplayName)
	raw.Title = strings.TrimSpace(raw.Title)
	raw.Content = strings.TrimSpace(raw.Content)

	switch raw.Kind {
	case model.KindStock:
		raw.NaturalKey = normalizeStockKey(raw.Code)
		if raw.Market == "" && raw.NaturalKey != "" {
			raw.Market = inferMarket(raw.NaturalKey)
		}
	case model.KindHotspot:
		// 热点的自然键是来源侧的事件标识
		raw.NaturalKey = raw.Code
	default:
		raw.NaturalKey = ""
	}

	return raw
}

// normalizeStockKey 由展示代码计算股票自然键：
// 去掉交易所后缀，字母前缀统一大写。无法识别时返回空串。
func normalizeStockKey(code string) string {
	if code == "" {
		return ""
	}

	base := code
	if i := strings.LastIndexByte(code, '.'); i >= 0 {
		suffix := strings.ToUpper(code[i+1:])
		if !exchangeSuffixes[suffix] {
			// 未知后缀视为畸形代码
			return ""
		}
		base = code[:i]
	}
	if base == "" {
		return ""
	}

	// 大写字母前缀（如 bk0475 -> BK0475），数字部分原样保留
	end := 0
	for end < len(base) && isLetter(base[end]) {
		end++
	}
	prefix := strings.ToUpper(base[:end])
	digits := base[end:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return ""
		}
	}

	return prefix + digits
}

// inferMarket 按代码段推断市场板块，无法识别时返回空
func inferMarket(key string) model.Market {
	switch {
	case strings.HasPrefix(key, "600"), strings.HasPrefix(key, "601"),
		strings.HasPrefix(key, "603"), strings.HasPrefix(key, "605"),
		strings.HasPrefix(key, "000"), strings.HasPrefix(key, "001"):
		return model.MarketMain
	case strings.HasPrefix(key, "002"), strings.HasPrefix(key, "003"):
		return model.MarketSME
	case strings.HasPrefix(key, "300"), strings.HasPrefix(key, "301"):
		return model.MarketChiNext
	case strings.HasPrefix(key, "688"), strings.HasPrefix(key, "689"):
		return model.MarketSTAR
	case strings.HasPrefix(key, "43"), strings.HasPrefix(key, "83"),
		strings.HasPrefix(key, "87"):
		return model.MarketNEEQ
	}
	return ""
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
