package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// numericShape admits digits with grouping/decimal marks, an optional exponent and percent.
// Words such as "Inf" or "NaN" that strconv would accept stay text.
var numericShape = regexp.MustCompile(`^[+-]?[0-9][0-9.,\s\x{00A0}]*([eE][+-]?[0-9]+)?\s*%?$|^[+-]?[.,][0-9]+([eE][+-]?[0-9]+)?$`)

// cellValue converts one delimited/XLSX cell into a JSON-shaped value:
// nil for null tokens, float64 for numbers, []any when ListSeparator splits it, else string.
func cellValue(raw string, opt Options) any {
	v := strings.TrimSpace(raw)
	if isNull(v, opt.NullTokens) {
		return nil
	}
	if opt.ListSeparator != "" && strings.Contains(v, opt.ListSeparator) {
		parts := strings.Split(v, opt.ListSeparator)
		out := make([]any, len(parts))
		for i, p := range parts {
			p = strings.TrimSpace(p)
			if isNull(p, opt.NullTokens) {
				continue
			}
			if x, ok := parseNumeric(p, opt); ok {
				out[i] = x
				continue
			}
			out[i] = p
		}
		return out
	}
	if x, ok := parseNumeric(v, opt); ok {
		return x
	}
	return v
}

func isNull(v string, tokens []string) bool {
	for _, t := range tokens {
		if v == t {
			return true
		}
	}
	return false
}

// parseNumeric reads locale-formatted numbers such as "1.000,5", "1,000.5" or "12.5%".
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if !numericShape.MatchString(raw) {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0 && strings.Count(raw, ",") == 1 && len(raw)-cpos-1 != 3:
			// "0,5" is a decimal comma; "1,000" is grouping.
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
