// Package exchange maps bare six-digit stock codes to exchange-qualified
// symbols. Three providers each carry their own qualification rule; the rule
// tables are intentionally separate because the prefix sets and tag spellings
// differ between providers.
package exchange

import (
	"fmt"
	"strings"

	"github.com/SHMoney2021/myquote/internal/model"
)

// quotePrefixes 实时行情源的沪市前缀表
var quotePrefixes = []string{
	"50", "51", "60", "90", "110", "113",
	"132", "204", "5", "6", "9", "7",
}

// historyPrefixes 历史行情源的沪市前缀表
var historyPrefixes = []string{
	"50", "51", "60", "90", "110", "113",
	"132", "204", "5", "6", "9", "7",
}

// snapshotPrefixes 快照源的沪市前缀表（科创板 68 归沪市）
var snapshotPrefixes = []string{"60", "68", "5", "9"}

func hasAnyPrefix(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func checkCode(code string) error {
	if len(code) < 6 {
		return fmt.Errorf("%w: %q is shorter than 6 characters", model.ErrInvalidCode, code)
	}
	return nil
}

// QuoteSymbol qualifies a code for the realtime quote providers. A code that
// already starts with a recognized tag (sh/sz/zz) passes through: the first
// two characters and the last six digits are kept. Otherwise the bare code is
// classified against the quote prefix table.
func QuoteSymbol(code string) (string, error) {
	if err := checkCode(code); err != nil {
		return "", err
	}
	if strings.HasPrefix(code, "sh") || strings.HasPrefix(code, "sz") || strings.HasPrefix(code, "zz") {
		return code[:2] + code[len(code)-6:], nil
	}
	if hasAnyPrefix(code, quotePrefixes) {
		return "sh" + code[len(code)-6:], nil
	}
	return "sz" + code[len(code)-6:], nil
}

// HistorySymbol qualifies a code for the daily-history provider: the last six
// digits suffixed with ".SH" or ".SZ".
func HistorySymbol(code string) (string, error) {
	if err := checkCode(code); err != nil {
		return "", err
	}
	bare := code[len(code)-6:]
	if hasAnyPrefix(bare, historyPrefixes) {
		return bare + ".SH", nil
	}
	return bare + ".SZ", nil
}

// SnapshotSymbol qualifies a code for the snapshot provider. Same suffix
// spelling as HistorySymbol but a different prefix set.
func SnapshotSymbol(code string) (string, error) {
	if err := checkCode(code); err != nil {
		return "", err
	}
	bare := code[len(code)-6:]
	if hasAnyPrefix(bare, snapshotPrefixes) {
		return bare + ".SH", nil
	}
	return bare + ".SZ", nil
}
