package format

import (
	"regexp"
	"sort"
	"strings"
)

var cardPatterns = map[string]*regexp.Regexp{
	"amex":          regexp.MustCompile(`^3[47][0-9]{13}$`),
	"bcglobal":      regexp.MustCompile(`^(6541|6556)[0-9]{12}$`),
	"carte_blanche": regexp.MustCompile(`^389[0-9]{11}$`),
	"diners_club":   regexp.MustCompile(`^3(?:0[0-5]|[68][0-9])[0-9]{11}$`),
	"discover":      regexp.MustCompile(`^(?:65[4-9][0-9]{13}|64[4-9][0-9]{13}|6011[0-9]{12}|622(?:12[6-9]|1[3-9][0-9]|[2-8][0-9][0-9]|9[01][0-9]|92[0-5])[0-9]{10})$`),
	"insta_payment": regexp.MustCompile(`^63[7-9][0-9]{13}$`),
	"jcb":           regexp.MustCompile(`^(?:2131|1800|35[0-9]{3})[0-9]{11}$`),
	"koreanloca":    regexp.MustCompile(`^9[0-9]{15}$`),
	"laser":         regexp.MustCompile(`^(6304|6706|6709|6771)[0-9]{12,15}$`),
	"maestro":       regexp.MustCompile(`^(5018|5020|5038|6304|6759|6761|6763)[0-9]{8,15}$`),
	"mastercard":    regexp.MustCompile(`^(5[1-5][0-9]{14}|2(22[1-9][0-9]{12}|2[3-9][0-9]{13}|[3-6][0-9]{14}|7[0-1][0-9]{13}|720[0-9]{12}))$`),
	"solo":          regexp.MustCompile(`^(6334|6767)([0-9]{12}|[0-9]{14}|[0-9]{15})$`),
	"switch":        regexp.MustCompile(`^(?:(4903|4905|4911|4936|6333|6759)([0-9]{12}|[0-9]{14}|[0-9]{15})|(564182|633110)([0-9]{10}|[0-9]{12}|[0-9]{13}))$`),
	"union_pay":     regexp.MustCompile(`^62[0-9]{14,17}$`),
	"visa":          regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`),
	"visa_master":   regexp.MustCompile(`^(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14})$`),
}

var cardSeparators = strings.NewReplacer("-", "", " ", "")

// CardProviders returns the known provider names, sorted.
func CardProviders() []string {
	out := make([]string, 0, len(cardPatterns))
	for k := range cardPatterns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CreditCard reports whether s is a card number of one of providers (all
// known providers when none is given) passing the Luhn check. Dashes and
// spaces are ignored; unknown provider names never match.
func CreditCard(s string, providers ...string) bool {
	s = cardSeparators.Replace(s)
	if !Luhn(s) {
		return false
	}
	if len(providers) == 0 {
		for _, re := range cardPatterns {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}
	for _, p := range providers {
		if re, ok := cardPatterns[p]; ok && re.MatchString(s) {
			return true
		}
	}
	return false
}

// Luhn reports whether the digit string s has a valid mod-10 checksum.
func Luhn(s string) bool {
	if s == "" {
		return false
	}
	sum := 0
	for i := 0; i < len(s); i++ {
		ch := s[len(s)-1-i]
		if ch < '0' || ch > '9' {
			return false
		}
		d := int(ch - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
