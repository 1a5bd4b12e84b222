package grape

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/reoring/grape/i18n"
	"github.com/reoring/grape/internal/format"
)

// StringValidator validates strings. Lengths count runes.
type StringValidator struct {
	Chain[*StringValidator]
	strict bool
}

// NewString returns a string validator. A non-strict validator converts
// bool and number scalars to their string form.
func NewString(strict bool) *StringValidator {
	s := &StringValidator{strict: strict}
	s.init(s)
	s.add(func(c *Context) {
		v := c.Value()
		if v.Kind() == KindString {
			return
		}
		if !strict && v.IsScalar() {
			str, err := cast.ToStringE(v.Interface())
			if err == nil {
				c.Mutate(String(str))
				return
			}
		}
		c.Report(i18n.T("string", nil), "string")
	})
	return s
}

// Trim removes leading and trailing whitespace.
func (s *StringValidator) Trim() *StringValidator { return s.transform(strings.TrimSpace) }

// Lowercase converts to lower case.
func (s *StringValidator) Lowercase() *StringValidator { return s.transform(strings.ToLower) }

// Uppercase converts to upper case.
func (s *StringValidator) Uppercase() *StringValidator { return s.transform(strings.ToUpper) }

func (s *StringValidator) Min(n int) *StringValidator {
	return s.size("string.min", "min", n, func(l int) bool { return l >= n })
}

func (s *StringValidator) Max(n int) *StringValidator {
	return s.size("string.max", "max", n, func(l int) bool { return l <= n })
}

func (s *StringValidator) Length(n int) *StringValidator {
	return s.size("string.length", "length", n, func(l int) bool { return l == n })
}

// Prefix requires the string to start with p.
func (s *StringValidator) Prefix(p string, caseSensitive bool) *StringValidator {
	return s.match("string.prefix", "prefix", map[string]string{"prefix": p}, func(str string) bool {
		return strings.HasPrefix(fold(str, caseSensitive), fold(p, caseSensitive))
	})
}

// Suffix requires the string to end with p.
func (s *StringValidator) Suffix(p string, caseSensitive bool) *StringValidator {
	return s.match("string.suffix", "suffix", map[string]string{"suffix": p}, func(str string) bool {
		return strings.HasSuffix(fold(str, caseSensitive), fold(p, caseSensitive))
	})
}

// Contains requires sub to appear in the string.
func (s *StringValidator) Contains(sub string, caseSensitive bool) *StringValidator {
	return s.match("string.contains", "contains", map[string]string{"substring": sub}, func(str string) bool {
		return strings.Contains(fold(str, caseSensitive), fold(sub, caseSensitive))
	})
}

// CharsetOptions lists the separators tolerated by Alphabetic, Numeric and
// Alphanumeric.
type CharsetOptions struct {
	AllowWhitespace  bool
	AllowDashes      bool
	AllowUnderscores bool
}

// Alphabetic requires letters only.
func (s *StringValidator) Alphabetic(o CharsetOptions) *StringValidator {
	return s.match("string.alphabetic", "alphabetic", nil, charset(o, unicode.IsLetter))
}

// Numeric requires decimal digits only.
func (s *StringValidator) Numeric(o CharsetOptions) *StringValidator {
	return s.match("string.numeric", "numeric", nil, charset(o, unicode.IsDigit))
}

// Alphanumeric requires letters and digits only.
func (s *StringValidator) Alphanumeric(o CharsetOptions) *StringValidator {
	return s.match("string.alphanumeric", "alphanumeric", nil, charset(o, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}))
}

func (s *StringValidator) NoWhitespace() *StringValidator {
	return s.match("string.no_whitespace", "no_whitespace", nil, func(str string) bool {
		return !strings.ContainsFunc(str, unicode.IsSpace)
	})
}

func (s *StringValidator) Email() *StringValidator {
	return s.match("string.email", "email", nil, format.Email)
}

func (s *StringValidator) Phone() *StringValidator {
	return s.match("string.phone", "phone", nil, format.Phone)
}

// JSON requires a well-formed JSON document.
func (s *StringValidator) JSON() *StringValidator {
	return s.match("string.json", "json", nil, func(str string) bool { return json.Valid([]byte(str)) })
}

// URL requires an absolute URL. Reachability is checked by probe.ActiveURL.
func (s *StringValidator) URL() *StringValidator {
	return s.match("string.url", "url", nil, format.URL)
}

// CreditCard requires a card number of one of providers, any known provider
// when none is given.
func (s *StringValidator) CreditCard(providers ...string) *StringValidator {
	return s.match("string.credit_card", "credit_card", nil, func(str string) bool {
		return format.CreditCard(str, providers...)
	})
}

// IP requires an IP address; version is "ipv4", "ipv6" or "" for either.
func (s *StringValidator) IP(version string) *StringValidator {
	return s.match("string.ip", "ip", nil, func(str string) bool {
		return format.IP(str, format.IPVersion(version))
	})
}

// UUID requires a UUID in its canonical or braced/urn form.
func (s *StringValidator) UUID() *StringValidator {
	return s.match("string.uuid", "uuid", nil, func(str string) bool {
		return uuid.Validate(str) == nil
	})
}

// Empty requires an empty string, blank strings too when ignoreWhitespace.
func (s *StringValidator) Empty(ignoreWhitespace bool) *StringValidator {
	return s.match("string.empty", "empty", nil, func(str string) bool {
		if ignoreWhitespace {
			str = strings.TrimSpace(str)
		}
		return str == ""
	})
}

func (s *StringValidator) NotEmpty() *StringValidator {
	return s.match("string.not_empty", "not_empty", nil, func(str string) bool { return str != "" })
}

// Pattern requires a match of re anywhere in the string; anchor it to match
// the whole value.
func (s *StringValidator) Pattern(re *regexp.Regexp) *StringValidator {
	return s.match("string.pattern", "pattern", nil, re.MatchString)
}

// OneOf requires one of values.
func (s *StringValidator) OneOf(values ...string) *StringValidator {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	data := map[string]string{"values": strings.Join(values, ", ")}
	return s.match("string.one_of", "one_of", data, func(str string) bool {
		_, ok := allowed[str]
		return ok
	})
}

func (s *StringValidator) transform(f func(string) string) *StringValidator {
	return s.add(func(c *Context) {
		if str, ok := c.Value().AsString(); ok {
			c.Mutate(String(f(str)))
		}
	})
}

func (s *StringValidator) size(code, name string, n int, ok func(int) bool) *StringValidator {
	return s.match(code, name, map[string]string{name: strconv.Itoa(n)}, func(str string) bool {
		return ok(len([]rune(str)))
	})
}

// match adds a rule reporting code when pred rejects the string value.
func (s *StringValidator) match(code, rule string, data map[string]string, pred func(string) bool) *StringValidator {
	return s.add(func(c *Context) {
		str, _ := c.Value().AsString()
		if !pred(str) {
			c.Report(i18n.T(code, data), rule)
		}
	})
}

func fold(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

func charset(o CharsetOptions, allowed func(rune) bool) func(string) bool {
	return func(str string) bool {
		if str == "" {
			return false
		}
		for _, r := range str {
			switch {
			case allowed(r):
			case o.AllowWhitespace && unicode.IsSpace(r):
			case o.AllowDashes && r == '-':
			case o.AllowUnderscores && r == '_':
			default:
				return false
			}
		}
		return true
	}
}
