// Package format holds the string format predicates behind the string
// validator: e-mail, phone, URL, IP address and credit card numbers.
package format

import (
	"net/mail"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

// IPVersion restricts IP to one address family.
type IPVersion string

const (
	IPAny IPVersion = ""
	IPv4  IPVersion = "ipv4"
	IPv6  IPVersion = "ipv6"
)

// IP reports whether s is an address of the requested version. IPv6 zones
// are accepted; IPv4-mapped IPv6 addresses count as IPv6.
func IP(s string, v IPVersion) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	switch v {
	case IPv4:
		return addr.Is4()
	case IPv6:
		return addr.Is6()
	}
	return true
}

// Email reports whether s is a bare address such as "user@example.com".
// Display names and angle brackets are rejected.
func Email(s string) bool {
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s || a.Name != "" {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".") && !strings.HasSuffix(s, ".")
}

// URL reports whether s is an absolute URL with a scheme and a host.
func URL(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// Phone reports whether s is an international or national phone number of
// 8 to 15 digits, with an optional leading + and common separators.
func Phone(s string) bool {
	return phoneRe.MatchString(phoneSeparators.Replace(strings.TrimSpace(s)))
}
