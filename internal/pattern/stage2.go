package pattern

import (
	"net/netip"

	"github.com/ciphertechsolutions/locke/pkg/models"
)

// stage2Patterns are the richer detectors run against stage-1 survivors:
// network indicators, encoded blobs and plain readable text.
func stage2Patterns() []*Pattern {
	return []*Pattern{
		{
			Stage:       2,
			Description: "IPv4 address",
			Expr:        `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
			Weight:      100,
			Filter:      ipv4Filter,
		},
		{
			Stage:       2,
			Description: "Email address",
			NoCase:      true,
			Expr: `\b[a-z0-9._%+-]+@(?:[a-z0-9-]+\.)+` +
				`(?:[a-z]{2,12}|xn--[a-z0-9]{4,18})\b`,
			Weight: 10,
		},
		{
			Stage:       2,
			Description: "Common URL (http/https/ftp)",
			Expr: `(http|https|ftp)\://[a-zA-Z0-9\-\.]+\.[a-zA-Z]{2,3}` +
				`(:[a-zA-Z0-9]*)?/?([a-zA-Z0-9\-\._\?\,\'/\\\+&amp;%\$#\=~])` +
				`*[^\.\,\)\(\s]`,
			Weight: 10000,
		},
		{
			Stage:       2,
			Description: "IRC protocol strings",
			NoCase:      true,
			Literals:    []string{"PRIVMSG", "CONNECT", "DCC", "XDCC"},
			Weight:      100,
		},
		{
			Stage:       2,
			Description: "Hexadecimal string blob (>= 32 bytes)",
			NoCase:      true,
			Expr:        `[a-f0-9]{32,}`,
		},
		{
			Stage:       2,
			Description: "Base64 string blob",
			Expr: `(?:[A-Za-z0-9+/]{4}){2,}(?:[A-Za-z0-9+/]{2}` +
				`[AEIMQUYcgkosw048]=|[A-Za-z0-9+/][AQgw]==)`,
		},
		{
			Stage:       2,
			Description: "Any word longer >= 6 characters",
			Expr:        `\b(?:[A-Z]{6,}|[A-Za-z][a-z]{5,})\b`,
		},
		{
			Stage:       2,
			Description: "Any sentence of >= 3 words",
			Expr:        `([A-Za-z]{2,}\s){2,}[A-Za-z]{2,}`,
		},
		{
			Stage:       2,
			Description: "CamelCase word",
			Expr:        `\b([A-Z][a-z0-9]{2,}){2,}\b`,
		},
		// 32 to 1024 bytes between the magics, split in two repeats
		// because a single repeat bound above 1000 does not compile.
		{
			Stage:       2,
			Description: "MZ header followed by PE header",
			Expr:        `(?s)MZ.{32,1000}.{0,24}PE\x00\x00`,
			Weight:      100,
		},
	}
}

// ipv4Filter keeps only candidates that parse as real IPv4 addresses, so
// dotted quads like 999.1.2.3 never reach the report. Rejecting bogon and
// reserved ranges here would be easy but is deliberately not done: malware
// does use them.
func ipv4Filter(m models.Match) bool {
	addr, err := netip.ParseAddr(string(m.Data))
	if err != nil {
		return false
	}
	return addr.Is4()
}

// Builtin assembles and validates the full built-in pattern set.
func Builtin() (*Registry, error) {
	return NewRegistry(append(stage1Patterns(), stage2Patterns()...)...)
}
