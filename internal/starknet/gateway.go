package starknet

import (
	"strings"
)

// Endpoints holds the two network URLs every command is pointed at: the
// submission gateway and the read-only feeder gateway.
type Endpoints struct {
	Gateway       string
	FeederGateway string
}

// NewEndpoints normalizes and pairs the gateway URLs.
func NewEndpoints(gateway, feederGateway string) Endpoints {
	return Endpoints{
		Gateway:       NormalizeURL(gateway),
		FeederGateway: NormalizeURL(feederGateway),
	}
}

// NormalizeURL trims whitespace and trailing slashes so that flag values
// are stable regardless of how the operator wrote the URL.
func NormalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// logRewrites maps noisy CLI diagnostics to readable equivalents.
var logRewrites = [][2]string{
	{"Error: BadRequest: ", ""},
	{"Got BlockNotFound exception during the execution.", "The transaction's block is not available yet."},
	{"Unknown starknet error.", "The gateway returned an unrecognized error."},
}

// AdaptLog rewrites known noisy substrings of a CLI diagnostic and strips
// Python traceback frames down to the final message line.
func AdaptLog(diagnostic string) string {
	s := strings.TrimSpace(diagnostic)
	if idx := strings.Index(s, "Traceback (most recent call last)"); idx >= 0 {
		head := strings.TrimSpace(s[:idx])
		lines := strings.Split(strings.TrimSpace(s[idx:]), "\n")
		tail := strings.TrimSpace(lines[len(lines)-1])
		switch {
		case head == "":
			s = tail
		case tail == "":
			s = head
		default:
			s = head + "\n" + tail
		}
	}
	for _, rewrite := range logRewrites {
		s = strings.ReplaceAll(s, rewrite[0], rewrite[1])
	}
	return strings.TrimSpace(s)
}
