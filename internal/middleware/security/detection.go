package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// probePatterns are path and query fragments typical of vulnerability
// scans against software we do not run.
var probePatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

// scannerAgents identify security scanners by User-Agent. curl and
// friends are legitimate API clients and stay off this list.
var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "scanner",
}

var unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}

// Detector flags requests matching common probe patterns and resolves
// the real client IP behind trusted proxies.
type Detector struct {
	trustedProxies []*net.IPNet
}

// NewDetector trusts the loopback and RFC 1918 ranges as proxies.
func NewDetector() *Detector {
	return &Detector{
		trustedProxies: []*net.IPNet{
			mustCIDR("127.0.0.0/8"),
			mustCIDR("10.0.0.0/8"),
			mustCIDR("172.16.0.0/12"),
			mustCIDR("192.168.0.0/16"),
		},
	}
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// DetectSuspiciousRequest reports whether the request looks like a
// scan or probe. Matches are logged by the caller, never blocked: the
// heuristics are too coarse to refuse traffic on.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	if containsProbe(r.URL.Path) || containsProbe(r.URL.RawQuery) {
		return true
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, s := range scannerAgents {
		if strings.Contains(agent, s) {
			return true
		}
	}

	for _, m := range unusualMethods {
		if r.Method == m {
			return true
		}
	}

	// Excessively long URLs (possible overflow attempt)
	if len(r.URL.String()) > 2048 {
		return true
	}

	// More than 5 proxy hops hints at header manipulation
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && r.Header.Get("X-Real-IP") != "" {
		if strings.Count(xff, ",") > 5 {
			return true
		}
	}

	return false
}

func containsProbe(s string) bool {
	s = strings.ToLower(s)
	for _, p := range probePatterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ExtractClientIP resolves the originating client IP. Forwarded
// headers are honored only when the direct peer is a trusted proxy,
// so a remote client cannot spoof its own address.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}
	parsed := net.ParseIP(direct)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return direct
	}

	if ip := forwardedClient(r); ip != "" {
		return ip
	}
	return direct
}

// forwardedClient reads the client IP from proxy headers, preferring
// the first X-Forwarded-For hop over X-Real-IP. Values that do not
// parse as IPs are ignored.
func forwardedClient(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return ""
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
