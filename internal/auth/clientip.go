package auth

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address of the visitor behind r. X-Forwarded-For is
// only read when the peer is on the loopback interface, as the panel server is
// when it proxies to the backend. The right-most non-loopback hop wins, since
// everything left of it was supplied by the visitor.
func ClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !isLoopback(peer) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !isLoopback(hop) {
			return hop
		}
	}
	return peer
}

func isLoopback(addr string) bool {
	ip := net.ParseIP(addr)
	return ip != nil && ip.IsLoopback()
}
