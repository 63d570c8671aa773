package middleware

import (
	"net"

	"github.com/labstack/echo/v4"

	"thriftmart/pkg/logger"
)

// ClientIPExtractor resolves c.RealIP(). With no trusted proxies the socket
// address is used and forwarding headers are ignored. Otherwise
// X-Forwarded-For is honoured only when it arrives from one of the given
// CIDRs.
func ClientIPExtractor(trustedProxies []string) echo.IPExtractor {
	var options []echo.TrustOption
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("Client IP: ignoring invalid trusted proxy %q: %v", cidr, err)
			continue
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	if len(options) == 0 {
		return echo.ExtractIPDirect()
	}

	options = append(options,
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	)
	return echo.ExtractIPFromXFFHeader(options...)
}
