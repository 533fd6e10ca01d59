package email

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pblonline/ops-dashboard/internal/types"
)

// checkReferenceURL accepts only http(s) pages on public addresses. The
// reference page is fetched by the server, so loopback, private and
// link-local targets (cloud metadata included) are refused.
func checkReferenceURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("%w: referenceUrl must be an http or https URL", types.ErrValidation)
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("%w: referenceUrl host %s is not public", types.ErrValidation, host)
	}

	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return fmt.Errorf("%w: referenceUrl host %s does not resolve", types.ErrValidation, host)
		}
		for _, a := range addrs {
			ips = append(ips, a.IP)
		}
	}
	for _, ip := range ips {
		if !publicIP(ip) {
			return fmt.Errorf("%w: referenceUrl host %s is not public", types.ErrValidation, host)
		}
	}
	return nil
}

func publicIP(ip net.IP) bool {
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() &&
		!ip.IsLinkLocalUnicast() && !ip.IsLinkLocalMulticast() && !ip.IsMulticast()
}
