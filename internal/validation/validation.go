package validation

import (
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

var (
	vehicleIDPattern    = regexp.MustCompile(`^[A-Za-z0-9~_-]+$`)
	whatsAppChatPattern = regexp.MustCompile(`^\+?[0-9]{6,15}(@(c|g)\.us)?$`)
	telegramUserPattern = regexp.MustCompile(`^@?[A-Za-z][A-Za-z0-9_]{4,31}$`)
	loginCodePattern    = regexp.MustCompile(`^[0-9]{4,8}$`)
	phoneNumberPattern  = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

// ValidateTargetURL checks that raw is an absolute http(s) URL with a host.
func ValidateTargetURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("url is not valid")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url must use http or https")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url must include a host")
	}
	return u, nil
}

// auctionHosts are the hosts the scrape endpoints may navigate to.
var auctionHosts = map[string]bool{
	"www.iaai.com":   true,
	"iaai.com":       true,
	"ca.iaai.com":    true,
	"www.copart.com": true,
	"copart.com":     true,
}

// ValidateAuctionURL checks that raw is an http(s) URL on a supported
// auction site.
func ValidateAuctionURL(raw string) (*url.URL, error) {
	u, err := ValidateTargetURL(raw)
	if err != nil {
		return nil, err
	}
	if !auctionHosts[strings.ToLower(u.Hostname())] {
		return nil, fmt.Errorf("url host %q is not a supported auction site", u.Hostname())
	}
	return u, nil
}

// ValidatePublicURL checks that raw is an http(s) URL whose host is not
// localhost or a literal loopback, private, link-local or unspecified
// address. Host names are not resolved.
func ValidatePublicURL(raw string) (*url.URL, error) {
	u, err := ValidateTargetURL(raw)
	if err != nil {
		return nil, err
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return nil, fmt.Errorf("url must not point to a local address")
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
			addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
			return nil, fmt.Errorf("url must not point to a local address")
		}
	}
	return u, nil
}

// ValidateVehicleID validates an IAAI stock id such as "42781060~US"
func ValidateVehicleID(id string) error {
	if len(id) < 1 || len(id) > 40 {
		return fmt.Errorf("vehicle ID must be between 1 and 40 characters")
	}
	if !vehicleIDPattern.MatchString(id) {
		return fmt.Errorf("vehicle ID contains invalid characters")
	}
	return nil
}

// ValidateRecipient validates a chat recipient for the given backend:
// a phone number or chat id for WhatsApp, a phone number or username for
// Telegram.
func ValidateRecipient(backend, to string) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	switch backend {
	case "whatsapp":
		if !whatsAppChatPattern.MatchString(to) {
			return fmt.Errorf("recipient must be a phone number or WhatsApp chat id")
		}
	case "telegram":
		if !phoneNumberPattern.MatchString(to) && !telegramUserPattern.MatchString(to) {
			return fmt.Errorf("recipient must be a phone number or Telegram username")
		}
	default:
		return fmt.Errorf("unknown messaging backend %q", backend)
	}
	return nil
}

// ValidatePhoneNumber validates an international phone number
func ValidatePhoneNumber(phone string) error {
	if !phoneNumberPattern.MatchString(phone) {
		return fmt.Errorf("phone number must be 6 to 15 digits with an optional leading +")
	}
	return nil
}

// ValidateLoginCode validates a login code sent by a messaging network
func ValidateLoginCode(code string) error {
	if !loginCodePattern.MatchString(code) {
		return fmt.Errorf("login code must be 4 to 8 digits")
	}
	return nil
}
