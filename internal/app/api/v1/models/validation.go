package models

import (
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// endpoint accepts host:port where host is a hostname, an IPv4 address or a bracketed IPv6 address.
var endpoint validator.Func = func(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil || host == "" {
		return false
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}
	return isHostname(host)
}

func isHostname(host string) bool {
	host = strings.TrimSuffix(host, ".")
	if len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return false
			}
		}
	}
	return true
}

// RegisterValidations adds the custom validation tags used by the request models.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("endpoint", endpoint)
}
