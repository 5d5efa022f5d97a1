package realtime

import (
	"errors"
	"strings"

	"github.com/gorilla/websocket"
)

// CloseCause classifies why the wire connection stopped, per §9's
// REDESIGN FLAG: the source differentiated reconnect-vs-exit only by a
// substring check; here the cause is classified explicitly up front.
type CloseCause int

const (
	CloseUnknown CloseCause = iota
	CloseKeepaliveTimeout
	CloseAuthError
	CloseProtocolError
	CloseNetworkError
)

func (c CloseCause) String() string {
	switch c {
	case CloseKeepaliveTimeout:
		return "keepalive_timeout"
	case CloseAuthError:
		return "auth_error"
	case CloseProtocolError:
		return "protocol_error"
	case CloseNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Reconnectable reports whether Run should apply the short linear backoff
// and redial (keepalive timeouts and transient network errors), versus
// exit the session outright (auth and protocol errors are terminal, per
// §4.L item 4: "on other close causes, exit").
func (c CloseCause) Reconnectable() bool {
	switch c {
	case CloseKeepaliveTimeout, CloseNetworkError:
		return true
	default:
		return false
	}
}

// ClassifyCloseCause inspects a read-loop error and buckets it into one of
// the explicit close causes named in §9.
func ClassifyCloseCause(err error) CloseCause {
	if err == nil {
		return CloseUnknown
	}

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNormalClosure:
			return CloseUnknown
		case websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseServiceRestart, websocket.CloseTryAgainLater:
			return CloseKeepaliveTimeout
		case websocket.ClosePolicyViolation:
			return CloseAuthError
		case websocket.CloseProtocolError, websocket.CloseUnsupportedData,
			websocket.CloseInvalidFramePayloadData:
			return CloseProtocolError
		default:
			return CloseNetworkError
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "i/o timeout"),
		strings.Contains(msg, "keepalive"):
		return CloseKeepaliveTimeout
	case strings.Contains(msg, "unauthorized"), strings.Contains(msg, "401"),
		strings.Contains(msg, "forbidden"), strings.Contains(msg, "403"):
		return CloseAuthError
	default:
		return CloseNetworkError
	}
}
