package hzcloud

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/hazelcast/hazelcast-go-client/hzerrors"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=ConnectionErrorKind -output=connectionerrorkind_string.go
type ConnectionErrorKind uint

const (
	UnknownFailure ConnectionErrorKind = iota
	TLSHandshakeFailure
	DiscoveryFailure
	AuthenticationFailure
	ClusterNameMismatch
	ConnectTimeout
)

type ClientError struct {
	Message string
}

func (err *ClientError) Error() string {
	return err.Message
}

// ConfigurationError reports missing or unreadable settings. It is always returned before any network call.
type ConfigurationError struct {
	ClientError
	err error
}

// ConnectionError reports a failure of the client library to reach or join the cluster.
type ConnectionError struct {
	ClientError
	Kind ConnectionErrorKind
	err  error
}

// OperationError reports a failed single map call.
type OperationError struct {
	ClientError
	Op  string
	Key string
	err error
}

// QueryError reports a failed SQL statement or result iteration.
type QueryError struct {
	ClientError
	Statement string
	err       error
}

func (err *ConfigurationError) Error() string {
	msg := "configuration invalid"
	if len(err.Message) != 0 {
		msg = fmt.Sprintf("%s: %s", msg, err.Message)
	}
	if err.err != nil {
		return fmt.Sprintf("%s: %s", msg, err.err)
	}
	return msg
}

func (err *ConfigurationError) Unwrap() error {
	return err.err
}

func (err *ConnectionError) Error() string {
	msg := err.Message
	if len(msg) == 0 {
		msg = "connection failed"
	}
	msg = fmt.Sprintf("%s [%s]", msg, err.Kind)
	if err.err != nil {
		return fmt.Sprintf("%s: %s", msg, err.err)
	}
	return msg
}

func (err *ConnectionError) Unwrap() error {
	return err.err
}

func (err *OperationError) Error() string {
	msg := fmt.Sprintf("%s failed", err.Op)
	if len(err.Key) != 0 {
		msg = fmt.Sprintf("%s for key %q", msg, err.Key)
	}
	if len(err.Message) != 0 {
		msg = fmt.Sprintf("%s: %s", msg, err.Message)
	}
	if err.err != nil {
		return fmt.Sprintf("%s: %s", msg, err.err)
	}
	return msg
}

func (err *OperationError) Unwrap() error {
	return err.err
}

func (err *QueryError) Error() string {
	msg := err.Message
	if len(msg) == 0 {
		msg = "query failed"
	}
	msg = fmt.Sprintf("%s (%s)", msg, err.Statement)
	if err.err != nil {
		return fmt.Sprintf("%s: %s", msg, err.err)
	}
	return msg
}

func (err *QueryError) Unwrap() error {
	return err.err
}

func createConfigurationError(msg string, err error) *ConfigurationError {
	return &ConfigurationError{ClientError{msg}, err}
}

func createOperationError(op string, key string, err error) *OperationError {
	return &OperationError{ClientError: ClientError{}, Op: op, Key: key, err: err}
}

func createQueryError(msg string, statement string, err error) *QueryError {
	return &QueryError{ClientError: ClientError{msg}, Statement: statement, err: err}
}

func createConnectionError(err error, clusterName string, lastFailure string) *ConnectionError {
	kind := classifyConnectionError(err)
	if (kind == ConnectTimeout || kind == UnknownFailure) && len(lastFailure) != 0 {
		if cause := classifyConnectionError(errors.New(lastFailure)); cause != ConnectTimeout && cause != UnknownFailure {
			kind = cause
			err = fmt.Errorf("%w (last attempt: %s)", err, lastFailure)
		}
	}
	var msg string
	switch kind {
	case TLSHandshakeFailure:
		msg = "tls handshake failed"
	case DiscoveryFailure:
		msg = "cluster discovery failed"
	case AuthenticationFailure:
		msg = "discovery token rejected"
	case ClusterNameMismatch:
		msg = fmt.Sprintf("cluster name %q rejected", clusterName)
	case ConnectTimeout:
		msg = "timed out connecting to cluster"
	default:
		msg = "connection failed"
	}
	return &ConnectionError{ClientError{msg}, kind, err}
}

// classifyConnectionError maps an error returned or logged while starting the hazelcast client
// to a [ConnectionErrorKind]. No credentials are sent besides the cluster name, so a member
// rejecting authentication means the cluster name does not match. The coordinator answers an
// unknown or revoked discovery token with 401, 403 or 404.
func classifyConnectionError(err error) ConnectionErrorKind {
	if err == nil {
		return UnknownFailure
	}
	msg := strings.ToLower(err.Error())

	var certErr *tls.CertificateVerificationError
	var recordErr tls.RecordHeaderError
	var authorityErr x509.UnknownAuthorityError
	var invalidErr x509.CertificateInvalidError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &recordErr) || errors.As(err, &authorityErr) ||
		errors.As(err, &invalidErr) || errors.As(err, &hostnameErr) ||
		strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") || strings.Contains(msg, "handshake") {
		return TLSHandshakeFailure
	}
	if strings.Contains(msg, "serialization") {
		return UnknownFailure
	}
	if errors.Is(err, hzerrors.ErrAuthentication) || strings.Contains(msg, "invalid credentials") ||
		strings.Contains(msg, "cluster name") {
		return ClusterNameMismatch
	}
	if code, ok := httpStatus(msg); ok {
		switch code {
		case 401, 403, 404:
			return AuthenticationFailure
		default:
			return DiscoveryFailure
		}
	}
	if strings.Contains(msg, "token") {
		return AuthenticationFailure
	}
	var urlErr *url.Error
	var dnsErr *net.DNSError
	if errors.As(err, &urlErr) || errors.As(err, &dnsErr) || strings.Contains(msg, "discovery") || strings.Contains(msg, "coordinator") {
		return DiscoveryFailure
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") {
		return ConnectTimeout
	}
	return UnknownFailure
}

// httpStatus extracts the status code of a coordinator reply formatted as "HTTP error: <code>, <text>".
func httpStatus(msg string) (int, bool) {
	const marker = "http error: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return 0, false
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ','); j >= 0 {
		rest = rest[:j]
	}
	code, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, false
	}
	return code, true
}
