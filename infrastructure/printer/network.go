package printer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"
)

const (
	// DefaultPort is the raw-socket port thermal printers listen on.
	DefaultPort = 9100
	// DefaultTimeout bounds connect and write; a stuck printer must
	// never hold the owning request.
	DefaultTimeout = 5 * time.Second
)

var (
	ErrNotConfigured  = errors.New("printer not configured")
	ErrInvalidAddress = errors.New("invalid printer address")

	ipPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
)

// Config is explicit, injected configuration. Handlers receive a
// Client built from it; there is no package-level printer state.
type Config struct {
	Address        string `yaml:"address"`
	Port           int    `yaml:"port"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout converts the configured seconds, falling back to the default.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds == 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	return &Client{cfg: cfg}
}

// Configured reports whether an address has been set.
func (c *Client) Configured() bool {
	return c.cfg.Address != ""
}

// ValidateAddress applies the dotted-quad check the print endpoint
// performs before opening a socket.
func ValidateAddress(address string) error {
	if !ipPattern.MatchString(address) {
		return ErrInvalidAddress
	}
	return nil
}

// Print delivers a raw ESC/POS command over TCP.
func (c *Client) Print(ctx context.Context, command []byte) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	return Send(ctx, c.cfg.Address, c.cfg.Port, c.cfg.Timeout(), command)
}

// PrintTest sends the connectivity probe.
func (c *Client) PrintTest(ctx context.Context) error {
	return c.Print(ctx, BuildTestCommand())
}

// Send writes command to address:port with connect and write deadlines.
func Send(ctx context.Context, address string, port int, timeout time.Duration, command []byte) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	if port == 0 {
		port = DefaultPort
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("failed to connect to printer %s: %w", address, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	if _, err := conn.Write(command); err != nil {
		return fmt.Errorf("failed to write to printer %s: %w", address, err)
	}
	return nil
}
