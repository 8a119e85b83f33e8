package flipper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"
)

// ErrCommandFailed marks a command the device reported as failed after all
// retries.
var ErrCommandFailed = errors.New("flipper command failed")

// Banner and prompt fragments the device interleaves with command output.
var noiseFragments = []string{
	"Welcome to Flipper Zero",
	"Firmware version",
	">:",
}

// Client drives the device CLI over a serial connection: one command per
// call, line-terminated responses, pacing between commands.
type Client struct {
	port       serial.Port
	limiter    *RateLimiter
	maxRetries int
	timeout    time.Duration
}

type ClientOptions struct {
	BaudRate          int
	MaxRetries        int
	CommandsPerSecond int
	Timeout           time.Duration
}

func Dial(portName string, opts ClientOptions) (*Client, error) {
	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	port, err := serial.Open(portName, &serial.Mode{BaudRate: opts.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(50 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, err
	}

	return &Client{
		port:       port,
		limiter:    NewRateLimiter(opts.CommandsPerSecond),
		maxRetries: opts.MaxRetries,
		timeout:    opts.Timeout,
	}, nil
}

func (c *Client) Close() error {
	return c.port.Close()
}

// SendCommand writes one command and collects the response until a newline
// arrives or the timeout elapses. Banner noise is filtered out; responses
// carrying Error:/Failed: markers are reported as ErrCommandFailed.
func (c *Client) SendCommand(command string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	c.limiter.WaitTurn()

	if _, err := c.port.Write([]byte(command + "\r\n")); err != nil {
		return "", fmt.Errorf("send %q: %w", command, err)
	}

	deadline := time.Now().Add(timeout)
	var response strings.Builder
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, err := c.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read response to %q: %w", command, err)
		}
		if n == 0 {
			continue
		}
		chunk := string(buf[:n])
		response.WriteString(chunk)
		if strings.Contains(chunk, "\n") {
			break
		}
	}

	return FilterResponse(command, response.String())
}

// SendCommandWithRetry retries a failed command with a short pause between
// attempts.
func (c *Client) SendCommandWithRetry(command string, timeout time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		response, err := c.SendCommand(command, timeout)
		if err == nil {
			return response, nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	return "", fmt.Errorf("%q failed after %d attempts: %w", command, c.maxRetries, lastErr)
}

// FilterResponse strips banner noise and surfaces device-reported failures.
func FilterResponse(command, raw string) (string, error) {
	response := strings.TrimSpace(raw)
	for _, fragment := range noiseFragments {
		if strings.Contains(response, fragment) {
			return "", nil
		}
	}
	if strings.Contains(response, "Error:") || strings.Contains(response, "Failed:") {
		return "", fmt.Errorf("%w: %q: %s", ErrCommandFailed, command, response)
	}
	return response, nil
}

// CreateDirectory creates every component of a device-side path, tolerating
// components that already exist.
func (c *Client) CreateDirectory(devicePath string) error {
	components := strings.Split(strings.Trim(devicePath, "/"), "/")
	for i := 1; i <= len(components); i++ {
		current := "/" + strings.Join(components[:i], "/")
		response, err := c.SendCommandWithRetry("storage mkdir "+current, 0)
		if err != nil {
			return fmt.Errorf("mkdir %s: %w", current, err)
		}
		if strings.Contains(response, "Storage error:") && !strings.Contains(strings.ToLower(response), "already exists") {
			return fmt.Errorf("mkdir %s: %s", current, response)
		}
	}
	return nil
}

// CloseRunningApps closes device applications that hold the IR subsystem.
func (c *Client) CloseRunningApps() {
	_, _ = c.SendCommandWithRetry("loader list", 0)
	_, _ = c.SendCommandWithRetry("loader close infrared", 0)
	_, _ = c.SendCommandWithRetry("loader close ir_transmitter", 0)
}

// FileExists probes a device-side file with a short timeout.
func (c *Client) FileExists(devicePath string, timeout time.Duration) bool {
	response, err := c.SendCommand("storage info "+devicePath, timeout)
	return err == nil && !strings.Contains(response, "File not found")
}

// FirmwareVersion asks the device CLI for its version string.
func (c *Client) FirmwareVersion() (string, error) {
	return c.SendCommandWithRetry("version", 0)
}
