// Package platform contains the OS integration helpers.
package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard holds the single-instance lock. Two running copies of the
// application would race each other on the live-state file, so the second
// copy refuses to start. The guard answers every connection with the detail
// line it was given, so the refused copy can report which state file the
// running instance owns.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance attempts to bind a localhost port derived from the
// application name. A bound port means another instance is alive. detail is
// the line served to peers that probe the guard, typically the state file
// path.
func AcquireSingleInstance(appName, detail string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	guard := &InstanceGuard{listener: listener, address: address}
	go guard.serve(detail)
	return guard, nil
}

// RunningInstanceDetail asks the live instance's guard for its detail line.
func RunningInstanceDetail(appName string) (string, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	conn, err := net.DialTimeout("tcp", address, time.Second)
	if err != nil {
		return "", fmt.Errorf("probe running instance: %w", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read running instance detail: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// serve answers probes until the listener is released.
func (guard *InstanceGuard) serve(detail string) {
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			return
		}
		_, _ = fmt.Fprintln(conn, detail)
		_ = conn.Close()
	}
}

// portFromName hashes the application name into the 20000-39999 range so the
// same app always contends for the same port.
func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return minPort + int(hash.Sum32()%uint32(maxPort-minPort+1))
}
