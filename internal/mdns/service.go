// Package mdns provides mDNS/Zeroconf service advertisement for ReadNest server discovery.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the mDNS service type for ReadNest servers.
	ServiceType = "_readnest._tcp"

	// APIVersion is the current API version advertised in TXT records.
	APIVersion = "v1"

	// ServerVersion is the current server version advertised in TXT records.
	ServerVersion = "1.0.0"
)

// Advertisement carries the server identity published in TXT records.
type Advertisement struct {
	ID        string
	Name      string
	RemoteURL string
}

// Service manages mDNS advertisement via the Avahi daemon.
// It allows local network discovery of the server without manual configuration.
type Service struct {
	server *avahi.Server
	group  *avahi.EntryGroup
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// Start begins advertising the server via mDNS.
// It should be called after the HTTP server is running.
//
// Returns an error if Avahi is unavailable. Errors are typically
// non-fatal (no D-Bus in containers, avahi-daemon not running).
func (s *Service) Start(ad Advertisement, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop existing advertisement if running (for restart scenarios)
	s.closeLocked()

	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		return fmt.Errorf("connect avahi daemon: %w", err)
	}

	group, err := server.EntryGroupNew()
	if err != nil {
		server.Close()
		return fmt.Errorf("create entry group: %w", err)
	}

	// Instance name on the local network
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "readnest-server"
	}

	txt := [][]byte{
		[]byte("id=" + ad.ID),
		[]byte("name=" + ad.Name),
		[]byte("version=" + ServerVersion),
		[]byte("api=" + APIVersion),
	}

	// Only include remote URL if configured
	if ad.RemoteURL != "" {
		txt = append(txt, []byte("remote="+ad.RemoteURL))
	}

	err = group.AddService(
		avahi.InterfaceUnspec,
		avahi.ProtoUnspec,
		0,
		host,
		ServiceType,
		"", // Domain (empty = .local)
		"", // Host (empty = use system hostname)
		uint16(port),
		txt,
	)
	if err != nil {
		server.Close()
		return fmt.Errorf("add mDNS service: %w", err)
	}

	if err := group.Commit(); err != nil {
		server.Close()
		return fmt.Errorf("commit mDNS service: %w", err)
	}

	s.server = server
	s.group = group

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", ad.Name,
		"id", ad.ID,
	)

	return nil
}

// Refresh re-publishes the advertisement after server settings change.
func (s *Service) Refresh(ad Advertisement, port int) error {
	return s.Start(ad, port)
}

// Stop stops mDNS advertising.
// Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		s.closeLocked()
		s.logger.Info("mDNS advertisement stopped")
	}
}

// closeLocked tears down the avahi connection. Caller holds s.mu.
func (s *Service) closeLocked() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
		s.group = nil
	}
}
