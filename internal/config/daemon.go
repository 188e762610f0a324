package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EnvPrefix is the environment variable prefix daemon configuration keys
// are read under (§6.3), matching the teacher's single-prefix convention in
// EnvConfigPath but scoped to this project's name instead of Specularium's.
const EnvPrefix = "NETVISOR_"

// DaemonConfigFileName is the JSON config file name searched for under the
// platform config directory, the JSON counterpart to ConfigFileName's YAML.
const DaemonConfigFileName = "daemon.json"

// DaemonConfig is the daemon's own identity/networking configuration
// (§6.3), layered lowest-to-highest: defaults, JSON config file, NETVISOR_
// environment variables, then CLI flags applied by the caller after Load.
type DaemonConfig struct {
	ServerTarget       string        `json:"server_target"`
	ServerPort         uint16        `json:"server_port"`
	DaemonPort         uint16        `json:"daemon_port"`
	BindAddress        string        `json:"bind_address"`
	Name               string        `json:"name"`
	LogLevel           string        `json:"log_level"`
	HeartbeatInterval  time.Duration `json:"heartbeat_interval_secs"`
	ConcurrentScans    int           `json:"concurrent_scans"`
	ID                 string        `json:"id"`
	HostID             string        `json:"host_id,omitempty"`
	LastHeartbeat      *time.Time    `json:"last_heartbeat,omitempty"`
}

// DefaultDaemonConfig returns the defaults table from §6.3, minting a fresh
// id the way the teacher's DefaultConfig seeds its own identity fields.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		ServerPort:        60072,
		DaemonPort:        60073,
		BindAddress:       "0.0.0.0",
		Name:              "netvisor-daemon",
		LogLevel:          "info",
		HeartbeatInterval: 30 * time.Second,
		ConcurrentScans:   15,
		ID:                uuid.NewString(),
	}
}

// LoadDaemonConfig builds a DaemonConfig from defaults, an optional JSON
// file (found the same way Load locates the teacher's YAML file: explicit
// path, working directory, then the platform config directory), and
// NETVISOR_-prefixed environment variables, in that priority order. CLI
// flags are the caller's responsibility to layer on top of the result.
func LoadDaemonConfig() (*DaemonConfig, string, error) {
	cfg := DefaultDaemonConfig()

	path := findDaemonConfigPath()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("read daemon config: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, path, fmt.Errorf("parse daemon config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, path, nil
}

// Save writes the config as JSON to a temporary file beside path and renames
// it into place, so a reader never observes a partially written file.
func (c *DaemonConfig) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal daemon config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write daemon config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace daemon config: %w", err)
	}
	return nil
}

func findDaemonConfigPath() string {
	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if fileExists(path) {
			return path
		}
	}
	if fileExists(DaemonConfigFileName) {
		return DaemonConfigFileName
	}
	if home := os.Getenv("HOME"); home != "" {
		path := home + "/.config/" + ConfigDirName + "/" + DaemonConfigFileName
		if fileExists(path) {
			return path
		}
	}
	systemPath := "/etc/" + ConfigDirName + "/" + DaemonConfigFileName
	if fileExists(systemPath) {
		return systemPath
	}
	return ""
}

func (c *DaemonConfig) applyEnvOverrides() {
	if v := os.Getenv(EnvPrefix + "SERVER_TARGET"); v != "" {
		c.ServerTarget = v
	}
	if v := os.Getenv(EnvPrefix + "SERVER_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.ServerPort = uint16(n)
		}
	}
	if v := os.Getenv(EnvPrefix + "DAEMON_PORT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.DaemonPort = uint16(n)
		}
	}
	if v := os.Getenv(EnvPrefix + "BIND_ADDRESS"); v != "" {
		c.BindAddress = v
	}
	if v := os.Getenv(EnvPrefix + "NAME"); v != "" {
		c.Name = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "HEARTBEAT_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HeartbeatInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv(EnvPrefix + "CONCURRENT_SCANS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ConcurrentScans = n
		}
	}
	if v := os.Getenv(EnvPrefix + "HOST_ID"); v != "" {
		c.HostID = v
	}
}
