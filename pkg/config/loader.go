package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
	"inet.af/netaddr"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Store.Path == "" {
		c.Store.Path = "/var/lib/vlanhald/confdb.sqlite"
	}
	if c.Lock.Path == "" {
		c.Lock.Path = "/run/vlanhald/vlanhal.lock"
	}
	if c.Dataplane.Backend == "" {
		c.Dataplane.Backend = BackendNetlink
	}
	if c.API.ListenAddress == "" {
		c.API.ListenAddress = "127.0.0.1:8186"
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = "127.0.0.1:9186"
	}
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = 30 * time.Second
	}
}

const maxNameLen = 31

func (c *Config) Validate() error {
	switch c.Dataplane.Backend {
	case BackendNetlink, BackendBrctl, BackendFake:
	default:
		return fmt.Errorf("dataplane.backend %q: must be one of %s, %s, %s",
			c.Dataplane.Backend, BackendNetlink, BackendBrctl, BackendFake)
	}

	if c.Dataplane.Netns != "" && c.Dataplane.Backend != BackendNetlink {
		return fmt.Errorf("dataplane.netns only applies to the %s backend", BackendNetlink)
	}

	seen := make(map[string]bool)
	for i, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d]: name required", i)
		}
		if len(g.Name) > maxNameLen {
			return fmt.Errorf("groups[%d]: name %q exceeds %d bytes", i, g.Name, maxNameLen)
		}
		if seen[g.Name] {
			return fmt.Errorf("groups[%d]: duplicate group %q", i, g.Name)
		}
		seen[g.Name] = true

		if err := validVLANID(g.VLANID, false); err != nil {
			return fmt.Errorf("groups[%d] (%s): vlan_id: %w", i, g.Name, err)
		}

		if g.Address != "" {
			if _, err := netaddr.ParseIPPrefix(g.Address); err != nil {
				return fmt.Errorf("groups[%d] (%s): address: %w", i, g.Name, err)
			}
		}

		for j, iface := range g.Interfaces {
			if iface.Name == "" {
				return fmt.Errorf("groups[%d].interfaces[%d]: name required", i, j)
			}
			if len(iface.Name) > maxNameLen {
				return fmt.Errorf("groups[%d].interfaces[%d]: name %q exceeds %d bytes", i, j, iface.Name, maxNameLen)
			}
			if err := validVLANID(iface.VLANID, true); err != nil {
				return fmt.Errorf("groups[%d].interfaces[%d] (%s): vlan_id: %w", i, j, iface.Name, err)
			}
		}
	}

	return nil
}

func validVLANID(s string, allowEmpty bool) error {
	if s == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("required")
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	if n < 1 || n > 4094 {
		return fmt.Errorf("%d out of range 1-4094", n)
	}
	return nil
}
