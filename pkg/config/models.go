// Package config holds the daemon configuration: logging, persistence,
// dataplane backend selection and the desired bridge groups applied at
// startup.
package config

import "time"

type Config struct {
	Logging   Logging   `yaml:"logging"`
	Store     Store     `yaml:"store"`
	Lock      Lock      `yaml:"lock"`
	Dataplane Dataplane `yaml:"dataplane"`
	HAL       HAL       `yaml:"hal"`
	API       API       `yaml:"api,omitempty"`
	Metrics   Metrics   `yaml:"metrics,omitempty"`
	Monitor   Monitor   `yaml:"monitor,omitempty"`
	Groups    []Group   `yaml:"groups,omitempty"`
}

type Logging struct {
	Format     string            `yaml:"format"`
	Level      string            `yaml:"level"`
	Components map[string]string `yaml:"components,omitempty"`
}

type Store struct {
	Path string `yaml:"path"`
}

type Lock struct {
	Path string `yaml:"path"`
}

const (
	BackendNetlink = "netlink"
	BackendBrctl   = "brctl"
	BackendFake    = "fake"
)

type Dataplane struct {
	Backend string `yaml:"backend"`
	// Netns names a network namespace for the netlink backend; empty means
	// the daemon's own namespace.
	Netns       string `yaml:"netns,omitempty"`
	BrctlPath   string `yaml:"brctl_path,omitempty"`
	VconfigPath string `yaml:"vconfig_path,omitempty"`
	IPPath      string `yaml:"ip_path,omitempty"`
}

type HAL struct {
	// StrictNames rejects group names outside the platform's known bridge
	// group list.
	StrictNames bool `yaml:"strict_names"`
}

type API struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address,omitempty"`
}

type Metrics struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address,omitempty"`
}

type Monitor struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Group is one desired bridge group, created at startup.
type Group struct {
	Name   string `yaml:"name"`
	VLANID string `yaml:"vlan_id"`
	// Address optionally assigns an IP prefix to the bridge device.
	Address    string      `yaml:"address,omitempty"`
	Interfaces []Interface `yaml:"interfaces,omitempty"`
}

// Interface is one desired tagged member. An empty VLANID means the
// group's default VLAN.
type Interface struct {
	Name   string `yaml:"name"`
	VLANID string `yaml:"vlan_id,omitempty"`
}
