package schema

// Inventory maps logical host names to connection parameters.
type Inventory struct {
	Hosts map[string]TargetHost `yaml:"hosts"`
}

// TargetHost is one inventory entry. Exactly one of Password or SSHKeyPath
// is expected at connection time; both are ignored for localhost.
type TargetHost struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port,omitempty"`
	User       string `yaml:"user,omitempty"`
	Password   string `yaml:"password,omitempty"`
	SSHKeyPath string `yaml:"ssh_key_path,omitempty"`
}

// IsLocal reports whether the target selects the local executor, bypassing
// all remote-session fields.
func (h TargetHost) IsLocal() bool {
	return h.Host == "localhost"
}
