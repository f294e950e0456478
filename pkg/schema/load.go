package schema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSSHPort is used when an inventory entry omits the port.
const DefaultSSHPort = 22

// LoadDeployments reads a deploy file: a stream of YAML documents, each a
// list of deployments, concatenated into one flat ordered list.
func LoadDeployments(path string) ([]Deployment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deploy file: %w", err)
	}
	defer f.Close()
	return DecodeDeployments(f)
}

// DecodeDeployments parses deployments from an io.Reader with strict
// unknown-field rejection.
func DecodeDeployments(r io.Reader) ([]Deployment, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var all []Deployment
	for {
		var doc []Deployment
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode deploy document: %w", err)
		}
		all = append(all, doc...)
	}
	return all, nil
}

// LoadInventory reads the server configuration file and applies the default
// SSH port to entries that omit one.
func LoadInventory(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var inv Inventory
	if err := dec.Decode(&inv); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	for key, host := range inv.Hosts {
		if host.Port == 0 {
			host.Port = DefaultSSHPort
			inv.Hosts[key] = host
		}
	}
	return &inv, nil
}

// LoadTasks reads an included task file: one YAML document containing a bare
// ordered list of tasks.
func LoadTasks(path string) ([]Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open task file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var tasks []Task
	if err := dec.Decode(&tasks); err != nil {
		return nil, fmt.Errorf("decode task file: %w", err)
	}
	return tasks, nil
}
