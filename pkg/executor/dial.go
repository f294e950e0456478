package executor

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/flawiddsouza/deploy-helper/pkg/schema"
)

// AuthenticationError reports a remote session that could not be
// established: no usable credential, or a rejected handshake.
type AuthenticationError struct {
	Host string
	Err  error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Host, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Dial opens and authenticates an SSH connection to the target host. The
// key path takes precedence over a password when both are configured.
func Dial(target schema.TargetHost) (*ssh.Client, error) {
	if target.User == "" {
		return nil, &AuthenticationError{Host: target.Host, Err: errors.New("missing user for remote host")}
	}

	var auth []ssh.AuthMethod
	switch {
	case target.SSHKeyPath != "":
		keyPath, err := expandTilde(target.SSHKeyPath)
		if err != nil {
			return nil, &AuthenticationError{Host: target.Host, Err: err}
		}
		key, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, &AuthenticationError{Host: target.Host, Err: fmt.Errorf("read ssh key: %w", err)}
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, &AuthenticationError{Host: target.Host, Err: fmt.Errorf("parse ssh key: %w", err)}
		}
		auth = append(auth, ssh.PublicKeys(signer))
	case target.Password != "":
		auth = append(auth, ssh.Password(target.Password))
	default:
		return nil, &AuthenticationError{Host: target.Host, Err: errors.New("either ssh_key_path or password must be provided")}
	}

	cfg := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	addr := net.JoinHostPort(target.Host, strconv.Itoa(target.Port))
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, &AuthenticationError{Host: target.Host, Err: err}
	}
	return client, nil
}

func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
