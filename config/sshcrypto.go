package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindSSHKeys scans ~/.ssh for private keys usable for credential
// encryption and returns their paths in preference order. ECDSA keys are
// skipped because their signatures are not deterministic.
func FindSSHKeys() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	sshDir := filepath.Join(homeDir, ".ssh")

	if _, err := os.Stat(sshDir); os.IsNotExist(err) {
		return []string{}, nil
	}

	keyNames := []string{
		"chatrelay_ed25519", // dedicated key (highest priority)
		"id_ed25519",
		"id_rsa",
	}

	var foundKeys []string
	for _, name := range keyNames {
		keyPath := filepath.Join(sshDir, name)
		if _, err := os.Stat(keyPath); err == nil {
			if isPrivateKey(keyPath) {
				foundKeys = append(foundKeys, keyPath)
			}
		}
	}

	return foundKeys, nil
}

// DefaultSSHKeyPath returns the preferred key from FindSSHKeys.
func DefaultSSHKeyPath() (string, error) {
	keys, err := FindSSHKeys()
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("no SSH private key found in ~/.ssh; set security.ssh_key_path")
	}
	return keys[0], nil
}

// isPrivateKey checks if a file is likely an SSH private key
func isPrivateKey(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	content := string(data)
	return strings.Contains(content, "BEGIN") &&
		strings.Contains(content, "PRIVATE KEY")
}
