package ssh

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

var ErrNoAuthMethod = errors.New("no usable ssh auth method (ssh-agent or ~/.ssh/id_*)")

// AuthMethod 定义获取 SSH 认证方法的接口
type AuthMethod interface {
	GetMethod() (ssh.AuthMethod, error)
}

// AgentAuth 通过 SSH_AUTH_SOCK 使用 ssh-agent 中的密钥
type AgentAuth struct {
	Socket string
}

func (a *AgentAuth) GetMethod() (ssh.AuthMethod, error) {
	if a.Socket == "" {
		return nil, errors.New("SSH_AUTH_SOCK not set")
	}
	conn, err := net.Dial("unix", a.Socket)
	if err != nil {
		return nil, fmt.Errorf("connect ssh-agent: %w", err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), nil
}

// KeyAuth 实现私钥认证
type KeyAuth struct {
	Path       string
	Passphrase string
}

func (k *KeyAuth) GetMethod() (ssh.AuthMethod, error) {
	keyData, err := os.ReadFile(k.Path)
	if err != nil {
		return nil, err
	}
	var signer ssh.Signer
	if k.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(k.Passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyData)
	}
	if err != nil {
		return nil, fmt.Errorf("parse private key %s: %w", k.Path, err)
	}
	return ssh.PublicKeys(signer), nil
}

// DefaultAuthMethods 返回 ssh-agent 和 ~/.ssh 下的默认私钥
func DefaultAuthMethods() []AuthMethod {
	methods := []AuthMethod{&AgentAuth{Socket: os.Getenv("SSH_AUTH_SOCK")}}
	home, err := os.UserHomeDir()
	if err != nil {
		return methods
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		methods = append(methods, &KeyAuth{Path: filepath.Join(home, ".ssh", name)})
	}
	return methods
}

// resolveAuth 跳过不可用的认证方式(没有 agent、密钥文件不存在、密钥有口令等)
func resolveAuth(methods []AuthMethod) ([]ssh.AuthMethod, error) {
	var out []ssh.AuthMethod
	for _, m := range methods {
		am, err := m.GetMethod()
		if err != nil {
			continue
		}
		out = append(out, am)
	}
	if len(out) == 0 {
		return nil, ErrNoAuthMethod
	}
	return out, nil
}
