package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	vault "github.com/hashicorp/vault/api"
	"github.com/mitchellh/mapstructure"
)

const (
	approleSecretIDPath = "auth/approle/role/%s/secret-id"
	approleLoginPath    = "auth/approle/login"
)

// ErrClientInit indicates failure to initialize the Vault API client.
var ErrClientInit = errors.New("vault client initialization failed")

// Option configures the Vault provider.
type Option func(*vaultConfig)

type vaultConfig struct {
	address  string
	token    string
	roleID   string
	roleName string
}

// WithAddress overrides the Vault server address.
func WithAddress(address string) Option {
	return func(c *vaultConfig) {
		if address != "" {
			c.address = address
		}
	}
}

// WithToken sets a static token for authentication.
func WithToken(token string) Option {
	return func(c *vaultConfig) {
		if token != "" {
			c.token = token
		}
	}
}

// WithAppRole enables AppRole login with the given role ID and name.
func WithAppRole(roleID, roleName string) Option {
	return func(c *vaultConfig) {
		c.roleID = roleID
		c.roleName = roleName
	}
}

// Vault serves secrets from HashiCorp Vault KV paths. Each secret is
// stored as {"value": "..."} at its path.
type Vault struct {
	api *vault.Client
	cfg *vaultConfig
}

var _ Provider = (*Vault)(nil)

// NewVault creates a Vault provider. AppRole login is performed when a
// role ID and role name are both set; otherwise the static token (from
// the environment or WithToken) is used.
func NewVault(ctx context.Context, opts ...Option) (*Vault, error) {
	cfg := &vaultConfig{
		address: os.Getenv("VAULT_ADDR"),
		token:   os.Getenv("VAULT_TOKEN"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	apiCfg := vault.DefaultConfig()
	if cfg.address != "" {
		apiCfg.Address = cfg.address
	}

	api, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientInit, err)
	}

	v := &Vault{api: api, cfg: cfg}

	if cfg.token != "" {
		v.api.SetToken(cfg.token)
	}
	if cfg.roleID != "" && cfg.roleName != "" {
		if err := v.loginAppRole(ctx); err != nil {
			return nil, fmt.Errorf("approle login failed: %w", err)
		}
	}

	return v, nil
}

// loginAppRole generates a secret ID for the configured role and logs in.
func (v *Vault) loginAppRole(ctx context.Context) error {
	path := fmt.Sprintf(approleSecretIDPath, v.cfg.roleName)
	resp, err := v.api.Logical().WriteWithContext(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("generate secret_id: %w", err)
	}
	sid, ok := resp.Data["secret_id"].(string)
	if !ok || sid == "" {
		return fmt.Errorf("no secret_id returned from %s", path)
	}

	loginData := map[string]any{
		"role_id":   v.cfg.roleID,
		"secret_id": sid,
	}
	loginResp, err := v.api.Logical().WriteWithContext(ctx, approleLoginPath, loginData)
	if err != nil {
		return fmt.Errorf("approle login request: %w", err)
	}
	if loginResp.Auth == nil || loginResp.Auth.ClientToken == "" {
		return fmt.Errorf("no token in login response")
	}
	v.api.SetToken(loginResp.Auth.ClientToken)
	return nil
}

type secretPayload struct {
	Value string `mapstructure:"value"`
}

func (v *Vault) Get(ctx context.Context, name string) (string, error) {
	secret, err := v.api.Logical().ReadWithContext(ctx, name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if secret == nil {
		return "", fmt.Errorf("%w: vault path %s", ErrNotFound, name)
	}

	data := secret.Data
	// KV v2 nests the payload under "data".
	if nested, ok := data["data"].(map[string]any); ok {
		data = nested
	}

	var payload secretPayload
	if err := mapstructure.Decode(data, &payload); err != nil {
		return "", fmt.Errorf("decode secret at %s: %w", name, err)
	}
	if payload.Value == "" {
		return "", fmt.Errorf("%w: no value at vault path %s", ErrNotFound, name)
	}
	return payload.Value, nil
}
