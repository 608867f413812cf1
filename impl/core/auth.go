package core

import (
	"WhatsGrapp/entity"
	"crypto/subtle"
	"fmt"
)

const adminUser = "admin"

// AuthenticateByToken accepts the configured listen key or a stored api key.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	if c.authKey != "" && subtle.ConstantTimeCompare([]byte(token), []byte(c.authKey)) == 1 {
		return &entity.UserAuth{Username: adminUser, Token: token}, nil
	}

	c.keysMu.RLock()
	username, ok := c.keys[token]
	c.keysMu.RUnlock()
	if ok {
		return &entity.UserAuth{Username: username, Token: token}, nil
	}

	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	username, err := c.repo.CheckApiKey(token)
	if err != nil {
		return nil, fmt.Errorf("check api key: %w", err)
	}

	c.keysMu.Lock()
	c.keys[token] = username
	c.keysMu.Unlock()
	return &entity.UserAuth{Username: username, Token: token}, nil
}

func (c *Core) GenerateApiKey(username string) (string, error) {
	if c.repo == nil {
		return "", fmt.Errorf("repository is not set")
	}

	apiKey, err := c.repo.GenerateApiKey(username)
	if err != nil {
		return "", fmt.Errorf("failed to generate API key: %w", err)
	}

	c.keysMu.Lock()
	c.keys[apiKey] = username
	c.keysMu.Unlock()
	return apiKey, nil
}
