package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Deployed OpenSilex servers disagree on the shape of the authenticate
// response envelope. The token is probed at the known locations in a fixed
// order: result.token, then token, then data.token.
type authEnvelope struct {
	Token     string          `json:"token"`
	ExpiresIn json.Number     `json:"expires_in"`
	Result    *authTokenField `json:"result"`
	Data      *authTokenField `json:"data"`
}

type authTokenField struct {
	Token     string      `json:"token"`
	ExpiresIn json.Number `json:"expires_in"`
}

var errNoTokenInResponse = errors.New("no token found at result.token, token, or data.token")

// extractToken pulls the access token out of an authenticate response body.
// The returned lifetime is zero when the server did not declare one; callers
// fall back to the fixed one-hour assumption in that case.
func extractToken(body []byte) (string, time.Duration, error) {
	var env authEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", 0, fmt.Errorf("failed to parse authenticate response: %w", err)
	}
	if env.Result != nil && env.Result.Token != "" {
		return env.Result.Token, lifetimeFrom(env.Result.ExpiresIn, env.ExpiresIn), nil
	}
	if env.Token != "" {
		return env.Token, lifetimeFrom(env.ExpiresIn), nil
	}
	if env.Data != nil && env.Data.Token != "" {
		return env.Data.Token, lifetimeFrom(env.Data.ExpiresIn, env.ExpiresIn), nil
	}
	return "", 0, errNoTokenInResponse
}

func lifetimeFrom(candidates ...json.Number) time.Duration {
	for _, n := range candidates {
		if n == "" {
			continue
		}
		seconds, err := n.Int64()
		if err != nil || seconds <= 0 {
			continue
		}
		return time.Duration(seconds) * time.Second
	}
	return 0
}
