package bootstrap

import (
	"context"
	"encoding/json"

	"edenhttp/internal/registry"
	"edenhttp/internal/version"
)

// BuiltinRoutes are the routes every deployment answers besides the schema.
func BuiltinRoutes(reg registry.Registry) error {
	if _, err := reg.Register("/ping/", "GET", "ping", ping); err != nil {
		return err
	}
	if _, err := reg.Register("/version/", "GET", "version", versionInfo); err != nil {
		return err
	}
	return nil
}

func ping(ctx context.Context) (string, error) {
	return "pong", nil
}

func versionInfo(ctx context.Context) (string, error) {
	out, err := json.Marshal(version.Current())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
