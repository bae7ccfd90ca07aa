// Package schema derives an OpenAPI-style paths document from the route
// registry.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"edenhttp/internal/registry"
	"edenhttp/internal/version"
	"edenhttp/types"

	"gopkg.in/yaml.v3"
)

const openAPIVersion = "3.1.0"

type Operation struct {
	OperationID string `json:"operationId" yaml:"operationId"`
}

type Info struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

type Document struct {
	OpenAPI string                          `json:"openapi" yaml:"openapi"`
	Info    Info                            `json:"info" yaml:"info"`
	Paths   map[string]map[string]Operation `json:"paths" yaml:"paths"`
}

// Build walks every visible route. It is regenerated on each call and never
// cached, so it always matches the registry.
func Build(reg registry.Registry, info Info) Document {
	if info.Version == "" {
		info.Version = version.GetShortVersion()
	}

	doc := Document{
		OpenAPI: openAPIVersion,
		Info:    info,
		Paths:   make(map[string]map[string]Operation),
	}

	for _, route := range reg.Routes() {
		if route.Hidden {
			continue
		}
		ops, ok := doc.Paths[route.Path]
		if !ok {
			ops = make(map[string]Operation)
			doc.Paths[route.Path] = ops
		}
		ops[route.Method] = Operation{OperationID: route.OperationID}
	}

	return doc
}

func JSON(doc Document) (string, error) {
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}
	return string(out), nil
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	return enc.Close()
}

// Route registers the GET route that serves the document. The route itself is
// hidden from the document it serves.
func Route(reg registry.Registry, path string, info Info) error {
	if path == "" {
		path = types.DefaultSchemaPath
	}
	_, err := reg.Register(path, types.MethodGET.String(), "schema", func(ctx context.Context) (string, error) {
		return JSON(Build(reg, info))
	}, registry.Hidden())
	return err
}
