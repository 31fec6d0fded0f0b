package mcp

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// addNodeArgs are the arguments of the add_node tool.
type addNodeArgs struct {
	ID     string            `mapstructure:"id"`
	Kind   domain.Kind       `mapstructure:"kind"`
	Model  string            `mapstructure:"model"`
	Name   string            `mapstructure:"name"`
	Parent string            `mapstructure:"parent"`
	X      float64           `mapstructure:"x"`
	Y      float64           `mapstructure:"y"`
	Params map[string]string `mapstructure:"params"`
}

type edgeArgs struct {
	Parent string `mapstructure:"parent"`
	Child  string `mapstructure:"child"`
}

type moveArgs struct {
	ID string  `mapstructure:"id"`
	X  float64 `mapstructure:"x"`
	Y  float64 `mapstructure:"y"`
}

type paramArgs struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// decodeArgs maps raw tool arguments onto out. Numbers and booleans are
// accepted where strings are expected, and node kinds are parsed from their
// tag names.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
