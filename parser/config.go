// SPDX-FileCopyrightText: © 2025 The gmx authors
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strconv"
)

// Config is the fixed option bag for one parse invocation. The zero value
// is not usable; start from DefaultConfig or ParseOptions.
type Config struct {
	// AllowUnclosedElements downgrades unclosed-element diagnostics from
	// error to warning.
	AllowUnclosedElements bool
	// AllowCustomPrefixes permits extension node variants, like the
	// control-flow nodes of the flow package.
	AllowCustomPrefixes bool
	// AllowSpreadAttributes permits `{expr}` in attribute-key position,
	// meaning "merge these pairs into the attribute set".
	AllowSpreadAttributes bool
	// AttributeValueAsExpression stores every attribute value as a raw
	// expression instead of attempting literal parsing.
	AttributeValueAsExpression bool
	// TrimText strips leading and trailing whitespace from text runs and
	// drops runs that become empty.
	TrimText bool
	// DedupeAttributes keeps only the last occurrence of a repeated
	// attribute key. The duplicate warning is emitted either way.
	DedupeAttributes bool
	// MaxDepth bounds element/fragment nesting. Exceeding it yields a
	// depth-limit-exceeded diagnostic and a truncated subtree instead of
	// unbounded recursion.
	MaxDepth int
	// Severities overrides the default severity per diagnostic code.
	Severities map[Code]Severity
}

// DefaultMaxDepth bounds nesting when the caller does not choose a limit.
const DefaultMaxDepth = 64

func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth}
}

// Validate checks the configuration. Option problems are construction
// time errors, never parse-time diagnostics.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max-depth must be at least 1, got %d", c.MaxDepth)
	}

	for code := range c.Severities {
		if !knownCodes[code] {
			return fmt.Errorf("severity override for unknown diagnostic code %q", code)
		}
	}

	return nil
}

// SeverityFor resolves the effective severity for a diagnostic code,
// honoring overrides first.
func (c Config) SeverityFor(code Code) Severity {
	if sev, ok := c.Severities[code]; ok {
		return sev
	}

	if c.AllowUnclosedElements && code == UnclosedElement {
		return Warning
	}

	return defaultSeverities[code]
}

// ParseOptions builds a Config from named options, as supplied e.g. on a
// command line. Boolean options accept "true"/"false", max-depth accepts
// a positive integer. Unknown names are rejected.
func ParseOptions(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()

	for name, value := range opts {
		switch name {
		case "allow-unclosed-elements":
			if err := parseBoolOption(name, value, &cfg.AllowUnclosedElements); err != nil {
				return Config{}, err
			}
		case "allow-custom-prefixes":
			if err := parseBoolOption(name, value, &cfg.AllowCustomPrefixes); err != nil {
				return Config{}, err
			}
		case "allow-spread-attributes":
			if err := parseBoolOption(name, value, &cfg.AllowSpreadAttributes); err != nil {
				return Config{}, err
			}
		case "attribute-value-as-expression":
			if err := parseBoolOption(name, value, &cfg.AttributeValueAsExpression); err != nil {
				return Config{}, err
			}
		case "trim-text":
			if err := parseBoolOption(name, value, &cfg.TrimText); err != nil {
				return Config{}, err
			}
		case "dedupe-attributes":
			if err := parseBoolOption(name, value, &cfg.DedupeAttributes); err != nil {
				return Config{}, err
			}
		case "max-depth":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Config{}, fmt.Errorf("option max-depth: %q is not an integer", value)
			}

			cfg.MaxDepth = n
		default:
			return Config{}, fmt.Errorf("unknown option %q", name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseBoolOption(name, value string, dst *bool) error {
	switch value {
	case "", "true":
		*dst = true
	case "false":
		*dst = false
	default:
		return fmt.Errorf("option %s: expected true or false, got %q", name, value)
	}

	return nil
}
