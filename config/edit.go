package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/vibe-audio/vibe/constant"
	"github.com/vibe-audio/vibe/filesystem"
	"github.com/vibe-audio/vibe/where"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// UnknownKeyError is returned for a key nothing registered.
type UnknownKeyError struct {
	Key string
	// Closest is the registered key with the smallest edit distance.
	Closest string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key %s, did you mean %s?", e.Key, e.Closest)
}

// Lookup returns the field registered under name.
func Lookup(name string) (Field, error) {
	if f, ok := Default[name]; ok {
		return f, nil
	}

	closest := lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
	return Field{}, &UnknownKeyError{Key: name, Closest: closest}
}

// Parse converts command-line words into the type of the field's default.
func (f Field) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no value given for %s", f.Key)
	}

	switch f.Value.(type) {
	case string:
		return raw[0], nil
	case int:
		n, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", f.Key, raw[0])
		}
		return n, nil
	case float64:
		x, err := strconv.ParseFloat(raw[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", f.Key, raw[0])
		}
		return x, nil
	case bool:
		b, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false, got %q", f.Key, raw[0])
		}
		return b, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s cannot be set from the command line", f.Key)
	}
}

// Set assigns value to name. When the result no longer validates the previous value is restored.
func Set(name string, value any) error {
	previous := viper.Get(name)
	viper.Set(name, value)

	if err := Validate(); err != nil {
		viper.Set(name, previous)
		return err
	}
	return nil
}

// Path is where vibe.toml lives.
func Path() string {
	return filepath.Join(where.Config(), constant.Vibe+".toml")
}

// Save writes the current values to vibe.toml, creating it on first use.
func Save() error {
	err := viper.WriteConfig()

	var missing viper.ConfigFileNotFoundError
	if errors.As(err, &missing) {
		return viper.SafeWriteConfig()
	}
	return err
}

// Remove deletes vibe.toml.
func Remove() error {
	return filesystem.API().Remove(Path())
}
