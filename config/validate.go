package config

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Validate checks every restricted field against its allowed values.
func Validate() error {
	for _, field := range Default {
		if err := ValidateValue(field.Key, viper.Get(field.Key)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateValue checks value against the field registered under k.
func ValidateValue(k string, value any) error {
	field, ok := Default[k]
	if !ok {
		return fmt.Errorf("unknown config key %q", k)
	}
	if len(field.Allowed) == 0 {
		return nil
	}

	s := cast.ToString(value)
	if !lo.Contains(field.Allowed, s) {
		return fmt.Errorf("invalid value %q for %s, allowed: %v", s, k, field.Allowed)
	}
	return nil
}
