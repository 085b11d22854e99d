package env

import (
	"fmt"
	"strings"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }

func (e *Environment) UnmarshalText(text []byte) error {
	switch v := Environment(strings.ToLower(strings.TrimSpace(string(text)))); v {
	case Development, Production:
		*e = v
		return nil
	default:
		return fmt.Errorf("unknown environment %q (valid: development, production)", text)
	}
}
