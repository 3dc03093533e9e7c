package config

import "fmt"

// ConfigInitError reports an invalid config value. Err, when set, is the
// underlying cause.
type ConfigInitError struct {
	Key string
	msg string
	Err error
}

func (e *ConfigInitError) Error() string {
	if e.Key == "" {
		return e.msg
	}
	return fmt.Sprintf("invalid %s: %s", e.Key, e.msg)
}

func (e *ConfigInitError) Unwrap() error {
	return e.Err
}
