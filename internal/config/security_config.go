package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/knadh/koanf/v2"
)

type SecurityConfig interface {
	GetLoginMaxAttempts() int
	GetLoginWindow() time.Duration
}

type Security struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

var _ SecurityConfig = Security{}

func (s Security) GetLoginMaxAttempts() int {
	return s.LoginMaxAttempts
}

func (s Security) GetLoginWindow() time.Duration {
	return s.LoginWindow
}

func loadSecurity(k *koanf.Koanf) (Security, error) {
	s := Security{
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
	}
	if raw := k.String(loginMaxAttemptsVar); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Security{}, fmt.Errorf("[config Load] LOGIN_MAX_ATTEMPTS must be a positive integer, got %q", raw)
		}
		s.LoginMaxAttempts = n
	}
	if raw := k.String(loginWindowVar); raw != "" {
		d, err := ParseDuration(raw)
		if err != nil || d <= 0 {
			return Security{}, fmt.Errorf("[config Load] LOGIN_WINDOW must be a positive duration, got %q", raw)
		}
		s.LoginWindow = d
	}
	return s, nil
}
