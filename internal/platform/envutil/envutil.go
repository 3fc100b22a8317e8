package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// Defaults supplies values for keys that are not set in the environment,
// typically decoded from a config file.
type Defaults map[string]string

func (d Defaults) lookup(name string) (string, bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, true
	}
	if d != nil {
		if v, ok := d[name]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func (d Defaults) String(name, def string, log *logger.Logger) string {
	v, ok := d.lookup(name)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not set, using default", "key", name)
		}
		return def
	}
	return v
}

func (d Defaults) Int(name string, def int, log *logger.Logger) int {
	v, ok := d.lookup(name)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		if log != nil {
			log.Warn("Invalid integer in environment, using default", "key", name, "value", v)
		}
		return def
	}
	return i
}

func (d Defaults) Bool(name string, def bool) bool {
	v, ok := d.lookup(name)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func (d Defaults) Float(name string, def float64, log *logger.Logger) float64 {
	v, ok := d.lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Warn("Invalid number in environment, using default", "key", name, "value", v)
		}
		return def
	}
	return f
}

// Seconds reads an integer number of seconds.
func (d Defaults) Seconds(name string, def time.Duration, log *logger.Logger) time.Duration {
	n := d.Int(name, int(def/time.Second), log)
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func Int(name string, def int) int {
	return Defaults(nil).Int(name, def, nil)
}

func String(name, def string) string {
	return Defaults(nil).String(name, def, nil)
}
