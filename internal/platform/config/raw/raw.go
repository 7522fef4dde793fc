// Package raw reads environment settings during bootstrap, before the logger exists.
// It must not import the logger package.
package raw

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Conf is a namespaced view over environment variables (e.g. "LOG_", "MQTT_")
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// Get returns the trimmed env var or def if empty
func (c Conf) Get(key, def string) string {
	v := strings.TrimSpace(os.Getenv(c.key(key)))
	if v == "" {
		return def
	}
	return v
}

// GetBool accepts 1|true|yes|on, anything else set is false
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.Get(key, ""))
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// GetInt parses a non-negative integer; anything else returns def
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.ParseUint(c.Get(key, ""), 10, 31)
	if err != nil {
		return def
	}
	return int(n)
}

// LoadFile reads a YAML settings file into the environment.
// Nested keys join with "_" and are upper-cased, so
//
//	mqtt:
//	  host: broker.local
//
// becomes MQTT_HOST. Lists become comma separated values.
// Variables already set in the environment win over the file.
// It returns the keys it set, sorted.
func LoadFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vals, err := Flatten(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var set []string
	for k, v := range vals {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return set, fmt.Errorf("set %s: %w", k, err)
		}
		set = append(set, k)
	}
	sort.Strings(set)
	return set, nil
}

// Flatten turns a YAML document into env style KEY=value pairs
func Flatten(doc []byte) (map[string]string, error) {
	var root map[interface{}]interface{}
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	out := map[string]string{}
	if err := flatten("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[interface{}]interface{}, out map[string]string) error {
	for k, v := range node {
		key := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(fmt.Sprint(k)))
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch t := v.(type) {
		case map[interface{}]interface{}:
			if err := flatten(key, t, out); err != nil {
				return err
			}
		case []interface{}:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				if _, nested := item.(map[interface{}]interface{}); nested {
					return fmt.Errorf("key %s: lists of maps are not supported", key)
				}
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(t)
		}
	}
	return nil
}
