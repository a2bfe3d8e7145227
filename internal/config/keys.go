package config

import (
	"fmt"
	"strconv"
	"strings"
)

var keys = []string{
	"retrieval.context_top_k",
	"retrieval.context_min_score",
	"retrieval.top_k",
	"retrieval.min_score",
	"retrieval.cache_size",
	"workspace.max_files",
	"workspace.max_file_size",
	"workspace.ignore",
	"workspace.secret_patterns",
	"workspace.secret_extensions",
	"commands.build",
	"commands.test",
	"commands.lint",
	"commands.default_test",
	"server.addr",
	"log.verbose",
}

// Keys returns every dotted configuration key in display order.
func Keys() []string {
	return append([]string(nil), keys...)
}

// Get returns the value of a dotted key formatted for display.
func Get(cfg *Config, key string) (string, error) {
	value, err := rawValue(cfg, key)
	if err != nil {
		return "", err
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []string:
		return strings.Join(v, ","), nil
	}
	return fmt.Sprint(value), nil
}

// Set parses value for a dotted key and stores it in cfg.
// List keys take a comma-separated value.
func Set(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "retrieval.context_top_k":
		return setInt(&cfg.Retrieval.ContextTopK, key, value)
	case "retrieval.context_min_score":
		return setFloat(&cfg.Retrieval.ContextMinScore, key, value)
	case "retrieval.top_k":
		return setInt(&cfg.Retrieval.TopK, key, value)
	case "retrieval.min_score":
		return setFloat(&cfg.Retrieval.MinScore, key, value)
	case "retrieval.cache_size":
		return setInt(&cfg.Retrieval.CacheSize, key, value)
	case "workspace.max_files":
		return setInt(&cfg.Workspace.MaxFiles, key, value)
	case "workspace.max_file_size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Workspace.MaxFileSize = n
	case "workspace.ignore":
		cfg.Workspace.Ignore = splitList(value)
	case "workspace.secret_patterns":
		cfg.Workspace.SecretPatterns = splitList(value)
	case "workspace.secret_extensions":
		cfg.Workspace.SecretExtensions = splitList(value)
	case "commands.build":
		cfg.Commands.Build = value
	case "commands.test":
		cfg.Commands.Test = value
	case "commands.lint":
		cfg.Commands.Lint = value
	case "commands.default_test":
		cfg.Commands.DefaultTest = value
	case "server.addr":
		cfg.Server.Addr = value
	case "log.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Log.Verbose = b
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func rawValue(cfg *Config, key string) (any, error) {
	switch strings.ToLower(key) {
	case "retrieval.context_top_k":
		return cfg.Retrieval.ContextTopK, nil
	case "retrieval.context_min_score":
		return cfg.Retrieval.ContextMinScore, nil
	case "retrieval.top_k":
		return cfg.Retrieval.TopK, nil
	case "retrieval.min_score":
		return cfg.Retrieval.MinScore, nil
	case "retrieval.cache_size":
		return cfg.Retrieval.CacheSize, nil
	case "workspace.max_files":
		return cfg.Workspace.MaxFiles, nil
	case "workspace.max_file_size":
		return cfg.Workspace.MaxFileSize, nil
	case "workspace.ignore":
		return cfg.Workspace.Ignore, nil
	case "workspace.secret_patterns":
		return cfg.Workspace.SecretPatterns, nil
	case "workspace.secret_extensions":
		return cfg.Workspace.SecretExtensions, nil
	case "commands.build":
		return cfg.Commands.Build, nil
	case "commands.test":
		return cfg.Commands.Test, nil
	case "commands.lint":
		return cfg.Commands.Lint, nil
	case "commands.default_test":
		return cfg.Commands.DefaultTest, nil
	case "server.addr":
		return cfg.Server.Addr, nil
	case "log.verbose":
		return cfg.Log.Verbose, nil
	}
	return nil, fmt.Errorf("unknown configuration key: %s", key)
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key, value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
