package scenario

import (
	"fmt"
	"strings"

	"github.com/louisbranch/skirmish/internal/services/encounter/domain/stat"
	"github.com/louisbranch/skirmish/internal/services/encounter/domain/timeline"
)

func readString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func requireString(args map[string]any, key string) (string, error) {
	value := readString(args, key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func readInt(args map[string]any, key string) (int, bool, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return 0, false, nil
	}
	switch typed := value.(type) {
	case int:
		return typed, true, nil
	case int64:
		return int(typed), true, nil
	case float64:
		return 0, true, fmt.Errorf("%s must be an integer, got %v", key, typed)
	default:
		return 0, true, fmt.Errorf("%s must be an integer, got %T", key, value)
	}
}

func requireInt(args map[string]any, key string) (int, error) {
	value, ok, err := readInt(args, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func readFloat(args map[string]any, key string) (float64, bool, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return 0, false, nil
	}
	switch typed := value.(type) {
	case int:
		return float64(typed), true, nil
	case int64:
		return float64(typed), true, nil
	case float64:
		return typed, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number, got %T", key, value)
	}
}

func readBool(args map[string]any, key string) (bool, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return false, nil
	}
	typed, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s must be a boolean, got %T", key, value)
	}
	return typed, nil
}

func readStrings(args map[string]any, key string) ([]string, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for i, entry := range typed {
			s, ok := entry.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i+1, entry)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{typed}, nil
	case map[string]any:
		// An empty Lua table converts to an empty map.
		if len(typed) == 0 {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%s must be a list of strings, got %T", key, value)
}

func readStats(args map[string]any, key string) (stat.Block, error) {
	value, ok := args[key]
	if !ok || value == nil {
		return stat.Block{}, nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return stat.Block{}, fmt.Errorf("%s must be a table of stats, got %T", key, value)
	}
	values := make(map[string]float64, len(raw))
	for name := range raw {
		number, _, err := readFloat(raw, name)
		if err != nil {
			return stat.Block{}, fmt.Errorf("%s.%w", key, err)
		}
		values[name] = number
	}
	block, err := stat.FromMap(values)
	if err != nil {
		return stat.Block{}, fmt.Errorf("%s: %w", key, err)
	}
	return block, nil
}

func readActor(args map[string]any) (timeline.ActorID, error) {
	name, err := requireString(args, "actor")
	if err != nil {
		return 0, err
	}
	return timeline.ParseActor(strings.ToLower(name))
}
