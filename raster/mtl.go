package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MTL holds the metadata groups of a Landsat MTL file. Groups are flattened
// by name, keys keep their original upper case spelling.
type MTL struct {
	groups map[string]map[string]string
}

// LoadMTL reads and parses a Landsat MTL file from disk.
func LoadMTL(path string) (*MTL, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseMTL(file)
}

// ParseMTL parses the GROUP / END_GROUP key-value format of Landsat MTL
// metadata.
func ParseMTL(r io.Reader) (*MTL, error) {
	mtl := MTL{groups: map[string]map[string]string{}}
	var stack []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "END" {
			break
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("malformed MTL line %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "GROUP":
			stack = append(stack, value)
			if _, ok := mtl.groups[value]; !ok {
				mtl.groups[value] = map[string]string{}
			}
		case "END_GROUP":
			if len(stack) == 0 || stack[len(stack)-1] != value {
				return nil, fmt.Errorf("unbalanced END_GROUP %q", value)
			}
			stack = stack[:len(stack)-1]
		default:
			if len(stack) == 0 {
				return nil, fmt.Errorf("MTL key %q outside of any group", key)
			}
			mtl.groups[stack[len(stack)-1]][key] = strings.Trim(value, `"`)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mtl.groups) == 0 {
		return nil, fmt.Errorf("no metadata groups found")
	}
	return &mtl, nil
}

// Value returns the raw string value of a key inside a group.
func (m *MTL) Value(group, key string) (string, error) {
	values, ok := m.groups[group]
	if !ok {
		return "", fmt.Errorf("MTL group %q not found", group)
	}
	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("MTL key %q not found in group %q", key, group)
	}
	return value, nil
}

// Float returns the value of a key inside a group parsed as float64.
func (m *MTL) Float(group, key string) (float64, error) {
	value, err := m.Value(group, key)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("MTL key %s/%s is not numeric: %v", group, key, err)
	}
	return parsed, nil
}
