package util

import (
	"cmp"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

func ToJson(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ToJson error: %v", err)
		return ""
	}
	return string(b)
}

// Check whether a file (or dir) with name exists in file system.
// If it encounter an file system access error, return false,err
func FileExists(name string) (bool, error) {
	_, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func ParseInt[T constraints.Integer](s string, defaultValue T) T {
	if s != "" {
		if i, err := strconv.Atoi(s); err == nil {
			return T(i)
		}
	}
	return defaultValue
}

// Map applies a function to each element of a slice and returns a new slice containing the results.
// If input is nil, the output will also be nil.
func Map[T1 any, T2 any](ss []T1, mapper func(T1) T2) (ret []T2) {
	for _, s := range ss {
		ret = append(ret, mapper(s))
	}
	return
}

// Keys returns a sorted slice of all keys in the map.
func Keys[T1 cmp.Ordered, T2 any](m map[T1]T2) []T1 {
	keys := make([]T1, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// UniqueSlice returns ss with later duplicates removed, keeping order.
func UniqueSlice[T comparable](ss []T) []T {
	seen := make(map[T]struct{}, len(ss))
	ret := make([]T, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		ret = append(ret, s)
	}
	return ret
}

// ToString renders v as a plain string. nil is "".
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	}
	return fmt.Sprint(v)
}

// Eval evaluates input (converted to string) as JavaScript code in vm and returns the exported value.
func Eval(vm *goja.Runtime, input any) (any, error) {
	v, err := vm.RunString(ToString(input))
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

// Parse http content-type header and return mediatype, e.g. "text/html".
// contentType: the http Content-Type header, e.g. "text/html; charset=utf-8"
func MediaType(contentType string) string {
	if contentType != "" {
		if mediatype, _, err := mime.ParseMediaType(contentType); err == nil {
			return mediatype
		}
	}
	return ""
}

// Unmarshal a json / yaml / toml / xml string according to contentType.
// contentType could be: a mediatype (e.g. "application/json"), or a file type or extension (e.g. "json" or ".json").
// If contentType is empty or is not a supported type, return an error.
func Unmarshal(contentType string, input io.Reader) (data any, err error) {
	if strings.ContainsRune(contentType, '/') {
		contentType = MediaType(contentType)
	}
	switch contentType {
	case "application/json", "text/json", "json", ".json",
		"application/yaml", "text/yaml", "yaml", ".yaml", "yml", ".yml",
		"application/toml", "text/toml", "toml", ".toml":
	default:
		return nil, fmt.Errorf("Unmarshal: unsupported contentType %s", contentType)
	}

	body, err := io.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(body) > 0 {
		switch contentType {
		case "application/json", "text/json", "json", ".json":
			err = json.Unmarshal(body, &data)
		case "application/yaml", "text/yaml", "yaml", ".yaml", "yml", ".yml":
			err = yaml.Unmarshal(body, &data)
		case "application/toml", "text/toml", "toml", ".toml":
			err = toml.Unmarshal(body, &data)
		}
	}
	return data, err
}

// Marshal a object to json / yaml / toml / xml string according to contentType.
// contentType could be: a mediatype (e.g. "application/json"), or a file type or extension (e.g. "json" or ".json").
// If contentType is empty or is not a supported type, return an error.
func Marshal(contentType string, input any) (data []byte, err error) {
	if strings.ContainsRune(contentType, '/') {
		contentType = MediaType(contentType)
	}
	switch contentType {
	case "application/json", "text/json", "json", ".json":
		return json.MarshalIndent(input, "", "  ")
	case "application/yaml", "text/yaml", "yaml", ".yaml", "yml", ".yml":
		return yaml.Marshal(input)
	case "application/xml", "text/xml", "xml", ".xml":
		return xml.MarshalIndent(input, "", "  ")
	case "application/toml", "text/toml", "toml", ".toml":
		return toml.Marshal(input)
	default:
		return nil, fmt.Errorf("Marshal: unsupported format %s", contentType)
	}
}
