// Package openapi embeds the OpenAPI document served at /openapi.yaml.
package openapi

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML contains the embedded OpenAPI document.
//
//go:embed openapi.yaml
var YAML []byte

var httpMethods = map[string]bool{
	"GET": true, "PUT": true, "POST": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// Operations lists the documented operations as "METHOD /path" strings,
// sorted.
func Operations() ([]string, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(YAML, &doc); err != nil {
		return nil, err
	}
	var ops []string
	for path, item := range doc.Paths {
		for key := range item {
			if m := strings.ToUpper(key); httpMethods[m] {
				ops = append(ops, m+" "+path)
			}
		}
	}
	sort.Strings(ops)
	return ops, nil
}
