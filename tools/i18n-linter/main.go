// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files for consistency. It scans the Go
// source tree for i18n.T() calls and compares the keys against the YAML
// locale files: keys used in code but absent from the primary locale,
// keys defined but never used, and keys missing from secondary locales
// are all reported.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.en.yaml"
	projectRoot   = "."
)

func main() {
	fmt.Println("🔍 Running i18n linter...")

	usedKeys, err := findUsedKeys(projectRoot)
	if err != nil {
		fmt.Printf("❌ Error scanning source tree: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Found %d unique translation keys in the source tree.\n", len(usedKeys))

	primaryKeys, err := loadKeysFromLocale(filepath.Join(localesDir, primaryLocale))
	if err != nil {
		fmt.Printf("❌ Error loading primary locale '%s': %v\n", primaryLocale, err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d keys from the primary locale (%s).\n\n", len(primaryKeys), primaryLocale)

	failed := false

	fmt.Println("--- Keys used in code but missing from the primary locale ---")
	undefined := keysNotIn(usedKeys, primaryKeys)
	for _, key := range undefined {
		fmt.Printf("  - Undefined: %s\n", key)
		failed = true
	}
	if len(undefined) == 0 {
		fmt.Println("  ✨ None found.")
	}
	fmt.Println()

	fmt.Println("--- Orphaned keys (defined in the primary locale, never used) ---")
	orphaned := keysNotIn(primaryKeys, usedKeys)
	for _, key := range orphaned {
		fmt.Printf("  - Orphaned: %s\n", key)
	}
	if len(orphaned) == 0 {
		fmt.Println("  ✨ None found.")
	}
	fmt.Println()

	fmt.Println("--- Secondary locales ---")
	localeFiles, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		fmt.Printf("❌ Error finding locale files: %v\n", err)
		os.Exit(1)
	}
	for _, file := range localeFiles {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		fmt.Printf("Checking %s:\n", file)
		secondaryKeys, err := loadKeysFromLocale(file)
		if err != nil {
			fmt.Printf("  - ❌ Error loading %s: %v\n", file, err)
			failed = true
			continue
		}
		missing := keysNotIn(primaryKeys, secondaryKeys)
		for _, key := range missing {
			fmt.Printf("  - Missing: %s\n", key)
			failed = true
		}
		if len(missing) == 0 {
			fmt.Println("  ✨ All keys present.")
		}
	}

	fmt.Println("\n--- Linter Finished ---")
	switch {
	case failed:
		fmt.Println("❌ Found issues that need to be addressed.")
		os.Exit(1)
	case len(orphaned) > 0:
		fmt.Println("⚠️  Found orphaned keys. Please consider removing them.")
	default:
		fmt.Println("✅ All translation files are consistent!")
	}
}

// keyPattern matches i18n.T("some.key") calls. All call sites pass the
// message ID as a string literal.
var keyPattern = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

// findUsedKeys scans all non-test .go files under root for i18n.T() calls.
// Hidden and underscore-prefixed directories are skipped, as is tools/
// itself.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, match := range keyPattern.FindAllStringSubmatch(string(content), -1) {
			keys[match[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// keysNotIn returns the keys of a that are absent from b, sorted.
func keysNotIn(a, b map[string]struct{}) []string {
	var out []string
	for key := range a {
		if _, ok := b[key]; !ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// loadKeysFromLocale reads a YAML locale file and returns the flattened
// set of its dot-separated keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into a flat set of dot-separated keys.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	if m, ok := node.(map[string]interface{}); ok {
		for k, val := range m {
			child := k
			if prefix != "" {
				child = prefix + "." + k
			}
			flattenYAML(child, val, keys)
		}
		return
	}
	if prefix != "" {
		keys[prefix] = struct{}{}
	}
}
