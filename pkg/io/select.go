package io

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"

	errs "github.com/matzehuels/codecity/pkg/errors"
	"github.com/matzehuels/codecity/pkg/tree"
)

// SelectSubtree evaluates a JSONPath expression against a decoded tree
// literal and returns the first object it matches. An empty expression
// returns doc unchanged.
func SelectSubtree(doc any, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return doc, nil
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid jsonpath %q", expr)
	}
	for _, r := range x.Get(doc) {
		if m, ok := r.(map[string]any); ok {
			return m, nil
		}
	}
	return nil, errs.New(errs.ErrCodeNotFound, "jsonpath %q matched no directory", expr)
}

// SubtreeExpr returns the JSONPath expression that selects the directory at
// dirPath in a tree literal, descending through childDirectories by name.
func SubtreeExpr(dirPath string) (string, error) {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range tree.SplitPath(dirPath) {
		if strings.ContainsAny(seg, `'"\`) {
			return "", errs.New(errs.ErrCodeInvalidPath, "directory name %q cannot be selected", seg)
		}
		fmt.Fprintf(&b, ".childDirectories[?(@.name == '%s')]", seg)
	}
	return b.String(), nil
}
