package extract

import (
	_ "embed"
	"strings"
)

// Script is the snapshot function evaluated inside a browser tab. It is a
// function expression returning a plain object shaped like snapshot.Document.
//
//go:embed snapshot.js
var Script string

// ScriptCall returns Script wrapped as an immediately invoked expression,
// for evaluators that take an expression rather than a function.
func ScriptCall() string {
	return "(" + strings.TrimSpace(Script) + ")()"
}
