// Package cliargs turns raw command-line tokens into an Options value.
//
// Parsing happens in three steps: Expand splits combined short flags such
// as -cr and cuts everything after a literal "--", Route separates tokens
// the flag set knows from tokens meant for CMake, and Parse feeds the known
// tokens to the pflag FlagSet owned by the cobra command.
package cliargs

import "strings"

// CombinableFlags are the boolean short flags that may be written together
// in one token, e.g. -cmr.
const CombinableFlags = "cmwrdzivh"

// Separator ends buildit's own arguments; everything after it goes to CMake.
const Separator = "--"

// Expand rewrites each combined short-flag token into one token per flag and
// returns the tokens that followed a literal "--" separately, untouched.
// The separator itself is dropped.
func Expand(tokens []string) (expanded, passthrough []string) {
	expanded = make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if tok == Separator {
			passthrough = append(passthrough, tokens[i+1:]...)
			return expanded, passthrough
		}
		if !isCombined(tok) {
			expanded = append(expanded, tok)
			continue
		}
		for _, c := range tok[1:] {
			expanded = append(expanded, "-"+string(c))
		}
	}
	return expanded, passthrough
}

func isCombined(tok string) bool {
	if len(tok) <= 2 || tok[0] != '-' || tok[1] == '-' {
		return false
	}
	for _, c := range tok[1:] {
		if !strings.ContainsRune(CombinableFlags, c) {
			return false
		}
	}
	return true
}
