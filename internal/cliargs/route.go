package cliargs

import (
	"strings"

	"github.com/spf13/pflag"
)

// Route splits tokens into those fs recognises, together with the values
// they consume, and everything else. Both lists keep their original order.
//
// Recognised forms are --name, --name=value, -x and, for flags taking a
// value, -xVALUE. A flag taking a value that is written without one claims
// the following token, as pflag itself would.
func Route(fs *pflag.FlagSet, tokens []string) (known, unknown []string) {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		f, glued := lookup(fs, tok)
		if f == nil {
			unknown = append(unknown, tok)
			continue
		}
		known = append(known, tok)
		if glued || !takesValue(f) {
			continue
		}
		if i+1 < len(tokens) {
			i++
			known = append(known, tokens[i])
		}
	}
	return known, unknown
}

// lookup returns the flag tok refers to, if any. glued reports that tok
// already carries the flag's value.
func lookup(fs *pflag.FlagSet, tok string) (f *pflag.Flag, glued bool) {
	switch {
	case strings.HasPrefix(tok, "--") && len(tok) > 2:
		name, _, hasValue := strings.Cut(tok[2:], "=")
		f = fs.Lookup(name)
		if f == nil || f.Hidden {
			return nil, false
		}
		return f, hasValue
	case strings.HasPrefix(tok, "-") && len(tok) >= 2 && tok[1] != '-':
		f = fs.ShorthandLookup(tok[1:2])
		if f == nil {
			return nil, false
		}
		if len(tok) == 2 {
			return f, false
		}
		// -j8 style; a longer token starting with a boolean shorthand is
		// not ours.
		if !takesValue(f) {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

func takesValue(f *pflag.Flag) bool {
	return f.NoOptDefVal == ""
}
