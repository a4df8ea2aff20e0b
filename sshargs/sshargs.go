// Package sshargs locates the destination token in an ssh-style argument
// vector and rewrites the vector for the final connection.
//
// The scan uses a restricted model of ssh's option grammar: it only needs
// to know which options consume a following value, well enough to never
// misidentify such a value as the destination. The full, versioned ssh
// grammar is deliberately not emulated; options appearing after the
// destination are passed through untouched and unexamined.
package sshargs

import (
	"strings"

	"github.com/ruteri/ec2ssh/interfaces"
)

// SSHCommand is the remote-shell binary the rewritten vector targets.
const SSHCommand = "ssh"

// valueOptions enumerates the ssh options whose next token is a value and
// must be skipped during the destination scan. Extend here when another
// pre-destination option turns out to be needed in practice.
var valueOptions = map[string]bool{
	"-l": true, // login name
	"-o": true, // option pair
	"-i": true, // identity file
}

// Invocation is the parsed outer command line.
type Invocation struct {
	// Args is the original argument vector, unmodified.
	Args []string

	// User is the part before "@" in a user@name destination, empty when
	// the destination was a bare name.
	User string

	// Name is the logical instance name to resolve.
	Name string

	// Index is the position of the destination token in Args.
	Index int
}

// Parse finds the destination: the first token that is neither an option
// nor the value of a preceding value-taking option. A user@name token is
// split on the first "@". Fails with ErrMissingDestination when every
// token is an option or an option value.
func Parse(args []string) (*Invocation, error) {
	skipNext := false
	for i, tok := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if valueOptions[tok] {
			skipNext = true
			continue
		}
		if strings.HasPrefix(tok, "-") {
			continue
		}

		inv := &Invocation{Args: args, Name: tok, Index: i}
		if at := strings.Index(tok, "@"); at >= 0 {
			inv.User = tok[:at]
			inv.Name = tok[at+1:]
		}
		return inv, nil
	}
	return nil, interfaces.ErrMissingDestination
}

// Rewrite builds the final argument vector: the destination token is
// replaced in place by the resolved address, and the known-hosts override
// (plus a "-l user" pair when the destination carried a user@ prefix) is
// injected ahead of all original arguments so no value-taking option
// shifts relative to its value.
func (inv *Invocation) Rewrite(address, trustFilePath string) []string {
	rewritten := make([]string, len(inv.Args))
	copy(rewritten, inv.Args)
	rewritten[inv.Index] = address

	final := make([]string, 0, len(rewritten)+5)
	final = append(final, SSHCommand, "-o", "UserKnownHostsFile "+trustFilePath)
	if inv.User != "" {
		final = append(final, "-l", inv.User)
	}
	return append(final, rewritten...)
}
