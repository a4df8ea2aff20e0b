package hostkeys

import (
	"fmt"
	"strings"

	"github.com/ruteri/ec2ssh/interfaces"
	"golang.org/x/crypto/ssh"
)

// splitKeyLines splits a key payload into individual lines, dropping
// blank ones and preserving order.
func splitKeyLines(payload string) []string {
	var lines []string
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// validateKeyLines checks that every line parses as an
// authorized-keys-format public key. A line that does not parse means the
// instance's boot scripting published garbage; retrying will not help.
func validateKeyLines(lines []string) error {
	for _, line := range lines {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			return fmt.Errorf("%w: %q: %v", interfaces.ErrKeyDecode, line, err)
		}
	}
	return nil
}
