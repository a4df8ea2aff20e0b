// The ec2ssh-complete command prints EC2 instance names matching a
// prefix, for shell tab completion. A user@ prefix is accepted and
// re-applied to every match, for people who use that instead of ssh -l.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/ruteri/ec2ssh/common"
	"github.com/ruteri/ec2ssh/resolver"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "ec2ssh-complete",
		Usage:     "print EC2 instance name(s) matching a prefix, for shell tab completion",
		ArgsUsage: "[user@]prefix",
		Action: func(cCtx *cli.Context) error {
			return complete(cCtx.Context, cCtx.Args().First(), os.Stdout)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func complete(ctx context.Context, raw string, out io.Writer) error {
	userPrefix, namePrefix := splitPrefix(raw)

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return fmt.Errorf("could not create AWS session: %w", err)
	}

	logger := common.SetupLogger(&common.LoggingOpts{Service: "ec2ssh-complete"})
	names, err := resolver.New(ec2.New(sess), false, logger).MatchingNames(ctx, namePrefix)
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(out, userPrefix+name)
	}
	return nil
}

// splitPrefix splits "user@prefix" into "user@" and "prefix"; a bare
// prefix yields an empty user part.
func splitPrefix(raw string) (userPrefix, namePrefix string) {
	parts := strings.SplitN(raw, "@", 2)
	if len(parts) == 2 {
		return parts[0] + "@", parts[1]
	}
	return "", raw
}
