// The ec2ssh command opens an SSH session to an EC2 instance by Name tag,
// pinning the instance's host keys without touching the user's real
// known_hosts file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/ruteri/ec2ssh/common"
	"github.com/ruteri/ec2ssh/config"
	"github.com/ruteri/ec2ssh/hostkeys"
	"github.com/ruteri/ec2ssh/launcher"
	"github.com/ruteri/ec2ssh/resolver"
	"github.com/ruteri/ec2ssh/sshargs"
	"github.com/ruteri/ec2ssh/trustcache"
)

const usage = `ec2ssh - SSH securely to an EC2 instance without known_hosts hassles

Synopsis

    ec2ssh <instance_name> [args to pass to ssh]

Features

    - No "trust on first use" problem or "host key changed" alerts
    - Does not modify your main known_hosts file
    - Creates and caches per-instance minimal known_hosts files in ~/.ec2ssh/
    - Instance redeploys and elastic IP reassignments are no problem
    - Supports rsync tunneling

Requirements

    - Instance must have a "Name" tag
    - Host public keys come from the EC2 console output (cloud-init's
      standard key block; available a few minutes after boot), or from an
      S3 bucket the instance wrote to during boot (no delay, but needs
      extra cloud-init and IAM setup) - see EC2SSH_PUBKEY_BUCKET

Environment Variables

    - EC2SSH_PUBLIC_IP=1
        Use public IP of instance.  Default: private
    - EC2SSH_PUBKEY_DIR=<dir>
        Directory that caches custom known hosts files.  Default: ~/.ec2ssh
    - EC2SSH_PUBKEY_BUCKET=<bucket>
        S3 bucket holding ${instance_arn}/sshkeys objects uploaded by
        cloud-init during boot.  If unset, console output is used.
    - EC2SSH_DEBUG=1
        Enable debugging messages to stderr

Examples

    # Interactive login using public / external IP
    export EC2SSH_PUBLIC_IP=1
    ec2ssh mydev

    # Specify the user and ssh verboseness
    ec2ssh mydev -l ubuntu -v

    # Alternative syntax
    ec2ssh ubuntu@mydev

    # Run command
    ec2ssh mydev echo "Hello Secure Cloud World"

    # Upload file to instance
    rsync --rsh=ec2ssh /tmp/local.txt user@mydev:/tmp/file2.txt

    # Download file from instance
    rsync --rsh=ec2ssh user@mydev:/tmp/file2.txt /tmp/copy.txt

    # Show this help
    ec2ssh`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Println(usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: %v\n", err)
		return 1
	}

	log := common.SetupLogger(&common.LoggingOpts{
		Debug:   cfg.Debug,
		Service: "ec2ssh",
		Version: common.Version,
	})
	log.Debug("Parsed configuration",
		"public_ip", cfg.PublicIP,
		"pubkey_dir", cfg.PubkeyDir,
		"pubkey_bucket", cfg.PubkeyBucket)
	log.Debug("Args", "args", args)

	inv, err := sshargs.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: %v\n", err)
		return 1
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: could not create AWS session: %v\n", err)
		return 1
	}

	ctx := context.Background()

	target, err := resolver.New(ec2.New(sess), cfg.PublicIP, log).Resolve(ctx, inv.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: %v\n", err)
		return 1
	}

	source := hostkeys.ForConfig(cfg, sess, log)
	cache := trustcache.New(cfg.PubkeyDir, log)
	trustFile, err := cache.GetOrCreate(ctx, target, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: %v\n", err)
		return 1
	}

	argv := inv.Rewrite(target.Address, trustFile)
	log.Debug("Running", "argv", argv)

	code, err := launcher.NewExec(log).Launch(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ec2ssh: %v\n", err)
		return 1
	}
	return code
}
