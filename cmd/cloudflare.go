package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/AutumnsGrove/gw/internal/exec"
	"github.com/AutumnsGrove/gw/internal/wrap"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func cloudflare() wrap.Cloudflare {
	return wrap.Cloudflare{Wrangler: exec.Wrangler()}
}

// Flags for Cloudflare commands.
var (
	cfEnv         string
	cfDryRun      bool
	cfSecretValue string
	cfBinding     string
	cfFile        string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the worker with wrangler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, cloudflare().Deploy(cfEnv, cfDryRun), nil)
	},
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage worker secrets",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a worker secret",
	Long: `Set stores a worker secret. The value is taken from --value or, when
that is empty, from the first line of stdin. It is passed to wrangler on
stdin and never appears on a command line.

Examples:
  echo "$TOKEN" | gw secret set --write API_TOKEN
  gw secret set --write --env staging API_TOKEN --value "$TOKEN"`,
	Args: cobra.ExactArgs(1),
	RunE: runSecretSet,
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a worker secret (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().SecretDelete(args[0], cfEnv)
		return runOp(cmd, op, err)
	},
}

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Manage Workers KV keys",
}

var kvPutCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Write a KV key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().KVPut(cfBinding, args[0], args[1])
		return runOp(cmd, op, err)
	},
}

var kvDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a KV key (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().KVDelete(cfBinding, args[0])
		return runOp(cmd, op, err)
	},
}

var r2Cmd = &cobra.Command{
	Use:   "r2",
	Short: "Manage R2 objects and buckets",
}

var r2PutCmd = &cobra.Command{
	Use:   "put <bucket/key>",
	Short: "Upload an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().R2Put(args[0], cfFile)
		return runOp(cmd, op, err)
	},
}

var r2RmCmd = &cobra.Command{
	Use:     "rm <bucket/key>",
	Aliases: []string{"delete"},
	Short:   "Remove an object (destructive)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().R2Delete(args[0])
		return runOp(cmd, op, err)
	},
}

var r2BucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage R2 buckets",
}

var r2BucketCreateCmd = &cobra.Command{
	Use:   "create <bucket>",
	Short: "Create a bucket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().R2BucketCreate(args[0])
		return runOp(cmd, op, err)
	},
}

var r2BucketDeleteCmd = &cobra.Command{
	Use:   "delete <bucket>",
	Short: "Delete a bucket (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := cloudflare().R2BucketDelete(args[0])
		return runOp(cmd, op, err)
	},
}

func init() {
	deployCmd.Flags().StringVarP(&cfEnv, "env", "e", "", "wrangler environment")
	deployCmd.Flags().BoolVar(&cfDryRun, "dry-run", false, "build without uploading")
	secretSetCmd.Flags().StringVarP(&cfEnv, "env", "e", "", "wrangler environment")
	secretSetCmd.Flags().StringVar(&cfSecretValue, "value", "", "secret value (default: read stdin)")
	secretDeleteCmd.Flags().StringVarP(&cfEnv, "env", "e", "", "wrangler environment")
	kvCmd.PersistentFlags().StringVar(&cfBinding, "binding", "", "KV namespace binding name")
	_ = kvCmd.MarkPersistentFlagRequired("binding")
	r2PutCmd.Flags().StringVar(&cfFile, "file", "", "local file to upload")

	addWriteFlag(deployCmd, secretSetCmd, secretDeleteCmd, kvPutCmd, kvDeleteCmd,
		r2PutCmd, r2RmCmd, r2BucketCreateCmd, r2BucketDeleteCmd)

	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)
	kvCmd.AddCommand(kvPutCmd, kvDeleteCmd)
	r2BucketCmd.AddCommand(r2BucketCreateCmd, r2BucketDeleteCmd)
	r2Cmd.AddCommand(r2PutCmd, r2RmCmd, r2BucketCmd)
	rootCmd.AddCommand(deployCmd, secretCmd, kvCmd, r2Cmd)
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	value := cfSecretValue
	if value == "" && !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading secret value from stdin: %w", err)
		}
		value = strings.TrimRight(line, "\r\n")
	}
	op, err := cloudflare().SecretSet(args[0], value, cfEnv)
	return runOp(cmd, op, err)
}
