package gwctl

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"modelgw/pkg/types"
)

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command {
	return buildRootCmdWith(&Config{Server: "http://127.0.0.1:8080", LogLvl: "info"})
}

// buildRootCmdWith constructs a Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "gwctl",
		Short:         "Operate a running modelgw gateway over its HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("server", cfg.Server, "Gateway base URL (defaults MODELGW_SERVER or http://127.0.0.1:8080)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults GWCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("server"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.Server = v
			}
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.LogLvl = v
			}
		}
		SetLogLevel(cfg.LogLvl)
	}

	// enqueue
	enqueueCmd := &cobra.Command{
		Use:     "enqueue <model>",
		Short:   "Enqueue a request for a model",
		Example: "  gwctl enqueue meta/llama-3.1-8b --payload '{\"prompt\":\"hi\"}' --wait-ms 30000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := cmd.Flags().GetString("payload")
			priority, _ := cmd.Flags().GetInt("priority")
			timeoutMs, _ := cmd.Flags().GetInt64("timeout-ms")
			maxRetries, _ := cmd.Flags().GetInt("max-retries")
			userID, _ := cmd.Flags().GetString("user")
			waitMs, _ := cmd.Flags().GetInt("wait-ms")
			if payload != "" && !json.Valid([]byte(payload)) {
				return fmt.Errorf("--payload must be valid JSON")
			}
			req := types.EnqueueRequest{
				ModelID:    args[0],
				UserID:     userID,
				Priority:   priority,
				TimeoutMs:  timeoutMs,
				MaxRetries: maxRetries,
			}
			if payload != "" {
				req.Payload = json.RawMessage(payload)
			}
			return fnEnqueue(cfg, req, waitMs)
		},
	}
	enqueueCmd.Flags().String("payload", "", "JSON payload forwarded to the serving instance")
	enqueueCmd.Flags().Int("priority", 0, "Scheduling priority (higher first)")
	enqueueCmd.Flags().Int64("timeout-ms", 0, "Queue-side expiry in ms (0 uses the server default)")
	enqueueCmd.Flags().Int("max-retries", 0, "Max retries (0 uses the server default)")
	enqueueCmd.Flags().String("user", "", "User id forwarded with the request")
	enqueueCmd.Flags().Int("wait-ms", 0, "Wait up to this many ms for the result (0 returns the request id only)")
	root.AddCommand(enqueueCmd)

	// result
	resultCmd := &cobra.Command{
		Use:     "result <request-id>",
		Short:   "Fetch the result of a request",
		Example: "  gwctl result 2b6c…\n  gwctl result 2b6c… --wait-ms 10000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			waitMs, _ := cmd.Flags().GetInt("wait-ms")
			return fnResult(cfg, args[0], waitMs)
		},
	}
	resultCmd.Flags().Int("wait-ms", 0, "Long-poll up to this many ms (0 is a single read)")
	root.AddCommand(resultCmd)

	// status / queue
	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show gateway status: instances, active models, uptime",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return fnStatus(cfg) },
	})
	root.AddCommand(&cobra.Command{
		Use:   "queue <model>",
		Short: "Show queue length and estimated wait for a model",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return fnQueue(cfg, args[0]) },
	})

	// instances group
	instancesCmd := &cobra.Command{
		Use:   "instances [model]",
		Short: "List instances, optionally filtered by model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			return fnInstances(cfg, model)
		},
	}
	instancesCmd.AddCommand(&cobra.Command{
		Use:   "start <id>",
		Short: "Force an instance healthy under manual control",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return fnInstanceStart(cfg, args[0]) },
	})
	instancesCmd.AddCommand(&cobra.Command{
		Use:   "stop <id>",
		Short: "Force an instance offline under manual control",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return fnInstanceStop(cfg, args[0]) },
	})
	instancesCmd.AddCommand(&cobra.Command{
		Use:   "reset-manual",
		Short: "Return all manually controlled instances to the health loop",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return fnResetManual(cfg) },
	})
	root.AddCommand(instancesCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(os.Stdout) }})
	root.AddCommand(completionCmd)

	return root
}
