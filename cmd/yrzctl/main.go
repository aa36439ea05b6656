package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yuuruii/yrzvault/internal/codec"
	"github.com/yuuruii/yrzvault/internal/config"
	"github.com/yuuruii/yrzvault/internal/logging"
	"github.com/yuuruii/yrzvault/internal/vault"
)

const productName = "yrzvault"
const cliBanner = productName + " CLI (yrzctl)"

func init() {
	defaultUsage := flag.Usage
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), cliBanner)
		fmt.Fprintln(flag.CommandLine.Output())
		if defaultUsage != nil {
			defaultUsage()
		}
	}
}

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "register":
		os.Exit(runRegister(args[1:]))
	case "login":
		os.Exit(runLogin(args[1:]))
	case "passwd":
		os.Exit(runPasswd(args[1:]))
	case "users":
		os.Exit(runUsers(args[1:]))
	case "profile":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "profile subcommand required")
			os.Exit(2)
		}
		switch args[1] {
		case "email":
			os.Exit(runProfileEmail(args[2:]))
		case "avatar":
			os.Exit(runProfileAvatar(args[2:]))
		default:
			fmt.Fprintf(os.Stderr, "unknown profile subcommand: %s\n", args[1])
			os.Exit(2)
		}
	case "service":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "service subcommand required")
			os.Exit(2)
		}
		switch args[1] {
		case "add":
			os.Exit(runServiceAdd(args[2:]))
		case "list":
			os.Exit(runServiceList(args[2:]))
		case "rm":
			os.Exit(runServiceRemove(args[2:]))
		default:
			fmt.Fprintf(os.Stderr, "unknown service subcommand: %s\n", args[1])
			os.Exit(2)
		}
	case "account":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "account subcommand required")
			os.Exit(2)
		}
		switch args[1] {
		case "add":
			os.Exit(runAccountAdd(args[2:]))
		case "list":
			os.Exit(runAccountList(args[2:]))
		case "show":
			os.Exit(runAccountShow(args[2:]))
		case "rm":
			os.Exit(runAccountRemove(args[2:]))
		case "count":
			os.Exit(runAccountCount(args[2:]))
		default:
			fmt.Fprintf(os.Stderr, "unknown account subcommand: %s\n", args[1])
			os.Exit(2)
		}
	case "encode":
		os.Exit(runEncode(args[1:]))
	case "decode":
		os.Exit(runDecode(args[1:]))
	case "config":
		os.Exit(runConfig(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// openVault resolves the configuration, loads the cipher table, and opens the
// stores. Audit events go to the configured JSONL file; the CLI keeps stdout
// for command output.
func openVault() (*vault.Vault, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	table, err := codec.LoadTable(cfg.TablePath)
	if err != nil {
		return nil, err
	}

	opts := []vault.Option{}
	if cfg.AuditLog != "" {
		logger, err := logging.NewAuditLogger("yrzctl",
			logging.WithFile(cfg.AuditLog),
			logging.WithoutStdout(),
		)
		if err != nil {
			return nil, err
		}
		_ = logger.Emit(logging.AuditEvent{
			EventType: logging.EventTableLoad,
			Decision:  logging.DecisionInfo,
			Metadata: map[string]any{
				"table_path": cfg.TablePath,
				"entries":    table.Len(),
			},
		})
		opts = append(opts, vault.WithAuditLogger(logger))
	}
	return vault.Open(cfg.DataDir, codec.New(table), opts...)
}
