package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/yuuruii/yrzvault/internal/codec"
	"github.com/yuuruii/yrzvault/internal/config"
)

func runEncode(args []string) int {
	return runCodecCommand("encode", args, func(c *codec.Codec, text string) string {
		return c.Encode(text)
	})
}

func runDecode(args []string) int {
	return runCodecCommand("decode", args, func(c *codec.Codec, text string) string {
		return c.Decode(text)
	})
}

// runCodecCommand transforms the remaining arguments, or stdin when none are
// given, through the configured cipher table.
func runCodecCommand(name string, args []string, transform func(*codec.Codec, string) string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	tablePath := fs.String("table", "", "cipher table path (defaults to the configured table)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := *tablePath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 1
		}
		path = cfg.TablePath
	}
	table, err := codec.LoadTable(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load table: %v\n", err)
		return 1
	}
	c := codec.New(table)

	// A single argument or stdin, never a joined argument list: rebuilding
	// the text from the shell's word splitting would alter its whitespace.
	var text string
	switch len(fs.Args()) {
	case 0:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
			return 1
		}
		text = string(data)
	case 1:
		text = fs.Args()[0]
	default:
		fmt.Fprintf(os.Stderr, "%s takes one quoted argument or stdin\n", name)
		return 2
	}
	fmt.Println(transform(c, text))
	return 0
}

func runConfig(args []string) int {
	if len(args) != 0 && args[0] != "print" {
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	fmt.Printf("data_dir: %s\n", cfg.DataDir)
	fmt.Printf("table_path: %s\n", cfg.TablePath)
	fmt.Printf("audit_log: %s\n", cfg.AuditLog)
	return 0
}
