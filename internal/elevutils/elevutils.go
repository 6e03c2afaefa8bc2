package elevutils

import (
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return strings.TrimSpace(gitHash)
}

type CmdArgs struct {
	ConfigPath    string
	EnvPath       string
	Identifier    string
	ListenAddress string
	ReadStdin     bool
}

func ProcessCmdArgs() CmdArgs {
	args, exitCode, done := parseCmdArgs(os.Args[1:], os.Stdout)
	if done {
		os.Exit(exitCode)
	}
	return args
}

// parseCmdArgs returns done when the programme should exit with exitCode
// instead of starting.
func parseCmdArgs(arguments []string, out io.Writer) (CmdArgs, int, bool) {
	flagSet := flag.NewFlagSet("dispatcher", flag.ContinueOnError)
	flagSet.SetOutput(out)

	help := flagSet.Bool("help", false, "Show Help Window")
	version := flagSet.Bool("version", false, "Show Version")
	configPath := flagSet.String("config", "", "Path to a YAML config file. Defaults to built-in defaults")
	envPath := flagSet.String("env", ".env", "Path to a .env file with DISPATCH_* overrides. Skipped if missing")
	identifier := flagSet.String("id", "", "Set the identifier of the fleet. Defaults to random string")
	listenAddress := flagSet.String("listen", "", "Address for the KCP trip server, e.g. 127.0.0.1:4145. Overrides config")
	readStdin := flagSet.Bool("stdin", true, "Read \"<src> <dest>\" trip lines from stdin")

	if err := flagSet.Parse(arguments); err != nil {
		return CmdArgs{}, 2, true
	}

	if *version {
		fmt.Fprintln(out, "Version:", GetGitHash())
		return CmdArgs{}, 0, true
	}

	if *help {
		fmt.Fprintln(out, "Usage: ./dispatcher [OPTIONS]")
		fmt.Fprintln(out, "Multi-car elevator dispatcher")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Options:")
		flagSet.PrintDefaults()
		return CmdArgs{}, 0, true
	}

	return CmdArgs{
		ConfigPath:    *configPath,
		EnvPath:       *envPath,
		Identifier:    *identifier,
		ListenAddress: *listenAddress,
		ReadStdin:     *readStdin,
	}, 0, false
}
