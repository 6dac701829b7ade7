package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"taskboard/internal/client/session"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// env is everything a command touches outside its flags.
type env struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// readPassword prompts without echo on a terminal.
	readPassword func(prompt string) (string, error)
}

func newEnv() *env {
	e := &env{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	e.readPassword = e.promptPassword
	return e
}

func (e *env) promptPassword(prompt string) (string, error) {
	if f, ok := e.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.errOut, prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	// piped input: first line
	line, err := bufio.NewReader(e.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type globalFlags struct {
	server      string
	sessionPath string
	output      string
}

func defaultServer() string {
	if v := os.Getenv("TASKBOARD_URL"); v != "" {
		return v
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "5000"
	}
	return "http://localhost:" + port
}

func newRootCmd(e *env) *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Command line client for a taskboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch g.output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("unknown output format %q (text, json, yaml)", g.output)
			}
			return nil
		},
	}
	cmd.SetIn(e.in)
	cmd.SetOut(e.out)
	cmd.SetErr(e.errOut)

	cmd.PersistentFlags().StringVar(&g.server, "server", defaultServer(), "Server base URL (TASKBOARD_URL)")
	cmd.PersistentFlags().StringVar(&g.sessionPath, "session", "", "Session file (default <config dir>/taskboard/session.json)")
	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", outputText, "Output format: text, json, yaml")

	cmd.AddCommand(
		newRegisterCmd(e, g),
		newLoginCmd(e, g),
		newMeCmd(e, g),
		newLogoutCmd(e, g),
		newTokenCmd(e, g),
		newSeedCmd(e, g),
		newPingCmd(e, g),
	)
	return cmd
}

// client builds a session client backed by the session file.
func (g *globalFlags) client() (*session.Client, error) {
	path := g.sessionPath
	if path == "" {
		var err error
		if path, err = session.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return session.New(g.server, session.NewFileStore(path)), nil
}
