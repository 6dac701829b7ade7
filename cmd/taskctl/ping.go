package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"taskboard/internal/client/session"

	"github.com/spf13/cobra"
)

// Intended for Docker HEALTHCHECK:
//
//	HEALTHCHECK CMD ["/taskctl", "ping"]
func newPingCmd(e *env, g *globalFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Exit non-zero unless the server and its database are healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			// no session: health is public
			c := session.New(g.server, session.NewMemoryStore())
			if err := c.Health(ctx); err != nil {
				return fmt.Errorf("unhealthy: %w", err)
			}
			return render(e.out, g.output, map[string]string{"status": "OK"}, func(w io.Writer) {
				fmt.Fprintf(w, "healthy: %s\n", g.server)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "Request timeout")
	return cmd
}
