package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// ---- Audit Commands ----

func (c *CLI) auditCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gatekit-cli audit query [options]")
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "query":
		return c.queryAudit(args)
	default:
		return fmt.Errorf("unknown audit subcommand: %s", sub)
	}
}

func (c *CLI) queryAudit(args []string) error {
	opts := parseArgs(args)
	query := buildQuery(opts, "actor", "type", "resource-type", "resource-id", "limit", "offset")

	resp, err := c.get("/audit-events" + query)
	if err != nil {
		return err
	}

	var events []struct {
		Type         string    `json:"type"`
		ActorID      string    `json:"actor_id"`
		ResourceType string    `json:"resource_type"`
		ResourceID   string    `json:"resource_id"`
		Status       string    `json:"status"`
		Message      string    `json:"message"`
		CreatedAt    time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(resp, &events); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tACTOR\tRESOURCE\tSTATUS\tMESSAGE")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.Type, e.ActorID,
			e.ResourceType, e.ResourceID, e.Status, e.Message)
	}
	return w.Flush()
}
