package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// ---- Link Commands ----

func (c *CLI) linkCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gatekit-cli link <subcommand>")
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "list":
		return c.listLinks(args)
	case "get":
		if len(args) < 3 {
			return fmt.Errorf("usage: gatekit-cli link get <account> <entity-table> <entity-id>")
		}
		return c.getLink(args[0], args[1], args[2])
	case "grant":
		return c.grantLink(args)
	case "role":
		if len(args) < 3 {
			return fmt.Errorf("usage: gatekit-cli link role <account> <entity-table> <entity-id> --role=ROLE")
		}
		return c.setLinkRole(args[0], args[1], args[2], args[3:])
	case "revoke":
		if len(args) < 3 {
			return fmt.Errorf("usage: gatekit-cli link revoke <account> <entity-table> <entity-id>")
		}
		return c.delete(fmt.Sprintf("/account-links/%s/%s/%s", args[0], args[1], args[2]))
	case "check":
		if len(args) < 3 {
			return fmt.Errorf("usage: gatekit-cli link check <account> <entity-table> <entity-id> [--role=ROLE]")
		}
		return c.checkAccess(args[0], args[1], args[2], args[3:])
	default:
		return fmt.Errorf("unknown link subcommand: %s", sub)
	}
}

func (c *CLI) listLinks(args []string) error {
	opts := parseArgs(args)

	path := "/account-links"
	if account, ok := opts["account"]; ok {
		path = "/account-links/by-account/" + account
	} else if _, ok := opts["entity-table"]; ok {
		path = "/account-links/by-entity" + buildQuery(opts, "entity-table", "entity-id")
	}

	resp, err := c.get(path)
	if err != nil {
		return err
	}

	var links []struct {
		AccountID   string    `json:"account_id"`
		EntityTable string    `json:"entity_table"`
		EntityID    string    `json:"entity_id"`
		Role        string    `json:"role"`
		CreatedAt   time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(resp, &links); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tENTITY TABLE\tENTITY ID\tROLE\tCREATED")
	for _, l := range links {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.AccountID, l.EntityTable, l.EntityID, l.Role, l.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func (c *CLI) getLink(account, table, entity string) error {
	resp, err := c.get(fmt.Sprintf("/account-links/%s/%s/%s", account, table, entity))
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) grantLink(args []string) error {
	opts := parseArgs(args)
	if opts["account"] == "" || opts["entity-table"] == "" || opts["entity-id"] == "" {
		return fmt.Errorf("usage: gatekit-cli link grant --account=ID --entity-table=TABLE --entity-id=ID [--role=ROLE]")
	}

	resp, err := c.post("/account-links", map[string]string{
		"account_id":   opts["account"],
		"entity_table": opts["entity-table"],
		"entity_id":    opts["entity-id"],
		"role":         opts["role"],
	})
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) setLinkRole(account, table, entity string, args []string) error {
	opts := parseArgs(args)
	if opts["role"] == "" {
		return fmt.Errorf("--role is required")
	}

	resp, err := c.patch(
		fmt.Sprintf("/account-links/%s/%s/%s/role", account, table, entity),
		map[string]string{"role": opts["role"]},
	)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) checkAccess(account, table, entity string, args []string) error {
	opts := parseArgs(args)
	query := buildQuery(opts, "role")

	resp, err := c.get(fmt.Sprintf("/account-links/%s/%s/%s/has-access%s", account, table, entity, query))
	if err != nil {
		return err
	}

	var allowed bool
	if err := json.Unmarshal(resp, &allowed); err != nil {
		return err
	}
	if allowed {
		fmt.Println("allowed")
	} else {
		fmt.Println("denied")
	}
	return nil
}
