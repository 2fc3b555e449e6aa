package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// ---- Account Commands ----

func (c *CLI) accountCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gatekit-cli account <subcommand>")
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "list":
		return c.listAccounts()
	case "get":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli account get <id>")
		}
		return c.getAccount(args[0])
	case "find":
		return c.findAccount(args)
	case "create":
		return c.createAccount(args)
	case "update":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli account update <id> [options]")
		}
		return c.updateAccount(args[0], args[1:])
	case "status":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli account status <id> --status=STATUS")
		}
		return c.setAccountStatus(args[0], args[1:])
	case "delete":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli account delete <id>")
		}
		return c.delete("/accounts/" + args[0])
	default:
		return fmt.Errorf("unknown account subcommand: %s", sub)
	}
}

func (c *CLI) listAccounts() error {
	resp, err := c.get("/accounts")
	if err != nil {
		return err
	}

	var accounts []struct {
		AccountID string    `json:"account_id"`
		Username  string    `json:"username"`
		EmailNorm string    `json:"email_norm"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(resp, &accounts); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tSTATUS\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.AccountID, a.Username, a.EmailNorm, a.Status, a.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func (c *CLI) getAccount(id string) error {
	resp, err := c.get("/accounts/" + id)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) findAccount(args []string) error {
	opts := parseArgs(args)

	var path string
	switch {
	case opts["email"] != "":
		path = "/accounts/by-email?email=" + opts["email"]
	case opts["username"] != "":
		path = "/accounts/by-username?username=" + opts["username"]
	case opts["subject"] != "":
		path = "/accounts/by-subject?subject=" + opts["subject"]
	default:
		return fmt.Errorf("one of --email, --username or --subject is required")
	}

	resp, err := c.get(path)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) createAccount(args []string) error {
	opts := parseArgs(args)
	if opts["id"] == "" {
		return fmt.Errorf("--id is required")
	}

	resp, err := c.post("/accounts", map[string]string{
		"account_id":   opts["id"],
		"keycloak_sub": opts["subject"],
		"email_norm":   opts["email"],
		"username":     opts["username"],
		"display_name": opts["display-name"],
	})
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) updateAccount(id string, args []string) error {
	opts := parseArgs(args)

	body := make(map[string]string)
	for opt, field := range map[string]string{
		"email":        "email_norm",
		"username":     "username",
		"display-name": "display_name",
		"avatar":       "avatar_url",
		"subject":      "keycloak_sub",
	} {
		if v, ok := opts[opt]; ok {
			body[field] = v
		}
	}
	if len(body) == 0 {
		return fmt.Errorf("nothing to update")
	}

	resp, err := c.patch("/accounts/"+id, body)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) setAccountStatus(id string, args []string) error {
	opts := parseArgs(args)
	if opts["status"] == "" {
		return fmt.Errorf("--status is required")
	}

	resp, err := c.patch("/accounts/"+id+"/status", map[string]string{"status": opts["status"]})
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}
