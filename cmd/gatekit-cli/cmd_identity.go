package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

// ---- External Identity Commands ----

func (c *CLI) identityCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gatekit-cli identity <subcommand>")
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "list":
		return c.listIdentities()
	case "get":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli identity get <id>")
		}
		return c.getIdentity(args[0])
	case "by-entity":
		return c.findIdentitiesByEntity(args)
	case "by-provider":
		return c.findIdentityByProvider(args)
	case "create":
		return c.createIdentity(args)
	case "sync":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli identity sync <id> --status=ok|pending|error")
		}
		return c.syncIdentity(args[0], args[1:])
	case "delete":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli identity delete <id>")
		}
		return c.delete("/external-identities/" + args[0])
	default:
		return fmt.Errorf("unknown identity subcommand: %s", sub)
	}
}

func (c *CLI) listIdentities() error {
	resp, err := c.get("/external-identities")
	if err != nil {
		return err
	}

	var identities []struct {
		ID          uint   `json:"id"`
		EntityTable string `json:"entity_table"`
		EntityID    string `json:"entity_id"`
		IdpKey      string `json:"idp_key"`
		ExternalID  string `json:"external_id"`
		SyncStatus  string `json:"sync_status"`
	}
	if err := json.Unmarshal(resp, &identities); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENTITY TABLE\tENTITY ID\tIDP\tEXTERNAL ID\tSYNC")
	for _, e := range identities {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.EntityTable, e.EntityID, e.IdpKey, e.ExternalID, e.SyncStatus)
	}
	return w.Flush()
}

func (c *CLI) getIdentity(id string) error {
	resp, err := c.get("/external-identities/" + id)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) findIdentitiesByEntity(args []string) error {
	opts := parseArgs(args)
	if opts["entity-table"] == "" || opts["entity-id"] == "" {
		return fmt.Errorf("--entity-table and --entity-id are required")
	}

	resp, err := c.get("/external-identities/by-entity" + buildQuery(opts, "entity-table", "entity-id", "idp"))
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) findIdentityByProvider(args []string) error {
	opts := parseArgs(args)
	if opts["idp"] == "" || opts["external-id"] == "" {
		return fmt.Errorf("--idp and --external-id are required")
	}

	resp, err := c.get("/external-identities/by-provider" + buildQuery(opts, "idp", "external-id"))
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) createIdentity(args []string) error {
	opts := parseArgs(args)
	if opts["entity-table"] == "" || opts["entity-id"] == "" || opts["idp"] == "" || opts["external-id"] == "" {
		return fmt.Errorf("usage: gatekit-cli identity create --entity-table=TABLE --entity-id=ID --idp=KEY --external-id=ID [--module=M]")
	}

	resp, err := c.post("/external-identities", map[string]string{
		"entity_table": opts["entity-table"],
		"entity_id":    opts["entity-id"],
		"idp_key":      opts["idp"],
		"external_id":  opts["external-id"],
		"module":       opts["module"],
	})
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) syncIdentity(id string, args []string) error {
	opts := parseArgs(args)
	if opts["status"] == "" {
		return fmt.Errorf("--status is required")
	}

	resp, err := c.patch("/external-identities/"+id+"/sync-status", map[string]string{
		"sync_status": opts["status"],
	})
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}
