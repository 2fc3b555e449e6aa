package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
)

// ---- Provider Commands ----

func (c *CLI) providerCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gatekit-cli provider <subcommand>")
	}

	sub := args[0]
	args = args[1:]

	switch sub {
	case "list":
		return c.listProviders()
	case "get":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli provider get <id>")
		}
		return c.getProvider(args[0])
	case "by-key":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli provider by-key <key>")
		}
		return c.getProviderByKey(args[0])
	case "create":
		return c.createProvider(args)
	case "toggle":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli provider toggle <id>")
		}
		return c.toggleProvider(args[0])
	case "delete":
		if len(args) < 1 {
			return fmt.Errorf("usage: gatekit-cli provider delete <id>")
		}
		return c.delete("/identity-providers/" + args[0])
	default:
		return fmt.Errorf("unknown provider subcommand: %s", sub)
	}
}

func (c *CLI) listProviders() error {
	resp, err := c.get("/identity-providers")
	if err != nil {
		return err
	}

	var providers []struct {
		ID       uint   `json:"id"`
		Key      string `json:"key"`
		Name     string `json:"name"`
		Type     string `json:"type"`
		IsActive bool   `json:"is_active"`
	}
	if err := json.Unmarshal(resp, &providers); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKEY\tNAME\tTYPE\tACTIVE")
	for _, p := range providers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", p.ID, p.Key, p.Name, p.Type, p.IsActive)
	}
	return w.Flush()
}

func (c *CLI) getProvider(id string) error {
	resp, err := c.get("/identity-providers/" + id)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) getProviderByKey(key string) error {
	resp, err := c.get("/identity-providers/by-key/" + key)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) createProvider(args []string) error {
	opts := parseArgs(args)
	if opts["key"] == "" || opts["name"] == "" || opts["type"] == "" {
		return fmt.Errorf("usage: gatekit-cli provider create --key=KEY --name=NAME --type=TYPE [--config=JSON]")
	}

	body := map[string]any{
		"key":  opts["key"],
		"name": opts["name"],
		"type": opts["type"],
	}
	if cfg, ok := opts["config"]; ok {
		body["config"] = json.RawMessage(cfg)
	}

	resp, err := c.post("/identity-providers", body)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}

func (c *CLI) toggleProvider(id string) error {
	resp, err := c.patch("/identity-providers/"+id+"/toggle", nil)
	if err != nil {
		return err
	}
	return prettyPrint(resp)
}
