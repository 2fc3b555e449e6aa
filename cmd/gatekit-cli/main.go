package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Version is set at build time
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	cli := &CLI{
		BaseURL: getEnv("GATEKIT_URL", "http://localhost:8080"),
		Token:   os.Getenv("GATEKIT_TOKEN"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}

	var err error
	switch cmd {
	case "link", "links":
		err = cli.linkCommand(args)
	case "account", "accounts":
		err = cli.accountCommand(args)
	case "provider", "providers":
		err = cli.providerCommand(args)
	case "identity", "identities":
		err = cli.identityCommand(args)
	case "audit":
		err = cli.auditCommand(args)
	case "health":
		err = cli.healthCommand(args)
	case "version":
		fmt.Printf("gatekit-cli %s\n", Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`gatekit-cli - Gatekit Access Service Command Line Interface

Usage:
  gatekit-cli <command> [subcommand] [options]

Environment Variables:
  GATEKIT_URL    Base URL of Gatekit server (default: http://localhost:8080)
  GATEKIT_TOKEN  Caller bearer token

Commands:
  link      Manage account links
    list    [--account=ID] [--entity-table=TABLE --entity-id=ID]
    get     <account> <entity-table> <entity-id>
    grant   --account=ID --entity-table=TABLE --entity-id=ID [--role=ROLE]
    role    <account> <entity-table> <entity-id> --role=ROLE
    revoke  <account> <entity-table> <entity-id>
    check   <account> <entity-table> <entity-id> [--role=ROLE]

  account   Manage user accounts
    list
    get     <id>
    find    [--email=EMAIL] [--username=NAME] [--subject=SUB]
    create  --id=ID [--subject=SUB] [--email=EMAIL] [--username=NAME]
    update  <id> [--email=EMAIL] [--username=NAME] [--display-name=NAME]
    status  <id> --status=STATUS
    delete  <id>

  provider  Manage identity providers
    list
    get     <id>
    by-key  <key>
    create  --key=KEY --name=NAME --type=TYPE [--config=JSON]
    toggle  <id>
    delete  <id>

  identity  Manage external identities
    list
    get     <id>
    by-entity   --entity-table=TABLE --entity-id=ID [--idp=KEY]
    by-provider --idp=KEY --external-id=ID
    create  --entity-table=TABLE --entity-id=ID --idp=KEY --external-id=ID [--module=M]
    sync    <id> --status=ok|pending|error
    delete  <id>

  audit     Query audit events
    query   [--actor=ID] [--type=TYPE] [--resource-type=T] [--resource-id=ID] [--limit=N]

  health    Check server health
    live    Liveness check
    ready   Readiness check
    full    Full health report

  version   Show CLI version
  help      Show this help

Examples:
  # Grant an admin link on a company
  gatekit-cli link grant --account=acc-1 --entity-table=companies --entity-id=co-9 --role=admin

  # Check effective access
  gatekit-cli link check acc-1 companies co-9 --role=user

  # Query the audit trail for a company
  gatekit-cli audit query --resource-type=companies --resource-id=co-9
`)
}
