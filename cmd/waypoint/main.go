// Command waypoint tracks a phased startup checklist kept on a GraphQL
// backend.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
