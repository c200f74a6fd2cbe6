// Codementor runs hard code reviews from the command line.
//
// Usage:
//
//	codementor review main.py                 # review a file
//	codementor review - --language typescript # review stdin
//	codementor mcp                            # serve MCP tools over stdio
//	codementor worker                         # persist queued reviews
//	codementor config init                    # write codementor.yaml
package main

import (
	"os"

	"github.com/felixgeelhaar/codementor/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
