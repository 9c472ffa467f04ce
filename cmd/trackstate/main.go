// Command trackstate records, imports, and replays tracking captures.
package main

import "github.com/mesh-intelligence/trackstate/internal/cli"

func main() {
	cli.Execute()
}
