// Command pep-demo is a small illustrative CLI that wires a pep.Client
// with sample PIP and obligation handler stubs and runs a demo
// Authorize call against a configured PDP endpoint.
package main

import (
	"github.com/joho/godotenv"

	"github.com/enricovianello/pep-go/cmd/pep-demo/cmd"
)

func main() {
	_ = godotenv.Load(".env")
	cmd.Execute()
}
