// Command retrieval is the admin CLI for the retrieval subsystem.
package main

import "github.com/valacy/retrieval/internal/cli"

func main() {
	cli.Execute()
}
