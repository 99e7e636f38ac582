// cmd/latlens/main.go
package main

import (
	cmd "github.com/mwiater/latlens/internal/cli"
)

var executeCmd = cmd.Execute

// main starts the latlens CLI application by delegating to the
// cobra root command defined in the latlens package. It does not
// take any arguments and does not return a value.
func main() {
	executeCmd()
}
