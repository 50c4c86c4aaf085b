// Command cryptowatch is the thin entry point that hands off to the cmd
// package's cobra root.
package main

import "github.com/cryptowatch/cryptowatch/cmd"

func main() {
	cmd.Execute()
}
