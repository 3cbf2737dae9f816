package main

import "flux-tools/cmd"

func main() {
	cmd.Execute()
}
