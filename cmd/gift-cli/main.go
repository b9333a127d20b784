package main

import "gift-core/cmd/gift-cli/cmd"

func main() {
	cmd.Execute()
}
